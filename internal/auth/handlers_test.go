package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func newAuthApp(svc *Service) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/auth"), svc)
	return app
}

func TestRegisterRoute(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "amira@example.com", "amira", pgxmock.AnyArg(), "", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := newAuthApp(NewService("secret", mock, NewSession(), nil))

	body := `{"email":"amira@example.com","username":"amira","password":"hunter22"}`
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
}

func TestRegisterRouteValidation(t *testing.T) {
	app := newAuthApp(NewService("secret", nil, NewSession(), nil))

	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(`{"email":"a@b.c"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}

func TestLoginRouteBadCredentials(t *testing.T) {
	mock := newMock(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, username`).
		WithArgs("amira@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "full_name", "avatar_url", "created_at", "updated_at"}).
			AddRow("user-1", "amira@example.com", "amira", string(hash), "", "", now, now))

	app := newAuthApp(NewService("secret", mock, NewSession(), nil))

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"amira@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
}

func TestSignOutRoute(t *testing.T) {
	session := NewSession()
	session.Set("user-1")
	app := newAuthApp(NewService("secret", nil, session, nil))

	resp, err := app.Test(httptest.NewRequest("POST", "/auth/signout", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("want 204, got %d", resp.StatusCode)
	}
	if session.UserID() != "" {
		t.Fatalf("expected session cleared")
	}
}

func TestRefreshRoute(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("secret", mock, NewSession(), nil)
	tokens, err := svc.GenerateTokens(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().Add(time.Hour)))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := newAuthApp(svc)
	req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"`+tokens.RefreshToken+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var out TokenResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil || out.AccessToken == "" {
		t.Fatalf("bad refresh body %s: %v", raw, err)
	}
}

func TestVerifyRoute(t *testing.T) {
	svc := NewService("secret", nil, NewSession(), nil)
	token, err := svc.signToken("user-1", accessTokenTTL)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	app := newAuthApp(svc)
	req := httptest.NewRequest("GET", "/auth/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/auth/jwt/verify", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token: want 401, got %d", resp.StatusCode)
	}
}
