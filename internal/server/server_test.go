package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"backend-taqvo/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func testConfig() config.Config {
	return config.Config{
		ServerPort: ":0",
		JWTSecret:  "test-secret",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := NewServer(testConfig(), nil, rdb)
	t.Cleanup(srv.Driver.Close)
	return srv
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.App.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var out map[string]string
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil || out["status"] != "ok" {
		t.Fatalf("unexpected health body %s", raw)
	}
}

func TestCommunityRoutesWiredWithoutBackend(t *testing.T) {
	srv := newTestServer(t)

	// no postgres: lists degrade to empty rather than error
	resp, err := srv.App.Test(httptest.NewRequest("GET", "/community/challenges", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}

	resp, err = srv.App.Test(httptest.NewRequest("GET", "/community/leaderboard", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	body := `{"title":"X","goal_distance_meters":1000,"start_date":"2026-03-01","end_date":"2026-03-31"}`
	req := httptest.NewRequest("POST", "/community/challenges", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 without bearer token, got %d", resp.StatusCode)
	}
}

func TestLegacyKeysPurgedAtStartup(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	mr.HSet("taqvo:overrides:challenges", "ch-1", "1")
	mr.HSet("taqvo:overrides:clubs", "club-1", "1")
	if err := mr.Set("taqvo:queue", `[]`); err != nil {
		t.Fatalf("seed legacy queue: %v", err)
	}

	srv := NewServer(testConfig(), nil, rdb)
	defer srv.Driver.Close()

	for _, key := range []string{"taqvo:overrides:challenges", "taqvo:overrides:clubs", "taqvo:queue"} {
		if mr.Exists(key) {
			t.Fatalf("legacy key %s must be purged at startup", key)
		}
	}
}

func TestNewServerWithoutRedis(t *testing.T) {
	srv := NewServer(testConfig(), nil, nil)
	defer srv.Driver.Close()

	resp, err := srv.App.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200 with no backing stores, got %d", resp.StatusCode)
	}
}
