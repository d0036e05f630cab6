package community

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type createChallengeRequest struct {
	Title         string  `json:"title"`
	Detail        string  `json:"detail"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	GoalDistanceM float64 `json:"goal_distance_meters"`
	IsPublic      bool    `json:"is_public"`
	AutoJoin      bool    `json:"auto_join"`
}

type createClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	AutoJoin    bool   `json:"auto_join"`
}

type inviteRequest struct {
	Usernames []string `json:"usernames"`
}

func RegisterRoutes(r fiber.Router, m *Model, authMiddleware fiber.Handler) {
	r.Get("/challenges", func(c *fiber.Ctx) error {
		return c.JSON(m.Challenges())
	})

	r.Post("/challenges", authMiddleware, func(c *fiber.Ctx) error {
		var req createChallengeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.Title == "" || req.GoalDistanceM <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "title and goal_distance_meters required")
		}
		start, err := time.Parse(isoDay, req.StartDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_date must be yyyy-MM-dd")
		}
		end, err := time.Parse(isoDay, req.EndDate)
		if err != nil || end.Before(start) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be yyyy-MM-dd on or after start_date")
		}

		created, err := m.CreateChallenge(c.Context(), Challenge{
			Title:         req.Title,
			Detail:        req.Detail,
			StartDate:     start,
			EndDate:       end,
			GoalDistanceM: req.GoalDistanceM,
			IsPublic:      req.IsPublic,
		}, req.AutoJoin)
		if err != nil {
			if errors.Is(err, ErrSignInRequired) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/challenges/:id/join", authMiddleware, func(c *fiber.Ctx) error {
		joined, err := m.ToggleJoin(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(fiber.Map{"joined": joined})
	})

	r.Delete("/challenges/:id", authMiddleware, func(c *fiber.Ctx) error {
		switch err := m.DeleteChallenge(c.Context(), c.Params("id")); {
		case err == nil:
			return c.SendStatus(fiber.StatusNoContent)
		case errors.Is(err, ErrNotCreator):
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	})

	r.Post("/challenges/:id/invite", authMiddleware, func(c *fiber.Ctx) error {
		var req inviteRequest
		if err := c.BodyParser(&req); err != nil || len(req.Usernames) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "usernames required")
		}
		m.InviteParticipants(c.Context(), c.Params("id"), req.Usernames)
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Get("/clubs", func(c *fiber.Ctx) error {
		return c.JSON(m.Clubs())
	})

	r.Post("/clubs", authMiddleware, func(c *fiber.Ctx) error {
		var req createClubRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		created, err := m.CreateClub(c.Context(), Club{
			Name:        req.Name,
			Description: req.Description,
			IsPublic:    req.IsPublic,
		}, req.AutoJoin)
		if err != nil {
			if errors.Is(err, ErrSignInRequired) {
				return fiber.NewError(fiber.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/clubs/:id/join", authMiddleware, func(c *fiber.Ctx) error {
		joined, err := m.ToggleClubJoin(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(fiber.Map{"joined": joined})
	})

	r.Get("/leaderboard", func(c *fiber.Ctx) error {
		if raw := c.Query("sort"); raw != "" {
			mode, ok := ParseSortMode(raw)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "sort must be distance, pace or streak")
			}
			m.SetLeaderboardSort(mode)
		}
		return c.JSON(m.Leaderboard())
	})

	r.Post("/refresh", authMiddleware, func(c *fiber.Ctx) error {
		m.RefreshProgress(c.Context())
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/reload", func(c *fiber.Ctx) error {
		m.Load(c.Context())
		return c.SendStatus(fiber.StatusAccepted)
	})
}
