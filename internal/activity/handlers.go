package activity

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Activity
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.DistanceM < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "distance_meters must not be negative")
		}
		if userID, ok := c.Locals("user_id").(string); ok {
			req.UserID = userID
		}
		if req.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		recorded, err := svc.Record(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(recorded)
	})

	r.Get("/summaries", authMiddleware, func(c *fiber.Ctx) error {
		summaries, err := svc.DailySummaries(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(summaries)
	})
}
