package tracking

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"backend-peaktrack/internal/location"
)

type startRequest struct {
	Authorization location.AuthStatus `json:"authorization"`
}

func RegisterRoutes(r fiber.Router, rec *Recorder, authMiddleware fiber.Handler) {
	r.Post("/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix location.Fix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		rec.Deliver(fix)
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := rec.Start(req.Authorization); err != nil {
			if errors.Is(err, ErrNotAuthorized) {
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rec.Status())
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		rec.Stop()
		return c.JSON(rec.Status())
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(rec.Status())
	})
}

// RegisterExtremesRoutes exposes the current extrema snapshot. Before the
// first observed sample the endpoint reports no data instead of sentinels.
func RegisterExtremesRoutes(r fiber.Router, rec *Recorder) {
	r.Get("/", func(c *fiber.Ctx) error {
		snapshot, ok, err := rec.Extremes(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if !ok {
			return c.JSON(fiber.Map{"initialized": false})
		}
		return c.JSON(fiber.Map{"initialized": true, "extremes": snapshot})
	})
}
