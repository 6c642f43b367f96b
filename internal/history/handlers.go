package history

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"backend-peaktrack/internal/store"
)

func RegisterRoutes(r fiber.Router, f *Fetcher) {
	r.Get("/", func(c *fiber.Ctx) error {
		var cutoff *time.Time
		if since := c.Query("since"); since != "" {
			ts, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "since must be RFC3339")
			}
			cutoff = &ts
		}

		records, err := f.FetchSince(c.Context(), cutoff)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if records == nil {
			records = []store.LocationRecord{}
		}
		return c.JSON(fiber.Map{
			"count":   len(records),
			"records": records,
		})
	})
}
