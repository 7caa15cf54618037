package vitals

import (
	"time"

	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/profile"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, profiles *profile.Service, authMiddleware fiber.Handler) {
	r.Get("/days/:date", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		day, err := time.ParseInLocation(time.DateOnly, c.Params("date"), time.UTC)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := svc.Day(c.Context(), userID, day, params)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no data for day")
		}
		return c.JSON(detail)
	})

	r.Get("/days/:date/summary", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		day, err := time.ParseInLocation(time.DateOnly, c.Params("date"), time.UTC)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := svc.Day(c.Context(), userID, day, params)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no data for day")
		}
		return c.JSON(DayAnalysis{TRIMP: detail.Analysis, SpO2: detail.SpO2Stats})
	})

	r.Put("/days/:date", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		day, err := time.ParseInLocation(time.DateOnly, c.Params("date"), time.UTC)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		var raw RawDay
		if err := c.BodyParser(&raw); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := svc.SaveDay(c.Context(), userID, day, raw, params)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(detail)
	})

	r.Get("/periods/:period/summaries", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		period, ok := calendar.ParsePeriod(c.Params("period"))
		if !ok || !period.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "period must be a Monday-to-Sunday two-week range")
		}
		summaries, err := svc.PeriodSummaries(c.Context(), userID, period)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(summaries)
	})
}
