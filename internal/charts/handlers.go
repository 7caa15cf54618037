package charts

import (
	"bytes"
	"io"
	"time"

	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/calendar"
	"backend-pulsedash/internal/profile"
	"backend-pulsedash/internal/vitals"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, days *vitals.Service, activities *activity.Service, profiles *profile.Service, authMiddleware fiber.Handler) {
	dayChart := func(c *fiber.Ctx, build func(day time.Time, detail vitals.DayDetail) interface{ Render(io.Writer) error }) error {
		userID, _ := c.Locals("user_id").(string)
		day, err := time.ParseInLocation(time.DateOnly, c.Params("date"), time.UTC)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := days.Day(c.Context(), userID, day, params)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no data for day")
		}
		return renderChart(c, build(day, detail))
	}

	r.Get("/days/:date/heart-rate", authMiddleware, func(c *fiber.Ctx) error {
		return dayChart(c, func(day time.Time, detail vitals.DayDetail) interface{ Render(io.Writer) error } {
			return DailyHeartRateLine(day, detail.HeartRate)
		})
	})

	r.Get("/days/:date/spo2", authMiddleware, func(c *fiber.Ctx) error {
		return dayChart(c, func(day time.Time, detail vitals.DayDetail) interface{ Render(io.Writer) error } {
			return DailySpO2Line(day, detail.SpO2)
		})
	})

	r.Get("/days/:date/breathing", authMiddleware, func(c *fiber.Ctx) error {
		return dayChart(c, func(day time.Time, detail vitals.DayDetail) interface{ Render(io.Writer) error } {
			return DailyBreathingLine(day, detail.Breathing)
		})
	})

	r.Get("/days/:date/zones", authMiddleware, func(c *fiber.Ctx) error {
		return dayChart(c, func(day time.Time, detail vitals.DayDetail) interface{ Render(io.Writer) error } {
			return ZoneDistributionBar(day, detail.Analysis)
		})
	})

	r.Get("/periods/:period/trimp", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		p, ok := calendar.ParsePeriod(c.Params("period"))
		if !ok || !p.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "period must be YYYY-MM-DD-YYYY-MM-DD")
		}
		summaries, err := days.PeriodSummaries(c.Context(), userID, p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return renderChart(c, PeriodTRIMPBar(p, summaries))
	})

	r.Get("/activities/:id/heart-rate", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := activities.Detail(c.Context(), userID, c.Params("id"), params)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "activity not found")
		}
		chart := ActivityHeartRateLine(detail.Name, detail.StartedAt, detail.HeartRatePoints, detail.TickIntervalMin)
		return renderChart(c, chart)
	})
}

func renderChart(c *fiber.Ctx, chart interface{ Render(io.Writer) error }) error {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
