package activity

import (
	"bytes"
	"errors"
	"time"

	"backend-pulsedash/internal/profile"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, profiles *profile.Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Activity
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		req.UserID, _ = c.Locals("user_id").(string)
		act, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(act)
	})

	r.Get("/day/:date", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		day, err := time.ParseInLocation(time.DateOnly, c.Params("date"), time.UTC)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		activities, err := svc.List(c.Context(), userID, day, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(activities)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := svc.Detail(c.Context(), userID, c.Params("id"), params)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "activity not found")
		}
		return c.JSON(detail)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Activity
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)
		act, err := svc.Update(c.Context(), userID, c.Params("id"), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(act)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := svc.Delete(c.Context(), userID, c.Params("id")); err != nil {
			if errors.Is(err, errNotManual) {
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/:id/note", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Note string `json:"note"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID, _ := c.Locals("user_id").(string)
		if err := svc.SetNote(c.Context(), userID, c.Params("id"), body.Note); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"note": body.Note})
	})

	r.Put("/:id/trimp-override", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Override *float64 `json:"override"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Override != nil && *body.Override < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "override must not be negative")
		}
		userID, _ := c.Locals("user_id").(string)
		if err := svc.SetTRIMPOverride(c.Context(), userID, c.Params("id"), body.Override); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"override": body.Override})
	})

	r.Post("/:id/series.csv", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		params, err := profiles.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		detail, err := svc.ImportCSV(c.Context(), userID, c.Params("id"), bytes.NewReader(c.Body()), params)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(detail)
	})

	r.Get("/:id/export.csv", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var buf bytes.Buffer
		if err := svc.ExportCSV(c.Context(), userID, c.Params("id"), &buf); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "activity not found")
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="heart_rate.csv"`)
		return c.Send(buf.Bytes())
	})
}
