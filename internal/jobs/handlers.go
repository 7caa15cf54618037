package jobs

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultListLimit = 20

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/collect", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var req struct {
			Date string `json:"date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		day, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}

		job, err := svc.Enqueue(c.Context(), userID, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(job)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		limit, err := strconv.Atoi(c.Query("limit"))
		if err != nil || limit < 1 || limit > 100 {
			limit = defaultListLimit
		}

		list, err := svc.List(c.Context(), userID, limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		job, err := svc.Get(c.Context(), userID, c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "job not found")
		}
		return c.JSON(job)
	})
}
