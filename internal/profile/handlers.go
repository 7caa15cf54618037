package profile

import (
	"backend-pulsedash/internal/trimp"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/hr-params", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		params, err := svc.Params(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(params)
	})

	r.Put("/hr-params", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req trimp.Params
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.RestingHR <= 0 || req.MaxHR <= req.RestingHR {
			return fiber.NewError(fiber.StatusBadRequest, "max_hr must exceed resting_hr and both must be positive")
		}
		params, err := svc.SetParams(c.Context(), userID, req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(params)
	})
}
