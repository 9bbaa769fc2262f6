package adminValidator

import (
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

func ChangeRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangeRoleRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		switch reqData.Role {
		case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
		default:
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Role must be STUDENT, TEACHER or ADMIN!", nil)
		}

		c.Locals("validatedChangeRole", reqData)
		return c.Next()
	}
}

type ToggleActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

func ToggleActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ToggleActiveRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.IsActive == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "isActive is required!", nil)
		}

		c.Locals("validatedToggleActive", reqData)
		return c.Next()
	}
}
