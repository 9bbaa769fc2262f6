package userRoutes

import (
	userControllers "lms/controllers/userControllers"
	"lms/middleware"
	userValidators "lms/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.LoadCurrentUser)

	userGroup.Get("/:id", userValidators.UserID(), userControllers.GetUser)
	userGroup.Put("/:id", userValidators.UserID(), userValidators.UpdateProfile(), userControllers.UpdateUser)
	userGroup.Delete("/:id", userValidators.UserID(), userControllers.DeleteUser)
}
