package adminRoutes

import (
	controllers "lms/controllers/admin"
	"lms/middleware"
	"lms/models"
	adminValidators "lms/validators/admin"
	userValidators "lms/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/users", controllers.ListUsers)
	adminGroup.Put("/users/:id/role", userValidators.UserID(), adminValidators.ChangeRole(), controllers.ChangeUserRole)
	adminGroup.Put("/users/:id/activate", userValidators.UserID(), adminValidators.ToggleActive(), controllers.ToggleUserActive)
	adminGroup.Delete("/users/:id", userValidators.UserID(), controllers.DeleteUser)
	adminGroup.Get("/dashboard", controllers.GetDashboardStats)
}
