package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up catalog and authoring routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course", middleware.JWTMiddleware)

	// Catalog (published courses for students)
	courseGroup.Get("/list", middleware.LoadCurrentUser, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.LoadCurrentUser, validators.CourseID(), controllers.GetCourseDetails)

	// Content viewing (access-gated, previews always visible)
	courseGroup.Get("/:id/content", middleware.LoadCurrentUser, validators.CourseID(), controllers.GetCourseContent)

	// Authoring (teacher/admin)
	courseGroup.Post("/", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Put("/:id", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Put("/:id/publish", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.CourseID(), controllers.PublishCourse)
	courseGroup.Delete("/:id", middleware.RequireRole(models.RoleAdmin), validators.CourseID(), controllers.DeleteCourse)

	// Modules and materials
	courseGroup.Post("/:id/module", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.CourseID(), validators.CreateModule(), controllers.CreateModule)
	courseGroup.Delete("/module/:moduleId", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.ModuleID(), controllers.DeleteModule)
	courseGroup.Post("/module/:moduleId/material", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.ModuleID(), validators.CreateMaterial(), controllers.CreateMaterial)
	courseGroup.Delete("/material/:materialId", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.MaterialID(), controllers.DeleteMaterial)
}
