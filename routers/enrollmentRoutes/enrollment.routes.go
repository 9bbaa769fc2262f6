package enrollmentRoutes

import (
	controllers "lms/controllers/enrollment"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App) {
	enrollGroup := app.Group("/enrollment", middleware.JWTMiddleware)

	enrollGroup.Post("/", middleware.LoadCurrentUser, validators.EnrollCourse(), controllers.EnrollInCourse)
	enrollGroup.Get("/my-courses", middleware.LoadCurrentUser, controllers.GetMyEnrollments)
	enrollGroup.Get("/check-access/:courseId", middleware.LoadCurrentUser, validators.CheckAccessCourseID(), controllers.CheckCourseAccess)
	enrollGroup.Put("/:id/progress", middleware.LoadCurrentUser, validators.EnrollmentID(), validators.UpdateProgress(), controllers.UpdateProgress)

	// Rosters for instructors and admins
	enrollGroup.Get("/course/:courseId", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), validators.CheckAccessCourseID(), controllers.GetCourseEnrollments)

	// Admin-only grant/revoke, bypassing payment
	enrollGroup.Post("/manual", middleware.RequireRole(models.RoleAdmin), validators.ManualEnroll(), controllers.ManualEnroll)
	enrollGroup.Put("/:id/revoke", middleware.RequireRole(models.RoleAdmin), validators.EnrollmentID(), controllers.RevokeAccess)
}
