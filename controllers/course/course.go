package courseController

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// isInstructorOrAdmin reports whether the caller bypasses the access policy
// for this course. The bypass is a property of the caller's role, not of
// any enrollment record.
func isInstructorOrAdmin(user models.User, course models.Course) bool {
	return user.Role == models.RoleAdmin || course.InstructorID == user.ID
}

// GetAllCourses lists published courses with optional category/level filters
func GetAllCourses(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourseList").(*courseValidator.CourseListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}

	db := database.Database.Db.Model(&models.Course{}).Where("is_deleted = ?", false)

	// Students only see the published catalog
	if user.Role == models.RoleStudent {
		db = db.Where("status = ?", models.CoursePublished)
	}

	if reqData.Category != "" {
		db = db.Where("category = ?", reqData.Category)
	}
	if reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
	}

	var total int64
	db.Count(&total)

	offset := (reqData.Page - 1) * reqData.Limit

	var courses []models.Course
	if err := db.Offset(offset).Limit(reqData.Limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails returns a single course
func GetCourseDetails(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.Status != models.CoursePublished && !isInstructorOrAdmin(user, course) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// GetCourseContent returns the course's modules and materials. Without
// access only preview materials are included.
func GetCourseContent(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	hasAccess := isInstructorOrAdmin(user, course)
	if !hasAccess {
		var enrollment models.Enrollment
		if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, courseID, false).
			First(&enrollment).Error; err == nil {
			hasAccess = enrollment.HasAccess(time.Now())
		}
	}

	var modules []models.CourseModule
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course content!", nil)
	}

	materialQuery := db.Where("course_id = ? AND is_deleted = ?", courseID, false)
	if !hasAccess {
		materialQuery = materialQuery.Where("is_preview = ?", true)
	}

	var materials []models.Material
	if err := materialQuery.Order("order_index asc").Find(&materials).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course content!", nil)
	}

	// Group materials under their modules
	byModule := make(map[uint][]models.Material)
	for _, m := range materials {
		byModule[m.ModuleID] = append(byModule[m.ModuleID], m)
	}

	content := make([]fiber.Map, 0, len(modules))
	for _, mod := range modules {
		content = append(content, fiber.Map{
			"module":    mod,
			"materials": byModule[mod.ID],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", fiber.Map{
		"course":    course,
		"hasAccess": hasAccess,
		"content":   content,
	})
}
