package enrollmentController

import (
	"strings"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	enrollmentValidator "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse creates a pending enrollment for the calling student.
// Payment is outstanding at this point, so no access is granted.
func EnrollInCourse(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedEnroll").(*enrollmentValidator.EnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ? AND status = ?", reqData.CourseID, false, models.CoursePublished).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	}

	// Check if user is already enrolled
	var existing models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, course.ID, false).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", existing)
	}

	enrollment := models.Enrollment{
		UserID:        user.ID,
		CourseID:      course.ID,
		PaymentStatus: models.PaymentPending,
		AccessGranted: false,
	}

	if err := db.Create(&enrollment).Error; err != nil {
		// The compound unique index is the backstop for racing requests
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrollment created. Please complete payment.", fiber.Map{
		"enrollment": enrollment,
		"course": fiber.Map{
			"id":    course.ID,
			"title": course.Title,
			"price": course.Price,
		},
	})
}

// GetMyEnrollments lists the caller's enrollments, optionally filtered by
// payment status
func GetMyEnrollments(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db.Where("user_id = ? AND is_deleted = ?", user.ID, false)

	if status := c.Query("status"); status != "" {
		db = db.Where("payment_status = ?", strings.ToUpper(status))
	}

	var enrollments []models.Enrollment
	if err := db.Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"count":       len(enrollments),
	})
}

// CheckCourseAccess reports whether the caller may view a course's content
func CheckCourseAccess(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	db := database.Database.Db

	// Admin and the instructor of record bypass the enrollment check
	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err == nil {
		if user.Role == models.RoleAdmin || course.InstructorID == user.ID {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Access check completed!", fiber.Map{
				"hasAccess": true,
				"enrolled":  false,
				"bypass":    true,
			})
		}
	}

	var enrollment models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, courseID, false).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "No enrollment found!", fiber.Map{
			"hasAccess": false,
			"enrolled":  false,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access check completed!", fiber.Map{
		"hasAccess":     enrollment.HasAccess(time.Now()),
		"enrolled":      true,
		"paymentStatus": enrollment.PaymentStatus,
		"accessGranted": enrollment.AccessGranted,
		"progress":      enrollment.Progress,
	})
}

// UpdateProgress records course progress for the owning student
func UpdateProgress(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData, ok := c.Locals("validatedProgress").(*enrollmentValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.UserID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to update this enrollment!", nil)
	}

	if !enrollment.HasAccess(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Payment required to access course content!", nil)
	}

	if reqData.MaterialID != 0 {
		var material models.Material
		if err := db.Where("id = ? AND course_id = ? AND is_deleted = ?", reqData.MaterialID, enrollment.CourseID, false).
			First(&material).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found in this course!", nil)
		}

		// Record the completion once
		var completion models.MaterialCompletion
		if err := db.Where("user_id = ? AND material_id = ? AND is_deleted = ?", user.ID, reqData.MaterialID, false).
			First(&completion).Error; err != nil {
			completion = models.MaterialCompletion{
				UserID:     user.ID,
				CourseID:   enrollment.CourseID,
				MaterialID: reqData.MaterialID,
			}
			if err := db.Create(&completion).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record completion!", nil)
			}
		}
	}

	if reqData.PercentageComplete != nil {
		pct := *reqData.PercentageComplete
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		enrollment.Progress = pct
	}

	now := time.Now()
	enrollment.LastAccessedAt = &now

	if err := db.Save(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", fiber.Map{
		"progress":       enrollment.Progress,
		"lastAccessedAt": enrollment.LastAccessedAt,
	})
}

// GetCourseEnrollments lists all enrollments for a course (instructor of
// record or admin)
func GetCourseEnrollments(c *fiber.Ctx) error {
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

	if user.Role != models.RoleAdmin && course.InstructorID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to view this course's enrollments!", nil)
	}

	var enrollments []models.Enrollment
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"count":       len(enrollments),
	})
}

// ManualEnroll creates or updates an enrollment directly, bypassing payment
// entirely (admin only)
func ManualEnroll(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedManualEnroll").(*enrollmentValidator.ManualEnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var student models.User
	if err := db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = ?", reqData.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	paymentStatus := models.PaymentPending
	if reqData.MarkPaid {
		paymentStatus = models.PaymentCompleted
	}

	var enrollment models.Enrollment
	err := db.Where("user_id = ? AND course_id = ?", reqData.UserID, reqData.CourseID).First(&enrollment).Error
	if err != nil {
		enrollment = models.Enrollment{
			UserID:        reqData.UserID,
			CourseID:      reqData.CourseID,
			PaymentStatus: paymentStatus,
			AccessGranted: reqData.AccessGranted,
			ExpiryDate:    reqData.ExpiryDate,
		}
		if err := db.Create(&enrollment).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll user!", nil)
		}
	} else {
		enrollment.PaymentStatus = paymentStatus
		enrollment.AccessGranted = reqData.AccessGranted
		enrollment.ExpiryDate = reqData.ExpiryDate
		enrollment.IsDeleted = false
		if err := db.Save(&enrollment).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update enrollment!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment saved successfully!", enrollment)
}

// RevokeAccess pulls a student's access on an enrollment (admin only)
func RevokeAccess(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	db := database.Database.Db

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	enrollment.AccessGranted = false
	if err := db.Save(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to revoke access!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access revoked successfully!", enrollment)
}
