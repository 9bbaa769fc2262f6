package enrollmentValidator

import (
	"strconv"
	"strings"
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

type EnrollRequest struct {
	CourseID uint `json:"courseId"`
}

func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(EnrollRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.CourseID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

// CheckAccessCourseID validates the :courseId path param
func CheckAccessCourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("courseId"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", uint(id))
		return c.Next()
	}
}

// EnrollmentID validates the :id path param
func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}
		c.Locals("enrollmentID", uint(id))
		return c.Next()
	}
}

type ProgressRequest struct {
	MaterialID         uint     `json:"materialId"`
	PercentageComplete *float64 `json:"percentageComplete"`
}

func UpdateProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.MaterialID == 0 && reqData.PercentageComplete == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

type ManualEnrollRequest struct {
	UserID        uint       `json:"userId"`
	CourseID      uint       `json:"courseId"`
	AccessGranted bool       `json:"accessGranted"`
	MarkPaid      bool       `json:"markPaid"`
	ExpiryDate    *time.Time `json:"expiryDate"`
}

func ManualEnroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ManualEnrollRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}
		if reqData.CourseID == 0 {
			errors["courseId"] = "Course ID is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedManualEnroll", reqData)
		return c.Next()
	}
}
