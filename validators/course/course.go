package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	idStr := strings.TrimSpace(c.Params(name))
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// CourseID validates the :id path param
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		c.Locals("courseID", id)
		return c.Next()
	}
}

type CourseListQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Category string `query:"category"`
	Level    string `query:"level"`
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListQuery)

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			reqData.Limit = 10
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

type CreateCourseRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	Currency     string  `json:"currency"`
	Category     string  `json:"category"`
	Level        string  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	ThumbnailURL string  `json:"thumbnail_url"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Title":
					errors["title"] = "Title must be between 3 and 200 characters!"
				case "Price":
					errors["price"] = "Price must not be negative!"
				case "Level":
					errors["level"] = "Level must be BEGINNER, INTERMEDIATE or ADVANCED!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

type UpdateCourseRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price"`
	Category     string   `json:"category"`
	Level        string   `json:"level"`
	Status       string   `json:"status"`
	ThumbnailURL string   `json:"thumbnail_url"`
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.Price != nil && *reqData.Price < 0 {
			errors["price"] = "Price must not be negative!"
		}
		if reqData.Status != "" && reqData.Status != "DRAFT" && reqData.Status != "PUBLISHED" && reqData.Status != "ARCHIVED" {
			errors["status"] = "Status must be DRAFT, PUBLISHED or ARCHIVED!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateModuleRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"title": "Module title is required!"})
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// ModuleID validates the :moduleId path param
func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "moduleId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}
		c.Locals("moduleID", id)
		return c.Next()
	}
}

type CreateMaterialRequest struct {
	Title      string `json:"title" validate:"required,min=1,max=200"`
	Type       string `json:"type" validate:"omitempty,oneof=VIDEO PDF TEXT IMAGE"`
	URL        string `json:"url" validate:"required"`
	OrderIndex int    `json:"order_index"`
	IsPreview  bool   `json:"is_preview"`
}

func CreateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateMaterialRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Title":
					errors["title"] = "Material title is required!"
				case "Type":
					errors["type"] = "Type must be VIDEO, PDF, TEXT or IMAGE!"
				case "URL":
					errors["url"] = "Material URL is required!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		if reqData.Type == "" {
			reqData.Type = "VIDEO"
		}

		c.Locals("validatedMaterial", reqData)
		return c.Next()
	}
}

// MaterialID validates the :materialId path param
func MaterialID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "materialId")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Material ID!", nil)
		}
		c.Locals("materialID", id)
		return c.Next()
	}
}
