package paymentValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

type InitiateRequest struct {
	CourseID *uint                  `json:"courseId"` // nil = course-independent payment
	Amount   float64                `json:"amount"`
	Currency string                 `json:"currency"`
	Method   string                 `json:"method"`
	Metadata map[string]interface{} `json:"metadata"`
}

func Initiate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(InitiateRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Method == "" {
			reqData.Method = "visa_card"
		}

		// Amount comes from the course when one is referenced
		if reqData.CourseID == nil && reqData.Amount <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Amount must be greater than zero!", nil)
		}

		c.Locals("validatedInitiate", reqData)
		return c.Next()
	}
}

// PaymentID validates the :id path param
func PaymentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Payment ID!", nil)
		}
		c.Locals("paymentID", uint(id))
		return c.Next()
	}
}

type ListQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Status string `query:"status"`
	Method string `query:"method"`
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListQuery)

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			reqData.Limit = 20
		}

		c.Locals("validatedPaymentList", reqData)
		return c.Next()
	}
}
