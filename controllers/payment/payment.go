package paymentController

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/services/payments"
	"lms/utils"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// InitiatePayment creates a checkout session and a pending ledger entry
func InitiatePayment(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedInitiate").(*paymentValidator.InitiateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	method, err := payments.NormalizeMethod(reqData.Method)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			"Unsupported payment method. Use one of: "+strings.Join(payments.SupportedMethods, ", "), nil)
	}

	amount := reqData.Amount
	currency := reqData.Currency
	if currency == "" {
		currency = config.AppConfig.DefaultCurrency
	}

	// Course purchases take their amount from the catalog
	if reqData.CourseID != nil {
		var course models.Course
		if err := db.Where("id = ? AND is_deleted = ? AND status = ?", *reqData.CourseID, false, models.CoursePublished).
			First(&course).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
		}

		var existing models.Enrollment
		if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, course.ID, false).
			First(&existing).Error; err == nil && existing.PaymentStatus == models.PaymentCompleted {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Already purchased this course!", nil)
		}

		amount = course.Price
		if course.Currency != "" {
			currency = course.Currency
		}
	}

	if amount <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Amount must be greater than zero!", nil)
	}

	session, err := payments.CreateSession(amount, currency, method, user.ID, user.Email, user.Name, reqData.Metadata)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	var metadataJSON datatypes.JSON
	if reqData.Metadata != nil {
		if raw, err := json.Marshal(reqData.Metadata); err == nil {
			metadataJSON = datatypes.JSON(raw)
		}
	}

	payment := models.Payment{
		UserID:    user.ID,
		CourseID:  reqData.CourseID,
		Amount:    amount,
		Currency:  currency,
		Method:    session.Method,
		Provider:  session.Provider,
		Reference: session.Reference,
		Status:    models.PaymentPending,
		Metadata:  metadataJSON,
	}

	if err := db.Create(&payment).Error; err != nil {
		log.Printf("Error saving payment: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to initiate payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment initiated!", fiber.Map{
		"reference":   payment.Reference,
		"amount":      payment.Amount,
		"currency":    payment.Currency,
		"status":      payment.Status,
		"method":      payment.Method,
		"provider":    payment.Provider,
		"checkoutUrl": session.CheckoutURL,
	})
}

type webhookPayload struct {
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Provider  string  `json:"provider"`
}

// HandleWebhook processes a signed gateway callback. Once the signature is
// valid and the event recognized it always answers 200, including for
// business-logic no-ops, so the gateway does not retry forever.
func HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()

	signature := c.Get("X-Webhook-Signature")
	if !payments.VerifySignature(rawBody, signature) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid webhook signature!", nil)
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Malformed webhook payload!", nil)
	}
	if payload.Reference == "" || payload.Status == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing reference or status!", nil)
	}

	newStatus, err := payments.StatusFromWebhook(payload.Status)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown payment status!", nil)
	}

	db := database.Database.Db

	var payment models.Payment
	if err := db.Where("reference = ?", payload.Reference).First(&payment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}

	// Provider corrections ride along with the status
	if payload.Amount > 0 {
		payment.Amount = payload.Amount
	}
	if payload.Currency != "" {
		payment.Currency = payload.Currency
	}
	if payload.Provider != "" {
		payment.Provider = payload.Provider
	}

	err = payments.ApplyStatus(db, &payment, newStatus, rawBody)
	if errors.Is(err, payments.ErrAlreadyProcessed) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already processed!", fiber.Map{"status": payment.Status})
	}
	if errors.Is(err, payments.ErrInvalidTransition) {
		// Recognized but stale event; acknowledge without mutating
		log.Printf("[PAYMENT-WEBHOOK] Ignoring %s for payment %s in status %s", payload.Status, payment.Reference, payment.Status)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event ignored!", fiber.Map{"status": payment.Status})
	}
	if err != nil {
		log.Printf("[PAYMENT-WEBHOOK] Error processing %s: %v", payment.Reference, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Webhook processing failed!", nil)
	}

	if newStatus == models.PaymentCompleted {
		go sendCompletionEmails(payment)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webhook processed!", fiber.Map{"status": payment.Status})
}

func sendCompletionEmails(payment models.Payment) {
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ?", payment.UserID).First(&user).Error; err != nil {
		return
	}

	utils.SendPaymentReceiptEmail(user.Email, user.Name, payment.Reference, payment.Amount, payment.Currency)

	if payment.CourseID != nil {
		var course models.Course
		if err := db.Where("id = ?", *payment.CourseID).First(&course).Error; err == nil {
			utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
		}
	}
}

// GetPaymentHistory returns the caller's payment attempts
func GetPaymentHistory(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var records []models.Payment
	if err := database.Database.Db.Where("user_id = ?", user.ID).
		Order("created_at desc").Find(&records).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment history fetched!", fiber.Map{
		"payments": records,
		"count":    len(records),
	})
}

// GetPayment returns one payment (owner or admin)
func GetPayment(c *fiber.Ctx) error {
	user, ok := c.Locals("currentUser").(models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	paymentID := c.Locals("paymentID").(uint)

	var payment models.Payment
	if err := database.Database.Db.Where("id = ?", paymentID).First(&payment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}

	if payment.UserID != user.ID && user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized to view this payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment fetched!", payment)
}

// ListAllPayments lists the ledger with filters and pagination (admin)
func ListAllPayments(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPaymentList").(*paymentValidator.ListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}

	db := database.Database.Db.Model(&models.Payment{})

	if reqData.Status != "" {
		db = db.Where("status = ?", strings.ToUpper(reqData.Status))
	}
	if reqData.Method != "" {
		method, err := payments.NormalizeMethod(reqData.Method)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unsupported payment method!", nil)
		}
		db = db.Where("method = ?", method)
	}

	var total int64
	db.Count(&total)

	offset := (reqData.Page - 1) * reqData.Limit

	var records []models.Payment
	if err := db.Offset(offset).Limit(reqData.Limit).Order("created_at desc").Find(&records).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched!", fiber.Map{
		"payments": records,
		"pagination": fiber.Map{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	})
}

// applyAdminTransition is the shared path for approve/reject/refund
func applyAdminTransition(c *fiber.Ctx, newStatus, successMessage string) error {
	paymentID := c.Locals("paymentID").(uint)
	db := database.Database.Db

	var payment models.Payment
	if err := db.Where("id = ?", paymentID).First(&payment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}

	err := payments.ApplyStatus(db, &payment, newStatus, nil)
	if errors.Is(err, payments.ErrAlreadyProcessed) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			fmt.Sprintf("Payment is already %s!", strings.ToLower(payment.Status)), nil)
	}
	if errors.Is(err, payments.ErrInvalidTransition) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			fmt.Sprintf("Cannot move payment from %s to %s!", payment.Status, newStatus), nil)
	}
	if err != nil {
		log.Printf("Error applying payment transition: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update payment!", nil)
	}

	if newStatus == models.PaymentCompleted {
		go sendCompletionEmails(payment)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, successMessage, payment)
}

// ApprovePayment marks a pending/under-review payment completed (admin)
func ApprovePayment(c *fiber.Ctx) error {
	return applyAdminTransition(c, models.PaymentCompleted, "Payment approved!")
}

// RejectPayment marks a pending/under-review payment failed (admin)
func RejectPayment(c *fiber.Ctx) error {
	return applyAdminTransition(c, models.PaymentFailed, "Payment rejected!")
}

// RefundPayment refunds a completed payment and revokes course access (admin)
func RefundPayment(c *fiber.Ctx) error {
	return applyAdminTransition(c, models.PaymentRefunded, "Payment refunded!")
}
