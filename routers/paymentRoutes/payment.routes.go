package paymentRoutes

import (
	controllers "lms/controllers/payment"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payment")

	// Signed gateway callback, no bearer auth
	paymentGroup.Post("/webhook", controllers.HandleWebhook)

	paymentGroup.Post("/initiate", middleware.JWTMiddleware, middleware.LoadCurrentUser, validators.Initiate(), controllers.InitiatePayment)
	paymentGroup.Get("/history", middleware.JWTMiddleware, middleware.LoadCurrentUser, controllers.GetPaymentHistory)
	paymentGroup.Get("/list", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), validators.List(), controllers.ListAllPayments)
	paymentGroup.Get("/:id", middleware.JWTMiddleware, middleware.LoadCurrentUser, validators.PaymentID(), controllers.GetPayment)

	// Admin transitions
	paymentGroup.Put("/:id/approve", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), validators.PaymentID(), controllers.ApprovePayment)
	paymentGroup.Put("/:id/reject", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), validators.PaymentID(), controllers.RejectPayment)
	paymentGroup.Put("/:id/refund", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), validators.PaymentID(), controllers.RefundPayment)
}
