package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/handlers"
	"github.com/pulsegym/gym_membership/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// The webhook must stay outside the auth chain and must receive the
	// raw body; signature verification replaces authentication here.
	api.Post("/payments/webhook", handlers.HandleStripeWebhook)

	payments := api.Group("/payments", middleware.Protected())
	payments.Post("/intent/:bookingId", handlers.CreatePaymentIntentHandler)
}
