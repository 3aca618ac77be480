package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/handlers"
	"github.com/pulsegym/gym_membership/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Get("/reference/:reference", handlers.GetBookingByReference)
	booking.Get("/:bookingId", handlers.GetBooking)
	booking.Delete("/:bookingId", handlers.CancelBooking)
	booking.Post("/:bookingId/request-cancellation", handlers.RequestCancellation)
}
