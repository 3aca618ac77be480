package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/handlers"
	"github.com/pulsegym/gym_membership/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard/insights", handlers.GetDashboardInsights)

	admin.Get("/bookings", handlers.AdminGetAllBookings)
	admin.Get("/bookings/pending-cancellations", handlers.GetPendingCancellations)
	admin.Patch("/bookings/:bookingId/cancellation", handlers.HandleCancellationRequest)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Get("/:userId", handlers.GetUserDetails)
	users.Patch("/:userId/role", handlers.UpdateUserRole)

	memberships := admin.Group("/memberships")
	memberships.Post("", handlers.CreateMembership)
	memberships.Put("/:membershipId", handlers.UpdateMembership)
	memberships.Delete("/:membershipId", handlers.DeleteMembership)

	services := admin.Group("/services")
	services.Post("", handlers.CreateService)
	services.Put("/:serviceId", handlers.UpdateService)
	services.Delete("/:serviceId", handlers.DeleteService)

	trainers := admin.Group("/trainers")
	trainers.Post("", handlers.CreateTrainer)
	trainers.Put("/:trainerId", handlers.UpdateTrainer)
	trainers.Delete("/:trainerId", handlers.DeleteTrainer)

	reports := admin.Group("/reports")
	reports.Get("/transactions", handlers.GenerateTransactionReport)
}
