package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/memberships", handlers.ListMemberships)
	api.Get("/memberships/:type", handlers.GetMembershipByType)
	api.Get("/services", handlers.ListServices)
	api.Get("/trainers", handlers.ListTrainers)
	api.Get("/trainers/:trainerId", handlers.GetTrainer)
}
