package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/handlers"
	"github.com/pulsegym/gym_membership/middleware"
)

func CustomPackageRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	packages := api.Group("/custom-packages", middleware.Protected())
	packages.Post("", handlers.CreateCustomPackage)
	packages.Get("/me", handlers.GetMyCustomPackages)
	packages.Get("/:packageId", handlers.GetCustomPackage)
	packages.Put("/:packageId", handlers.UpdateCustomPackage)
	packages.Delete("/:packageId", handlers.DeleteCustomPackage)
}
