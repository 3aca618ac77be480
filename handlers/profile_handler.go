package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
)

// GetMe returns the caller's profile with the current membership for
// dashboard gating and the full booking history for the profile view.
func GetMe(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var user models.User
	if err := database.DB.Preload("CurrentMembership.CustomPackage.Items").First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var history []models.Booking
	database.DB.
		Preload("CustomPackage.Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&history)

	return c.JSON(fiber.Map{"user": user, "membership_history": history})
}
