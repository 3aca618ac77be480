package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
	"gorm.io/gorm"
)

type MembershipRequest struct {
	Name           string   `json:"name" validate:"required,min=2"`
	Type           string   `json:"type" validate:"required,oneof=basic premium elite"`
	PriceMonthly   float64  `json:"price_monthly" validate:"required,gt=0"`
	PriceQuarterly float64  `json:"price_quarterly" validate:"required,gt=0"`
	PriceAnnual    float64  `json:"price_annual" validate:"required,gt=0"`
	Features       []string `json:"features"`
}

func ListMemberships(c *fiber.Ctx) error {
	var memberships []models.Membership
	database.DB.Where("is_active = ?", true).Find(&memberships)
	return c.JSON(memberships)
}

func GetMembershipByType(c *fiber.Ctx) error {
	var membership models.Membership
	if err := database.DB.First(&membership, "type = ? AND is_active = ?", c.Params("type"), true).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Membership not found"})
	}
	return c.JSON(membership)
}

func CreateMembership(c *fiber.Ctx) error {
	var req MembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	membership := models.Membership{
		Name:           req.Name,
		Type:           req.Type,
		PriceMonthly:   req.PriceMonthly,
		PriceQuarterly: req.PriceQuarterly,
		PriceAnnual:    req.PriceAnnual,
		Features:       req.Features,
	}
	if err := database.DB.Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Membership type already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create membership"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Membership created successfully", "membership": membership})
}

func UpdateMembership(c *fiber.Ctx) error {
	var membership models.Membership
	if err := database.DB.First(&membership, "id = ?", c.Params("membershipId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Membership not found"})
	}

	var req MembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	membership.Name = req.Name
	membership.Type = req.Type
	membership.PriceMonthly = req.PriceMonthly
	membership.PriceQuarterly = req.PriceQuarterly
	membership.PriceAnnual = req.PriceAnnual
	membership.Features = req.Features
	if err := database.DB.Save(&membership).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update membership"})
	}

	return c.JSON(fiber.Map{"message": "Membership updated successfully", "membership": membership})
}

func DeleteMembership(c *fiber.Ctx) error {
	result := database.DB.Model(&models.Membership{}).Where("id = ?", c.Params("membershipId")).Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete membership"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Membership not found"})
	}

	return c.JSON(fiber.Map{"message": "Membership deleted successfully"})
}
