package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
	"gorm.io/gorm"
)

type PackageItemRequest struct {
	ServiceID string  `json:"service_id" validate:"required,uuid"`
	Name      string  `json:"name" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"required,gt=0"`
}

type CustomPackageRequest struct {
	Items []PackageItemRequest `json:"items" validate:"required,min=1,dive"`
}

func buildPackageItems(packageID uuid.UUID, items []PackageItemRequest) []models.PackageItem {
	built := make([]models.PackageItem, 0, len(items))
	for _, item := range items {
		serviceID, _ := uuid.Parse(item.ServiceID)
		built = append(built, models.PackageItem{
			CustomPackageID: packageID,
			ServiceID:       serviceID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			Price:           item.Price,
		})
	}
	return built
}

func CreateCustomPackage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req CustomPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	customPackage := models.CustomPackage{UserID: userID}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customPackage).Error; err != nil {
			return err
		}

		customPackage.Items = buildPackageItems(customPackage.ID, req.Items)
		if err := tx.Create(&customPackage.Items).Error; err != nil {
			return err
		}

		customPackage.TotalPrice = customPackage.ComputeTotalPrice()
		return tx.Model(&customPackage).Update("total_price", customPackage.TotalPrice).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create custom package"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Custom package created successfully",
		"custom_package": customPackage,
	})
}

func GetMyCustomPackages(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var customPackages []models.CustomPackage
	database.DB.
		Preload("Items").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&customPackages)

	return c.JSON(customPackages)
}

func GetCustomPackage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var customPackage models.CustomPackage
	if err := database.DB.Preload("Items").First(&customPackage, "id = ?", c.Params("packageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Custom package not found"})
	}

	if customPackage.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this package"})
	}

	return c.JSON(customPackage)
}

func UpdateCustomPackage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req CustomPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var customPackage models.CustomPackage
	if err := database.DB.First(&customPackage, "id = ?", c.Params("packageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Custom package not found"})
	}
	if customPackage.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to update this package"})
	}

	// TotalPrice is recomputed with the items in the same transaction so
	// it never drifts from them.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("custom_package_id = ?", customPackage.ID).Delete(&models.PackageItem{}).Error; err != nil {
			return err
		}

		customPackage.Items = buildPackageItems(customPackage.ID, req.Items)
		if err := tx.Create(&customPackage.Items).Error; err != nil {
			return err
		}

		customPackage.TotalPrice = customPackage.ComputeTotalPrice()
		return tx.Model(&customPackage).Update("total_price", customPackage.TotalPrice).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update custom package"})
	}

	return c.JSON(fiber.Map{
		"message":        "Custom package updated successfully",
		"custom_package": customPackage,
	})
}

func DeleteCustomPackage(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var customPackage models.CustomPackage
	if err := database.DB.First(&customPackage, "id = ?", c.Params("packageId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Custom package not found"})
	}
	if customPackage.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to delete this package"})
	}

	if err := database.DB.Model(&customPackage).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete custom package"})
	}

	return c.JSON(fiber.Map{"message": "Custom package deleted successfully"})
}
