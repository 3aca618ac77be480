package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
)

type ServiceRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

func ListServices(c *fiber.Ctx) error {
	var services []models.Service
	database.DB.Where("is_active = ?", true).Order("category, name").Find(&services)
	return c.JSON(services)
}

func CreateService(c *fiber.Ctx) error {
	var req ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	}
	if err := database.DB.Create(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create service"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Service created successfully", "service": service})
}

func UpdateService(c *fiber.Ctx) error {
	var service models.Service
	if err := database.DB.First(&service, "id = ?", c.Params("serviceId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}

	var req ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	service.Name = req.Name
	service.Description = req.Description
	service.Category = req.Category
	service.Price = req.Price
	if err := database.DB.Save(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update service"})
	}

	return c.JSON(fiber.Map{"message": "Service updated successfully", "service": service})
}

func DeleteService(c *fiber.Ctx) error {
	result := database.DB.Model(&models.Service{}).Where("id = ?", c.Params("serviceId")).Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete service"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}

	return c.JSON(fiber.Map{"message": "Service deleted successfully"})
}

type TrainerRequest struct {
	Name           string   `json:"name" validate:"required,min=2"`
	Specialization string   `json:"specialization"`
	Image          string   `json:"image"`
	Experience     int      `json:"experience" validate:"min=0"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	Bio            string   `json:"bio"`
	Description    string   `json:"description"`
	Qualifications []string `json:"qualifications"`
	Availability   []string `json:"availability"`
}

func ListTrainers(c *fiber.Ctx) error {
	var trainers []models.Trainer
	database.DB.Where("is_active = ?", true).Order("name").Find(&trainers)
	return c.JSON(trainers)
}

func GetTrainer(c *fiber.Ctx) error {
	var trainer models.Trainer
	if err := database.DB.First(&trainer, "id = ?", c.Params("trainerId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
	}
	return c.JSON(trainer)
}

func CreateTrainer(c *fiber.Ctx) error {
	var req TrainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trainer := models.Trainer{
		Name:           req.Name,
		Specialization: req.Specialization,
		Image:          req.Image,
		Experience:     req.Experience,
		Price:          req.Price,
		Bio:            req.Bio,
		Description:    req.Description,
		Qualifications: req.Qualifications,
		Availability:   req.Availability,
	}
	if err := database.DB.Create(&trainer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create trainer"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Trainer created successfully", "trainer": trainer})
}

func UpdateTrainer(c *fiber.Ctx) error {
	var trainer models.Trainer
	if err := database.DB.First(&trainer, "id = ?", c.Params("trainerId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
	}

	var req TrainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	trainer.Name = req.Name
	trainer.Specialization = req.Specialization
	trainer.Image = req.Image
	trainer.Experience = req.Experience
	trainer.Price = req.Price
	trainer.Bio = req.Bio
	trainer.Description = req.Description
	trainer.Qualifications = req.Qualifications
	trainer.Availability = req.Availability
	if err := database.DB.Save(&trainer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update trainer"})
	}

	return c.JSON(fiber.Map{"message": "Trainer updated successfully", "trainer": trainer})
}

func DeleteTrainer(c *fiber.Ctx) error {
	result := database.DB.Model(&models.Trainer{}).Where("id = ?", c.Params("trainerId")).Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete trainer"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Trainer not found"})
	}

	return c.JSON(fiber.Map{"message": "Trainer deleted successfully"})
}
