package database

import (
	"fmt"
	"log"

	config "github.com/pulsegym/gym_membership/configs"
	"github.com/pulsegym/gym_membership/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Membership{},
		&models.Service{},
		&models.Trainer{},
		&models.CustomPackage{},
		&models.PackageItem{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedMemberships inserts the standard rate table when it is empty. The
// rates can be edited later through the admin membership endpoints.
func SeedMemberships() {
	var count int64
	if err := DB.Model(&models.Membership{}).Count(&count).Error; err != nil {
		log.Fatalf("🔥 Failed to check membership rate table: %v", err)
		return
	}
	if count > 0 {
		return
	}

	tiers := []models.Membership{
		{
			Name: "Basic", Type: "basic",
			PriceMonthly: 29.99, PriceQuarterly: 80.99, PriceAnnual: 305.99,
			Features: []string{"Gym floor access", "Locker room"},
		},
		{
			Name: "Premium", Type: "premium",
			PriceMonthly: 49.99, PriceQuarterly: 134.99, PriceAnnual: 509.99,
			Features: []string{"Gym floor access", "Group classes", "Sauna"},
		},
		{
			Name: "Elite", Type: "elite",
			PriceMonthly: 79.99, PriceQuarterly: 215.99, PriceAnnual: 815.99,
			Features: []string{"All premium features", "Personal trainer sessions", "Nutrition plan"},
		},
	}

	if err := DB.Create(&tiers).Error; err != nil {
		log.Fatalf("🔥 Failed to seed membership rate table: %v", err)
		return
	}
	log.Println("✅ Membership rate table seeded successfully")
}
