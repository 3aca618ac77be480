package jobs

import (
	"log"
	"time"

	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
	"gorm.io/gorm"
)

// ExpireMemberships deactivates bookings whose end date has passed and
// clears the owners' current-membership pointers. An expired booking
// keeps its payment status; the term was consumed, not refunded.
func ExpireMemberships() {
	log.Println("Running job: ExpireMemberships...")

	var expired []models.Booking
	err := database.DB.
		Where("is_active = ? AND end_date < ?", true, time.Now()).
		Find(&expired).Error
	if err != nil {
		log.Printf("Error scanning for expired memberships: %v", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	for _, booking := range expired {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Booking{}).
				Where("id = ? AND is_active = ?", booking.ID, true).
				Update("is_active", false)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Cancelled concurrently, nothing left to do.
				return nil
			}

			return tx.Model(&models.User{}).
				Where("id = ? AND current_membership_id = ?", booking.UserID, booking.ID).
				Update("current_membership_id", nil).Error
		})
		if err != nil {
			log.Printf("Error expiring booking %s: %v", booking.BookingReference, err)
			continue
		}
		log.Printf("Expired membership booking %s", booking.BookingReference)
	}
}
