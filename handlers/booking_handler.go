package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
	"github.com/pulsegym/gym_membership/notifications"
	"github.com/pulsegym/gym_membership/payments"
	"github.com/pulsegym/gym_membership/services"
	"github.com/pulsegym/gym_membership/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errActiveMembership = errors.New("user already has an active membership")
	errStaleBooking     = errors.New("booking was modified concurrently")
)

type CreateBookingRequest struct {
	PackageType     string   `json:"package_type" validate:"required,oneof=basic premium elite custom"`
	CustomPackageID *string  `json:"custom_package_id,omitempty" validate:"omitempty,uuid"`
	PreferredTime   string   `json:"preferred_time" validate:"required"`
	PaymentOption   string   `json:"payment_option" validate:"required,oneof=1month 3month 1year"`
	Amount          *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	StartDate       *string  `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func CreateBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var customPackage *models.CustomPackage
	if req.PackageType == "custom" {
		if req.CustomPackageID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "custom_package_id is required for custom packages"})
		}
		packageID, _ := uuid.Parse(*req.CustomPackageID)

		var cp models.CustomPackage
		if err := database.DB.First(&cp, "id = ? AND is_active = ?", packageID, true).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Custom package not found"})
		}
		if cp.UserID != userID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Custom package not found or not owned by user"})
		}
		customPackage = &cp
	}

	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	} else if req.PackageType == "custom" {
		amount = services.ResolveCustomAmount(customPackage.TotalPrice, req.PaymentOption)
	} else {
		var membership models.Membership
		if err := database.DB.First(&membership, "type = ? AND is_active = ?", req.PackageType, true).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Membership not found"})
		}
		resolved, err := services.ResolveStandardAmount(&membership, req.PaymentOption)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		amount = resolved
	}

	startDate := time.Now()
	if req.StartDate != nil {
		startDate, _ = time.Parse("2006-01-02", *req.StartDate)
	}
	endDate := services.CalculateEndDate(startDate, req.PaymentOption)

	var booking models.Booking
	var err error

	// The reference pre-check races with concurrent inserts; the unique
	// index is the real arbiter, so one retry on a duplicate key.
	for attempt := 0; attempt < 2; attempt++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var user models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
				return err
			}

			var activeCount int64
			if err := tx.Model(&models.Booking{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&activeCount).Error; err != nil {
				return err
			}
			if activeCount > 0 {
				return errActiveMembership
			}

			reference, err := utils.GenerateBookingReference(func(ref string) (bool, error) {
				var count int64
				if err := tx.Model(&models.Booking{}).Where("booking_reference = ?", ref).Count(&count).Error; err != nil {
					return false, err
				}
				return count > 0, nil
			})
			if err != nil {
				return err
			}

			booking = models.Booking{
				UserID:           userID,
				PackageType:      req.PackageType,
				PreferredTime:    req.PreferredTime,
				PaymentOption:    req.PaymentOption,
				Amount:           amount,
				PaymentStatus:    "pending",
				BookingReference: reference,
				StartDate:        startDate,
				EndDate:          endDate,
			}
			if customPackage != nil {
				booking.CustomPackageID = &customPackage.ID
			}
			if err := tx.Create(&booking).Error; err != nil {
				return err
			}

			user.CurrentMembershipID = &booking.ID
			return tx.Save(&user).Error
		})

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		log.Printf("Booking reference collision on insert, retrying (attempt %d)", attempt+1)
	}

	if err != nil {
		if errors.Is(err, errActiveMembership) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already have an active membership"})
		}
		if errors.Is(err, utils.ErrReferenceExhausted) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not allocate a booking reference, please try again"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	go func() {
		var user models.User
		if database.DB.First(&user, "id = ?", userID).Error == nil {
			notifications.SendEmail(user.FullName, user.Email, "Your Booking is Reserved",
				fmt.Sprintf("<h1>Booking %s</h1><p>Your membership is reserved and awaiting payment. Complete the payment to activate it.</p>", booking.BookingReference))
		}
	}()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	var bookings []models.Booking
	database.DB.
		Preload("CustomPackage.Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var booking models.Booking
	if err := database.DB.Preload("CustomPackage.Items").First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if booking.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this booking"})
	}

	return c.JSON(booking)
}

func GetBookingByReference(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var booking models.Booking
	if err := database.DB.Preload("CustomPackage.Items").First(&booking, "booking_reference = ?", c.Params("reference")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if booking.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to view this booking"})
	}

	return c.JSON(booking)
}

type CancellationRequest struct {
	Reason string `json:"reason,omitempty"`
}

func RequestCancellation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var req CancellationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to cancel this booking"})
	}

	result := database.DB.Model(&models.Booking{}).
		Where("id = ? AND is_active = ? AND cancellation_requested = ?", booking.ID, true, false).
		Updates(map[string]interface{}{
			"cancellation_requested":    true,
			"cancellation_reason":       req.Reason,
			"cancellation_requested_at": time.Now(),
		})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to request cancellation"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is not active or cancellation is already requested"})
	}

	return c.JSON(fiber.Map{"message": "Cancellation request submitted. An admin will review it shortly."})
}

// claimCancellation marks the booking as being cancelled by approverID.
// Exactly one concurrent caller wins; losers see errStaleBooking. The
// claim also pins the payment status the caller read, so a webhook that
// confirms the payment in between makes the claim lose instead of
// cancelling a now-paid booking without a refund. The booking stays
// active until the refund has gone through.
func claimCancellation(bookingID, approverID uuid.UUID, paymentStatus string) error {
	result := database.DB.Model(&models.Booking{}).
		Where("id = ? AND is_active = ? AND payment_status = ? AND cancellation_approved_by IS NULL", bookingID, true, paymentStatus).
		Updates(map[string]interface{}{
			"cancellation_approved_by": approverID,
			"cancellation_approved_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errStaleBooking
	}
	return nil
}

// releaseCancellationClaim restores the pre-cancellation state after a
// failed refund.
func releaseCancellationClaim(bookingID uuid.UUID) {
	err := database.DB.Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"cancellation_approved_by": nil,
			"cancellation_approved_at": nil,
		}).Error
	if err != nil {
		log.Printf("🔥 Failed to release cancellation claim for booking %s: %v", bookingID, err)
	}
}

// completeCancellation deactivates the claimed booking and clears the
// owner's current membership pointer if it still points here.
func completeCancellation(booking *models.Booking, refunded bool) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"is_active":              false,
			"cancellation_requested": false,
		}
		if refunded {
			updates["payment_status"] = "refunded"
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ? AND current_membership_id = ?", booking.UserID, booking.ID).
			Update("current_membership_id", nil).Error
	})
}

// CancelBooking is the direct owner/admin cancellation that bypasses
// the request/approve handshake. Refund runs first; a gateway failure
// leaves the booking untouched.
func CancelBooking(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to cancel this booking"})
	}

	if err := claimCancellation(booking.ID, userID, booking.PaymentStatus); err != nil {
		if errors.Is(err, errStaleBooking) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is not active or is already being cancelled"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel booking"})
	}

	refunded := false
	if booking.PaymentStatus == "paid" && booking.PaymentIntentID != nil {
		if _, err := payments.RefundPaymentIntent(*booking.PaymentIntentID); err != nil {
			releaseCancellationClaim(booking.ID)
			log.Printf("🔥 Refund failed for booking %s: %v", booking.BookingReference, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Refund could not be processed, booking was not cancelled"})
		}
		refunded = true
	}

	if err := completeCancellation(&booking, refunded); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize cancellation"})
	}

	go func() {
		var user models.User
		if database.DB.First(&user, "id = ?", booking.UserID).Error == nil {
			notifications.SendEmail(user.FullName, user.Email, "Your Membership has been Cancelled",
				fmt.Sprintf("<h1>Booking %s Cancelled</h1><p>Your membership has been cancelled.</p>", booking.BookingReference))
		}
	}()

	return c.JSON(fiber.Map{"message": "Booking cancelled successfully", "refunded": refunded})
}
