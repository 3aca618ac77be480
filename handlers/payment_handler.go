package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pulsegym/gym_membership/cache"
	config "github.com/pulsegym/gym_membership/configs"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
	"github.com/pulsegym/gym_membership/notifications"
	"github.com/pulsegym/gym_membership/payments"
)

// CreatePaymentIntentHandler hands the client a gateway secret for a
// pending booking. Retried calls reuse the intent already on file, so a
// booking is never double-charged for one attempt.
func CreatePaymentIntentHandler(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to pay for this booking"})
	}
	// Failed payments stay retryable; paid and refunded bookings do not.
	if !booking.IsActive || (booking.PaymentStatus != "pending" && booking.PaymentStatus != "failed") {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking is not awaiting payment"})
	}

	if booking.PaymentIntentID != nil {
		intent, err := payments.GetPaymentIntent(*booking.PaymentIntentID)
		if err != nil {
			log.Printf("🔥 Failed to fetch existing intent for booking %s: %v", booking.BookingReference, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment gateway is unavailable, please try again"})
		}
		return c.JSON(fiber.Map{"client_secret": intent.ClientSecret})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", booking.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	// Gateway customer handle is created once per user and cached.
	if user.StripeCustomerID == nil {
		customer, err := payments.CreateCustomer(user.FullName, user.Email)
		if err != nil {
			log.Printf("🔥 Failed to create gateway customer for user %s: %v", user.ID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment gateway is unavailable, please try again"})
		}
		user.StripeCustomerID = &customer.ID
		if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).Update("stripe_customer_id", customer.ID).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save gateway customer"})
		}
	}

	intent, err := payments.CreatePaymentIntent(booking.Amount, "usd", *user.StripeCustomerID, booking.BookingReference)
	if err != nil {
		log.Printf("🔥 Failed to create payment intent for booking %s: %v", booking.BookingReference, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment gateway is unavailable, please try again"})
	}

	// Another racing request may have stored an intent in the meantime;
	// the conditional write keeps exactly one on file.
	result := database.DB.Model(&models.Booking{}).
		Where("id = ? AND payment_intent_id IS NULL", booking.ID).
		Update("payment_intent_id", intent.ID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save payment intent"})
	}
	if result.RowsAffected == 0 {
		var current models.Booking
		if err := database.DB.First(&current, "id = ?", booking.ID).Error; err == nil && current.PaymentIntentID != nil {
			if existing, err := payments.GetPaymentIntent(*current.PaymentIntentID); err == nil {
				return c.JSON(fiber.Map{"client_secret": existing.ClientSecret})
			}
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking was modified concurrently, please retry"})
	}

	return c.JSON(fiber.Map{"client_secret": intent.ClientSecret})
}

// HandleStripeWebhook ingests gateway notifications. Order matters: the
// signature is checked over the raw body before anything is parsed, and
// nothing is applied on verification failure.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	if !payments.VerifyWebhookSignature(payload, signature, config.Config("STRIPE_WEBHOOK_SECRET")) {
		log.Printf("Rejected webhook with invalid signature from %s", c.IP())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	event, err := payments.ParseWebhookEvent(payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}

	if !cache.MarkWebhookEventProcessed(c.Context(), event.ID) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook already processed"})
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return applyPaymentSucceeded(c, event)
	case "payment_intent.payment_failed":
		return applyPaymentFailed(c, event)
	default:
		log.Printf("Ignoring webhook event %s of type %s", event.ID, event.Type)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Event ignored"})
	}
}

func applyPaymentSucceeded(c *fiber.Ctx, event *payments.WebhookEvent) error {
	intentID := event.Data.Object.ID

	// Transition only an active booking whose stored intent matches and
	// is still awaiting payment. A cancelled booking is terminal; a late
	// succeeded event must never resurrect it as paid. Stale, mismatched
	// or duplicate events match zero rows and are acknowledged without
	// side effects.
	result := database.DB.Model(&models.Booking{}).
		Where("payment_intent_id = ? AND is_active = ? AND payment_status IN ?", intentID, true, []string{"pending", "failed"}).
		Update("payment_status", "paid")
	if result.Error != nil {
		log.Printf("🔥 CRITICAL: Error applying succeeded event for intent %s: %v", intentID, result.Error)
		// Release the dedup key so the gateway's redelivery gets applied.
		cache.UnmarkWebhookEvent(c.Context(), event.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}
	if result.RowsAffected == 0 {
		log.Printf("No pending booking for intent %s, event ignored", intentID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "No matching pending booking"})
	}

	go func() {
		var booking models.Booking
		if database.DB.Preload("User").First(&booking, "payment_intent_id = ?", intentID).Error == nil {
			notifications.SendEmail(booking.User.FullName, booking.User.Email, "Your Membership is Active!",
				fmt.Sprintf("<h1>Payment Confirmed</h1><p>Your payment for booking %s was successful. Your membership is now active until %s.</p>",
					booking.BookingReference, booking.EndDate.Format("January 2, 2006")))
		}
	}()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook processed successfully"})
}

func applyPaymentFailed(c *fiber.Ctx, event *payments.WebhookEvent) error {
	intentID := event.Data.Object.ID

	result := database.DB.Model(&models.Booking{}).
		Where("payment_intent_id = ? AND is_active = ? AND payment_status = ?", intentID, true, "pending").
		Update("payment_status", "failed")
	if result.Error != nil {
		log.Printf("🔥 CRITICAL: Error applying failed event for intent %s: %v", intentID, result.Error)
		cache.UnmarkWebhookEvent(c.Context(), event.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
	}
	if result.RowsAffected == 0 {
		log.Printf("No pending booking for failed intent %s, event ignored", intentID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Acknowledged failed payment"})
}
