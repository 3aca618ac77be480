package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pulsegym/gym_membership/cache"
	"github.com/pulsegym/gym_membership/database"
	"github.com/pulsegym/gym_membership/models"
	"github.com/pulsegym/gym_membership/payments"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLifecycleDB points database.DB at an in-memory store with the
// users and bookings tables. Explicit ids on every insert keep the
// Postgres-only column defaults out of play.
func setupLifecycleDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			full_name TEXT,
			email TEXT,
			password TEXT,
			role TEXT,
			current_membership_id TEXT,
			stripe_customer_id TEXT,
			is_active BOOLEAN,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE bookings (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			package_type TEXT,
			custom_package_id TEXT,
			preferred_time TEXT,
			payment_option TEXT,
			amount NUMERIC,
			payment_status TEXT,
			payment_intent_id TEXT,
			booking_reference TEXT,
			start_date DATETIME,
			end_date DATETIME,
			is_active BOOLEAN,
			cancellation_requested BOOLEAN,
			cancellation_reason TEXT,
			cancellation_requested_at DATETIME,
			cancellation_approved_by TEXT,
			cancellation_approved_at DATETIME,
			cancellation_rejected_by TEXT,
			cancellation_rejected_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
	} {
		assert.NoError(t, db.Exec(stmt).Error)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func insertUser(t *testing.T, role string) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		FullName: "Test Member",
		Email:    fmt.Sprintf("member-%s@example.com", uuid.NewString()[:8]),
		Password: "hashed",
		Role:     role,
		IsActive: true,
	}
	assert.NoError(t, database.DB.Create(user).Error)
	return user
}

func insertBooking(t *testing.T, user *models.User, paymentStatus string, active bool, intentID *string) *models.Booking {
	t.Helper()

	now := time.Now()
	booking := &models.Booking{
		ID:               uuid.New(),
		UserID:           user.ID,
		PackageType:      "basic",
		PreferredTime:    "morning",
		PaymentOption:    "1month",
		Amount:           29.99,
		PaymentStatus:    paymentStatus,
		PaymentIntentID:  intentID,
		BookingReference: "GYM-4821",
		StartDate:        now,
		EndDate:          now.AddDate(0, 1, 0),
		IsActive:         active,
	}
	assert.NoError(t, database.DB.Create(booking).Error)

	if active {
		assert.NoError(t, database.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("current_membership_id", booking.ID).Error)
	}
	return booking
}

func reloadBooking(t *testing.T, id uuid.UUID) *models.Booking {
	t.Helper()

	var booking models.Booking
	assert.NoError(t, database.DB.First(&booking, "id = ?", id).Error)
	return &booking
}

// newLifecycleApp wires the cancellation routes behind a stand-in for
// the jwt middleware so handlers see the usual token claims.
func newLifecycleApp(userID uuid.UUID, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID.String(),
			"role":    role,
		}))
		return c.Next()
	})
	app.Delete("/api/v1/bookings/:bookingId", CancelBooking)
	app.Patch("/api/v1/admin/bookings/:bookingId/cancellation", HandleCancellationRequest)
	return app
}

// useFailingRefundGateway points the gateway client at a server whose
// refund endpoint always errors.
func useFailingRefundGateway(t *testing.T) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/refunds" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "Refund processing is down"},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	t.Setenv("STRIPE_API_BASE_URL", server.URL)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")
}

func signedEventRequest(payload []byte, secret string) *http.Request {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := payments.ComputeWebhookSignature(timestamp, payload, secret)

	req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%s,v1=%s", timestamp, signature))
	return req
}

func TestCancelBookingRefundFailureLeavesBookingIntact(t *testing.T) {
	setupLifecycleDB(t)
	useFailingRefundGateway(t)

	intentID := "pi_refund_fail"
	user := insertUser(t, "member")
	booking := insertBooking(t, user, "paid", true, &intentID)

	app := newLifecycleApp(user.ID, "member")
	req := httptest.NewRequest("DELETE", "/api/v1/bookings/"+booking.ID.String(), nil)

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	got := reloadBooking(t, booking.ID)
	assert.True(t, got.IsActive)
	assert.Equal(t, "paid", got.PaymentStatus)
	assert.Nil(t, got.CancellationApprovedBy)

	var owner models.User
	assert.NoError(t, database.DB.First(&owner, "id = ?", user.ID).Error)
	assert.NotNil(t, owner.CurrentMembershipID)
}

func TestCancelBookingPendingBookingDeactivates(t *testing.T) {
	setupLifecycleDB(t)

	user := insertUser(t, "member")
	booking := insertBooking(t, user, "pending", true, nil)

	app := newLifecycleApp(user.ID, "member")
	req := httptest.NewRequest("DELETE", "/api/v1/bookings/"+booking.ID.String(), nil)

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	got := reloadBooking(t, booking.ID)
	assert.False(t, got.IsActive)
	assert.Equal(t, "pending", got.PaymentStatus)

	var owner models.User
	assert.NoError(t, database.DB.First(&owner, "id = ?", user.ID).Error)
	assert.Nil(t, owner.CurrentMembershipID)
}

func TestHandleCancellationRequestRefundFailureLeavesRequestPending(t *testing.T) {
	setupLifecycleDB(t)
	useFailingRefundGateway(t)

	intentID := "pi_refund_fail"
	member := insertUser(t, "member")
	admin := insertUser(t, "admin")
	booking := insertBooking(t, member, "paid", true, &intentID)

	requestedAt := time.Now()
	assert.NoError(t, database.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"cancellation_requested":    true,
			"cancellation_requested_at": requestedAt,
		}).Error)

	app := newLifecycleApp(admin.ID, "admin")
	req := httptest.NewRequest("PATCH", "/api/v1/admin/bookings/"+booking.ID.String()+"/cancellation",
		bytes.NewReader([]byte(`{"approved":true}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	got := reloadBooking(t, booking.ID)
	assert.True(t, got.IsActive)
	assert.Equal(t, "paid", got.PaymentStatus)
	assert.True(t, got.CancellationRequested)
	assert.Nil(t, got.CancellationApprovedBy)
}

func TestClaimCancellationSingleWinner(t *testing.T) {
	setupLifecycleDB(t)

	member := insertUser(t, "member")
	adminOne := insertUser(t, "admin")
	adminTwo := insertUser(t, "admin")
	booking := insertBooking(t, member, "pending", true, nil)

	assert.NoError(t, claimCancellation(booking.ID, adminOne.ID, "pending"))
	assert.ErrorIs(t, claimCancellation(booking.ID, adminTwo.ID, "pending"), errStaleBooking)

	got := reloadBooking(t, booking.ID)
	assert.Equal(t, adminOne.ID, *got.CancellationApprovedBy)
}

func TestClaimCancellationLosesWhenPaymentConfirmedInBetween(t *testing.T) {
	setupLifecycleDB(t)

	member := insertUser(t, "member")
	admin := insertUser(t, "admin")
	booking := insertBooking(t, member, "pending", true, nil)

	// The payment confirms after the handler read the booking as
	// pending but before the claim lands.
	assert.NoError(t, database.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("payment_status", "paid").Error)

	assert.ErrorIs(t, claimCancellation(booking.ID, admin.ID, "pending"), errStaleBooking)

	got := reloadBooking(t, booking.ID)
	assert.True(t, got.IsActive)
	assert.Equal(t, "paid", got.PaymentStatus)
	assert.Nil(t, got.CancellationApprovedBy)
}

func TestWebhookSucceededIgnoresCancelledBooking(t *testing.T) {
	setupLifecycleDB(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	intentID := "pi_after_cancel"
	user := insertUser(t, "member")
	booking := insertBooking(t, user, "pending", false, &intentID)

	app := newWebhookApp()
	payload := []byte(`{"id":"evt_late_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_after_cancel","status":"succeeded"}}}`)

	resp, err := app.Test(signedEventRequest(payload, "whsec_test"), 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "No matching pending booking")

	got := reloadBooking(t, booking.ID)
	assert.Equal(t, "pending", got.PaymentStatus)
	assert.False(t, got.IsActive)
}

func TestWebhookSucceededDoubleDeliveryAppliesOnce(t *testing.T) {
	setupLifecycleDB(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	intentID := "pi_double"
	user := insertUser(t, "member")
	booking := insertBooking(t, user, "pending", true, &intentID)

	app := newWebhookApp()
	payload := []byte(`{"id":"evt_double_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_double","status":"succeeded"}}}`)

	resp, err := app.Test(signedEventRequest(payload, "whsec_test"), 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", reloadBooking(t, booking.ID).PaymentStatus)

	resp, err = app.Test(signedEventRequest(payload, "whsec_test"), 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "No matching pending booking")
	assert.Equal(t, "paid", reloadBooking(t, booking.ID).PaymentStatus)
}

func TestWebhookRedeliveryAfterProcessingFailure(t *testing.T) {
	setupLifecycleDB(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	mr := miniredis.RunT(t)
	cache.Client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Client = nil })

	intentID := "pi_redeliver"
	user := insertUser(t, "member")
	booking := insertBooking(t, user, "pending", true, &intentID)

	app := newWebhookApp()
	payload := []byte(`{"id":"evt_redeliver_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_redeliver","status":"succeeded"}}}`)

	// First delivery fails at the store; the dedup key must be released
	// so the gateway's retry is not acknowledged as already processed.
	assert.NoError(t, database.DB.Exec("ALTER TABLE bookings RENAME TO bookings_hidden").Error)

	resp, err := app.Test(signedEventRequest(payload, "whsec_test"), 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.False(t, mr.Exists("webhook:event:evt_redeliver_1"))

	assert.NoError(t, database.DB.Exec("ALTER TABLE bookings_hidden RENAME TO bookings").Error)

	resp, err = app.Test(signedEventRequest(payload, "whsec_test"), 5000)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "paid", reloadBooking(t, booking.ID).PaymentStatus)
	assert.True(t, mr.Exists("webhook:event:evt_redeliver_1"))
}
