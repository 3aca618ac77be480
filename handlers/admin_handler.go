package handlers

import (
	"bytes"
	"encoding/csv"
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
)

type PackageDistribution struct {
	PackageType string `json:"package_type"`
	Count       int64  `json:"count"`
}

type MonthlyRevenue struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}

type DashboardInsightsResponse struct {
	UserStats struct {
		Total   int64 `json:"total"`
		Admins  int64 `json:"admins"`
		Members int64 `json:"members"`
	} `json:"user_stats"`
	MembershipStats struct {
		Active               int64                 `json:"active"`
		Distribution         []PackageDistribution `json:"distribution"`
		Cancelled            int64                 `json:"cancelled"`
		PendingCancellations int64                 `json:"pending_cancellations"`
	} `json:"membership_stats"`
	RevenueData    []MonthlyRevenue `json:"revenue_data"`
	LatestBookings []models.Booking `json:"latest_bookings"`
}

// GetDashboardInsights recomputes every aggregate from the booking
// history on each request; nothing here is a system of record.
func GetDashboardInsights(c *fiber.Ctx) error {
	var response DashboardInsightsResponse

	database.DB.Model(&models.User{}).Count(&response.UserStats.Total)
	database.DB.Model(&models.User{}).Where("role = ?", "admin").Count(&response.UserStats.Admins)
	database.DB.Model(&models.User{}).Where("role = ?", "member").Count(&response.UserStats.Members)

	database.DB.Model(&models.Booking{}).
		Where("is_active = ? AND end_date >= ?", true, time.Now()).
		Count(&response.MembershipStats.Active)

	database.DB.Model(&models.Booking{}).
		Select("package_type, COUNT(*) as count").
		Where("is_active = ?", true).
		Group("package_type").
		Scan(&response.MembershipStats.Distribution)

	database.DB.Model(&models.Booking{}).
		Where("is_active = ?", false).
		Count(&response.MembershipStats.Cancelled)

	database.DB.Model(&models.Booking{}).
		Where("is_active = ? AND cancellation_requested = ?", true, true).
		Count(&response.MembershipStats.PendingCancellations)

	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	database.DB.Model(&models.Booking{}).
		Select("to_char(date_trunc('month', created_at), 'YYYY-MM') as month, COALESCE(SUM(amount), 0) as revenue, COUNT(*) as bookings").
		Where("payment_status = ? AND created_at >= ?", "paid", sixMonthsAgo).
		Group("date_trunc('month', created_at)").
		Order("date_trunc('month', created_at) asc").
		Scan(&response.RevenueData)

	database.DB.
		Preload("CustomPackage.Items").
		Order("created_at desc").
		Limit(10).
		Find(&response.LatestBookings)

	return c.JSON(response)
}

func GetPendingCancellations(c *fiber.Ctx) error {
	var bookings []models.Booking
	database.DB.
		Preload("CustomPackage.Items").
		Where("is_active = ? AND cancellation_requested = ?", true, true).
		Order("cancellation_requested_at asc").
		Find(&bookings)

	return c.JSON(bookings)
}

type CancellationDecisionRequest struct {
	Approved bool `json:"approved"`
}

// HandleCancellationRequest resolves a member's cancellation request.
// Approval refunds first; the booking only deactivates once the refund
// has gone through, so a gateway failure leaves it fully intact.
func HandleCancellationRequest(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	adminID, _ := uuid.Parse(claims["user_id"].(string))

	var req CancellationDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", c.Params("bookingId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}

	if !req.Approved {
		result := database.DB.Model(&models.Booking{}).
			Where("id = ? AND is_active = ? AND cancellation_requested = ?", booking.ID, true, true).
			Updates(map[string]interface{}{
				"cancellation_requested":   false,
				"cancellation_rejected_by": adminID,
				"cancellation_rejected_at": time.Now(),
			})
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject cancellation"})
		}
		if result.RowsAffected == 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No pending cancellation request on this booking"})
		}

		go func() {
			var user models.User
			if database.DB.First(&user, "id = ?", booking.UserID).Error == nil {
				notifications.SendEmail(user.FullName, user.Email, "Update on Your Cancellation Request",
					"<h1>Cancellation Request Update</h1><p>Your cancellation request was reviewed and not approved. Your membership remains active.</p>")
			}
		}()

		return c.JSON(fiber.Map{"message": "Cancellation rejected"})
	}

	if !booking.CancellationRequested || !booking.IsActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No pending cancellation request on this booking"})
	}

	if err := claimCancellation(booking.ID, adminID, booking.PaymentStatus); err != nil {
		if errors.Is(err, errStaleBooking) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Booking was modified concurrently, please re-check"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to approve cancellation"})
	}

	refunded := false
	if booking.PaymentStatus == "paid" && booking.PaymentIntentID != nil {
		if _, err := payments.RefundPaymentIntent(*booking.PaymentIntentID); err != nil {
			releaseCancellationClaim(booking.ID)
			log.Printf("🔥 Refund failed for booking %s: %v", booking.BookingReference, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Refund could not be processed, cancellation was not applied"})
		}
		refunded = true
	}

	if err := completeCancellation(&booking, refunded); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to finalize cancellation"})
	}

	go func() {
		var user models.User
		if database.DB.First(&user, "id = ?", booking.UserID).Error == nil {
			notifications.SendEmail(user.FullName, user.Email, "Your Cancellation has been Approved",
				fmt.Sprintf("<h1>Cancellation Approved</h1><p>Your membership booking %s has been cancelled.</p>", booking.BookingReference))
		}
	}()

	return c.JSON(fiber.Map{"message": "Cancellation approved successfully", "refunded": refunded})
}

func AdminGetAllBookings(c *fiber.Ctx) error {
	var bookings []models.Booking
	database.DB.
		Preload("CustomPackage.Items").
		Order("created_at desc").
		Find(&bookings)

	return c.JSON(bookings)
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	database.DB.Preload("CurrentMembership").Find(&users)
	return c.JSON(users)
}

func GetUserDetails(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Preload("CurrentMembership.CustomPackage.Items").First(&user, "id = ?", c.Params("userId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var history []models.Booking
	database.DB.
		Preload("CustomPackage.Items").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&history)

	return c.JSON(fiber.Map{"user": user, "membership_history": history})
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

func UpdateUserRole(c *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", c.Params("userId")).Update("role", req.Role)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user role"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"message": "User role updated successfully"})
}

// GenerateTransactionReport exports paid bookings over a date range as CSV.
func GenerateTransactionReport(c *fiber.Ctx) error {
	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var bookings []models.Booking
	database.DB.
		Preload("User").
		Where("payment_status IN ? AND created_at BETWEEN ? AND ?", []string{"paid", "refunded"}, startDate, endDate).
		Order("created_at desc").
		Find(&bookings)

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Booking Reference", "Date", "Member Name", "Package", "Term", "Amount", "Payment Status"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, booking := range bookings {
		row := []string{
			booking.BookingReference,
			booking.CreatedAt.Format("2006-01-02 15:04"),
			booking.User.FullName,
			booking.PackageType,
			booking.PaymentOption,
			fmt.Sprintf("%.2f", booking.Amount),
			booking.PaymentStatus,
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}
