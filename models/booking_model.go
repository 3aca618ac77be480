package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a purchased membership term. Bookings are never deleted;
// cancellation and expiry only flip IsActive so history stays intact.
type Booking struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID  `gorm:"not null;index" json:"user_id"`
	PackageType     string     `gorm:"size:20;not null" json:"package_type"`
	CustomPackageID *uuid.UUID `json:"custom_package_id,omitempty"`
	PreferredTime   string     `gorm:"size:50;not null" json:"preferred_time"`
	PaymentOption   string     `gorm:"size:10;not null" json:"payment_option"`
	Amount          float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentStatus   string     `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	PaymentIntentID *string    `gorm:"size:255;index" json:"payment_intent_id,omitempty"`

	// Unique across every booking ever created. The index is the
	// authoritative check; the generator pre-check only reduces
	// insert retries.
	BookingReference string `gorm:"size:10;not null;uniqueIndex" json:"booking_reference"`

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	CancellationRequested   bool       `gorm:"default:false" json:"cancellation_requested"`
	CancellationReason      *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancellationRequestedAt *time.Time `json:"cancellation_requested_at,omitempty"`
	CancellationApprovedBy  *uuid.UUID `json:"cancellation_approved_by,omitempty"`
	CancellationApprovedAt  *time.Time `json:"cancellation_approved_at,omitempty"`
	CancellationRejectedBy  *uuid.UUID `json:"cancellation_rejected_by,omitempty"`
	CancellationRejectedAt  *time.Time `json:"cancellation_rejected_at,omitempty"`

	User          User           `gorm:"foreignkey:UserID" json:"-"`
	CustomPackage *CustomPackage `gorm:"foreignkey:CustomPackageID" json:"custom_package,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
