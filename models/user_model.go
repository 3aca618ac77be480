package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'member'" json:"role"`

	// Points at the booking currently covering the user's membership,
	// nil when nothing is active. History is the bookings table itself.
	CurrentMembershipID *uuid.UUID `json:"current_membership_id,omitempty"`
	CurrentMembership   *Booking   `gorm:"foreignkey:CurrentMembershipID" json:"current_membership,omitempty"`

	// Gateway customer handle, created lazily on the first payment intent.
	StripeCustomerID *string `gorm:"size:255" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
