package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Membership is a standard tier's rate table row. The three explicit
// rates are authoritative; no arithmetic discounting applies to them.
type Membership struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Type           string         `gorm:"size:20;not null;unique" json:"type"`
	PriceMonthly   float64        `gorm:"type:numeric(10,2);not null" json:"price_monthly"`
	PriceQuarterly float64        `gorm:"type:numeric(10,2);not null" json:"price_quarterly"`
	PriceAnnual    float64        `gorm:"type:numeric(10,2);not null" json:"price_annual"`
	Features       pq.StringArray `gorm:"type:text[]" json:"features"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
