package models

import (
	"time"

	"github.com/google/uuid"
)

// PackageItem is one priced line of a custom package.
type PackageItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CustomPackageID uuid.UUID `gorm:"not null;index" json:"custom_package_id"`
	ServiceID       uuid.UUID `gorm:"not null" json:"service_id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Quantity        int       `gorm:"not null;default:1" json:"quantity"`
	Price           float64   `gorm:"type:numeric(10,2);not null" json:"price"`
}

// CustomPackage is a user-assembled bundle of services replacing a
// standard tier. TotalPrice is recomputed from the items on every change.
type CustomPackage struct {
	ID         uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID     `gorm:"not null;index" json:"user_id"`
	Items      []PackageItem `gorm:"foreignkey:CustomPackageID" json:"items"`
	TotalPrice float64       `gorm:"type:numeric(10,2);not null" json:"total_price"`
	IsActive   bool          `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComputeTotalPrice sums quantity x unit price over the items.
func (p *CustomPackage) ComputeTotalPrice() float64 {
	var total float64
	for _, item := range p.Items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}
