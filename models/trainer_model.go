package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Trainer struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Specialization string         `gorm:"size:255" json:"specialization"`
	Image          string         `gorm:"size:255" json:"image"`
	Experience     int            `json:"experience"`
	Price          float64        `gorm:"type:numeric(10,2)" json:"price"`
	Bio            string         `gorm:"type:text" json:"bio"`
	Description    string         `gorm:"type:text" json:"description"`
	Qualifications pq.StringArray `gorm:"type:text[]" json:"qualifications"`
	Availability   pq.StringArray `gorm:"type:text[]" json:"availability"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
