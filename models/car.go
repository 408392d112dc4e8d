package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxNoteLength bounds the free-text note on a car
const MaxNoteLength = 4000

// Car represents a customer vehicle. A car always references exactly one
// CarModel; the customer may be absent (unassigned car).
type Car struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PlateNumber string         `gorm:"not null;index" json:"plate_number"`
	VIN         string         `gorm:"not null;index" json:"vin"`
	Note        *string        `json:"note"`                           // nullable free text
	ImageKey    *string        `json:"image_key,omitempty"`            // nullable, attachment store key
	ImageURL    *string        `gorm:"-" json:"image_url,omitempty"`   // computed field, URL for the stored image
	CarModelID  uint           `gorm:"not null;index" json:"car_model_id"`
	CarModel    CarModel       `gorm:"foreignKey:CarModelID" json:"car_model"`
	CustomerID  *uint          `gorm:"index" json:"customer_id"` // nullable, foreign key to users table
	Customer    *User          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Orders      []Order        `gorm:"foreignKey:CarID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Car model
func (Car) TableName() string {
	return "cars"
}
