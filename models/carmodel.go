package models

import (
	"time"

	"gorm.io/gorm"
)

// CarModel represents a make/model/engine/year combination that customer
// cars reference
type CarModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Make      string         `gorm:"not null;index" json:"make"`
	Model     string         `gorm:"not null" json:"model"`
	Engine    *string        `json:"engine"` // nullable, e.g. "2.0 TDI"
	Year      int            `gorm:"not null;check:year > 0" json:"year"`
	Cars      []Car          `gorm:"foreignKey:CarModelID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the CarModel model
func (CarModel) TableName() string {
	return "car_models"
}
