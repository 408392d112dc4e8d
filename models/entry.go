package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderEntry represents one billable line (service × quantity) within an
// order. Price is captured from the service catalog at creation time, not
// referenced live; Total is derived as price × quantity.
type OrderEntry struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	ServiceID uint            `gorm:"not null;index" json:"service_id"`
	Service   Service         `gorm:"foreignKey:ServiceID" json:"service"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Order     Order           `gorm:"foreignKey:OrderID" json:"-"` // don't include full order in JSON
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderEntry model
func (OrderEntry) TableName() string {
	return "order_entries"
}
