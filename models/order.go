package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the ordinal status of a repair order
type OrderStatus int

// Order statuses, in workflow order
const (
	StatusRegistered OrderStatus = iota
	StatusWaiting
	StatusBeingFixed
	StatusFixed
	StatusReturned
	StatusCanceled
)

var statusNames = map[OrderStatus]string{
	StatusRegistered: "Registered",
	StatusWaiting:    "Waiting",
	StatusBeingFixed: "Being fixed",
	StatusFixed:      "Fixed",
	StatusReturned:   "Returned",
	StatusCanceled:   "Canceled",
}

// String returns the human-readable name of the status
func (s OrderStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether the status is within the enumeration domain
func (s OrderStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no further work is expected on an order in this
// status (Fixed, Returned, Canceled)
func (s OrderStatus) Terminal() bool {
	return s == StatusFixed || s == StatusReturned || s == StatusCanceled
}

// Order represents a repair order against a car. OrderSum is derived: it
// always equals the sum of the totals of the order's entries, and is written
// only by the ledger.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Date       time.Time       `gorm:"not null" json:"date"` // set once at creation
	OrderSum   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"order_sum"`
	Status     OrderStatus     `gorm:"not null;default:0;index" json:"status"`
	StatusName string          `gorm:"-" json:"status_name,omitempty"` // computed field
	DueBack    *time.Time      `gorm:"index" json:"due_back"`          // nullable
	Overdue    bool            `gorm:"-" json:"overdue"`               // computed field, see IsOverdue
	CarID      uint            `gorm:"not null;index" json:"car_id"`
	Car        Car             `gorm:"foreignKey:CarID" json:"car"`
	Entries    []OrderEntry    `gorm:"foreignKey:OrderID" json:"entries,omitempty"`
	Comments   []OrderComment  `gorm:"foreignKey:OrderID" json:"comments,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsOverdue reports whether the order's due-back date has passed. Orders in a
// terminal status are never overdue.
func (o *Order) IsOverdue(now time.Time) bool {
	if o.DueBack == nil || o.Status.Terminal() {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return o.DueBack.Before(today)
}

// Decorate fills the computed StatusName and Overdue fields before the order
// is rendered to a client
func (o *Order) Decorate(now time.Time) {
	o.StatusName = o.Status.String()
	o.Overdue = o.IsOverdue(now)
}
