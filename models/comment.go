package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentLength bounds the free-text content of an order comment
const MaxCommentLength = 4000

// OrderComment represents an append-only customer/mechanic comment on an
// order. The commenter reference may be absent (the user was deleted, or the
// comment was left anonymously by an administrator).
type OrderComment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	Order       Order          `gorm:"foreignKey:OrderID" json:"-"` // don't include full order in JSON
	CommenterID *uint          `gorm:"index" json:"commenter_id"`   // nullable, foreign key to users table
	Commenter   *User          `gorm:"foreignKey:CommenterID" json:"commenter,omitempty"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time      `json:"created_at"` // set once, immutable
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderComment model
func (OrderComment) TableName() string {
	return "order_comments"
}
