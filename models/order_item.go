package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItemStatus string

const (
	ItemStatusPending    OrderItemStatus = "pending"
	ItemStatusInProgress OrderItemStatus = "in_progress"
	ItemStatusReady      OrderItemStatus = "ready"
)

func (s OrderItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusInProgress, ItemStatusReady:
		return true
	}
	return false
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order     Order           `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name      string          `gorm:"type:varchar(100);not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Notes     string          `gorm:"type:text" json:"notes"`
	Status    OrderItemStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}
