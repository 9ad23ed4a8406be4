package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderChannel string

const (
	ChannelDineIn   OrderChannel = "dine_in"
	ChannelTakeaway OrderChannel = "takeaway"
	ChannelDelivery OrderChannel = "delivery"
)

func (c OrderChannel) Valid() bool {
	switch c {
	case ChannelDineIn, ChannelTakeaway, ChannelDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// Rank mengembalikan urutan progres order. Transisi tidak boleh mundur;
// cancelled di luar urutan (terminal dari pending/preparing).
func (s OrderStatus) Rank() int {
	switch s {
	case OrderStatusPending:
		return 0
	case OrderStatusPreparing:
		return 1
	case OrderStatusReady:
		return 2
	case OrderStatusFulfilled:
		return 3
	}
	return -1
}

// Order adalah satu pesanan dapur. TableID hanya terisi untuk channel
// dine_in. SettlementID null sampai order dibayar.
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TenantID     uint            `gorm:"index;not null" json:"tenant_id"`
	Channel      OrderChannel    `gorm:"type:varchar(20);not null" json:"channel"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	TableID      *uint           `gorm:"index" json:"table_id,omitempty"`
	SettlementID *string         `gorm:"type:varchar(64);index" json:"settlement_id,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
	OrderItems   []OrderItem     `gorm:"foreignKey:OrderID" json:"order_items"`
}

// Settled melaporkan apakah order sudah punya settlement yang applied.
func (o *Order) Settled() bool {
	return o.SettlementID != nil && *o.SettlementID != ""
}
