package models

import "time"

type SettlementStatus string

const (
	SettlementApplied SettlementStatus = "applied"
	SettlementVoided  SettlementStatus = "voided"
)

// SettlementRecord membuat settlement idempotent: notifikasi gateway yang
// datang berulang kali di-short-circuit lewat record ini. Status hanya
// bisa berubah applied -> voided (reversal manual); selain itu immutable.
type SettlementRecord struct {
	ID       string           `gorm:"type:varchar(64);primaryKey" json:"id"`
	TenantID uint             `gorm:"index;not null" json:"tenant_id"`
	OrderID  uint             `gorm:"uniqueIndex;not null" json:"order_id"`
	// AccountID adalah pool tujuan uang settlement ini.
	AccountID  uint             `gorm:"not null" json:"account_id"`
	GatewayRef *string          `gorm:"type:varchar(128);index" json:"gateway_ref,omitempty"`
	EntryID    *uint            `json:"entry_id,omitempty"`
	Status     SettlementStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt  time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null" json:"updated_at"`
}
