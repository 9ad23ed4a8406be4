package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift adalah jendela akuntansi; buka kasir membuat snapshot saldo awal,
// tutup kasir membekukannya. Maksimal satu shift terbuka per tenant.
type Shift struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  uint           `gorm:"index;not null" json:"tenant_id"`
	OpenedBy  uint           `gorm:"not null" json:"opened_by"`
	OpenedAt  time.Time      `gorm:"index;not null" json:"opened_at"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	Balances  []ShiftBalance `gorm:"foreignKey:ShiftID" json:"balances"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

// Open melaporkan apakah shift masih berjalan.
func (s *Shift) Open() bool {
	return s.ClosedAt == nil
}

// ShiftBalance adalah snapshot saldo awal satu account saat shift dibuka.
type ShiftBalance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ShiftID   uint            `gorm:"uniqueIndex:idx_shift_account;not null" json:"shift_id"`
	AccountID uint            `gorm:"uniqueIndex:idx_shift_account;not null" json:"account_id"`
	Opening   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"opening"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
}
