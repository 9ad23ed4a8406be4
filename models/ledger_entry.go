package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryDirection string

const (
	DirectionCredit EntryDirection = "credit"
	DirectionDebit  EntryDirection = "debit"
)

func (d EntryDirection) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

type EntryCategory string

const (
	CategoryOpening EntryCategory = "opening"
	CategoryIncome  EntryCategory = "income"
	CategoryExpense EntryCategory = "expense"
	CategorySale    EntryCategory = "sale"
)

func (c EntryCategory) Valid() bool {
	switch c {
	case CategoryOpening, CategoryIncome, CategoryExpense, CategorySale:
		return true
	}
	return false
}

// LedgerEntry adalah satu catatan buku kas, append-only. Entry tidak
// pernah diubah atau dihapus; koreksi dilakukan lewat reversing entry
// baru yang mereferensikan id aslinya.
//
// Channel wajib terisi saat Category == sale dan wajib kosong untuk
// kategori lain, supaya dedup sale-vs-income jadi jaminan struktural,
// bukan pencocokan teks.
type LedgerEntry struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AccountID uint           `gorm:"uniqueIndex:idx_account_idem;not null" json:"account_id"`
	TenantID  uint           `gorm:"index;not null" json:"tenant_id"`
	Direction EntryDirection `gorm:"type:varchar(10);not null" json:"direction"`
	// Amount selalu positif; tanda ditentukan Direction.
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category       EntryCategory   `gorm:"type:varchar(20);not null" json:"category"`
	Channel        OrderChannel    `gorm:"type:varchar(20)" json:"channel,omitempty"`
	Reference      string          `gorm:"type:varchar(255)" json:"reference"`
	ReversesID     *uint           `gorm:"index" json:"reverses_id,omitempty"`
	IdempotencyKey string          `gorm:"type:varchar(64);uniqueIndex:idx_account_idem;not null" json:"idempotency_key"`
	RecordedAt     time.Time       `gorm:"index;not null" json:"recorded_at"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
}

// Signed mengembalikan amount bertanda (+credit / -debit).
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
