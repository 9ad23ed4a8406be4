package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountRegister AccountKind = "register" // kas fisik
	AccountWallet   AccountKind = "wallet"   // hasil settlement kartu/QR/transfer
)

func (k AccountKind) Valid() bool {
	return k == AccountRegister || k == AccountWallet
}

// LedgerAccount adalah satu pool uang milik tenant. Balance hanya boleh
// berubah lewat compare-and-swap pada kolom Version; read-then-write
// biasa dilarang.
type LedgerAccount struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TenantID  uint            `gorm:"uniqueIndex:idx_tenant_kind;not null" json:"tenant_id"`
	Kind      AccountKind     `gorm:"type:varchar(20);uniqueIndex:idx_tenant_kind;not null" json:"kind"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance"`
	Version   uint64          `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}
