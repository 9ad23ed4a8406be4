package models

import "time"

type TableStatus string

const (
	TableStatusFree      TableStatus = "free"
	TableStatusInKitchen TableStatus = "in_kitchen"
	TableStatusReady     TableStatus = "ready"
	TableStatusPaid      TableStatus = "paid"
)

// Valid memastikan status meja termasuk enum yang dikenal.
func (s TableStatus) Valid() bool {
	switch s {
	case TableStatusFree, TableStatusInKitchen, TableStatusReady, TableStatusPaid:
		return true
	}
	return false
}

// Table adalah meja fisik. Invariant: status free <=> OrderID == nil,
// status lainnya <=> tepat satu order menempel.
type Table struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TenantID    uint        `gorm:"index;not null" json:"tenant_id"`
	TableNumber string      `gorm:"type:varchar(50);not null" json:"table_number"`
	Zone        string      `gorm:"type:varchar(50)" json:"zone"`
	Status      TableStatus `gorm:"type:varchar(20);not null;default:'free'" json:"status"`
	OrderID     *uint       `gorm:"index" json:"order_id,omitempty"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}
