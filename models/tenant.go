package models

import "time"

// Tenant adalah satu unit restoran/outlet. Semua record finansial
// dan operasional dimiliki oleh tepat satu tenant.
type Tenant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
