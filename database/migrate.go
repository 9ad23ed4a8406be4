package database

import (
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

// Migrate menjalankan AutoMigrate seluruh model lalu memastikan setiap
// tenant punya pasangan pool register+wallet.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.LedgerAccount{},
		&models.LedgerEntry{},
		&models.Shift{},
		&models.ShiftBalance{},
		&models.SettlementRecord{},
	)
	if err != nil {
		return err
	}

	var tenants []models.Tenant
	if err := db.Find(&tenants).Error; err != nil {
		return err
	}
	for _, tenant := range tenants {
		if err := services.EnsureAccounts(db, tenant.ID); err != nil {
			utils.ErrorLogger.Printf("Error ensuring accounts for tenant %d: %v", tenant.ID, err)
		}
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
