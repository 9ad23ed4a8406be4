package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
)

// findAccount mengambil pool (register/wallet) milik tenant.
func findAccount(db *gorm.DB, tenantID uint, kind models.AccountKind) (*models.LedgerAccount, error) {
	var account models.LedgerAccount
	err := db.Where("tenant_id = ? AND kind = ?", tenantID, kind).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownReference{Reference: fmt.Sprintf("%s account for tenant %d", kind, tenantID)}
		}
		return nil, err
	}
	return &account, nil
}

// EnsureAccounts membuat pasangan register+wallet untuk tenant baru.
// Idempotent: account yang sudah ada dibiarkan.
func EnsureAccounts(db *gorm.DB, tenantID uint) error {
	for _, kind := range []models.AccountKind{models.AccountRegister, models.AccountWallet} {
		var count int64
		if err := db.Model(&models.LedgerAccount{}).
			Where("tenant_id = ? AND kind = ?", tenantID, kind).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		account := models.LedgerAccount{
			TenantID:  tenantID,
			Kind:      kind,
			Balance:   decimal.Zero,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := db.Create(&account).Error; err != nil && !isDuplicateKey(err) {
			return err
		}
	}
	return nil
}
