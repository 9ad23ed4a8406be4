package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/events"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

// ShiftService mengelola jendela akuntansi: buka kasir men-snapshot saldo
// awal tiap pool, tutup kasir membekukannya. Maksimal satu shift terbuka
// per tenant.
type ShiftService struct {
	db *gorm.DB
}

func NewShiftService(db *gorm.DB) *ShiftService {
	return &ShiftService{db: db}
}

// OpenShift membuka shift baru. Ditolak kalau masih ada yang terbuka.
func (s *ShiftService) OpenShift(tenantID, openedBy uint) (*models.Shift, error) {
	var open int64
	if err := s.db.Model(&models.Shift{}).
		Where("tenant_id = ? AND closed_at IS NULL", tenantID).
		Count(&open).Error; err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, &InvalidTransition{Entity: "shift", From: "open", To: "open"}
	}

	var accounts []models.LedgerAccount
	if err := s.db.Where("tenant_id = ?", tenantID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, &UnknownReference{Reference: fmt.Sprintf("accounts for tenant %d", tenantID)}
	}

	shift := models.Shift{
		TenantID:  tenantID,
		OpenedBy:  openedBy,
		OpenedAt:  time.Now(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shift).Error; err != nil {
			return err
		}
		// snapshot saldo awal per pool
		for _, account := range accounts {
			balance := models.ShiftBalance{
				ShiftID:   shift.ID,
				AccountID: account.ID,
				Opening:   account.Balance,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&balance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	opened, err := s.Get(tenantID, shift.ID)
	if err != nil {
		return nil, err
	}
	events.BroadcastShift(events.EventShiftOpened, *opened)
	utils.InfoLogger.Printf("Shift %d opened for tenant %d", shift.ID, tenantID)
	return opened, nil
}

// CloseShift menutup shift yang sedang terbuka dan membekukan jendelanya.
func (s *ShiftService) CloseShift(tenantID uint) (*models.Shift, error) {
	shift, err := s.Current(tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.Model(&models.Shift{}).
		Where("id = ? AND closed_at IS NULL", shift.ID).
		Updates(map[string]interface{}{
			"closed_at":  now,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &InvalidTransition{Entity: "shift", From: "closed", To: "closed"}
	}

	closed, err := s.Get(tenantID, shift.ID)
	if err != nil {
		return nil, err
	}
	events.BroadcastShift(events.EventShiftClosed, *closed)
	utils.InfoLogger.Printf("Shift %d closed for tenant %d", shift.ID, tenantID)
	return closed, nil
}

// Current mengembalikan shift terbuka milik tenant.
func (s *ShiftService) Current(tenantID uint) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Preload("Balances").
		Where("tenant_id = ? AND closed_at IS NULL", tenantID).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownReference{Reference: fmt.Sprintf("open shift for tenant %d", tenantID)}
		}
		return nil, err
	}
	return &shift, nil
}

// Get mengembalikan shift tertentu milik tenant.
func (s *ShiftService) Get(tenantID, shiftID uint) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Preload("Balances").
		Where("id = ? AND tenant_id = ?", shiftID, tenantID).
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownReference{Reference: fmt.Sprintf("shift %d", shiftID)}
		}
		return nil, err
	}
	return &shift, nil
}
