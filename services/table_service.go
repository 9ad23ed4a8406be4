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

// TableService menjalankan state machine meja:
// free -> in_kitchen -> ready -> paid -> free.
//
// Semua transisi memakai guarded update (status lama ikut di WHERE) supaya
// transisi per meja terserialisasi tanpa lock lintas entitas.
type TableService struct {
	db *gorm.DB
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

// Open menempelkan satu order ke meja free dan membawanya ke in_kitchen.
func (s *TableService) Open(tenantID, tableID, orderID uint) (*models.Table, error) {
	res := s.db.Model(&models.Table{}).
		Where("id = ? AND tenant_id = ? AND status = ?", tableID, tenantID, models.TableStatusFree).
		Updates(map[string]interface{}{
			"status":     models.TableStatusInKitchen,
			"order_id":   orderID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.transitionError(tenantID, tableID, models.TableStatusInKitchen)
	}

	table, err := s.Get(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	events.BroadcastTableEvent(events.EventTableOpened, *table)
	utils.InfoLogger.Printf("Table %d opened with order %d", tableID, orderID)
	return table, nil
}

// MarkReady membawa meja in_kitchen -> ready setelah dapur menyelesaikan
// semua item. Meja yang sudah dibayar duluan (early payment) tetap paid.
func (s *TableService) MarkReady(tenantID, tableID uint) (*models.Table, error) {
	res := s.db.Model(&models.Table{}).
		Where("id = ? AND tenant_id = ? AND status = ?", tableID, tenantID, models.TableStatusInKitchen).
		Updates(map[string]interface{}{
			"status":     models.TableStatusReady,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.transitionError(tenantID, tableID, models.TableStatusReady)
	}

	table, err := s.Get(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	events.BroadcastTableEvent(events.EventTableReadied, *table)
	return table, nil
}

// Settle membawa meja in_kitchen|ready -> paid. Hanya boleh dipanggil dari
// SettlementService supaya entry buku kas dijamin sudah tertulis.
func (s *TableService) Settle(tenantID, tableID uint) (*models.Table, error) {
	res := s.db.Model(&models.Table{}).
		Where("id = ? AND tenant_id = ? AND status IN ?", tableID, tenantID,
			[]models.TableStatus{models.TableStatusInKitchen, models.TableStatusReady}).
		Updates(map[string]interface{}{
			"status":     models.TableStatusPaid,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.transitionError(tenantID, tableID, models.TableStatusPaid)
	}

	table, err := s.Get(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	events.BroadcastTableEvent(events.EventTableSettled, *table)
	utils.InfoLogger.Printf("Table %d settled", tableID)
	return table, nil
}

// Clear mengosongkan meja paid -> free dan melepas order-nya. Meja yang
// belum dibayar tidak boleh di-clear, supaya order tak terbuang diam-diam.
func (s *TableService) Clear(tenantID, tableID uint) (*models.Table, error) {
	res := s.db.Model(&models.Table{}).
		Where("id = ? AND tenant_id = ? AND status = ?", tableID, tenantID, models.TableStatusPaid).
		Updates(map[string]interface{}{
			"status":     models.TableStatusFree,
			"order_id":   nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.transitionError(tenantID, tableID, models.TableStatusFree)
	}

	table, err := s.Get(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	events.BroadcastTableEvent(events.EventTableCleared, *table)
	utils.InfoLogger.Printf("Table %d cleared", tableID)
	return table, nil
}

// Get mengambil satu meja milik tenant.
func (s *TableService) Get(tenantID, tableID uint) (*models.Table, error) {
	var table models.Table
	err := s.db.Where("id = ? AND tenant_id = ?", tableID, tenantID).First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// transitionError membaca status terkini untuk pesan error yang akurat.
func (s *TableService) transitionError(tenantID, tableID uint, to models.TableStatus) error {
	from := "unknown"
	var table models.Table
	if err := s.db.Where("id = ? AND tenant_id = ?", tableID, tenantID).First(&table).Error; err == nil {
		from = string(table.Status)
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		return &UnknownReference{Reference: fmt.Sprintf("table %d", tableID)}
	}
	return &InvalidTransition{Entity: "table", From: from, To: string(to)}
}
