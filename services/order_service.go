package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/events"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

// OrderItemReq adalah satu baris pesanan dari kasir/customer.
type OrderItemReq struct {
	Name     string          `json:"name" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Notes    string          `json:"notes"`
}

// OrderService menjalankan state machine order:
// pending -> preparing -> ready -> fulfilled, tidak pernah mundur.
// Cancel terminal dan hanya dari pending/preparing.
type OrderService struct {
	db     *gorm.DB
	tables *TableService
}

func NewOrderService(db *gorm.DB, tables *TableService) *OrderService {
	return &OrderService{db: db, tables: tables}
}

// Create membuat order baru. Untuk dine_in, meja wajib ada dan langsung
// dibuka (free -> in_kitchen) dengan order ini menempel.
func (s *OrderService) Create(tenantID uint, channel models.OrderChannel, tableID *uint, items []OrderItemReq) (*models.Order, error) {
	if !channel.Valid() {
		return nil, &ValidationError{Field: "channel", Reason: "unknown channel"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "order needs at least one item"}
	}
	if channel == models.ChannelDineIn && tableID == nil {
		return nil, &ValidationError{Field: "table_id", Reason: "dine_in order requires a table"}
	}
	if channel != models.ChannelDineIn && tableID != nil {
		return nil, &ValidationError{Field: "table_id", Reason: "only dine_in orders attach to a table"}
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		if item.Price.IsNegative() {
			return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := models.Order{
		TenantID:    tenantID,
		Channel:     channel,
		Status:      models.OrderStatusPending,
		TotalAmount: total,
		TableID:     tableID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, item := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Notes:     item.Notes,
				Status:    models.ItemStatusPending,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if channel == models.ChannelDineIn {
		if _, err := s.tables.Open(tenantID, *tableID, order.ID); err != nil {
			// Meja tidak free: order batal dibuat supaya tidak yatim.
			s.db.Where("order_id = ?", order.ID).Delete(&models.OrderItem{})
			s.db.Delete(&models.Order{}, order.ID)
			return nil, err
		}
	}

	events.BroadcastOrderUpdate(order)
	utils.InfoLogger.Printf("Order %d created (channel=%s, total=%s)", order.ID, channel, total)
	return s.Get(tenantID, order.ID)
}

// Advance memindahkan status order maju satu arah. Mundur selalu ditolak;
// fulfilled untuk dine_in hanya lewat settlement + dapur selesai.
func (s *OrderService) Advance(tenantID, orderID uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() || next == models.OrderStatusCancelled {
		return nil, &ValidationError{Field: "status", Reason: "unknown or non-advance status"}
	}

	order, err := s.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if next.Rank() <= order.Status.Rank() || order.Status == models.OrderStatusCancelled {
		return nil, &InvalidTransition{Entity: "order", From: string(order.Status), To: string(next)}
	}
	if next == models.OrderStatusFulfilled && !order.Settled() {
		return nil, &InvalidTransition{Entity: "order", From: string(order.Status), To: string(next)}
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", orderID, tenantID, order.Status).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// status berubah di bawah kita; baca ulang untuk pesan akurat
		current, _ := s.Get(tenantID, orderID)
		from := "unknown"
		if current != nil {
			from = string(current.Status)
		}
		return nil, &InvalidTransition{Entity: "order", From: from, To: string(next)}
	}

	updated, err := s.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	events.BroadcastOrderUpdate(*updated)
	return updated, nil
}

// Cancel membatalkan order. Hanya dari pending/preparing, tidak pernah
// dari ready (kerja dapur yang selesai tak boleh dibuang diam-diam), dan
// ditolak setelah settlement applied. Cancel tidak menulis entry kas.
func (s *OrderService) Cancel(tenantID, orderID uint) (*models.Order, error) {
	order, err := s.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Settled() {
		return nil, &InvalidTransition{Entity: "order", From: string(order.Status), To: string(models.OrderStatusCancelled)}
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status IN ?", orderID, tenantID,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusPreparing}).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusCancelled,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &InvalidTransition{Entity: "order", From: string(order.Status), To: string(models.OrderStatusCancelled)}
	}

	// Meja dine_in dilepas lagi ke free
	if order.Channel == models.ChannelDineIn && order.TableID != nil {
		s.db.Model(&models.Table{}).
			Where("id = ? AND tenant_id = ? AND order_id = ?", *order.TableID, tenantID, orderID).
			Updates(map[string]interface{}{
				"status":     models.TableStatusFree,
				"order_id":   nil,
				"updated_at": time.Now(),
			})
	}

	updated, err := s.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	events.BroadcastOrderUpdate(*updated)
	utils.InfoLogger.Printf("Order %d cancelled", orderID)
	return updated, nil
}

/*
========================================
 ITEM-LEVEL COOKING
========================================
*/

// StartItem -> dapur menandai 1 item dari "pending" => "in_progress".
// Item pertama yang mulai dimasak membawa order pending => preparing.
func (s *OrderService) StartItem(tenantID, orderID, itemID uint) (*models.OrderItem, error) {
	order, err := s.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPreparing {
		return nil, &InvalidTransition{Entity: "order", From: string(order.Status), To: string(models.OrderStatusPreparing)}
	}

	var item models.OrderItem
	if err := s.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
		return nil, err
	}
	if item.Status != models.ItemStatusPending {
		return nil, &InvalidTransition{Entity: "order_item", From: string(item.Status), To: string(models.ItemStatusInProgress)}
	}

	item.Status = models.ItemStatusInProgress
	item.UpdatedAt = time.Now()
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusPending {
		if _, err := s.Advance(tenantID, orderID, models.OrderStatusPreparing); err != nil {
			var it *InvalidTransition
			if !errors.As(err, &it) {
				return nil, err
			}
			// race dengan item lain yang sudah memajukan order; aman
		}
	}

	events.BroadcastKitchenUpdate(tenantID, item)
	return &item, nil
}

// FinishItem -> dapur menandai 1 item => "ready". Kalau semua item ready,
// order => ready; meja dine_in ikut in_kitchen => ready. Order yang sudah
// dibayar duluan langsung fulfilled di sini.
func (s *OrderService) FinishItem(tenantID, orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := s.db.Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
		return nil, err
	}
	if item.Status != models.ItemStatusInProgress {
		return nil, &InvalidTransition{Entity: "order_item", From: string(item.Status), To: string(models.ItemStatusReady)}
	}

	item.Status = models.ItemStatusReady
	item.UpdatedAt = time.Now()
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}

	if err := s.AdvanceKitchen(tenantID, orderID); err != nil {
		return nil, err
	}

	events.BroadcastKitchenUpdate(tenantID, item)
	return &item, nil
}

// AdvanceKitchen memeriksa kesiapan seluruh item. Kesiapan parsial tidak
// mengubah apa-apa; begitu semua item ready, order maju ke ready (atau
// fulfilled kalau sudah dibayar) dan meja dine_in ikut maju.
func (s *OrderService) AdvanceKitchen(tenantID, orderID uint) error {
	order, err := s.Get(tenantID, orderID)
	if err != nil {
		return err
	}

	var pending int64
	if err := s.db.Model(&models.OrderItem{}).
		Where("order_id = ? AND status <> ?", orderID, models.ItemStatusReady).
		Count(&pending).Error; err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}

	if order.Status.Rank() < models.OrderStatusReady.Rank() {
		if _, err := s.Advance(tenantID, orderID, models.OrderStatusReady); err != nil {
			return err
		}
	}

	// Early payment: settlement sudah applied, dapur baru selesai sekarang.
	if order.Settled() && order.Status.Rank() < models.OrderStatusFulfilled.Rank() {
		if _, err := s.Advance(tenantID, orderID, models.OrderStatusFulfilled); err != nil {
			return err
		}
	}

	if order.Channel == models.ChannelDineIn && order.TableID != nil {
		table, err := s.tables.Get(tenantID, *order.TableID)
		if err != nil {
			return err
		}
		if table.Status == models.TableStatusInKitchen {
			if _, err := s.tables.MarkReady(tenantID, *order.TableID); err != nil {
				return err
			}
		}
	}

	return nil
}

// Get mengambil satu order milik tenant beserta item-nya.
func (s *OrderService) Get(tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("OrderItems").
		Where("id = ? AND tenant_id = ?", orderID, tenantID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownReference{Reference: fmt.Sprintf("order %d", orderID)}
		}
		return nil, err
	}
	return &order, nil
}

// List mengambil seluruh order tenant, terbaru dulu.
func (s *OrderService) List(tenantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("OrderItems").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
