package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/events"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

// Status notifikasi gateway yang sudah dinormalisasi.
const (
	GatewayStatusApproved  = "approved"
	GatewayStatusRejected  = "rejected"
	GatewayStatusPending   = "pending"
	GatewayStatusCancelled = "cancelled"
)

// GatewayNotification adalah payload gateway yang sudah diverifikasi
// signature-nya oleh GatewayService sebelum masuk pipeline.
type GatewayNotification struct {
	ExternalReference string          `json:"external_reference"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	ChannelHint       string          `json:"channel_hint"`
}

// SettlementService mengubah satu pembayaran (notifikasi gateway atau
// "mark paid" manual) menjadi tepat satu entry kas, order fulfilled, dan
// meja paid. Urutan di Apply disengaja: tulis buku kas dulu, efek
// best-effort belakangan. Kebenaran finansial tidak boleh bergantung pada
// suksesnya aksi UI hilir.
type SettlementService struct {
	db       *gorm.DB
	recorder *Recorder
	orders   *OrderService
	tables   *TableService
	clearing *ClearingMonitor
}

func NewSettlementService(db *gorm.DB, recorder *Recorder, orders *OrderService, tables *TableService, clearing *ClearingMonitor) *SettlementService {
	return &SettlementService{
		db:       db,
		recorder: recorder,
		orders:   orders,
		tables:   tables,
		clearing: clearing,
	}
}

// settlementID menurunkan id settlement yang deterministik per order,
// sehingga notifikasi yang diterima berulang kali menghasilkan idempotency
// key yang sama dan Recorder menolaknya jadi duplikat.
func settlementID(orderID uint) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("settlement-%d", orderID))).String()
}

// Apply menjalankan pipeline settlement untuk satu order ke satu account.
// Semua langkahnya aman di-retry.
func (s *SettlementService) Apply(tenantID, orderID, accountID uint, gatewayRef *string) (*models.SettlementRecord, error) {
	// 1. resolve order
	order, err := s.orders.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, &InvalidTransition{Entity: "order", From: string(order.Status), To: string(models.OrderStatusFulfilled)}
	}

	// 2. settlement yang sudah applied di-short-circuit (guard notifikasi ganda)
	var existing models.SettlementRecord
	err = s.db.Where("order_id = ? AND tenant_id = ?", orderID, tenantID).First(&existing).Error
	if err == nil {
		if existing.Status == models.SettlementApplied {
			return &existing, nil
		}
		return nil, &InvalidTransition{Entity: "settlement", From: string(existing.Status), To: string(models.SettlementApplied)}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sid := settlementID(orderID)

	// 3+4. satu entry sale, idempotency key = settlement id
	entry, err := s.recorder.Record(tenantID, accountID, EntryDraft{
		Direction:      models.DirectionCredit,
		Amount:         order.TotalAmount,
		Category:       models.CategorySale,
		Channel:        order.Channel,
		Reference:      fmt.Sprintf("order %d", orderID),
		IdempotencyKey: sid,
	})
	if err != nil {
		return nil, err
	}

	// tandai order sudah settled sebelum transisi state
	s.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND settlement_id IS NULL", orderID, tenantID).
		Updates(map[string]interface{}{
			"settlement_id": sid,
			"updated_at":    time.Now(),
		})

	// 5. order -> fulfilled; meja dine_in -> paid.
	// Dine-in yang dibayar duluan (early payment) tetap di dapur: order-nya
	// baru fulfilled saat semua item selesai, meja sudah paid sekarang.
	order, err = s.orders.Get(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Channel == models.ChannelDineIn {
		if order.TableID != nil {
			table, terr := s.tables.Get(tenantID, *order.TableID)
			if terr != nil {
				return nil, terr
			}
			if table.Status != models.TableStatusPaid {
				if _, terr := s.tables.Settle(tenantID, *order.TableID); terr != nil {
					return nil, terr
				}
			}
		}
		if order.Status == models.OrderStatusReady {
			if _, err := s.orders.Advance(tenantID, orderID, models.OrderStatusFulfilled); err != nil {
				return nil, err
			}
		}
	} else if order.Status != models.OrderStatusFulfilled {
		if _, err := s.orders.Advance(tenantID, orderID, models.OrderStatusFulfilled); err != nil {
			return nil, err
		}
	}

	// 6. persist settlement record
	record := models.SettlementRecord{
		ID:         sid,
		TenantID:   tenantID,
		OrderID:    orderID,
		AccountID:  accountID,
		GatewayRef: gatewayRef,
		EntryID:    &entry.ID,
		Status:     models.SettlementApplied,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isDuplicateKey(err) {
			// retry paralel sudah menulis record yang sama
			if ferr := s.db.Where("id = ?", sid).First(&record).Error; ferr == nil {
				return &record, nil
			}
		}
		return nil, err
	}

	events.BroadcastSettlement(events.EventSettlementApplied, record)
	events.BroadcastStaffNotification(tenantID,
		fmt.Sprintf("Order %d settled (%s)", orderID, utils.FormatCurrencyIDR(order.TotalAmount.InexactFloat64())))

	// 7. best-effort: auto-clear meja. Gagal di sini TIDAK membatalkan
	// langkah 1-6 -- uangnya sudah sah berpindah.
	s.tryAutoClear(tenantID, orderID)

	return &record, nil
}

// HandleNotification mengkonsumsi notifikasi gateway yang sudah
// dinormalisasi. Reference tak dikenal dilog lalu dibuang, tidak di-retry.
// Uang gateway selalu masuk wallet.
func (s *SettlementService) HandleNotification(notice GatewayNotification) (*models.SettlementRecord, error) {
	if notice.Status != GatewayStatusApproved {
		utils.InfoLogger.Printf("Gateway notice %s ignored (status=%s)", notice.ExternalReference, notice.Status)
		return nil, nil
	}

	orderID, err := ParseOrderReference(notice.ExternalReference)
	if err != nil {
		utils.ErrorLogger.Printf("Dropping gateway notice: %v", err)
		return nil, err
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		uerr := &UnknownReference{Reference: notice.ExternalReference}
		utils.ErrorLogger.Printf("Dropping gateway notice: %v", uerr)
		return nil, uerr
	}

	if !notice.Amount.IsZero() && !notice.Amount.Equal(order.TotalAmount) {
		utils.ErrorLogger.Printf("Gateway notice %s amount %s differs from order total %s; ledger uses order total",
			notice.ExternalReference, notice.Amount, order.TotalAmount)
	}

	wallet, err := findAccount(s.db, order.TenantID, models.AccountWallet)
	if err != nil {
		return nil, err
	}

	ref := notice.ExternalReference
	return s.Apply(order.TenantID, order.ID, wallet.ID, &ref)
}

// Void membalik settlement secara manual: status -> voided plus satu
// reversing entry yang mereferensikan entry aslinya.
func (s *SettlementService) Void(tenantID uint, settlementID, reason string) (*models.SettlementRecord, error) {
	var record models.SettlementRecord
	err := s.db.Where("id = ? AND tenant_id = ?", settlementID, tenantID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnknownReference{Reference: settlementID}
		}
		return nil, err
	}
	if record.Status != models.SettlementApplied {
		return nil, &InvalidTransition{Entity: "settlement", From: string(record.Status), To: string(models.SettlementVoided)}
	}

	var original models.LedgerEntry
	if err := s.db.First(&original, *record.EntryID).Error; err != nil {
		return nil, err
	}

	if _, err := s.recorder.Reverse(tenantID, &original, "void-"+settlementID, reason); err != nil {
		return nil, err
	}

	res := s.db.Model(&models.SettlementRecord{}).
		Where("id = ? AND status = ?", settlementID, models.SettlementApplied).
		Updates(map[string]interface{}{
			"status":     models.SettlementVoided,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	record.Status = models.SettlementVoided
	events.BroadcastSettlement(events.EventSettlementVoided, record)
	utils.InfoLogger.Printf("Settlement %s voided: %s", settlementID, reason)
	return &record, nil
}

// tryAutoClear mengosongkan meja dine_in yang ordernya sudah fulfilled.
// Kegagalan hanya dilog dan diantrikan untuk clearing manual/retry.
func (s *SettlementService) tryAutoClear(tenantID, orderID uint) {
	order, err := s.orders.Get(tenantID, orderID)
	if err != nil || order.Channel != models.ChannelDineIn || order.TableID == nil {
		return
	}
	if order.Status != models.OrderStatusFulfilled {
		// early payment: dapur belum selesai, biarkan ClearingMonitor
		// atau staff yang mengosongkan nanti
		s.clearing.Enqueue(tenantID, *order.TableID)
		return
	}
	if _, err := s.tables.Clear(tenantID, *order.TableID); err != nil {
		utils.ErrorLogger.Printf("Auto-clear table %d failed, queued for retry: %v", *order.TableID, err)
		s.clearing.Enqueue(tenantID, *order.TableID)
	}
}

// OrderReference membangun reference yang dikirim ke gateway.
func OrderReference(orderID uint) string {
	return fmt.Sprintf("ORD-%d", orderID)
}

// ParseOrderReference membaca kembali reference gateway menjadi order id.
func ParseOrderReference(ref string) (uint, error) {
	raw, ok := strings.CutPrefix(ref, "ORD-")
	if !ok {
		return 0, &UnknownReference{Reference: ref}
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &UnknownReference{Reference: ref}
	}
	return uint(id), nil
}
