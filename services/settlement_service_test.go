package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
)

type settlementStack struct {
	db          *gorm.DB
	recorder    *Recorder
	tables      *TableService
	orders      *OrderService
	clearing    *ClearingMonitor
	settlements *SettlementService
}

func newSettlementStack(t *testing.T) *settlementStack {
	t.Helper()
	db := newTestDB(t)
	recorder := NewRecorder(db)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)
	clearing := NewClearingMonitor(db, tables)
	return &settlementStack{
		db:          db,
		recorder:    recorder,
		tables:      tables,
		orders:      orders,
		clearing:    clearing,
		settlements: NewSettlementService(db, recorder, orders, tables, clearing),
	}
}

func (s *settlementStack) finishKitchen(t *testing.T, order *models.Order) {
	t.Helper()
	for _, item := range order.OrderItems {
		if _, err := s.orders.StartItem(1, order.ID, item.ID); err != nil {
			t.Fatalf("start item: %v", err)
		}
		if _, err := s.orders.FinishItem(1, order.ID, item.ID); err != nil {
			t.Fatalf("finish item: %v", err)
		}
	}
}

func TestSettleTakeawayWritesOneEntry(t *testing.T) {
	s := newSettlementStack(t)
	register := testAccount(t, s.db, models.AccountRegister)

	order, err := s.orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	record, err := s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.SettlementApplied, record.Status)
	assert.Equal(t, order.ID, record.OrderID)

	// tepat satu entry sale, amount dari total order
	var entries []models.LedgerEntry
	s.db.Where("category = ?", models.CategorySale).Find(&entries)
	assert.Len(t, entries, 1)
	assert.Equal(t, models.DirectionCredit, entries[0].Direction)
	assert.Equal(t, models.ChannelTakeaway, entries[0].Channel)
	assert.True(t, entries[0].Amount.Equal(order.TotalAmount))

	updated := testAccount(t, s.db, models.AccountRegister)
	assert.True(t, updated.Balance.Equal(order.TotalAmount),
		"balance = %s", updated.Balance)

	settled, _ := s.orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusFulfilled, settled.Status)
	assert.True(t, settled.Settled())
}

func TestSettleIsIdempotent(t *testing.T) {
	s := newSettlementStack(t)
	register := testAccount(t, s.db, models.AccountRegister)

	order, err := s.orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	first, err := s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)

	// retry "mark paid": record yang sama kembali, tidak ada entry baru
	second, err := s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	s.db.Model(&models.LedgerEntry{}).Where("category = ?", models.CategorySale).Count(&count)
	assert.Equal(t, int64(1), count)

	updated := testAccount(t, s.db, models.AccountRegister)
	assert.True(t, updated.Balance.Equal(order.TotalAmount))
}

func TestSettleDineInAfterKitchenDone(t *testing.T) {
	s := newSettlementStack(t)
	register := testAccount(t, s.db, models.AccountRegister)
	table := seedTable(t, s.db, "A1")

	order, err := s.orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	assert.NoError(t, err)
	s.finishKitchen(t, order)

	readied, _ := s.tables.Get(1, table.ID)
	assert.Equal(t, models.TableStatusReady, readied.Status)

	_, err = s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)

	fulfilled, _ := s.orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusFulfilled, fulfilled.Status)

	// auto-clear: order fulfilled, meja langsung dilepas ke free
	cleared, _ := s.tables.Get(1, table.ID)
	assert.Equal(t, models.TableStatusFree, cleared.Status)
	assert.Nil(t, cleared.OrderID)
}

func TestEarlyPaymentKeepsKitchenRunning(t *testing.T) {
	s := newSettlementStack(t)
	register := testAccount(t, s.db, models.AccountRegister)
	table := seedTable(t, s.db, "A2")

	order, err := s.orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	assert.NoError(t, err)

	// bayar saat dapur belum mulai
	_, err = s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)

	paid, _ := s.tables.Get(1, table.ID)
	assert.Equal(t, models.TableStatusPaid, paid.Status)

	pendingOrder, _ := s.orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusPending, pendingOrder.Status)
	assert.True(t, pendingOrder.Settled())

	// meja belum bisa di-clear, masuk antrian monitor
	assert.Equal(t, 1, s.clearing.PendingCount())

	// dapur selesai -> order langsung fulfilled karena sudah dibayar
	s.finishKitchen(t, order)
	fulfilled, _ := s.orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusFulfilled, fulfilled.Status)
}

func TestDuplicateNotificationCountsOnce(t *testing.T) {
	s := newSettlementStack(t)

	order, err := s.orders.Create(1, models.ChannelDelivery, nil, testItems())
	assert.NoError(t, err)

	notice := GatewayNotification{
		ExternalReference: OrderReference(order.ID),
		Amount:            order.TotalAmount,
		Status:            GatewayStatusApproved,
	}

	first, err := s.settlements.HandleNotification(notice)
	assert.NoError(t, err)
	assert.NotNil(t, first)

	// gateway mengirim ulang notifikasi yang sama
	second, err := s.settlements.HandleNotification(notice)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// uang gateway selalu masuk wallet, dan hanya sekali
	wallet := testAccount(t, s.db, models.AccountWallet)
	assert.True(t, wallet.Balance.Equal(order.TotalAmount),
		"balance = %s", wallet.Balance)

	var count int64
	s.db.Model(&models.LedgerEntry{}).Where("category = ?", models.CategorySale).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestNotificationUnknownReferenceDropped(t *testing.T) {
	s := newSettlementStack(t)

	_, err := s.settlements.HandleNotification(GatewayNotification{
		ExternalReference: "ORD-424242",
		Amount:            decimal.NewFromInt(10000),
		Status:            GatewayStatusApproved,
	})
	var uerr *UnknownReference
	assert.ErrorAs(t, err, &uerr)

	_, err = s.settlements.HandleNotification(GatewayNotification{
		ExternalReference: "TRX-lain",
		Status:            GatewayStatusApproved,
	})
	assert.ErrorAs(t, err, &uerr)

	var count int64
	s.db.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestNotificationNonApprovedIgnored(t *testing.T) {
	s := newSettlementStack(t)

	order, err := s.orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	for _, status := range []string{GatewayStatusPending, GatewayStatusRejected, GatewayStatusCancelled} {
		record, err := s.settlements.HandleNotification(GatewayNotification{
			ExternalReference: OrderReference(order.ID),
			Amount:            order.TotalAmount,
			Status:            status,
		})
		assert.NoError(t, err)
		assert.Nil(t, record)
	}

	var count int64
	s.db.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCancelRejectedAfterSettlement(t *testing.T) {
	s := newSettlementStack(t)
	register := testAccount(t, s.db, models.AccountRegister)

	order, err := s.orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	_, err = s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)

	_, err = s.orders.Cancel(1, order.ID)
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)
}

func TestVoidSettlementWritesReversal(t *testing.T) {
	s := newSettlementStack(t)
	register := testAccount(t, s.db, models.AccountRegister)

	order, err := s.orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	record, err := s.settlements.Apply(1, order.ID, register.ID, nil)
	assert.NoError(t, err)

	voided, err := s.settlements.Void(1, record.ID, "salah pilih order")
	assert.NoError(t, err)
	assert.Equal(t, models.SettlementVoided, voided.Status)

	// entry asli + reversing entry, saldo kembali nol
	var entries []models.LedgerEntry
	s.db.Order("id ASC").Find(&entries)
	assert.Len(t, entries, 2)
	assert.NotNil(t, entries[1].ReversesID)
	assert.Equal(t, entries[0].ID, *entries[1].ReversesID)

	updated := testAccount(t, s.db, models.AccountRegister)
	assert.True(t, updated.Balance.IsZero(), "balance = %s", updated.Balance)

	// void kedua kali ditolak
	_, err = s.settlements.Void(1, record.ID, "lagi")
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)
}

func TestOrderReferenceRoundTrip(t *testing.T) {
	ref := OrderReference(73)
	assert.Equal(t, "ORD-73", ref)

	id, err := ParseOrderReference(ref)
	assert.NoError(t, err)
	assert.Equal(t, uint(73), id)

	_, err = ParseOrderReference("INV-73")
	var uerr *UnknownReference
	assert.ErrorAs(t, err, &uerr)
}
