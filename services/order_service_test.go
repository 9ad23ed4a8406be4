package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kasirapp/pos-backend/models"
)

func testItems() []OrderItemReq {
	return []OrderItemReq{
		{Name: "Nasi Goreng", Quantity: 2, Price: decimal.NewFromInt(25000)},
		{Name: "Es Teh", Quantity: 1, Price: decimal.NewFromInt(5000)},
	}
}

func TestCreateDineInOpensTable(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)
	table := seedTable(t, db, "A1")

	order, err := orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(55000)),
		"total = %s", order.TotalAmount)
	assert.Len(t, order.OrderItems, 2)

	occupied, err := tables.Get(1, table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusInKitchen, occupied.Status)
	assert.NotNil(t, occupied.OrderID)
	assert.Equal(t, order.ID, *occupied.OrderID)
}

func TestCreateValidation(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)
	table := seedTable(t, db, "A1")

	tests := []struct {
		name    string
		channel models.OrderChannel
		tableID *uint
		items   []OrderItemReq
	}{
		{"unknown channel", models.OrderChannel("drive_thru"), nil, testItems()},
		{"empty items", models.ChannelTakeaway, nil, nil},
		{"dine_in without table", models.ChannelDineIn, nil, testItems()},
		{"takeaway with table", models.ChannelTakeaway, &table.ID, testItems()},
		{"zero quantity", models.ChannelTakeaway, nil, []OrderItemReq{
			{Name: "Kopi", Quantity: 0, Price: decimal.NewFromInt(10000)},
		}},
		{"negative price", models.ChannelTakeaway, nil, []OrderItemReq{
			{Name: "Kopi", Quantity: 1, Price: decimal.NewFromInt(-1)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orders.Create(1, tt.channel, tt.tableID, tt.items)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateDineInOnBusyTable(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)
	table := seedTable(t, db, "A1")

	_, err := orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	assert.NoError(t, err)

	// meja masih in_kitchen: order kedua ditolak dan tidak tersisa yatim
	_, err = orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAdvanceIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)

	order, err := orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	advanced, err := orders.Advance(1, order.ID, models.OrderStatusPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, advanced.Status)

	// mundur selalu ditolak
	_, err = orders.Advance(1, order.ID, models.OrderStatusPending)
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)

	// fulfilled tanpa settlement ditolak
	_, err = orders.Advance(1, order.ID, models.OrderStatusFulfilled)
	assert.ErrorAs(t, err, &itErr)

	// status sama juga ditolak
	_, err = orders.Advance(1, order.ID, models.OrderStatusPreparing)
	assert.ErrorAs(t, err, &itErr)
}

func TestCancelFreesDineInTable(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)
	table := seedTable(t, db, "B2")

	order, err := orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	assert.NoError(t, err)

	cancelled, err := orders.Cancel(1, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	freed, err := tables.Get(1, table.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, freed.Status)
	assert.Nil(t, freed.OrderID)
}

func TestCancelRejectedFromReady(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)

	order, err := orders.Create(1, models.ChannelTakeaway, nil, testItems())
	assert.NoError(t, err)

	// dapur menyelesaikan semua item -> order ready
	for _, item := range order.OrderItems {
		_, err = orders.StartItem(1, order.ID, item.ID)
		assert.NoError(t, err)
		_, err = orders.FinishItem(1, order.ID, item.ID)
		assert.NoError(t, err)
	}

	current, err := orders.Get(1, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusReady, current.Status)

	// kerja dapur yang selesai tidak boleh dibuang diam-diam
	_, err = orders.Cancel(1, order.ID)
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)
}

func TestKitchenItemFlow(t *testing.T) {
	db := newTestDB(t)
	tables := NewTableService(db)
	orders := NewOrderService(db, tables)
	table := seedTable(t, db, "C3")

	order, err := orders.Create(1, models.ChannelDineIn, &table.ID, testItems())
	assert.NoError(t, err)

	first, second := order.OrderItems[0], order.OrderItems[1]

	// item pertama mulai -> order ikut preparing
	started, err := orders.StartItem(1, order.ID, first.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemStatusInProgress, started.Status)

	current, _ := orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusPreparing, current.Status)

	// satu item selesai belum membuat order ready
	_, err = orders.FinishItem(1, order.ID, first.ID)
	assert.NoError(t, err)
	current, _ = orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusPreparing, current.Status)

	// finish tanpa start ditolak
	_, err = orders.FinishItem(1, order.ID, second.ID)
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)

	_, err = orders.StartItem(1, order.ID, second.ID)
	assert.NoError(t, err)
	_, err = orders.FinishItem(1, order.ID, second.ID)
	assert.NoError(t, err)

	// semua item ready -> order ready, meja ikut ready
	current, _ = orders.Get(1, order.ID)
	assert.Equal(t, models.OrderStatusReady, current.Status)

	readied, _ := tables.Get(1, table.ID)
	assert.Equal(t, models.TableStatusReady, readied.Status)
}

func TestGetUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderService(db, NewTableService(db))

	_, err := orders.Get(1, 999)
	var uerr *UnknownReference
	assert.ErrorAs(t, err, &uerr)
}
