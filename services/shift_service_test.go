package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kasirapp/pos-backend/models"
)

func TestOpenShiftSnapshotsBalances(t *testing.T) {
	db := newTestDB(t)
	recorder := NewRecorder(db)
	ledger := NewLedgerService(db, recorder)
	shifts := NewShiftService(db)

	// modal awal sebelum shift dibuka
	_, err := ledger.RecordManual(1, models.AccountRegister, models.CategoryIncome,
		decimal.NewFromInt(100000), "modal kasir", "float-awal")
	assert.NoError(t, err)

	shift, err := shifts.OpenShift(1, 7)
	assert.NoError(t, err)
	assert.True(t, shift.Open())
	assert.Equal(t, uint(7), shift.OpenedBy)
	assert.Len(t, shift.Balances, 2)

	register := testAccount(t, db, models.AccountRegister)
	for _, balance := range shift.Balances {
		if balance.AccountID == register.ID {
			assert.True(t, balance.Opening.Equal(decimal.NewFromInt(100000)),
				"opening = %s", balance.Opening)
		} else {
			assert.True(t, balance.Opening.IsZero())
		}
	}
}

func TestOpenShiftRejectedWhileOpen(t *testing.T) {
	db := newTestDB(t)
	shifts := NewShiftService(db)

	_, err := shifts.OpenShift(1, 7)
	assert.NoError(t, err)

	_, err = shifts.OpenShift(1, 8)
	var itErr *InvalidTransition
	assert.ErrorAs(t, err, &itErr)
}

func TestCloseShiftFreezesWindow(t *testing.T) {
	db := newTestDB(t)
	shifts := NewShiftService(db)

	opened, err := shifts.OpenShift(1, 7)
	assert.NoError(t, err)

	closed, err := shifts.CloseShift(1)
	assert.NoError(t, err)
	assert.Equal(t, opened.ID, closed.ID)
	assert.False(t, closed.Open())

	// tanpa shift terbuka, close berikutnya gagal
	_, err = shifts.CloseShift(1)
	var uerr *UnknownReference
	assert.ErrorAs(t, err, &uerr)

	// shift baru boleh dibuka lagi
	reopened, err := shifts.OpenShift(1, 7)
	assert.NoError(t, err)
	assert.NotEqual(t, opened.ID, reopened.ID)
}

func TestOpenShiftRequiresAccounts(t *testing.T) {
	db := newTestDB(t)
	shifts := NewShiftService(db)

	// tenant 2 belum punya account sama sekali
	_, err := shifts.OpenShift(2, 7)
	var uerr *UnknownReference
	assert.ErrorAs(t, err, &uerr)
}
