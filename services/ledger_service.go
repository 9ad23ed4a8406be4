package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

// LedgerService adalah pintu masuk entry manual (pemasukan/pengeluaran
// kasir) di atas Recorder. Entry sale TIDAK lewat sini -- hanya pipeline
// settlement yang boleh menulis sale, supaya satu pembayaran tidak pernah
// tercatat dua kali sebagai sale dan income sekaligus.
type LedgerService struct {
	db       *gorm.DB
	recorder *Recorder
}

func NewLedgerService(db *gorm.DB, recorder *Recorder) *LedgerService {
	return &LedgerService{db: db, recorder: recorder}
}

// RecordManual menulis satu entry income/expense ke pool pilihan kasir.
// idempotencyKey boleh kosong; kalau kosong dibuatkan uuid baru (artinya
// request itu tidak bisa di-retry idempotent oleh client).
func (s *LedgerService) RecordManual(tenantID uint, kind models.AccountKind, category models.EntryCategory, amount decimal.Decimal, reason, idempotencyKey string) (*models.LedgerEntry, error) {
	// opening = setoran modal awal; sale tidak pernah lewat jalur manual
	if category != models.CategoryIncome && category != models.CategoryExpense && category != models.CategoryOpening {
		return nil, &ValidationError{Field: "category", Reason: "manual entries must be opening, income or expense"}
	}
	if !kind.Valid() {
		return nil, &ValidationError{Field: "account", Reason: "unknown account kind"}
	}

	account, err := findAccount(s.db, tenantID, kind)
	if err != nil {
		return nil, err
	}

	direction := models.DirectionCredit
	if category == models.CategoryExpense {
		direction = models.DirectionDebit
	}

	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	entry, err := s.recorder.Record(tenantID, account.ID, EntryDraft{
		Direction:      direction,
		Amount:         amount,
		Category:       category,
		Reference:      reason,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Manual %s of %s recorded on %s (tenant %d)", category, amount, kind, tenantID)
	return entry, nil
}

// Entries mengembalikan riwayat entry satu pool, urut waktu.
func (s *LedgerService) Entries(tenantID uint, kind models.AccountKind) ([]models.LedgerEntry, error) {
	account, err := findAccount(s.db, tenantID, kind)
	if err != nil {
		return nil, err
	}
	var entries []models.LedgerEntry
	err = s.db.Where("account_id = ?", account.ID).
		Order("recorded_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// Account mengembalikan pool beserta running balance-nya.
func (s *LedgerService) Account(tenantID uint, kind models.AccountKind) (*models.LedgerAccount, error) {
	return findAccount(s.db, tenantID, kind)
}
