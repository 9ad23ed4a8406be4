package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

// Batas retry compare-and-swap saat update balance.
const balanceCASAttempts = 5

// EntryDraft adalah entry yang belum ditulis. Recorder yang memberi ID,
// timestamp default, dan memvalidasi isinya.
type EntryDraft struct {
	Direction      models.EntryDirection
	Amount         decimal.Decimal
	Category       models.EntryCategory
	Channel        models.OrderChannel
	Reference      string
	ReversesID     *uint
	IdempotencyKey string
	RecordedAt     time.Time
}

// Recorder menulis tepat satu LedgerEntry ke satu account secara
// idempotent, lalu menyesuaikan running balance lewat CAS.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record memvalidasi draft lalu menulisnya ke account. Kalau idempotency
// key sudah pernah dipakai di account itu (sepanjang sejarah, bukan cuma
// shift berjalan), entry lama dikembalikan tanpa menulis apa pun.
func (r *Recorder) Record(tenantID, accountID uint, draft EntryDraft) (*models.LedgerEntry, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var account models.LedgerAccount
	if err := r.db.Where("id = ? AND tenant_id = ?", accountID, tenantID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "account_id", Reason: "account not found for tenant"}
		}
		return nil, err
	}

	// Cek idempotency lebih dulu supaya retry jadi no-op murah.
	if prior, ok := r.findExisting(accountID, draft.IdempotencyKey); ok {
		return prior, nil
	}

	recordedAt := draft.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	entry := models.LedgerEntry{
		AccountID:      accountID,
		TenantID:       tenantID,
		Direction:      draft.Direction,
		Amount:         draft.Amount,
		Category:       draft.Category,
		Channel:        draft.Channel,
		Reference:      draft.Reference,
		ReversesID:     draft.ReversesID,
		IdempotencyKey: draft.IdempotencyKey,
		RecordedAt:     recordedAt,
		CreatedAt:      time.Now(),
	}

	for attempt := 0; attempt < balanceCASAttempts; attempt++ {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			var current models.LedgerAccount
			if err := tx.First(&current, accountID).Error; err != nil {
				return err
			}

			newBalance := current.Balance.Add(entry.Signed())

			// CAS: update hanya jika version belum berubah sejak dibaca.
			res := tx.Model(&models.LedgerAccount{}).
				Where("id = ? AND version = ?", current.ID, current.Version).
				Updates(map[string]interface{}{
					"balance": newBalance,
					"version": current.Version + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &ConcurrencyConflict{AccountID: accountID, Attempts: attempt + 1}
			}

			return tx.Create(&entry).Error
		})
		if err == nil {
			return &entry, nil
		}

		var conflict *ConcurrencyConflict
		if errors.As(err, &conflict) {
			// Kalah race: coba lagi dari pembacaan balance terbaru.
			continue
		}
		if isDuplicateKey(err) {
			// Retry paralel menang duluan; kembalikan entry miliknya.
			if prior, ok := r.findExisting(accountID, draft.IdempotencyKey); ok {
				return prior, nil
			}
		}
		return nil, err
	}

	utils.ErrorLogger.Printf("account %d: CAS retries exhausted for key %s", accountID, draft.IdempotencyKey)
	return nil, &ConcurrencyConflict{AccountID: accountID, Attempts: balanceCASAttempts}
}

// Reverse menulis entry pembalik untuk koreksi. Entry asli tidak disentuh.
func (r *Recorder) Reverse(tenantID uint, original *models.LedgerEntry, idempotencyKey, reason string) (*models.LedgerEntry, error) {
	direction := models.DirectionDebit
	if original.Direction == models.DirectionDebit {
		direction = models.DirectionCredit
	}
	return r.Record(tenantID, original.AccountID, EntryDraft{
		Direction:      direction,
		Amount:         original.Amount,
		Category:       original.Category,
		Channel:        original.Channel,
		Reference:      reason,
		ReversesID:     &original.ID,
		IdempotencyKey: idempotencyKey,
	})
}

func (r *Recorder) findExisting(accountID uint, key string) (*models.LedgerEntry, bool) {
	var prior models.LedgerEntry
	err := r.db.Where("account_id = ? AND idempotency_key = ?", accountID, key).First(&prior).Error
	if err != nil {
		return nil, false
	}
	return &prior, true
}

func validateDraft(draft EntryDraft) error {
	if draft.IdempotencyKey == "" {
		return &ValidationError{Field: "idempotency_key", Reason: "must not be empty"}
	}
	if !draft.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !draft.Direction.Valid() {
		return &ValidationError{Field: "direction", Reason: "unknown direction"}
	}
	if !draft.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	// sale wajib punya channel, kategori lain wajib tanpa channel.
	if draft.Category == models.CategorySale {
		if !draft.Channel.Valid() {
			return &ValidationError{Field: "channel", Reason: "sale entry requires a valid channel"}
		}
	} else if draft.Channel != "" {
		return &ValidationError{Field: "channel", Reason: "channel is only allowed on sale entries"}
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
