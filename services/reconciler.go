package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

// Toleransi pembulatan saat membandingkan total ledger vs stream penjualan.
var reconcileEpsilon = decimal.NewFromFloat(0.01)

// BalanceSnapshot adalah jawaban "berapa isi register/wallet sekarang"
// untuk satu pool dalam satu shift.
type BalanceSnapshot struct {
	AccountID uint               `json:"account_id"`
	Kind      models.AccountKind `json:"kind"`
	Opening   decimal.Decimal    `json:"opening"`
	Credits   decimal.Decimal    `json:"credits"`
	Debits    decimal.Decimal    `json:"debits"`
	Current   decimal.Decimal    `json:"current"`
}

// Discrepancy adalah satu temuan selisih; bukan error dan tidak pernah
// memblokir transaksi.
type Discrepancy struct {
	Channel     models.OrderChannel `json:"channel,omitempty"`
	LedgerTotal decimal.Decimal     `json:"ledger_total"`
	StreamTotal decimal.Decimal     `json:"stream_total"`
	Difference  decimal.Decimal     `json:"difference"`
	Detail      string              `json:"detail"`
}

// ReconciliationReport adalah hasil auditSales untuk satu shift.
type ReconciliationReport struct {
	ShiftID     uint          `json:"shift_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Findings    []Discrepancy `json:"findings"`
}

// Clean melaporkan apakah audit bersih dari temuan.
func (r *ReconciliationReport) Clean() bool {
	return len(r.Findings) == 0
}

// Reconciler menghitung saldo point-in-time dan mengecek-silangnya
// terhadap stream penjualan mentah. Reconciler tidak pernah mengoreksi
// sendiri; koreksi selalu reversing entry eksplisit.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

// CurrentBalance = snapshot pembukaan + kredit - debit atas entry yang
// ber-timestamp di dalam jendela shift. Dihitung ulang dari entry, bukan
// dibaca dari kolom balance, supaya bisa dipakai membuktikan konservasi.
func (r *Reconciler) CurrentBalance(tenantID uint, shift *models.Shift, kind models.AccountKind) (*BalanceSnapshot, error) {
	account, err := findAccount(r.db, tenantID, kind)
	if err != nil {
		return nil, err
	}

	opening := decimal.Zero
	for _, balance := range shift.Balances {
		if balance.AccountID == account.ID {
			opening = balance.Opening
			break
		}
	}

	entries, err := r.entriesInWindow(account.ID, shift)
	if err != nil {
		return nil, err
	}

	credits, debits := decimal.Zero, decimal.Zero
	for _, entry := range entries {
		if entry.Direction == models.DirectionCredit {
			credits = credits.Add(entry.Amount)
		} else {
			debits = debits.Add(entry.Amount)
		}
	}

	return &BalanceSnapshot{
		AccountID: account.ID,
		Kind:      kind,
		Opening:   opening,
		Credits:   credits,
		Debits:    debits,
		Current:   opening.Add(credits).Sub(debits),
	}, nil
}

// Balances mengembalikan snapshot kedua pool sekaligus.
func (r *Reconciler) Balances(tenantID uint, shift *models.Shift) ([]BalanceSnapshot, error) {
	snapshots := make([]BalanceSnapshot, 0, 2)
	for _, kind := range []models.AccountKind{models.AccountRegister, models.AccountWallet} {
		snapshot, err := r.CurrentBalance(tenantID, shift, kind)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	return snapshots, nil
}

// AuditSales menjumlahkan entry sale per channel secara independen dan
// membandingkannya dengan stream order yang settle di jendela yang sama.
// Selisih di atas epsilon dilaporkan sebagai temuan; entry income yang
// menduplikasi sebuah settlement juga ditandai.
func (r *Reconciler) AuditSales(tenantID uint, shift *models.Shift) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		ShiftID:     shift.ID,
		GeneratedAt: time.Now(),
		Findings:    []Discrepancy{},
	}

	// sisi ledger: entry kategori sale per channel (net, reversal ikut)
	ledgerTotals := map[models.OrderChannel]decimal.Decimal{}
	var saleEntries []models.LedgerEntry
	query := r.db.Where("tenant_id = ? AND category = ? AND recorded_at >= ?",
		tenantID, models.CategorySale, shift.OpenedAt)
	if shift.ClosedAt != nil {
		query = query.Where("recorded_at <= ?", *shift.ClosedAt)
	}
	if err := query.Find(&saleEntries).Error; err != nil {
		return nil, err
	}
	for _, entry := range saleEntries {
		ledgerTotals[entry.Channel] = ledgerTotals[entry.Channel].Add(entry.Signed())
	}

	// sisi stream: settlement applied di jendela shift, total dari order
	streamTotals := map[models.OrderChannel]decimal.Decimal{}
	var records []models.SettlementRecord
	recQuery := r.db.Where("tenant_id = ? AND status = ? AND created_at >= ?",
		tenantID, models.SettlementApplied, shift.OpenedAt)
	if shift.ClosedAt != nil {
		recQuery = recQuery.Where("created_at <= ?", *shift.ClosedAt)
	}
	if err := recQuery.Find(&records).Error; err != nil {
		return nil, err
	}
	settlementIDs := make(map[string]uint, len(records))
	for _, record := range records {
		var order models.Order
		if err := r.db.First(&order, record.OrderID).Error; err != nil {
			continue
		}
		streamTotals[order.Channel] = streamTotals[order.Channel].Add(order.TotalAmount)
		settlementIDs[record.ID] = record.OrderID
	}

	for _, channel := range []models.OrderChannel{models.ChannelDineIn, models.ChannelTakeaway, models.ChannelDelivery} {
		ledger := ledgerTotals[channel]
		stream := streamTotals[channel]
		diff := ledger.Sub(stream)
		if diff.Abs().GreaterThan(reconcileEpsilon) {
			report.Findings = append(report.Findings, Discrepancy{
				Channel:     channel,
				LedgerTotal: ledger,
				StreamTotal: stream,
				Difference:  diff,
				Detail:      "sale entries and settled orders disagree for this channel",
			})
		}
	}

	// entry income yang mereferensikan settlement = penjualan dihitung dobel
	incomeFindings, err := r.duplicateIncomeFindings(tenantID, shift, settlementIDs)
	if err != nil {
		return nil, err
	}
	report.Findings = append(report.Findings, incomeFindings...)

	if !report.Clean() {
		utils.ErrorLogger.Printf("Reconciliation for shift %d found %d discrepancies", shift.ID, len(report.Findings))
	}
	return report, nil
}

// duplicateIncomeFindings menandai entry income di jendela shift yang
// reference-nya menunjuk settlement/order yang sudah tercatat sebagai sale.
func (r *Reconciler) duplicateIncomeFindings(tenantID uint, shift *models.Shift, settlements map[string]uint) ([]Discrepancy, error) {
	if len(settlements) == 0 {
		return nil, nil
	}

	var incomes []models.LedgerEntry
	query := r.db.Where("tenant_id = ? AND category = ? AND recorded_at >= ?",
		tenantID, models.CategoryIncome, shift.OpenedAt)
	if shift.ClosedAt != nil {
		query = query.Where("recorded_at <= ?", *shift.ClosedAt)
	}
	if err := query.Find(&incomes).Error; err != nil {
		return nil, err
	}

	orderRefs := make(map[string]bool, len(settlements))
	for sid, orderID := range settlements {
		orderRefs[sid] = true
		orderRefs[OrderReference(orderID)] = true
	}

	var findings []Discrepancy
	for _, entry := range incomes {
		if orderRefs[entry.Reference] || orderRefs[entry.IdempotencyKey] {
			findings = append(findings, Discrepancy{
				LedgerTotal: entry.Amount,
				StreamTotal: decimal.Zero,
				Difference:  entry.Amount,
				Detail:      "income entry duplicates a settled sale: " + entry.Reference,
			})
		}
	}
	return findings, nil
}

// entriesInWindow mengambil entry satu account di jendela shift.
func (r *Reconciler) entriesInWindow(accountID uint, shift *models.Shift) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	query := r.db.Where("account_id = ? AND recorded_at >= ?", accountID, shift.OpenedAt)
	if shift.ClosedAt != nil {
		query = query.Where("recorded_at <= ?", *shift.ClosedAt)
	}
	err := query.Order("recorded_at ASC, id ASC").Find(&entries).Error
	return entries, err
}
