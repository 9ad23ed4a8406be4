package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/middlewares"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

type LedgerController struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

func NewLedgerController(db *gorm.DB, ledger *services.LedgerService) *LedgerController {
	return &LedgerController{DB: db, Ledger: ledger}
}

type manualEntryRequest struct {
	Category       models.EntryCategory `json:"category" binding:"required"`
	Amount         decimal.Decimal      `json:"amount" binding:"required"`
	Reason         string               `json:"reason"`
	IdempotencyKey string               `json:"idempotency_key"`
}

// CreateManualEntry -> pemasukan/pengeluaran non-penjualan (setoran,
// kembalian, beli bahan). Penjualan tidak lewat sini, itu jalur settlement.
func (lc *LedgerController) CreateManualEntry(c *gin.Context) {
	kind := models.AccountKind(c.Param("kind"))

	var req manualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := lc.Ledger.RecordManual(middlewares.TenantID(c), kind, req.Category, req.Amount, req.Reason, req.IdempotencyKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Manual %s entry %d recorded on %s account", entry.Category, entry.ID, kind)
	utils.RespondJSON(c, http.StatusCreated, "Entry recorded", entry)
}

// GetEntries -> seluruh entry satu pool, terbaru dulu
func (lc *LedgerController) GetEntries(c *gin.Context) {
	kind := models.AccountKind(c.Param("kind"))
	if !kind.Valid() {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "kind", Reason: "unknown account kind"})
		return
	}

	entries, err := lc.Ledger.Entries(middlewares.TenantID(c), kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Ledger entries", entries)
}

// GetAccount -> cached balance satu pool (bukan hasil reconciler)
func (lc *LedgerController) GetAccount(c *gin.Context) {
	kind := models.AccountKind(c.Param("kind"))
	if !kind.Valid() {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "kind", Reason: "unknown account kind"})
		return
	}

	account, err := lc.Ledger.Account(middlewares.TenantID(c), kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Account balance", account)
}
