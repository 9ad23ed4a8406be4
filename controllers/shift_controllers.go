package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/middlewares"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

type ShiftController struct {
	DB         *gorm.DB
	Shifts     *services.ShiftService
	Reconciler *services.Reconciler
}

func NewShiftController(db *gorm.DB, shifts *services.ShiftService, reconciler *services.Reconciler) *ShiftController {
	return &ShiftController{DB: db, Shifts: shifts, Reconciler: reconciler}
}

// OpenShift -> buka kasir; snapshot saldo awal semua account
func (sc *ShiftController) OpenShift(c *gin.Context) {
	shift, err := sc.Shifts.OpenShift(middlewares.TenantID(c), middlewares.UserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Shift %d opened by user %d", shift.ID, shift.OpenedBy)
	utils.RespondJSON(c, http.StatusCreated, "Shift opened", shift)
}

// CloseShift -> tutup kasir; jendela akuntansi dibekukan
func (sc *ShiftController) CloseShift(c *gin.Context) {
	shift, err := sc.Shifts.CloseShift(middlewares.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Shift %d closed", shift.ID)
	utils.RespondJSON(c, http.StatusOK, "Shift closed", shift)
}

func (sc *ShiftController) GetCurrentShift(c *gin.Context) {
	shift, err := sc.Shifts.Current(middlewares.TenantID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current shift", shift)
}

// GetBalances -> saldo register + wallet saat ini dalam shift berjalan
func (sc *ShiftController) GetBalances(c *gin.Context) {
	tenantID := middlewares.TenantID(c)

	shift, err := sc.Shifts.Current(tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	snapshots, err := sc.Reconciler.Balances(tenantID, shift)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current balances", snapshots)
}

// GetBalanceByKind -> saldo satu pool saja (register atau wallet)
func (sc *ShiftController) GetBalanceByKind(c *gin.Context) {
	tenantID := middlewares.TenantID(c)

	kind := models.AccountKind(c.Param("kind"))
	if !kind.Valid() {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "kind", Reason: "unknown account kind"})
		return
	}

	shift, err := sc.Shifts.Current(tenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	snapshot, err := sc.Reconciler.CurrentBalance(tenantID, shift, kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current balance", snapshot)
}

// GetReconciliation -> audit silang ledger vs stream penjualan per shift
func (sc *ShiftController) GetReconciliation(c *gin.Context) {
	tenantID := middlewares.TenantID(c)

	var shift *models.Shift
	var err error
	if raw := c.Param("shift_id"); raw != "" && raw != "current" {
		shiftID, _ := strconv.Atoi(raw)
		shift, err = sc.Shifts.Get(tenantID, uint(shiftID))
	} else {
		shift, err = sc.Shifts.Current(tenantID)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	report, err := sc.Reconciler.AuditSales(tenantID, shift)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if !report.Clean() {
		utils.ErrorLogger.Printf("Reconciliation for shift %d found %d discrepancies", shift.ID, len(report.Findings))
	}
	utils.RespondJSON(c, http.StatusOK, "Reconciliation report", report)
}
