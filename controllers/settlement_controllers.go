package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/middlewares"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

type SettlementController struct {
	DB          *gorm.DB
	Settlements *services.SettlementService
	Gateway     *services.GatewayService
	Ledger      *services.LedgerService
}

func NewSettlementController(db *gorm.DB, settlements *services.SettlementService, gateway *services.GatewayService, ledger *services.LedgerService) *SettlementController {
	return &SettlementController{DB: db, Settlements: settlements, Gateway: gateway, Ledger: ledger}
}

// SettleOrder -> "mark paid" manual oleh kasir. Kasir memilih pool:
// cash masuk register, selain itu wallet. Aman di-retry.
func (pc *SettlementController) SettleOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		Account models.AccountKind `json:"account"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Account == "" {
		req.Account = models.AccountRegister
	}
	if !req.Account.Valid() {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "account", Reason: "unknown account kind"})
		return
	}

	tenantID := middlewares.TenantID(c)
	account, err := pc.Ledger.Account(tenantID, req.Account)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	record, err := pc.Settlements.Apply(tenantID, uint(orderID), account.ID, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d settled into %s account (settlement=%s)", orderID, req.Account, record.ID)
	utils.RespondJSON(c, http.StatusOK, "Order settled", record)
}

// GetSettlementByOrder -> record settlement untuk satu order
func (pc *SettlementController) GetSettlementByOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var record models.SettlementRecord
	err := pc.DB.Where("order_id = ? AND tenant_id = ?", orderID, middlewares.TenantID(c)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, &services.UnknownReference{Reference: c.Param("order_id")})
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settlement detail", record)
}

// VoidSettlement -> koreksi lewat reversing entry, bukan edit/hapus
func (pc *SettlementController) VoidSettlement(c *gin.Context) {
	settlementID := c.Param("settlement_id")

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	record, err := pc.Settlements.Void(middlewares.TenantID(c), settlementID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Settlement %s voided: %s", settlementID, req.Reason)
	utils.RespondJSON(c, http.StatusOK, "Settlement voided", record)
}

// HandleGatewayWebhook menerima notifikasi pembayaran dari gateway.
// Delivery-nya at-least-once: signature salah ditolak, reference tak
// dikenal di-ack supaya gateway berhenti mengulang, duplikat jatuh ke
// record yang sudah ada.
func (pc *SettlementController) HandleGatewayWebhook(c *gin.Context) {
	var payload services.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.ErrorLogger.Printf("Webhook payload malformed: %v", err)
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !pc.Gateway.ValidateSignature(payload.OrderRef, payload.StatusCode, payload.GrossAmount, payload.SignatureKey) {
		utils.ErrorLogger.Printf("Webhook signature mismatch for %s", payload.OrderRef)
		utils.RespondError(c, http.StatusForbidden, errors.New("invalid signature"))
		return
	}

	notice := pc.Gateway.Normalize(payload)
	record, err := pc.Settlements.HandleNotification(notice)
	if err != nil {
		var unknown *services.UnknownReference
		if errors.As(err, &unknown) {
			// ack, jangan biarkan gateway retry reference yang memang salah
			utils.RespondJSON(c, http.StatusOK, "Notification discarded", nil)
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification processed", record)
}
