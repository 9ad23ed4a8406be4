package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

type MonitorController struct {
	Clearing *services.ClearingMonitor
}

func NewMonitorController(clearing *services.ClearingMonitor) *MonitorController {
	return &MonitorController{Clearing: clearing}
}

// GetClearingStats -> metrik antrian clearing meja (admin)
func (mc *MonitorController) GetClearingStats(c *gin.Context) {
	metrics := mc.Clearing.GetMetrics()
	utils.RespondJSON(c, http.StatusOK, "Clearing stats", gin.H{
		"queued":         metrics.Queued,
		"cleared":        metrics.Cleared,
		"retries_failed": metrics.RetriesFailed,
		"pending":        mc.Clearing.PendingCount(),
	})
}
