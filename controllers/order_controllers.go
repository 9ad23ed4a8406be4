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

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

type createOrderRequest struct {
	Channel models.OrderChannel     `json:"channel" binding:"required"`
	TableID *uint                   `json:"table_id"`
	Items   []services.OrderItemReq `json:"items" binding:"required"`
}

// CreateOrder -> order baru; dine_in sekaligus membuka meja
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Create(middlewares.TenantID(c), req.Channel, req.TableID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d created (channel=%s)", order.ID, order.Channel)
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", order)
}

// GetAllOrders -> list order tenant, bisa difilter status
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	tenantID := middlewares.TenantID(c)

	if status := c.Query("status"); status != "" {
		if !models.OrderStatus(status).Valid() {
			utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "status", Reason: "unknown order status"})
			return
		}
		var orders []models.Order
		if err := oc.DB.Preload("OrderItems").
			Where("tenant_id = ? AND status = ?", tenantID, status).
			Order("created_at DESC").Find(&orders).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
		return
	}

	orders, err := oc.Orders.List(tenantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	order, err := oc.Orders.Get(middlewares.TenantID(c), uint(orderID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// AdvanceOrder -> maju satu atau lebih langkah, tidak pernah mundur
func (oc *OrderController) AdvanceOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Advance(middlewares.TenantID(c), uint(orderID), req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CancelOrder -> hanya dari pending/preparing dan belum dibayar
func (oc *OrderController) CancelOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	order, err := oc.Orders.Cancel(middlewares.TenantID(c), uint(orderID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d cancelled", order.ID)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// StartOrderItem -> dapur mulai garap satu item
func (oc *OrderController) StartOrderItem(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))
	itemID, _ := strconv.Atoi(c.Param("item_id"))

	item, err := oc.Orders.StartItem(middlewares.TenantID(c), uint(orderID), uint(itemID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item in progress", item)
}

// FinishOrderItem -> item selesai; kalau semua ready order ikut naik
func (oc *OrderController) FinishOrderItem(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))
	itemID, _ := strconv.Atoi(c.Param("item_id"))

	item, err := oc.Orders.FinishItem(middlewares.TenantID(c), uint(orderID), uint(itemID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item ready", item)
}
