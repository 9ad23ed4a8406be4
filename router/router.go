package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/controllers"
	"github.com/kasirapp/pos-backend/middlewares"
	"github.com/kasirapp/pos-backend/services"
)

func SetupRouter(db *gorm.DB, gateway *services.GatewayService, clearing *services.ClearingMonitor) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi service layer
	recorder := services.NewRecorder(db)
	tableSvc := services.NewTableService(db)
	orderSvc := services.NewOrderService(db, tableSvc)
	ledgerSvc := services.NewLedgerService(db, recorder)
	shiftSvc := services.NewShiftService(db)
	reconciler := services.NewReconciler(db)
	settlementSvc := services.NewSettlementService(db, recorder, orderSvc, tableSvc, clearing)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, tableSvc)
	orderCtrl := controllers.NewOrderController(db, orderSvc)
	ledgerCtrl := controllers.NewLedgerController(db, ledgerSvc)
	shiftCtrl := controllers.NewShiftController(db, shiftSvc, reconciler)
	settlementCtrl := controllers.NewSettlementController(db, settlementSvc, gateway, ledgerSvc)
	monitorCtrl := controllers.NewMonitorController(clearing)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/auth")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Webhook gateway: tanpa auth user, signature diverifikasi di handler
	webhook := r.Group("/payments")
	webhook.Use(middlewares.SettlementSecurityHeaders())
	webhook.Use(middlewares.SettlementRateLimiter())
	webhook.Use(middlewares.LogSettlementRequest())
	{
		webhook.POST("/callback", settlementCtrl.HandleGatewayWebhook)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)

	// TABLES
	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.GET("/tables/search", tableCtrl.FindTablesByStatus)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.POST("/tables/:table_id/clear", tableCtrl.ClearTable)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.POST("/orders", orderCtrl.CreateOrder)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:order_id/status", orderCtrl.AdvanceOrder)
	auth.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)

	// KDS item-level (Chef)
	auth.POST("/orders/:order_id/items/:item_id/start", orderCtrl.StartOrderItem)
	auth.POST("/orders/:order_id/items/:item_id/finish", orderCtrl.FinishOrderItem)

	// SETTLEMENTS
	auth.POST("/orders/:order_id/settle", settlementCtrl.SettleOrder)
	auth.GET("/orders/:order_id/settlement", settlementCtrl.GetSettlementByOrder)
	auth.POST("/settlements/:settlement_id/void", middlewares.RequireRole("admin"), settlementCtrl.VoidSettlement)

	// LEDGER (append-only; tidak ada route delete)
	auth.POST("/ledger/:kind/entries", ledgerCtrl.CreateManualEntry)
	auth.GET("/ledger/:kind/entries", ledgerCtrl.GetEntries)
	auth.GET("/ledger/:kind/account", ledgerCtrl.GetAccount)

	// SHIFTS & RECONCILIATION
	auth.POST("/shifts/open", shiftCtrl.OpenShift)
	auth.POST("/shifts/close", shiftCtrl.CloseShift)
	auth.GET("/shifts/current", shiftCtrl.GetCurrentShift)
	auth.GET("/shifts/current/balances", shiftCtrl.GetBalances)
	auth.GET("/shifts/current/balances/:kind", shiftCtrl.GetBalanceByKind)
	auth.GET("/shifts/current/reconciliation", shiftCtrl.GetReconciliation)
	auth.GET("/shifts/:shift_id/reconciliation", shiftCtrl.GetReconciliation)

	// Routes untuk Admin
	auth.GET("/monitor/clearing", middlewares.RequireRole("admin"), monitorCtrl.GetClearingStats)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/events")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/ws", controllers.EventsHandler)
	}

	return r
}
