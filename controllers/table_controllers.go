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

type TableController struct {
	DB     *gorm.DB
	Tables *services.TableService
}

func NewTableController(db *gorm.DB, tables *services.TableService) *TableController {
	return &TableController{DB: db, Tables: tables}
}

// CreateTable -> menambahkan meja baru (selalu lahir free)
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Zone        string `json:"zone"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TenantID:    middlewares.TenantID(c),
		TableNumber: req.TableNumber,
		Zone:        req.Zone,
		Status:      models.TableStatusFree,
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (zone=%s)", table.TableNumber, table.Zone)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja tenant
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Where("tenant_id = ?", middlewares.TenantID(c)).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID, _ := strconv.Atoi(c.Param("table_id"))

	table, err := tc.Tables.Get(middlewares.TenantID(c), uint(tableID))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// FindTablesByStatus -> mis. list meja free
func (tc *TableController) FindTablesByStatus(c *gin.Context) {
	status := models.TableStatus(c.Query("status"))
	if status == "" {
		status = models.TableStatusFree
	}
	if !status.Valid() {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Field: "status", Reason: "unknown table status"})
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("tenant_id = ? AND status = ?", middlewares.TenantID(c), status).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tables with status: "+string(status), tables)
}

// ClearTable -> staff mengosongkan meja paid -> free
func (tc *TableController) ClearTable(c *gin.Context) {
	tableID, _ := strconv.Atoi(c.Param("table_id"))

	table, err := tc.Tables.Clear(middlewares.TenantID(c), uint(tableID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table cleared", table)
}
