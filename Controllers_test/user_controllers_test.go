package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kasirapp/pos-backend/controllers"
	"github.com/kasirapp/pos-backend/models"
)

func TestRegisterCreatesTenantAndAccounts(t *testing.T) {
	db := setupTestDB(t)
	userCtrl := controllers.NewUserController(db)

	router := gin.Default()
	router.POST("/register", userCtrl.Register)

	payload := map[string]interface{}{
		"name":        "Budi",
		"email":       "budi@example.com",
		"password":    "rahasia123",
		"role":        "admin",
		"tenant_name": "Warung Baru",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	// tenant baru lahir dengan pasangan register+wallet
	var tenant models.Tenant
	assert.NoError(t, db.Where("name = ?", "Warung Baru").First(&tenant).Error)

	var accounts int64
	db.Model(&models.LedgerAccount{}).Where("tenant_id = ?", tenant.ID).Count(&accounts)
	assert.Equal(t, int64(2), accounts)
}

func TestRegisterRequiresTenant(t *testing.T) {
	db := setupTestDB(t)
	userCtrl := controllers.NewUserController(db)

	router := gin.Default()
	router.POST("/register", userCtrl.Register)

	payload := map[string]interface{}{
		"name":     "Budi",
		"email":    "budi@example.com",
		"password": "rahasia123",
		"role":     "staff",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginReturnsToken(t *testing.T) {
	db := setupTestDB(t)
	userCtrl := controllers.NewUserController(db)

	router := gin.Default()
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)

	register := map[string]interface{}{
		"name":      "Sari",
		"email":     "sari@example.com",
		"password":  "rahasia123",
		"role":      "staff",
		"tenant_id": 1,
	}
	body, _ := json.Marshal(register)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	login := map[string]interface{}{
		"email":    "sari@example.com",
		"password": "rahasia123",
	}
	body, _ = json.Marshal(login)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token    string `json:"token"`
			TenantID uint   `json:"tenant_id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	assert.Equal(t, uint(1), resp.Data.TenantID)

	// password salah ditolak
	login["password"] = "salah"
	body, _ = json.Marshal(login)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
