package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

var ErrNoPermission = errors.New("you do not have permission for this action")

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Register user baru. Kalau tenant_name diisi (bukan tenant_id), tenant
// baru dibuat sekalian dengan pool register+wallet-nya.
func (uc *UserController) Register(c *gin.Context) {
	type request struct {
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		Role       string `json:"role" binding:"required"` // admin, staff, chef
		TenantID   uint   `json:"tenant_id"`
		TenantName string `json:"tenant_name"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tenantID := req.TenantID
	if tenantID == 0 {
		if req.TenantName == "" {
			utils.RespondError(c, http.StatusBadRequest, errors.New("tenant_id or tenant_name is required"))
			return
		}
		tenant := models.Tenant{
			Name:      req.TenantName,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uc.DB.Create(&tenant).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if err := services.EnsureAccounts(uc.DB, tenant.ID); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		tenantID = tenant.ID
	}

	// Hash password
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s, tenant=%d)", user.Email, user.Role, tenantID)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id":   user.ID,
		"tenant_id": tenantID,
	})
}

// Login user -> return JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	// Generate token
	token, err := utils.GenerateToken(user.ID, user.TenantID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": strings.ToLower(user.Role),
		"tenant_id": user.TenantID,
	})
}

// Logout -> blacklist token supaya tidak bisa dipakai lagi
func (uc *UserController) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString != "" {
		utils.BlacklistToken(tokenString)
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile -> memeriksa user dari JWT
func (uc *UserController) GetProfile(c *gin.Context) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	userID, ok := userIDInterface.(uint)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid user id in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "User profile", gin.H{
		"id":        user.ID,
		"tenant_id": user.TenantID,
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
	})
}
