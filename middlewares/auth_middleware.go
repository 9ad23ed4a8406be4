package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kasirapp/pos-backend/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		if claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid user ID in token"))
			c.Abort()
			return
		}
		if claims.TenantID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Token is not bound to a tenant"))
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("tenantID", claims.TenantID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// TenantID membaca tenant dari context request. Semua handler memakai ini
// dan meneruskannya eksplisit ke services; tidak ada tenant global.
func TenantID(c *gin.Context) uint {
	if v, exists := c.Get("tenantID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserID membaca user dari context request.
func UserID(c *gin.Context) uint {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
