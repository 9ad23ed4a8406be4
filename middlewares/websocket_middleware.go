package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/kasirapp/pos-backend/utils"
)

func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		// Validasi token
		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		// Set role, tenant dan user ke context
		c.Set("role", claims.Role)
		c.Set("userID", claims.UserID)
		c.Set("tenantID", claims.TenantID)

		c.Next()
	}
}
