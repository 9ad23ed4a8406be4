package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasirapp/pos-backend/utils"
	"golang.org/x/time/rate"
)

// SettlementSecurityHeaders adds security headers for settlement endpoints
func SettlementSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// SettlementRateLimiter implements rate limiting for settlement endpoints
func SettlementRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 10)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(429, gin.H{
				"error":   "Too many requests",
				"message": "Please wait before making another settlement request",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LogSettlementRequest logs settlement request details
func LogSettlementRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		utils.InfoLogger.Printf(
			"Settlement Request - Method: %s, Path: %s, Status: %d, Duration: %v",
			method, path, status, duration,
		)
	}
}
