package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kasirapp/pos-backend/events"
	"github.com/kasirapp/pos-backend/middlewares"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// EventsHandler -> endpoint WebSocket untuk event domain (meja, order,
// settlement, shift). Client hanya menerima event tenant-nya sendiri.
func EventsHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != "chef" && role != "staff" && role != "admin" {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	tenantID := middlewares.TenantID(c)
	if tenantID == 0 {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	events.RegisterClient(ws, tenantID)

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	events.UnregisterClient(ws)
}
