package events

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kasirapp/pos-backend/models"
)

// Event types
const (
	EventTableOpened       = "table_opened"
	EventTableReadied      = "table_readied"
	EventTableSettled      = "table_settled"
	EventTableCleared      = "table_cleared"
	EventOrderUpdate       = "order_update"
	EventKitchenUpdate     = "kitchen_update"
	EventSettlementApplied = "settlement_applied"
	EventSettlementVoided  = "settlement_voided"
	EventShiftOpened       = "shift_opened"
	EventShiftClosed       = "shift_closed"
	EventStaffNotif        = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client terhubung (kasir, dapur, admin) dan
// menyiarkan event domain per tenant.
type Hub struct {
	clients map[*websocket.Conn]uint // conn -> tenant id
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]uint),
}

// RegisterClient -> menambahkan connection ke set dengan tenant-nya
func RegisterClient(conn *websocket.Conn, tenantID uint) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = tenantID
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastTableEvent -> siarkan transisi meja (opened/readied/settled/cleared)
func BroadcastTableEvent(event string, table models.Table) {
	broadcast(table.TenantID, Message{
		Event: event,
		Data:  table,
	})
}

// BroadcastOrderUpdate -> menyiarkan update order ke semua client tenant
func BroadcastOrderUpdate(order models.Order) {
	broadcast(order.TenantID, Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastKitchenUpdate -> update untuk dapur
func BroadcastKitchenUpdate(tenantID uint, data interface{}) {
	broadcast(tenantID, Message{
		Event: EventKitchenUpdate,
		Data:  data,
	})
}

// BroadcastSettlement -> notifikasi settlement applied/voided
func BroadcastSettlement(event string, record models.SettlementRecord) {
	broadcast(record.TenantID, Message{
		Event: event,
		Data:  record,
	})
}

// BroadcastShift -> notifikasi shift dibuka/ditutup
func BroadcastShift(event string, shift models.Shift) {
	broadcast(shift.TenantID, Message{
		Event: event,
		Data:  shift,
	})
}

// BroadcastStaffNotification -> notifikasi bebas untuk staff
func BroadcastStaffNotification(tenantID uint, message string) {
	broadcast(tenantID, Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// broadcast -> fungsi internal untuk mengirim pesan ke client satu tenant
func broadcast(tenantID uint, msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, connTenant := range hub.clients {
		if connTenant != tenantID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
