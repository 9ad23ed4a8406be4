package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
)

// ClearingMetrics menyimpan metrik clearing meja
type ClearingMetrics struct {
	Queued        int64
	Cleared       int64
	RetriesFailed int64
}

type clearingTask struct {
	tenantID uint
	tableID  uint
}

// ClearingMonitor memegang antrian meja yang gagal di-clear otomatis
// setelah settlement dan mencobanya ulang di belakang. Clearing adalah
// efek best-effort: gagal terus pun tidak pernah menyentuh buku kas.
type ClearingMonitor struct {
	db            *gorm.DB
	tables        *TableService
	metrics       ClearingMetrics
	retryQueue    []clearingTask
	retryInterval time.Duration
	mutex         sync.Mutex
	stopChan      chan struct{}
}

// NewClearingMonitor membuat instance baru ClearingMonitor
func NewClearingMonitor(db *gorm.DB, tables *TableService) *ClearingMonitor {
	return &ClearingMonitor{
		db:            db,
		tables:        tables,
		retryQueue:    make([]clearingTask, 0),
		retryInterval: 30 * time.Second,
		stopChan:      make(chan struct{}),
	}
}

// Start memulai goroutine retry
func (cm *ClearingMonitor) Start() {
	go cm.processRetryQueue()
	log.Println("Clearing monitor started")
}

// Stop menghentikan goroutine retry
func (cm *ClearingMonitor) Stop() {
	close(cm.stopChan)
}

// Enqueue menambahkan meja ke antrian clearing
func (cm *ClearingMonitor) Enqueue(tenantID, tableID uint) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for _, task := range cm.retryQueue {
		if task.tenantID == tenantID && task.tableID == tableID {
			return
		}
	}

	cm.retryQueue = append(cm.retryQueue, clearingTask{tenantID: tenantID, tableID: tableID})
	cm.metrics.Queued++
	log.Printf("Added table %d to clearing queue", tableID)
}

// processRetryQueue memproses antrian retry
func (cm *ClearingMonitor) processRetryQueue() {
	ticker := time.NewTicker(cm.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cm.stopChan:
			return
		case <-ticker.C:
			cm.mutex.Lock()
			if len(cm.retryQueue) == 0 {
				cm.mutex.Unlock()
				continue
			}

			queue := make([]clearingTask, len(cm.retryQueue))
			copy(queue, cm.retryQueue)
			cm.retryQueue = make([]clearingTask, 0)
			cm.mutex.Unlock()

			for _, task := range queue {
				cm.retryClear(task)
			}
		}
	}
}

// retryClear mencoba clear satu meja dari antrian. Meja yang ordernya
// belum fulfilled dikembalikan ke antrian.
func (cm *ClearingMonitor) retryClear(task clearingTask) {
	table, err := cm.tables.Get(task.tenantID, task.tableID)
	if err != nil {
		log.Printf("Error finding table %d for clearing retry: %v", task.tableID, err)
		return
	}

	if table.Status == models.TableStatusFree {
		log.Printf("Table %d already cleared, no retry needed", task.tableID)
		return
	}
	if table.Status != models.TableStatusPaid {
		// belum boleh di-clear; tunggu siklus berikutnya
		cm.Enqueue(task.tenantID, task.tableID)
		return
	}

	// early payment: meja paid tapi dapur mungkin belum selesai
	if table.OrderID != nil {
		var order models.Order
		if err := cm.db.First(&order, *table.OrderID).Error; err == nil &&
			order.Status != models.OrderStatusFulfilled {
			cm.Enqueue(task.tenantID, task.tableID)
			return
		}
	}

	if _, err := cm.tables.Clear(task.tenantID, task.tableID); err != nil {
		log.Printf("Clearing retry for table %d failed: %v", task.tableID, err)
		cm.mutex.Lock()
		cm.metrics.RetriesFailed++
		cm.mutex.Unlock()
		cm.Enqueue(task.tenantID, task.tableID)
		return
	}

	cm.mutex.Lock()
	cm.metrics.Cleared++
	cm.mutex.Unlock()
	log.Printf("Table %d cleared from retry queue", task.tableID)
}

// GetMetrics mengembalikan metrik clearing saat ini
func (cm *ClearingMonitor) GetMetrics() ClearingMetrics {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	return cm.metrics
}

// PendingCount mengembalikan panjang antrian (untuk dashboard/manual check)
func (cm *ClearingMonitor) PendingCount() int {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	return len(cm.retryQueue)
}
