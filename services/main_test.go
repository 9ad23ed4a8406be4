package services

import (
	"os"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// newTestDB membuat database in-memory segar per test, lengkap dengan
// satu tenant dan pasangan account register+wallet.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.LedgerAccount{},
		&models.LedgerEntry{},
		&models.Shift{},
		&models.ShiftBalance{},
		&models.SettlementRecord{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	tenant := models.Tenant{Name: "Warung Tes"}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("failed to seed tenant: %v", err)
	}
	if err := EnsureAccounts(db, tenant.ID); err != nil {
		t.Fatalf("failed to seed accounts: %v", err)
	}

	return db
}

func testAccount(t *testing.T, db *gorm.DB, kind models.AccountKind) *models.LedgerAccount {
	t.Helper()
	account, err := findAccount(db, 1, kind)
	if err != nil {
		t.Fatalf("failed to load %s account: %v", kind, err)
	}
	return account
}

func seedTable(t *testing.T, db *gorm.DB, number string) *models.Table {
	t.Helper()
	table := models.Table{
		TenantID:    1,
		TableNumber: number,
		Status:      models.TableStatusFree,
	}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return &table
}
