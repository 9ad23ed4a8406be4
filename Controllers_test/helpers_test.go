package Controllers_test

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kasirapp/pos-backend/database"
	"github.com/kasirapp/pos-backend/models"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	tenant := models.Tenant{Name: "Warung Tes"}
	if err := db.Create(&tenant).Error; err != nil {
		panic(err)
	}
	if err := services.EnsureAccounts(db, tenant.ID); err != nil {
		panic(err)
	}
	return db
}

// authAs meniru AuthMiddleware untuk test: claims langsung ditaruh di
// context tanpa JWT sungguhan.
func authAs(tenantID, userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("tenantID", tenantID)
		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}
