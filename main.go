package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kasirapp/pos-backend/config"
	"github.com/kasirapp/pos-backend/database"
	"github.com/kasirapp/pos-backend/middlewares"
	"github.com/kasirapp/pos-backend/router"
	"github.com/kasirapp/pos-backend/services"
	"github.com/kasirapp/pos-backend/utils"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Initialize logger
	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	cfg := config.Load()

	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database ke utils untuk digunakan di controller
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Migration failed: %v", err)
	}

	// Gateway config divalidasi di startup supaya webhook tidak diam-diam
	// menolak semua signature
	gateway := services.GatewayServiceFromEnv()
	if err := gateway.ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("Gateway config incomplete: %v", err)
	}

	// Clearing monitor: retry auto-clear meja yang gagal setelah settlement
	tables := services.NewTableService(db)
	clearing := services.NewClearingMonitor(db, tables)
	if cfg.AutoClear {
		clearing.Start()
		defer clearing.Stop()
	}

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Setup router
	r := router.SetupRouter(db, gateway, clearing)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	utils.InfoLogger.Printf("Listening on port %s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
