package config

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	AutoClear   bool // kebijakan auto-clear meja setelah settlement
}

// Load membaca konfigurasi dari environment (godotenv sudah dipanggil di
// main sebelum Load).
func Load() *Config {
	cfg := &Config{
		HTTPPort:    getEnv("PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		AutoClear:   getEnv("AUTO_CLEAR_TABLES", "true") == "true",
	}

	if cfg.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET tidak di-set; memakai default development")
	}
	if cfg.DatabaseDSN == "" {
		log.Println("[WARN] DATABASE_DSN tidak di-set; memakai SQLite lokal pos.db")
	}

	return cfg
}

// InitDB membuka koneksi database: MySQL kalau DSN tersedia, SQLite lokal
// untuk development.
func InitDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		return gorm.Open(sqlite.Open("pos.db"), &gorm.Config{})
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
