package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DRM holds the DRMtoday account parameters baked into the player config
// and the CRT responses.
type DRM struct {
	Merchant    string
	Environment string
	KeyID       string
	IV          string
	AssetID     string
}

// Database holds the MySQL connection parameters. An empty Host selects the
// in-memory settings store.
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Config holds the application configuration.
type Config struct {
	ListenAddr string
	AdminToken string
	STUNServer string
	LogLevel   string
	DRM        DRM
	Database   Database
}

// Load reads configuration from a .env file (if present) and environment variables.
// Environment variables take precedence over .env values.
func Load() (*Config, error) {
	// godotenv.Load does not overwrite existing env vars
	_ = godotenv.Load()

	merchant := os.Getenv("DRM_MERCHANT")
	if merchant == "" {
		return nil, fmt.Errorf("DRM_MERCHANT environment variable is required")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		return nil, fmt.Errorf("ADMIN_TOKEN environment variable is required")
	}

	cfg := &Config{
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),
		AdminToken: adminToken,
		STUNServer: getenv("STUN_SERVER", "stun:stun.l.google.com:19302"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		DRM: DRM{
			Merchant:    merchant,
			Environment: getenv("DRM_ENVIRONMENT", "Staging"),
			KeyID:       os.Getenv("DRM_KEY_ID"),
			IV:          os.Getenv("DRM_IV"),
			AssetID:     getenv("DRM_ASSET_ID", "live"),
		},
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     getenv("DB_PORT", "3306"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
