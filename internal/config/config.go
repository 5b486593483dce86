// Package config loads all runtime configuration from environment
// variables, with optional .env support for development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	// Park data
	Timezone    string   // IANA name, e.g. "America/New_York"
	ParkIDs     []string // parks to poll each cycle
	LiveBaseURL string   // upstream live-data API base URL

	// Web Push (VAPID)
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	// Optional archive export to S3-compatible storage
	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present; real environment
// variables win.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is fine

	cfg := Config{
		Port:            getenv("PARKWATCH_PORT", "8080"),
		DBPath:          getenv("PARKWATCH_DB_PATH", "parkwatch.db"),
		LogLevel:        getenv("PARKWATCH_LOG_LEVEL", "info"),
		Timezone:        getenv("PARKWATCH_TZ", "America/New_York"),
		LiveBaseURL:     getenv("PARKWATCH_LIVE_BASE_URL", "https://api.themeparks.wiki/v1"),
		VAPIDPublicKey:  os.Getenv("PARKWATCH_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("PARKWATCH_VAPID_PRIVATE_KEY"),
		VAPIDSubscriber: getenv("PARKWATCH_VAPID_SUBSCRIBER", "mailto:noreply@parkwatch.app"),
		S3Endpoint:      os.Getenv("PARKWATCH_S3_ENDPOINT"),
		S3Bucket:        os.Getenv("PARKWATCH_S3_BUCKET"),
		S3Region:        getenv("PARKWATCH_S3_REGION", "auto"),
		S3AccessKey:     os.Getenv("PARKWATCH_S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("PARKWATCH_S3_SECRET_KEY"),
	}

	for _, id := range strings.Split(getenv("PARKWATCH_PARK_IDS", ""), ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			cfg.ParkIDs = append(cfg.ParkIDs, id)
		}
	}
	if len(cfg.ParkIDs) == 0 {
		return Config{}, fmt.Errorf("PARKWATCH_PARK_IDS is required (comma-separated park entity ids)")
	}

	return cfg, nil
}

// S3Configured reports whether archive export is enabled.
func (c Config) S3Configured() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// PushConfigured reports whether Web Push delivery is enabled.
func (c Config) PushConfigured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
