package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL      = "http://localhost:8000/api"
	defaultSessionFile  = "session.json"
	defaultPollInterval = 30 * time.Second
	defaultListenAddr   = ":9100"
)

type Config struct {
	// BaseURL is the backend API root, including the /api prefix.
	BaseURL string
	// SessionFile is the JSON file holding the token and UX caches.
	SessionFile string
	// PollInterval is the notification poll period.
	PollInterval time.Duration
	// ListenAddr is where the agent serves /metrics and /healthz.
	ListenAddr string
}

// Load reads .env if present, then the environment. Missing keys fall back
// to defaults so the CLI works against a local backend out of the box.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:      getenv("SWIFTMEDS_BASE_URL", defaultBaseURL),
		SessionFile:  getenv("SWIFTMEDS_SESSION_FILE", defaultSessionFile),
		PollInterval: defaultPollInterval,
		ListenAddr:   getenv("SWIFTMEDS_LISTEN_ADDR", defaultListenAddr),
	}

	if raw := os.Getenv("SWIFTMEDS_POLL_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
