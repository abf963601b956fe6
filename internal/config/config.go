package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the proxy server needs at startup. The Payrails
// client credentials stay server-side; the browser never sees them.
type Config struct {
	HTTPPort string

	PayrailsBaseURL string
	ClientID        string
	ClientSecret    string
	WorkspaceID     string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment. Missing client credentials
// are a fatal configuration error: no request can succeed without them, so we
// refuse to start instead of failing per request.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PayrailsBaseURL: getEnv("PAYRAILS_BASE_URL", "https://api.payrails.com"),
		ClientID:        os.Getenv("PAYRAILS_CLIENT_ID"),
		ClientSecret:    os.Getenv("PAYRAILS_CLIENT_SECRET"),
		WorkspaceID:     os.Getenv("PAYRAILS_WORKSPACE_ID"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}

	if cfg.ClientID == "" {
		return nil, fmt.Errorf("missing required env var: PAYRAILS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("missing required env var: PAYRAILS_CLIENT_SECRET")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
