package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds all agent configuration, loaded from the environment
// (main.go loads .env first via godotenv).
type AppConfig struct {
	Backend BackendConfig
	Store   StoreConfig
	Agent   AgentConfig
}

// BackendConfig holds the ordering-backend endpoints and credentials.
type BackendConfig struct {
	APIURL    string // REST base URL
	SocketURL string // websocket endpoint for push events
	CartCode  string // carrinho: the station's cart/tenant code
}

// StoreConfig holds the fixed coupon header information.
type StoreConfig struct {
	Name     string
	Address1 string
	Address2 string
}

// AgentConfig holds runtime settings.
type AgentConfig struct {
	DataPath     string
	PollInterval time.Duration
	LogKeepDays  int
}

// Load reads configuration from environment variables, applying defaults
// where sensible. APIURL and CartCode are required.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Backend: BackendConfig{
			APIURL:    os.Getenv("API_URL"),
			SocketURL: os.Getenv("SOCKET_URL"),
			CartCode:  os.Getenv("CART_CODE"),
		},
		Store: StoreConfig{
			Name:     os.Getenv("STORE_NAME"),
			Address1: os.Getenv("STORE_ADDRESS1"),
			Address2: os.Getenv("STORE_ADDRESS2"),
		},
		Agent: AgentConfig{
			DataPath:     envOr("DATA_PATH", "./data"),
			PollInterval: time.Duration(envInt("POLL_INTERVAL_SECONDS", 10)) * time.Second,
			LogKeepDays:  envInt("LOG_KEEP_DAYS", 7),
		},
	}

	if cfg.Backend.APIURL == "" {
		return nil, fmt.Errorf("API_URL is required")
	}
	if cfg.Backend.CartCode == "" {
		return nil, fmt.Errorf("CART_CODE is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
