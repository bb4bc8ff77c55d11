package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Backend REST API (source of truth for masters, plans, carts)
	BackendBaseURL string `mapstructure:"BACKEND_BASE_URL"`
	CSRFToken      string `mapstructure:"BACKEND_CSRF_TOKEN"`

	// Redis (pub/sub fan-out, stored envelope, session state)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Terminal identity
	TerminalID string `mapstructure:"TERMINAL_ID"`
	UserID     string `mapstructure:"POS_USER_ID"`

	// Cart sync
	CartSyncDebounceMs int `mapstructure:"CART_SYNC_DEBOUNCE_MS"`

	// State persistence
	StateRootKey string `mapstructure:"STATE_ROOT_KEY"`

	// Business
	PDFStoragePath string `mapstructure:"PDF_STORAGE_PATH"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("BACKEND_BASE_URL", "http://localhost:8000")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("TERMINAL_ID", "posfront")
	viper.SetDefault("POS_USER_ID", "default")
	viper.SetDefault("CART_SYNC_DEBOUNCE_MS", 400)
	viper.SetDefault("STATE_ROOT_KEY", "pos.front.state")
	viper.SetDefault("PDF_STORAGE_PATH", "/tmp/posfront/pdfs")

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
