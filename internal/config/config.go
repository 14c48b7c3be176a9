// Package config provides centralized configuration management for the loader.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	API      APIConfig
	Logging  LoggingConfig
	Notify   NotifyConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// QueryTimeout bounds every statement issued by the loader (default: 2m)
	QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" default:"2m"`

	// LockTimeout bounds the wait for the run-id advisory lock (default: 5s)
	LockTimeout time.Duration `env:"DB_LOCK_TIMEOUT" default:"5s"`

	// ConnectTimeout is the login timeout for new connections (default: 5s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// APIConfig holds remote API credentials.
type APIConfig struct {
	// Key is the Wildberries API token sent as the Authorization header.
	// WB_API_KEY_DEV is accepted as a fallback for development setups.
	Key string `env:"WB_API_KEY" envAlt:"WB_API_KEY_DEV"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// NotifyConfig holds failure-notification settings.
type NotifyConfig struct {
	// Enabled turns on Telegram notifications for fatal errors (default: false)
	Enabled bool `env:"BOT_NOTIFICATIONS" default:"false"`

	// Token is the Telegram bot token.
	Token string `env:"TLG_BOT_TOKEN"`

	// ChatID is the Telegram chat to notify.
	ChatID string `env:"TLG_CHAT_ID"`

	// Timeout bounds the notification request (default: 20s)
	Timeout time.Duration `env:"TLG_TIMEOUT" default:"20s"`
}
