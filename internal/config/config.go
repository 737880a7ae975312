// Package config provides centralized configuration for the CLI and the
// HTTP server. It loads settings from environment variables with defaults
// and validates them so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Compare CompareConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// CompareConfig holds comparison engine settings.
type CompareConfig struct {
	// MaxDiffsPerColumn caps retained mismatches per column (default: 200000)
	MaxDiffsPerColumn int `env:"TABLEDIFF_MAX_DIFFS_PER_COLUMN" default:"200000"`

	// DuplicateKeys picks the row kept for a repeated key: last or first (default: last)
	DuplicateKeys string `env:"TABLEDIFF_DUPLICATE_KEYS" default:"last"`

	// DoubledQuotes reads "" inside a quoted field as one literal quote (default: false)
	DoubledQuotes bool `env:"TABLEDIFF_DOUBLED_QUOTES" default:"false"`

	// PreviewRows limits rows printed per table by report formatters (default: 100)
	PreviewRows int `env:"TABLEDIFF_PREVIEW_ROWS" default:"100"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxUploadSize is the combined multipart body limit in bytes (default: 100MB)
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"104857600"`

	// ReportCacheSize is how many recent reports stay addressable by ID (default: 64)
	ReportCacheSize int `env:"SERVER_REPORT_CACHE_SIZE" default:"64"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
