package config

import (
	"strings"
	"testing"
	"time"

	"github.com/tordrt/tablediff/internal/diff"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Compare.MaxDiffsPerColumn != diff.DefaultMaxDiffsPerColumn {
		t.Errorf("Compare.MaxDiffsPerColumn = %d, want %d", cfg.Compare.MaxDiffsPerColumn, diff.DefaultMaxDiffsPerColumn)
	}
	if cfg.Compare.DuplicateKeys != "last" {
		t.Errorf("Compare.DuplicateKeys = %q, want %q", cfg.Compare.DuplicateKeys, "last")
	}
	if cfg.Compare.DoubledQuotes {
		t.Error("Compare.DoubledQuotes = true, want false")
	}
	if cfg.Compare.PreviewRows != 100 {
		t.Errorf("Compare.PreviewRows = %d, want %d", cfg.Compare.PreviewRows, 100)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want %v", cfg.Server.ShutdownTimeout, 30*time.Second)
	}
	if cfg.Server.MaxUploadSize != 104857600 {
		t.Errorf("Server.MaxUploadSize = %d, want %d", cfg.Server.MaxUploadSize, 104857600)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("TABLEDIFF_MAX_DIFFS_PER_COLUMN", "10")
	t.Setenv("TABLEDIFF_DUPLICATE_KEYS", "first")
	t.Setenv("TABLEDIFF_DOUBLED_QUOTES", "true")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Compare.MaxDiffsPerColumn != 10 {
		t.Errorf("Compare.MaxDiffsPerColumn = %d, want %d", cfg.Compare.MaxDiffsPerColumn, 10)
	}
	if !cfg.Compare.DoubledQuotes {
		t.Error("Compare.DoubledQuotes = false, want true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	opts, err := cfg.DiffOptions("id")
	if err != nil {
		t.Fatalf("DiffOptions() error = %v", err)
	}
	if opts.Duplicates != diff.DuplicateFirst {
		t.Errorf("DiffOptions().Duplicates = %v, want %v", opts.Duplicates, diff.DuplicateFirst)
	}
	if opts.KeyColumn != "id" || opts.MaxDiffsPerColumn != 10 {
		t.Errorf("DiffOptions() = %+v, want key id and cap 10", opts)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantErr string
	}{
		{"invalid int", "SERVER_PORT", "not-a-number", "invalid integer"},
		{"invalid bool", "TABLEDIFF_DOUBLED_QUOTES", "maybe", "invalid boolean"},
		{"invalid duration", "SERVER_READ_TIMEOUT", "soon", "invalid duration"},
		{"negative cap", "TABLEDIFF_MAX_DIFFS_PER_COLUMN", "-1", "TABLEDIFF_MAX_DIFFS_PER_COLUMN"},
		{"unknown policy", "TABLEDIFF_DUPLICATE_KEYS", "middle", "TABLEDIFF_DUPLICATE_KEYS"},
		{"port out of range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"bad log format", "LOG_FORMAT", "xml", "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Compare: CompareConfig{MaxDiffsPerColumn: -1, DuplicateKeys: "last", PreviewRows: -1},
		Server:  ServerConfig{Port: 0, ShutdownTimeout: time.Second, MaxUploadSize: 1, ReportCacheSize: 1},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"TABLEDIFF_MAX_DIFFS_PER_COLUMN", "TABLEDIFF_PREVIEW_ROWS", "SERVER_PORT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q: %v", want, err)
		}
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := &ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := c.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8080")
	}
	c.Host = ""
	if got := c.Addr(); got != ":8080" {
		t.Errorf("Addr() = %q, want %q", got, ":8080")
	}
}

func TestConfig_String(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s := cfg.String()
	if !strings.Contains(s, "MaxDiffsPerColumn: 200000") {
		t.Errorf("String() = %q, want cap included", s)
	}
}
