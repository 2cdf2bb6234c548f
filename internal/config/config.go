// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Telemetry exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

var exporters = []string{ExporterNone, ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP}

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL     string
	Store           string
	LogLevel        string
	LogFormat       string
	LogHashSalt     string
	CategoryBudgets string
	CurrencySymbol  string
	ImportMaxRows   int
	Timezone        string
	OTelExporter    string
	OTelEndpoint    string
	OTelServiceName string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Store:           StorePostgres,
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
		LogHashSalt:     os.Getenv("LOG_HASH_SALT"),
		CategoryBudgets: "{}",
		CurrencySymbol:  "€",
		Timezone:        "Local",
		OTelExporter:    ExporterNone,
		OTelEndpoint:    os.Getenv("OTEL_ENDPOINT"),
		OTelServiceName: "expense-ledger",
	}

	if store := strings.ToLower(strings.TrimSpace(os.Getenv("STORE"))); store != "" {
		cfg.Store = store
	}
	if budgets := strings.TrimSpace(os.Getenv("CATEGORY_BUDGETS")); budgets != "" {
		cfg.CategoryBudgets = budgets
	}
	if symbol := strings.TrimSpace(os.Getenv("CURRENCY_SYMBOL")); symbol != "" {
		cfg.CurrencySymbol = symbol
	}
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.Timezone = tz
		}
	}
	if maxStr := os.Getenv("IMPORT_MAX_ROWS"); maxStr != "" {
		if n, err := strconv.Atoi(maxStr); err == nil && n >= 0 {
			cfg.ImportMaxRows = n
		}
	}
	if exporter := strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER"))); exporter != "" {
		cfg.OTelExporter = exporter
	}
	if name := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); name != "" {
		cfg.OTelServiceName = name
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required")
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORE must be %q or %q", StorePostgres, StoreMemory))
	}

	if !slices.Contains(exporters, c.OTelExporter) {
		errs = append(errs, "OTEL_EXPORTER must be one of "+strings.Join(exporters, ", "))
	}

	if (c.OTelExporter == ExporterOTLPGRPC || c.OTelExporter == ExporterOTLPHTTP) && c.OTelEndpoint == "" {
		errs = append(errs, "OTEL_ENDPOINT is required for OTLP exporters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the time zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
