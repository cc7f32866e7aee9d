package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Storage
	StoreBackend   string
	SQLiteDBPath   string
	SeedSampleData bool
	// Memory backend size cap in bytes; 0 disables it
	MemoryQuotaBytes int

	// Monthly total memoization
	QueryCacheSize int
	QueryCacheTTL  time.Duration

	// AMQP (optional for the CLI, required by the alert consumer)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleAlertsSheetName    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Alert worker
	AlertDedupeSize int
	AlertDedupeTTL  time.Duration

	ExportDir string
}

func Load() *Config {
	cfg := &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StoreBackend:   getEnv("STORE_BACKEND", "sqlite"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/expense-tracker.db"),
		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", true),

		MemoryQuotaBytes: getEnvInt("MEMORY_QUOTA_BYTES", 5*1024*1024),

		QueryCacheSize: getEnvInt("QUERY_CACHE_SIZE", 24),
		QueryCacheTTL:  getEnvDuration("QUERY_CACHE_TTL", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expense_tracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Expenses"),
		GoogleAlertsSheetName:    getEnv("GOOGLE_ALERTS_SHEET_NAME", "Alerts"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AlertDedupeSize: getEnvInt("ALERT_DEDUPE_SIZE", 1024),
		AlertDedupeTTL:  getEnvDuration("ALERT_DEDUPE_TTL", time.Hour),

		ExportDir: getEnv("EXPORT_DIR", "."),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.StoreBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}

	if c.StoreBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.MemoryQuotaBytes < 0 {
		errors = append(errors, fmt.Sprintf("invalid memory quota %d: must not be negative", c.MemoryQuotaBytes))
	}

	if c.QueryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid query cache size %d: must be at least 1", c.QueryCacheSize))
	} else if c.QueryCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid query cache size %d: must be at most 10000", c.QueryCacheSize))
	}
	if c.QueryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid query cache TTL %v: must not be negative", c.QueryCacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided when GOOGLE_SPREADSHEET_ID is set")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AlertDedupeSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid alert dedupe size %d: must be at least 1", c.AlertDedupeSize))
	}
	if c.AlertDedupeTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid alert dedupe TTL %v: must be at least 1 second", c.AlertDedupeTTL))
	}

	if strings.TrimSpace(c.ExportDir) == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateConsumer checks the settings the alert consumer cannot run without.
func (c *Config) ValidateConsumer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.AMQPURL == "" {
		return fmt.Errorf("configuration validation failed:\n- AMQP_URL is required by the alert consumer")
	}
	return nil
}

// SheetsEnabled reports whether a spreadsheet is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
