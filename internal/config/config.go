package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fka/internal/core"
)

type Config struct {
	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// Memory backend seed
	ClaimFile string

	// Output
	OutputDir string

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Image normalization
	ImageCacheSize int
	ImageCacheTTL  time.Duration

	// Assembly
	AssemblyTimeout time.Duration
	JPEGQuality     int
	Organization    string
	ContactEmail    string

	// Policy
	ReviewThreshold core.Money

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fka.db"),
		ClaimFile:    getEnv("CLAIM_FILE", "./data/claim.yaml"),
		OutputDir:    getEnv("OUTPUT_DIR", "./out"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fka"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "document_assembled"),

		ImageCacheSize: getEnvInt("IMAGE_CACHE_SIZE", 32),
		ImageCacheTTL:  getEnvDuration("IMAGE_CACHE_TTL", 10*time.Minute),

		AssemblyTimeout: getEnvDuration("ASSEMBLY_TIMEOUT", 0),
		JPEGQuality:     getEnvInt("JPEG_QUALITY", 85),
		Organization:    getEnv("SUMMARY_ORGANIZATION", ""),
		ContactEmail:    getEnv("SUMMARY_CONTACT_EMAIL", ""),

		ReviewThreshold: getEnvMoney("REVIEW_THRESHOLD", core.Money{Cents: 50000}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

var validBackends = []string{"memory", "sqlite"}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
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

	if c.OutputDir == "" {
		errors = append(errors, "output directory cannot be empty")
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

	if c.ImageCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid image cache size %d: must not be negative", c.ImageCacheSize))
	}
	if c.ImageCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid image cache TTL %v: must not be negative", c.ImageCacheTTL))
	}
	if c.AssemblyTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid assembly timeout %v: must not be negative", c.AssemblyTimeout))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errors = append(errors, fmt.Sprintf("invalid JPEG quality %d: must be between 1 and 100", c.JPEGQuality))
	}
	if c.ReviewThreshold.Cents < 0 {
		errors = append(errors, "review threshold must not be negative")
	}
	if c.ContactEmail != "" {
		if _, err := mail.ParseAddress(c.ContactEmail); err != nil {
			errors = append(errors, fmt.Sprintf("invalid contact email '%s'", c.ContactEmail))
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvMoney(key string, defaultValue core.Money) core.Money {
	if value := os.Getenv(key); value != "" {
		if cents, err := core.ParseDecimalToCents(value); err == nil {
			return core.Money{Cents: cents}
		}
	}
	return defaultValue
}
