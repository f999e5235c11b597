package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage drivers for durable local storage
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageS3       = "s3"
	StorageMemory   = "memory"
)

// Category modes
const (
	CategoryModeStrict = "strict"
	CategoryModeFree   = "free"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Data backend
	DataBackend   string
	RemoteAPIURL  string
	RemoteTimeout time.Duration
	SyncInterval  time.Duration // 0 disables background refresh

	// Durable local storage
	StorageDriver   string
	StorageFilePath string
	SQLiteDBPath    string
	DatabaseURL     string
	S3              S3Config

	// Notifications over AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Budget & expenses
	DefaultBudget  decimal.Decimal
	AlertDedupe    bool
	CategoryMode   string
	SeedSampleData bool

	// Rate limiting
	RateLimitPerMinute int
	RateLimitBurst     int
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8081"), ","),
		Env:         getEnv("ENV", "development"),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", "local")),
		RemoteAPIURL: getEnv("REMOTE_API_URL", ""),

		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile)),
		StorageFilePath: getEnv("STORAGE_FILE_PATH", "data/storage.json"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "data/spendwise.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "spendwise-storage"),
			Prefix:          getEnv("S3_PREFIX", "kv/"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendwise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		CategoryMode: strings.ToLower(getEnv("CATEGORY_MODE", CategoryModeStrict)),
	}

	var err error
	if cfg.RemoteTimeout, err = getDuration("REMOTE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = getDuration("SYNC_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.DefaultBudget, err = getDecimal("DEFAULT_BUDGET", decimal.NewFromInt(1000)); err != nil {
		return nil, err
	}
	if cfg.AlertDedupe, err = getBool("ALERT_DEDUPE", true); err != nil {
		return nil, err
	}
	if cfg.SeedSampleData, err = getBool("SEED_SAMPLE_DATA", true); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StrictCategories reports whether only the fixed category set is accepted
func (c *Config) StrictCategories() bool {
	return c.CategoryMode == CategoryModeStrict
}

func (c *Config) validate() error {
	switch c.DataBackend {
	case "local":
	case "remote":
		if c.RemoteAPIURL == "" {
			return fmt.Errorf("REMOTE_API_URL is required when DATA_BACKEND=remote")
		}
	default:
		return fmt.Errorf("DATA_BACKEND must be local or remote, got %q", c.DataBackend)
	}

	switch c.StorageDriver {
	case StorageFile:
		if c.StorageFilePath == "" {
			return fmt.Errorf("STORAGE_FILE_PATH is required for the file storage driver")
		}
	case StorageSQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLITE_DB_PATH is required for the sqlite storage driver")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	case StorageS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.CategoryMode != CategoryModeStrict && c.CategoryMode != CategoryModeFree {
		return fmt.Errorf("CATEGORY_MODE must be strict or free, got %q", c.CategoryMode)
	}
	if c.DefaultBudget.IsNegative() {
		return fmt.Errorf("DEFAULT_BUDGET must not be negative")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 15s: %w", key, err)
	}
	return v, nil
}

func getDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}
