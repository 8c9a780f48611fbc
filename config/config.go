package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"fanhunt/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL      string
	DatabaseName     string
	DatabaseMaxConns int32

	// HTTP adapter
	HTTPAddr string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// Redis leaderboard cache, empty address disables caching
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	LeaderboardCacheTTL time.Duration

	// Transaction retry policy
	TxMaxAttempts    int
	TxAttemptTimeout time.Duration
	TxRetryBudget    time.Duration

	// Leaderboard limits
	LeaderboardDefaultLimit int
	LeaderboardMaxLimit     int

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DatabaseName:     os.Getenv("DATABASE_NAME"),
		DatabaseMaxConns: 10,

		// HTTP
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Redis
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		LeaderboardCacheTTL: 30 * time.Second,

		// Transactions
		TxMaxAttempts:    5,
		TxAttemptTimeout: 5 * time.Second,
		TxRetryBudget:    10 * time.Second,

		// Leaderboard
		LeaderboardDefaultLimit: 50,
		LeaderboardMaxLimit:     500,

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "fanhunt-ledger"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: 30000,

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	if config.DatabaseMaxConns, err = parseInt32("DATABASE_MAX_CONNS", config.DatabaseMaxConns); err != nil {
		return nil, err
	}
	if config.RedisDB, err = parseInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.LeaderboardCacheTTL, err = parseDuration("LEADERBOARD_CACHE_TTL", config.LeaderboardCacheTTL); err != nil {
		return nil, err
	}
	if config.TxMaxAttempts, err = parseInt("TX_MAX_ATTEMPTS", config.TxMaxAttempts); err != nil {
		return nil, err
	}
	if config.TxAttemptTimeout, err = parseDuration("TX_ATTEMPT_TIMEOUT", config.TxAttemptTimeout); err != nil {
		return nil, err
	}
	if config.TxRetryBudget, err = parseDuration("TX_RETRY_BUDGET", config.TxRetryBudget); err != nil {
		return nil, err
	}
	if config.LeaderboardDefaultLimit, err = parseInt("LEADERBOARD_DEFAULT_LIMIT", config.LeaderboardDefaultLimit); err != nil {
		return nil, err
	}
	if config.LeaderboardMaxLimit, err = parseInt("LEADERBOARD_MAX_LIMIT", config.LeaderboardMaxLimit); err != nil {
		return nil, err
	}
	if config.OTelExportIntervalMillis, err = parseInt("OTEL_EXPORT_INTERVAL_MILLIS", config.OTelExportIntervalMillis); err != nil {
		return nil, err
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// validate checks settings that have no usable fallback
func (c *Config) validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.TxMaxAttempts < 1 {
		return fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1, got %d", c.TxMaxAttempts)
	}
	if c.LeaderboardDefaultLimit < 1 || c.LeaderboardMaxLimit < c.LeaderboardDefaultLimit {
		return fmt.Errorf("leaderboard limits must satisfy 1 <= default (%d) <= max (%d)",
			c.LeaderboardDefaultLimit, c.LeaderboardMaxLimit)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func parseInt32(key string, defaultValue int32) (int32, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return int32(parsed), nil
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		DatabaseMaxConns:         4,
		HTTPAddr:                 ":0",
		LeaderboardCacheTTL:      time.Second,
		TxMaxAttempts:            5,
		TxAttemptTimeout:         5 * time.Second,
		TxRetryBudget:            10 * time.Second,
		LeaderboardDefaultLimit:  50,
		LeaderboardMaxLimit:      500,
		OTelServiceName:          "fanhunt-ledger",
		OTelExporterType:         "none",
		OTelExportIntervalMillis: 1000,
		LogLevel:                 "debug",
		LogFormat:                "text",
		Environment:              "test",
	}
}
