package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/workforcedata/occsearch/pkg/document"
	"github.com/workforcedata/occsearch/pkg/observability"
	"github.com/workforcedata/occsearch/pkg/search"
)

// EnvProduction is the OCCSEARCH_ENV value that hides error details
const EnvProduction = "production"

// Config holds all application configuration
type Config struct {
	// Environment name, "production" hides error details from clients
	Environment string

	Server        ServerConfig
	Search        SearchConfig
	Cache         CacheConfig
	History       HistoryConfig
	Maintenance   MaintenanceConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Requests per minute per client, 0 disables rate limiting
	RateLimit      int
	RateLimitBurst int

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// SearchConfig holds engine settings. Schemas and Rules come from the
// schema file when one is configured.
type SearchConfig struct {
	DataDir    string
	MinScore   float64
	Workers    int
	SchemaFile string
	Schemas    []search.Schema
	Rules      document.Rules
}

// CacheConfig holds result cache settings. A Redis URL selects the shared
// cache; otherwise responses are cached in process.
type CacheConfig struct {
	Enabled       bool
	TTL           time.Duration
	MaxEntries    int
	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// HistoryConfig holds search history settings. History is off without a URL.
type HistoryConfig struct {
	PostgresURL string
}

// MaintenanceConfig holds the background jobs watching the data directory
type MaintenanceConfig struct {
	WatchEnabled      bool
	InventorySchedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// LoadConfig loads configuration from environment variables and the
// optional schema file
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:   getEnv("OCCSEARCH_ENV", "development"),
		Server:        loadServerConfig(),
		Search:        loadSearchConfig(),
		Cache:         loadCacheConfig(),
		History:       HistoryConfig{PostgresURL: getEnv("OCCSEARCH_POSTGRES_URL", "")},
		Maintenance:   loadMaintenanceConfig(),
		Observability: loadObservabilityConfig(),
	}

	if cfg.Search.SchemaFile != "" {
		file, err := LoadSchemaFile(cfg.Search.SchemaFile)
		if err != nil {
			return nil, err
		}
		file.applyTo(&cfg.Search)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether error details must be withheld
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("OCCSEARCH_HOST", "0.0.0.0"),
		Port:            getEnv("OCCSEARCH_PORT", "8080"),
		ReadTimeout:     getEnvDuration("OCCSEARCH_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("OCCSEARCH_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("OCCSEARCH_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("OCCSEARCH_SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSOrigins:     getEnvList("OCCSEARCH_CORS_ORIGINS"),
		RateLimit:       getEnvInt("OCCSEARCH_RATE_LIMIT", 0),
		RateLimitBurst:  getEnvInt("OCCSEARCH_RATE_LIMIT_BURST", 10),
		HealthPort:      getEnv("OCCSEARCH_HEALTH_PORT", "9090"),
	}
}

// loadSearchConfig loads engine configuration from environment
func loadSearchConfig() SearchConfig {
	defaults := search.DefaultConfig("./output")

	return SearchConfig{
		DataDir:    getEnv("OCCSEARCH_DATA_DIR", defaults.DataDir),
		MinScore:   getEnvFloat("OCCSEARCH_MIN_SCORE", defaults.MinScore),
		Workers:    getEnvInt("OCCSEARCH_WORKERS", defaults.Workers),
		SchemaFile: getEnv("OCCSEARCH_SCHEMA_FILE", ""),
		Schemas:    defaults.Schemas,
		Rules:      defaults.Rules,
	}
}

// loadCacheConfig loads result cache configuration from environment
func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:       getEnvBool("OCCSEARCH_CACHE_ENABLED", true),
		TTL:           getEnvDuration("OCCSEARCH_CACHE_TTL", 5*time.Minute),
		MaxEntries:    getEnvInt("OCCSEARCH_CACHE_SIZE", 1000),
		RedisURL:      getEnv("OCCSEARCH_REDIS_URL", ""),
		RedisPassword: getEnv("OCCSEARCH_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("OCCSEARCH_REDIS_DB", 0),
	}
}

// loadMaintenanceConfig loads background job configuration from environment
func loadMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		WatchEnabled:      getEnvBool("OCCSEARCH_WATCH_ENABLED", true),
		InventorySchedule: getEnv("OCCSEARCH_INVENTORY_SCHEDULE", "@every 1m"),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("OCCSEARCH_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("OCCSEARCH_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("OCCSEARCH_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("OCCSEARCH_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("OCCSEARCH_OTEL_SERVICE_NAME", "occsearch"),
		OTelServiceVersion: getEnv("OCCSEARCH_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("OCCSEARCH_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("OCCSEARCH_OTEL_SAMPLE_RATIO", 1),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Server.RateLimit < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}

	// Validate search config
	if c.Search.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Search.MinScore < 0 || c.Search.MinScore > 1 {
		return fmt.Errorf("minimum score must be between 0 and 1, got %v", c.Search.MinScore)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Search.Workers)
	}
	for i, s := range c.Search.Schemas {
		if s.TitleSuffix == "" || s.CodeSuffix == "" {
			return fmt.Errorf("schema %d: title and code suffixes are required", i)
		}
	}

	// Validate cache config
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive when the cache is enabled")
		}
		if c.Cache.RedisURL == "" && c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache size must be at least 1 for the in-memory cache")
		}
	}

	if c.Maintenance.InventorySchedule != "" {
		if _, err := cron.ParseStandard(c.Maintenance.InventorySchedule); err != nil {
			return fmt.Errorf("invalid inventory schedule %q: %w", c.Maintenance.InventorySchedule, err)
		}
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
