// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. Taxonomy schemas and document rules can be
// replaced by a YAML schema file.
//
// # Configuration Structure
//
// Server settings:
//
//	OCCSEARCH_HOST="0.0.0.0"
//	OCCSEARCH_PORT="8080"
//	OCCSEARCH_HEALTH_PORT="9090"
//	OCCSEARCH_CORS_ORIGINS="http://localhost:3000"
//	OCCSEARCH_ENV="production"  # hides error details
//
// Search settings:
//
//	OCCSEARCH_DATA_DIR="./output"
//	OCCSEARCH_MIN_SCORE="0.5"
//	OCCSEARCH_WORKERS="16"
//	OCCSEARCH_SCHEMA_FILE="/etc/occsearch/schemas.yaml"
//
// Cache settings:
//
//	OCCSEARCH_CACHE_ENABLED="true"
//	OCCSEARCH_CACHE_TTL="5m"
//	OCCSEARCH_CACHE_SIZE="1000"
//	OCCSEARCH_REDIS_URL="redis://localhost:6379"
//
// History and maintenance:
//
//	OCCSEARCH_POSTGRES_URL="postgres://localhost/occsearch"
//	OCCSEARCH_WATCH_ENABLED="true"
//	OCCSEARCH_INVENTORY_SCHEDULE="@every 1m"
//
// Observability settings:
//
//	OCCSEARCH_LOG_LEVEL="info"  # debug, info, warn, error
//	OCCSEARCH_METRICS_ENABLED="true"
//	OCCSEARCH_OTEL_ENABLED="true"
//	OCCSEARCH_OTEL_ENDPOINT="otel-collector:4317"
//
// A value in the schema file takes precedence over the matching environment variable.
package config
