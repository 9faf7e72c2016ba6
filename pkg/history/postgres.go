package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var historyTracer = otel.Tracer("occsearch/history")

// undefinedTable is the PostgreSQL SQLSTATE for a missing relation
const undefinedTable = "42P01"

const schema = `
CREATE TABLE IF NOT EXISTS search_history (
	id          BIGSERIAL PRIMARY KEY,
	query       TEXT        NOT NULL,
	result_count INTEGER    NOT NULL,
	duration_ms BIGINT      NOT NULL,
	cache_hit   BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS search_history_query_idx ON search_history (lower(query) text_pattern_ops);
`

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	return db, nil
}

// PostgresRecorder keeps search history in PostgreSQL
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder creates a recorder over an open database
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Migrate creates the history table and index if they do not exist
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate search history: %w", err)
	}
	return nil
}

// Record appends one search to the history. Empty queries are ignored.
func (r *PostgresRecorder) Record(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.Query) == "" {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_history (query, result_count, duration_ms, cache_hit, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, entry.Query, entry.ResultCount, entry.Duration.Milliseconds(), entry.CacheHit)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", classify(err))
	}
	return nil
}

// Suggestions returns past queries starting with prefix (case-insensitive),
// most frequent first, then most recent.
func (r *PostgresRecorder) Suggestions(ctx context.Context, prefix string, limit int) ([]string, error) {
	limit = clampLimit(limit)

	ctx, span := historyTracer.Start(ctx, "Suggestions",
		trace.WithAttributes(
			attribute.String("prefix", prefix),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT query
		FROM search_history
		WHERE query ILIKE $1 ESCAPE '\'
		GROUP BY query
		ORDER BY COUNT(*) DESC, MAX(created_at) DESC
		LIMIT $2
	`, escapeLike(prefix)+"%", limit)
	if err != nil {
		err = classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get suggestions")
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := make([]string, 0, limit)
	for rows.Next() {
		var suggestion string
		if err := rows.Scan(&suggestion); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, suggestion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read suggestions: %w", err)
	}

	span.SetAttributes(attribute.Int("suggestion_count", len(suggestions)))
	return suggestions, nil
}

// escapeLike escapes LIKE metacharacters so prefix matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// classify maps a missing table to ErrNotMigrated
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == undefinedTable {
		return fmt.Errorf("%w: %v", ErrNotMigrated, err)
	}
	return err
}
