// Package history records executed searches and serves query suggestions
// from them.
//
// # Overview
//
// History is optional. When no database is configured the Noop recorder is
// used and suggestions are always empty. With PostgreSQL every search is
// appended to search_history and suggestions are the most frequent past
// queries starting with a prefix:
//
//	db, err := history.Open(ctx, "postgres://localhost/occsearch?sslmode=disable")
//	rec := history.NewPostgresRecorder(db)
//	if err := rec.Migrate(ctx); err != nil { ... }
//
//	rec.Record(ctx, history.Entry{Query: "Nurse", ResultCount: 3})
//	suggestions, err := rec.Suggestions(ctx, "nu", 5)
package history
