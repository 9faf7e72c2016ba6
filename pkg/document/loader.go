package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the file extension of searchable documents
const Extension = ".json"

// Document is one parsed file. It lives for a single request.
type Document struct {
	Name string
	Root *Node
}

// ListDocuments returns the names of the JSON files in dir, in lexical order.
// The order is stable and is used as the tie-break when ranking results.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnreadable, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Loader reads documents and applies the document rules
type Loader struct {
	rules Rules
}

// NewLoader creates a loader with the given rules
func NewLoader(rules Rules) *Loader {
	return &Loader{rules: rules}
}

// Rules returns the loader's document rules
func (l *Loader) Rules() Rules {
	return l.rules
}

// Load reads and parses dir/name and applies the document rules for the
// requested subset. ErrSkipped means the document takes no part in this request.
func (l *Loader) Load(ctx context.Context, dir, name, subset string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return l.rules.Apply(&Document{Name: name, Root: root}, subset)
}

// Stats summarizes the documents in a data directory
type Stats struct {
	Count int
	Bytes int64
}

// Inventory counts the JSON documents in dir and their total size. Files
// removed between listing and stat are ignored.
func Inventory(dir string) (Stats, error) {
	names, err := ListDocuments(dir)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		stats.Count++
		stats.Bytes += info.Size()
	}
	return stats, nil
}
