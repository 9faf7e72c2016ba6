// Package document loads the JSON documents that the search engine scans.
//
// # Overview
//
// Every search re-reads the data directory. Each `.json` file is parsed into a
// Node tree, a tagged variant (object, array, string, number, boolean, null)
// that keeps object keys in source order. Key order matters downstream: match
// order drives snippet composition and deduplication tie-breaks.
//
// # Document Rules
//
// Two rules are keyed by file name:
//
//	Subset restriction: narrow one document to a single top-level key
//	Field stripping:    drop a bulky field from the elements of a top-level array
//
// Usage:
//
//	loader := document.NewLoader(document.DefaultRules())
//	names, err := document.ListDocuments(dir)
//	for _, name := range names {
//		doc, err := loader.Load(ctx, dir, name, subset)
//		if errors.Is(err, document.ErrSkipped) {
//			continue
//		}
//	}
//
// # Related Packages
//
//   - pkg/search: Walks the Node trees produced here
//   - pkg/inventory: Periodic document inventory
package document
