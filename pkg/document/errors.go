package document

import "errors"

var (
	// ErrMalformed is returned when a file is not valid JSON
	ErrMalformed = errors.New("malformed JSON document")

	// ErrSkipped is returned when a document rule excludes a document from the current request
	ErrSkipped = errors.New("document skipped")

	// ErrDirectoryUnreadable is returned when the data directory cannot be listed
	ErrDirectoryUnreadable = errors.New("data directory unreadable")
)
