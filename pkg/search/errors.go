package search

import "errors"

var (
	// ErrInvalidRequest is wrapped by every request validation error
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrEmptyQuery is returned when the search term is empty
	ErrEmptyQuery = errors.New(`Search query parameter "q" is required`)

	// ErrInvalidPage is returned when page is below 1
	ErrInvalidPage = errors.New("page must be a positive integer")

	// ErrInvalidPerPage is returned when per_page is below 1
	ErrInvalidPerPage = errors.New("per_page must be a positive integer")
)

// requestError reports the validation message alone while matching both
// ErrInvalidRequest and the specific cause with errors.Is
type requestError struct {
	cause error
}

func (e *requestError) Error() string { return e.cause.Error() }

func (e *requestError) Unwrap() []error { return []error{ErrInvalidRequest, e.cause} }

func wrapInvalid(cause error) error {
	return &requestError{cause: cause}
}
