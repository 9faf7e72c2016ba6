package search

import "encoding/json"

// CodeKind names the taxonomy a match's identifier belongs to
type CodeKind string

const (
	KindSOC     CodeKind = "soc"
	KindCIP     CodeKind = "cip"
	KindUnknown CodeKind = "unknown"
)

// Position is a half-open [Start, End) span of rune offsets into a matched value
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match is one leaf of a document that matched the term
type Match struct {
	// Identifier is the resolved taxonomy code, nil when the field is not a
	// title field or its code could not be found
	Identifier *string    `json:"identifier"`
	Kind       CodeKind   `json:"kind"`
	Field      string     `json:"field"`
	Value      string     `json:"value"`
	Positions  []Position `json:"positions"`
}

// Result is one document that survived scoring
type Result struct {
	File          string  `json:"file"`
	Matches       []Match `json:"matches"`
	Score         float64 `json:"score"`
	Snippet       string  `json:"snippet"`
	SearchedArray string  `json:"searchedArray,omitempty"`
}

// Request is a validated search
type Request struct {
	Term          string
	Fields        []string
	CaseSensitive bool
	Page          int
	PerPage       int
	Subset        string
}

// Offset is the index of the first result on the requested page
func (r Request) Offset() int {
	return (r.Page - 1) * r.PerPage
}

// Validate checks the term and pagination bounds
func (r Request) Validate() error {
	switch {
	case r.Term == "":
		return wrapInvalid(ErrEmptyQuery)
	case r.Page < 1:
		return wrapInvalid(ErrInvalidPage)
	case r.PerPage < 1:
		return wrapInvalid(ErrInvalidPerPage)
	}
	return nil
}

// Page is one page of the sorted result list
type Page struct {
	Results []Result
	// Total counts every surviving result, not just this page
	Total   int
	PerPage int
	Offset  int
}

// Response is the JSON body of GET /search
type Response struct {
	Query      string     `json:"query"`
	Results    []Result   `json:"results"`
	Pagination Pagination `json:"pagination"`
	Meta       Meta       `json:"meta"`
}

// Pagination describes where the returned page sits in the full result list
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// Meta echoes the effective search options
type Meta struct {
	FieldsSearched FieldList `json:"fields_searched"`
	CaseSensitive  bool      `json:"case_sensitive"`
	SearchedArray  string    `json:"searched_array,omitempty"`
}

// FieldList encodes as the string "all" when empty
type FieldList []string

// MarshalJSON implements json.Marshaler
func (f FieldList) MarshalJSON() ([]byte, error) {
	if len(f) == 0 {
		return []byte(`"all"`), nil
	}
	return json.Marshal([]string(f))
}
