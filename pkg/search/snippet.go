package search

import "strings"

const (
	snippetMatches    = 3
	snippetValueLimit = 100
	snippetEllipsis   = "..."
	snippetSeparator  = " | "
)

// Snippet renders up to the first three matches as "field: value", joined by
// " | ". Values longer than 100 characters are cut to 100 plus "...".
func Snippet(matches []Match) string {
	if len(matches) > snippetMatches {
		matches = matches[:snippetMatches]
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Field+": "+truncate(m.Value, snippetValueLimit))
	}
	return strings.Join(parts, snippetSeparator)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + snippetEllipsis
}
