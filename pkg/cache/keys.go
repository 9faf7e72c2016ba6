package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// KeyPrefix namespaces every key; the suffix is the format version
const KeyPrefix = "search:v1:"

// Params are the request parameters that determine a search response
type Params struct {
	Term          string
	Fields        []string
	CaseSensitive bool
	Page          int
	PerPage       int
	Subset        string
}

// Key returns the cache key for p.
//
// Algorithm (v1): hash term, case flag, page, per_page and subset each
// followed by \0, then the count of distinct fields followed by \0, then
// every distinct field in sorted order followed by \0.
func Key(p Params) string {
	hasher := sha256.New()

	write := func(s string) {
		hasher.Write([]byte(s))
		hasher.Write([]byte{0})
	}

	write(p.Term)
	write(strconv.FormatBool(p.CaseSensitive))
	write(strconv.Itoa(p.Page))
	write(strconv.Itoa(p.PerPage))
	write(p.Subset)

	fields := normalizeFields(p.Fields)
	write(strconv.Itoa(len(fields)))
	for _, f := range fields {
		write(f)
	}

	return KeyPrefix + hex.EncodeToString(hasher.Sum(nil))
}

// normalizeFields returns a sorted copy of fields without duplicates
func normalizeFields(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}

	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, f := range sorted {
		if i > 0 && f == sorted[i-1] {
			continue
		}
		out = append(out, f)
	}
	return out
}
