package httputil

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// ParseQueryInt extracts and parses an integer query parameter.
// A missing or empty parameter yields defaultVal.
func ParseQueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("invalid integer for query param %s: %s", key, str)
	}
	return val, nil
}

// ParsePositiveInt is ParseQueryInt that also rejects values below 1
func ParsePositiveInt(r *http.Request, key string, defaultVal int) (int, error) {
	val, err := ParseQueryInt(r, key, defaultVal)
	if err != nil {
		return 0, err
	}
	if val < 1 {
		return 0, fmt.Errorf("query param %s must be a positive integer", key)
	}
	return val, nil
}

// ParseQueryBool reports whether key equals "true". Missing keys yield defaultVal;
// any other value is false.
func ParseQueryBool(r *http.Request, key string, defaultVal bool) bool {
	values, ok := r.URL.Query()[key]
	if !ok || len(values) == 0 {
		return defaultVal
	}
	return values[0] == "true"
}

// ParseQueryList splits a comma separated parameter into a sorted set of
// non-empty, trimmed entries. A missing parameter yields nil.
func ParseQueryList(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	sort.Strings(out)
	return out
}
