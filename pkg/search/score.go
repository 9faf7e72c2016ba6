package search

import "math"

// DefaultMinScore is the lowest score a document can have and still be returned
const DefaultMinScore = 0.5

// Score is min(1, total occurrences * termLen / 10). Number and boolean
// matches carry no positions and add nothing.
func Score(matches []Match, termLen int) float64 {
	occurrences := 0
	for _, m := range matches {
		occurrences += len(m.Positions)
	}
	return math.Min(1, float64(occurrences*termLen)/10)
}

// Dedupe drops matches whose identifier was already seen, keeping the first.
// Matches without an identifier are always kept.
func Dedupe(matches []Match) []Match {
	seen := make(map[string]struct{})
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Identifier != nil {
			if _, dup := seen[*m.Identifier]; dup {
				continue
			}
			seen[*m.Identifier] = struct{}{}
		}
		out = append(out, m)
	}
	return out
}

// resultKey identifies a result for cross-document deduplication: the file
// plus the identifier of its first kept match
func resultKey(r Result) string {
	if len(r.Matches) == 0 || r.Matches[0].Identifier == nil {
		return r.File + "\x00null"
	}
	return r.File + "\x00id:" + *r.Matches[0].Identifier
}

// dedupeResults keeps the first result per resultKey
func dedupeResults(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		key := resultKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
