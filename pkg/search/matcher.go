package search

import (
	"strings"
	"unicode"

	"github.com/workforcedata/occsearch/pkg/document"
)

// Matcher finds a term in document leaves. It is immutable and safe to share
// across the goroutines of one search.
type Matcher struct {
	term          string
	needle        []rune
	caseSensitive bool
	fields        map[string]struct{}
	resolver      *Resolver
}

// NewMatcher prepares term for matching. An empty fields list makes every leaf eligible.
func NewMatcher(term string, fields []string, caseSensitive bool, resolver *Resolver) *Matcher {
	m := &Matcher{
		term:          term,
		caseSensitive: caseSensitive,
		resolver:      resolver,
	}
	m.needle = m.fold([]rune(term))

	if len(fields) > 0 {
		m.fields = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			m.fields[f] = struct{}{}
		}
	}
	return m
}

// TermLength is the term length in runes
func (m *Matcher) TermLength() int {
	return len(m.needle)
}

// Match walks doc depth-first in source order and returns every matching leaf
func (m *Matcher) Match(doc *document.Document) []Match {
	if doc == nil || doc.Root == nil || len(m.needle) == 0 {
		return nil
	}

	w := walker{matcher: m, root: doc.Root}
	w.walk(doc.Root)
	return w.matches
}

type walker struct {
	matcher *Matcher
	root    *document.Node
	path    []string
	trail   []step
	matches []Match
}

func (w *walker) walk(node *document.Node) {
	switch node.Kind {
	case document.KindObject:
		for _, member := range node.Members {
			w.path = append(w.path, member.Key)
			w.trail = append(w.trail, step{key: member.Key})
			w.walk(member.Value)
			w.path = w.path[:len(w.path)-1]
			w.trail = w.trail[:len(w.trail)-1]
		}
	case document.KindArray:
		for i, item := range node.Items {
			w.trail = append(w.trail, step{index: i, isIndex: true})
			w.walk(item)
			w.trail = w.trail[:len(w.trail)-1]
		}
	case document.KindString:
		w.leafString(node.Text)
	case document.KindNumber, document.KindBool:
		w.leafScalar(node)
	}
}

func (w *walker) fieldPath() (string, bool) {
	field := strings.Join(w.path, ".")
	if w.matcher.fields == nil {
		return field, true
	}
	_, ok := w.matcher.fields[field]
	return field, ok
}

func (w *walker) leafString(value string) {
	field, ok := w.fieldPath()
	if !ok {
		return
	}

	positions := w.matcher.find(value)
	if len(positions) == 0 {
		return
	}

	identifier, kind := w.matcher.resolver.Resolve(w.root, w.trail)
	w.matches = append(w.matches, Match{
		Identifier: identifier,
		Kind:       kind,
		Field:      field,
		Value:      value,
		Positions:  positions,
	})
}

func (w *walker) leafScalar(node *document.Node) {
	field, ok := w.fieldPath()
	if !ok {
		return
	}

	text, _ := node.Scalar()
	if string(w.matcher.fold([]rune(text))) != string(w.matcher.needle) {
		return
	}

	w.matches = append(w.matches, Match{
		Kind:      KindUnknown,
		Field:     field,
		Value:     text,
		Positions: []Position{},
	})
}

// find returns every non-overlapping occurrence of the term in value, left to right
func (m *Matcher) find(value string) []Position {
	hay := m.fold([]rune(value))
	n := len(m.needle)

	var positions []Position
	for i := 0; i+n <= len(hay); {
		if runesEqual(hay[i:i+n], m.needle) {
			positions = append(positions, Position{Start: i, End: i + n})
			i += n
			continue
		}
		i++
	}
	return positions
}

// fold lower-cases rune by rune so offsets into the folded text are offsets into the original
func (m *Matcher) fold(rs []rune) []rune {
	if m.caseSensitive {
		return rs
	}
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
