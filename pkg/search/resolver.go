package search

import (
	"strings"

	"github.com/workforcedata/occsearch/pkg/document"
)

// Schema maps a taxonomy's title field to its code field by key suffix.
// A title key "Primary SOC Title" with suffixes "SOC Title"/"SOC Code"
// resolves against the sibling key "Primary SOC Code".
type Schema struct {
	Kind        CodeKind `yaml:"kind"`
	TitleSuffix string   `yaml:"title_suffix"`
	CodeSuffix  string   `yaml:"code_suffix"`
}

// DefaultSchemas returns the SOC and CIP schemas
func DefaultSchemas() []Schema {
	return []Schema{
		{Kind: KindSOC, TitleSuffix: "SOC Title", CodeSuffix: "SOC Code"},
		{Kind: KindCIP, TitleSuffix: "CIP Title", CodeSuffix: "CIP Code"},
	}
}

// step is one hop from a parent container to a child: an object key, or an
// array index when isIndex is set
type step struct {
	key     string
	index   int
	isIndex bool
}

// Resolver finds the taxonomy code belonging to a matched title
type Resolver struct {
	schemas []Schema
}

// NewResolver creates a resolver; schemas are tried in order
func NewResolver(schemas []Schema) *Resolver {
	return &Resolver{schemas: schemas}
}

// Schemas returns the configured schemas
func (r *Resolver) Schemas() []Schema {
	return r.schemas
}

// Resolve returns the code for the leaf reached from root by trail. kind is
// KindUnknown when the leaf's key is not a title field; the identifier is nil
// when it is not, or when the code field is missing or not a scalar.
func (r *Resolver) Resolve(root *document.Node, trail []step) (*string, CodeKind) {
	last := lastKey(trail)
	if r == nil || last < 0 {
		return nil, KindUnknown
	}

	key := trail[last].key
	for _, s := range r.schemas {
		if s.TitleSuffix == "" || !strings.HasSuffix(key, s.TitleSuffix) {
			continue
		}

		codeTrail := make([]step, len(trail))
		copy(codeTrail, trail)
		codeTrail[last].key = strings.TrimSuffix(key, s.TitleSuffix) + s.CodeSuffix

		return lookup(root, codeTrail), s.Kind
	}

	return nil, KindUnknown
}

// lookup descends from root along trail
func lookup(root *document.Node, trail []step) *string {
	node := root
	for _, st := range trail {
		var ok bool
		if st.isIndex {
			node, ok = node.Index(st.index)
		} else {
			node, ok = node.Get(st.key)
		}
		if !ok {
			return nil
		}
	}

	code, ok := node.Scalar()
	if !ok {
		return nil
	}
	return &code
}

func lastKey(trail []step) int {
	for i := len(trail) - 1; i >= 0; i-- {
		if !trail[i].isIndex {
			return i
		}
	}
	return -1
}
