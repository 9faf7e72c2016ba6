package document

// SubsetRule marks a document whose top-level keys can be selected individually
type SubsetRule struct {
	File string `yaml:"file"`
}

// StripRule removes Field from every object element of the top-level array
// Array in document File.
type StripRule struct {
	File  string `yaml:"file"`
	Array string `yaml:"array"`
	Field string `yaml:"field"`
}

// Rules holds the per-file pre-filters applied before matching
type Rules struct {
	Subsets []SubsetRule `yaml:"subsets"`
	Strip   []StripRule  `yaml:"strip"`
}

// DefaultRules returns the rules for the standard extract set: the HPO lists
// are split by region array, and the per-page PDF text of the IDOL extract is
// dropped in favour of its tables.
func DefaultRules() Rules {
	return Rules{
		Subsets: []SubsetRule{
			{File: "wda_hpo_lists.json"},
		},
		Strip: []StripRule{
			{File: "pa_idol.json", Array: "pages", Field: "text"},
		},
	}
}

// AcceptsSubset reports whether name is a document that honours subset selectors
func (r Rules) AcceptsSubset(name string) bool {
	for _, rule := range r.Subsets {
		if rule.File == name {
			return true
		}
	}
	return false
}

// Apply runs the subset restriction and field stripping rules against doc
func (r Rules) Apply(doc *Document, subset string) (*Document, error) {
	root := doc.Root

	if subset != "" && r.AcceptsSubset(doc.Name) {
		value, ok := root.Get(subset)
		if !ok {
			return nil, ErrSkipped
		}
		root = Object(Field(subset, value))
	}

	for _, rule := range r.Strip {
		if rule.File == doc.Name {
			root = strip(root, rule)
		}
	}

	return &Document{Name: doc.Name, Root: root}, nil
}

func strip(root *Node, rule StripRule) *Node {
	array, ok := root.Get(rule.Array)
	if !ok || array.Kind != KindArray {
		return root
	}

	items := make([]*Node, len(array.Items))
	for i, item := range array.Items {
		if item.Kind == KindObject {
			item = item.without(rule.Field)
		}
		items[i] = item
	}

	out := Object()
	for _, m := range root.Members {
		if m.Key == rule.Array {
			out.Members = append(out.Members, Field(m.Key, Array(items...)))
			continue
		}
		out.Members = append(out.Members, m)
	}
	return out
}
