package document

import (
	"math"
	"strconv"
)

// Kind identifies the variant held by a Node
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "null"
	}
}

// Member is one key/value pair of an object node
type Member struct {
	Key   string
	Value *Node
}

// Node is a JSON value. Only the fields matching Kind are meaningful.
type Node struct {
	Kind    Kind
	Members []Member // KindObject, in source order
	Items   []*Node  // KindArray
	Text    string   // KindString value, or canonical KindNumber text
	Bool    bool     // KindBool
}

// Object builds an object node from members
func Object(members ...Member) *Node {
	return &Node{Kind: KindObject, Members: members}
}

// Array builds an array node
func Array(items ...*Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

// String builds a string node
func String(s string) *Node {
	return &Node{Kind: KindString, Text: s}
}

// Number builds a number node from a float
func Number(f float64) *Node {
	return &Node{Kind: KindNumber, Text: formatNumber(f)}
}

// Bool builds a boolean node
func Bool(b bool) *Node {
	return &Node{Kind: KindBool, Bool: b}
}

// Null builds a null node
func Null() *Node {
	return &Node{Kind: KindNull}
}

// Field is shorthand for a Member literal
func Field(key string, value *Node) Member {
	return Member{Key: key, Value: value}
}

// Get returns the value stored under key in an object node
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Index returns the i-th element of an array node
func (n *Node) Index(i int) (*Node, bool) {
	if n == nil || n.Kind != KindArray || i < 0 || i >= len(n.Items) {
		return nil, false
	}
	return n.Items[i], true
}

// Scalar returns the string form of a string, number or boolean node
func (n *Node) Scalar() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case KindString, KindNumber:
		return n.Text, true
	case KindBool:
		return strconv.FormatBool(n.Bool), true
	default:
		return "", false
	}
}

// set assigns key, replacing an earlier value in place so that duplicate
// keys keep their first position and their last value.
func (n *Node) set(key string, value *Node) {
	for i := range n.Members {
		if n.Members[i].Key == key {
			n.Members[i].Value = value
			return
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
}

// without returns a copy of an object node lacking key
func (n *Node) without(key string) *Node {
	out := &Node{Kind: KindObject, Members: make([]Member, 0, len(n.Members))}
	for _, m := range n.Members {
		if m.Key != key {
			out.Members = append(out.Members, m)
		}
	}
	return out
}

// formatNumber renders a float the way the documents' consumers print numbers:
// plain decimal notation inside [1e-6, 1e21), exponent notation outside.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
