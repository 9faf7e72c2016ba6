package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(n *Node) []string {
	out := make([]string, 0, len(n.Members))
	for _, m := range n.Members {
		out = append(out, m.Key)
	}
	return out
}

// TestParse_PreservesKeyOrder verifies object members keep source order
func TestParse_PreservesKeyOrder(t *testing.T) {
	root, err := Parse([]byte(`{"zeta": 1, "alpha": 2, "mid": {"b": true, "a": null}}`))
	require.NoError(t, err)

	assert.Equal(t, KindObject, root.Kind)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys(root))

	mid, ok := root.Get("mid")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, keys(mid))
}

// TestParse_Kinds verifies every JSON value type maps to its variant
func TestParse_Kinds(t *testing.T) {
	root, err := Parse([]byte(`{
		"s": "Registered \"Nurse\"",
		"n": 29.0,
		"f": 0.25,
		"t": true,
		"z": null,
		"a": [1, "two", false],
		"o": {}
	}`))
	require.NoError(t, err)

	tests := []struct {
		key  string
		kind Kind
		text string
	}{
		{"s", KindString, `Registered "Nurse"`},
		{"n", KindNumber, "29"},
		{"f", KindNumber, "0.25"},
		{"t", KindBool, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			node, ok := root.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.kind, node.Kind)
			text, ok := node.Scalar()
			require.True(t, ok)
			assert.Equal(t, tt.text, text)
		})
	}

	z, _ := root.Get("z")
	assert.Equal(t, KindNull, z.Kind)
	_, ok := z.Scalar()
	assert.False(t, ok)

	a, _ := root.Get("a")
	require.Equal(t, KindArray, a.Kind)
	require.Len(t, a.Items, 3)
	assert.Equal(t, KindNumber, a.Items[0].Kind)
	assert.Equal(t, "two", a.Items[1].Text)
	assert.Equal(t, KindBool, a.Items[2].Kind)

	o, _ := root.Get("o")
	assert.Equal(t, KindObject, o.Kind)
	assert.Empty(t, o.Members)
}

// TestParse_EscapedKeys verifies escaped keys are decoded exactly once
func TestParse_EscapedKeys(t *testing.T) {
	root, err := Parse([]byte(`{"SOC\nCode": "29-1141", "back\\slash": 1}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"SOC\nCode", `back\slash`}, keys(root))
}

// TestParse_DuplicateKeys verifies the last value wins at the first position
func TestParse_DuplicateKeys(t *testing.T) {
	root, err := Parse([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, keys(root))
	a, _ := root.Get("a")
	assert.Equal(t, "3", a.Text)
}

// TestParse_TopLevelArray verifies non-object roots are accepted
func TestParse_TopLevelArray(t *testing.T) {
	root, err := Parse([]byte(`[{"Title": "Nurse"}]`))
	require.NoError(t, err)
	assert.Equal(t, KindArray, root.Kind)
	require.Len(t, root.Items, 1)
}

// TestParse_Malformed verifies invalid input is rejected
func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`{`,
		`{"a": }`,
		`{"a": 1} trailing`,
		`not json`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

// TestFormatNumber verifies canonical number text
func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{-7.5, "-7.5"},
		{1141, "1141"},
		{1e21, "1e+21"},
		{123456789012, "123456789012"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatNumber(tt.in))
		})
	}
}
