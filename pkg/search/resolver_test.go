package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workforcedata/occsearch/pkg/document"
)

func mustParse(t *testing.T, data string) *document.Node {
	t.Helper()
	root, err := document.Parse([]byte(data))
	require.NoError(t, err)
	return root
}

func keyStep(key string) step { return step{key: key} }

func indexStep(i int) step { return step{index: i, isIndex: true} }

// TestResolver_Resolve tests code lookup beside a matched title
func TestResolver_Resolve(t *testing.T) {
	root := mustParse(t, `{
		"Occupations": [
			{"SOC Title": "Registered Nurses", "SOC Code": "29-1141"},
			{"SOC Title": "Nurse Practitioners"},
			{"SOC Title": "Pilots", "SOC Code": 532011},
			{"SOC Title": "Medics", "SOC Code": {"value": "29-2042"}}
		],
		"Programs": [{"Primary CIP Title": "Nursing", "Primary CIP Code": "51.3801"}],
		"Notes": "Nurse staffing"
	}`)
	resolver := NewResolver(DefaultSchemas())

	tests := []struct {
		name     string
		trail    []step
		wantID   *string
		wantKind CodeKind
	}{
		{
			name:     "soc title with code",
			trail:    []step{keyStep("Occupations"), indexStep(0), keyStep("SOC Title")},
			wantID:   strPtr("29-1141"),
			wantKind: KindSOC,
		},
		{
			name:     "soc title without code",
			trail:    []step{keyStep("Occupations"), indexStep(1), keyStep("SOC Title")},
			wantKind: KindSOC,
		},
		{
			name:     "numeric code is stringified",
			trail:    []step{keyStep("Occupations"), indexStep(2), keyStep("SOC Title")},
			wantID:   strPtr("532011"),
			wantKind: KindSOC,
		},
		{
			name:     "non-scalar code",
			trail:    []step{keyStep("Occupations"), indexStep(3), keyStep("SOC Title")},
			wantKind: KindSOC,
		},
		{
			name:     "prefixed cip title",
			trail:    []step{keyStep("Programs"), indexStep(0), keyStep("Primary CIP Title")},
			wantID:   strPtr("51.3801"),
			wantKind: KindCIP,
		},
		{
			name:     "not a title field",
			trail:    []step{keyStep("Notes")},
			wantKind: KindUnknown,
		},
		{
			name:     "array element without key",
			trail:    []step{indexStep(0)},
			wantKind: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, kind := resolver.Resolve(root, tt.trail)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

// TestResolver_DoesNotMutateTrail verifies the caller's trail is left intact
func TestResolver_DoesNotMutateTrail(t *testing.T) {
	root := mustParse(t, `{"SOC Title": "Nurse", "SOC Code": "29-1141"}`)
	trail := []step{keyStep("SOC Title")}

	id, _ := NewResolver(DefaultSchemas()).Resolve(root, trail)
	require.NotNil(t, id)
	assert.Equal(t, "SOC Title", trail[0].key)
}

// TestResolver_FirstSchemaWins verifies schema order decides overlapping suffixes
func TestResolver_FirstSchemaWins(t *testing.T) {
	root := mustParse(t, `{"SOC Title": "Nurse", "SOC Code": "29-1141", "Code": "other"}`)
	resolver := NewResolver([]Schema{
		{Kind: KindSOC, TitleSuffix: "SOC Title", CodeSuffix: "SOC Code"},
		{Kind: KindCIP, TitleSuffix: "Title", CodeSuffix: "Code"},
	})

	id, kind := resolver.Resolve(root, []step{keyStep("SOC Title")})
	assert.Equal(t, KindSOC, kind)
	assert.Equal(t, strPtr("29-1141"), id)
}

// TestResolver_Nil verifies a nil resolver resolves nothing
func TestResolver_Nil(t *testing.T) {
	var resolver *Resolver
	id, kind := resolver.Resolve(mustParse(t, `{"SOC Title": "x"}`), []step{keyStep("SOC Title")})
	assert.Nil(t, id)
	assert.Equal(t, KindUnknown, kind)
}

func strPtr(s string) *string { return &s }
