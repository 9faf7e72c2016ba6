package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// TestListDocuments verifies only JSON files are listed, in lexical order
func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pa_idol.json", `{}`)
	writeFile(t, dir, "occ.json", `{}`)
	writeFile(t, dir, "notes.txt", `ignored`)
	writeFile(t, dir, "backup.json.bak", `{}`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	names, err := ListDocuments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"occ.json", "pa_idol.json"}, names)
}

// TestListDocuments_Empty verifies an empty directory is not an error
func TestListDocuments_Empty(t *testing.T) {
	names, err := ListDocuments(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

// TestListDocuments_MissingDirectory verifies the system-level error
func TestListDocuments_MissingDirectory(t *testing.T) {
	_, err := ListDocuments(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrDirectoryUnreadable)
}

// TestLoader_Load tests reading and rule application
func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "wda_hpo_lists.json", `{"NW": [{"SOC Code": "29-1141"}], "SW": [{"SOC Code": "15-1252"}]}`)
	writeFile(t, dir, "pa_idol.json", `{"pages": [{"page": 1, "text": "long page text", "tables": [["Nurse"]]}, "loose"], "source": "idol"}`)
	writeFile(t, dir, "occ.json", `{"Taxonomy A": []}`)
	writeFile(t, dir, "broken.json", `{"Taxonomy A": [`)

	loader := NewLoader(DefaultRules())

	t.Run("subset narrows the document", func(t *testing.T) {
		doc, err := loader.Load(ctx, dir, "wda_hpo_lists.json", "NW")
		require.NoError(t, err)
		assert.Equal(t, []string{"NW"}, keys(doc.Root))
	})

	t.Run("unknown subset skips the document", func(t *testing.T) {
		_, err := loader.Load(ctx, dir, "wda_hpo_lists.json", "NE")
		assert.ErrorIs(t, err, ErrSkipped)
	})

	t.Run("subset ignored for other documents", func(t *testing.T) {
		doc, err := loader.Load(ctx, dir, "occ.json", "NE")
		require.NoError(t, err)
		assert.Equal(t, []string{"Taxonomy A"}, keys(doc.Root))
	})

	t.Run("no subset keeps every array", func(t *testing.T) {
		doc, err := loader.Load(ctx, dir, "wda_hpo_lists.json", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"NW", "SW"}, keys(doc.Root))
	})

	t.Run("strip rule removes page text", func(t *testing.T) {
		doc, err := loader.Load(ctx, dir, "pa_idol.json", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"pages", "source"}, keys(doc.Root))

		pages, _ := doc.Root.Get("pages")
		require.Len(t, pages.Items, 2)
		assert.Equal(t, []string{"page", "tables"}, keys(pages.Items[0]))
		assert.Equal(t, "loose", pages.Items[1].Text)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := loader.Load(ctx, dir, "broken.json", "")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(ctx, dir, "gone.json", "")
		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := loader.Load(cctx, dir, "occ.json", "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// TestRules_AcceptsSubset tests subset rule lookup
func TestRules_AcceptsSubset(t *testing.T) {
	rules := DefaultRules()
	assert.True(t, rules.AcceptsSubset("wda_hpo_lists.json"))
	assert.False(t, rules.AcceptsSubset("pa_idol.json"))
	assert.False(t, Rules{}.AcceptsSubset("wda_hpo_lists.json"))
}

// TestRules_ApplyNonObjectRoot verifies subset selection against an array root
func TestRules_ApplyNonObjectRoot(t *testing.T) {
	rules := Rules{Subsets: []SubsetRule{{File: "list.json"}}}
	_, err := rules.Apply(&Document{Name: "list.json", Root: Array(String("x"))}, "NW")
	assert.ErrorIs(t, err, ErrSkipped)
}

// TestInventory verifies document count and size totals
func TestInventory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"a": 1}`)
	writeFile(t, dir, "b.json", `[]`)
	writeFile(t, dir, "readme.md", `not counted`)

	stats, err := Inventory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, int64(len(`{"a": 1}`)+len(`[]`)), stats.Bytes)

	_, err = Inventory(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrDirectoryUnreadable)
}
