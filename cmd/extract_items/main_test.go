package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meur/gearforge/internal/catalog"
	"github.com/meur/gearforge/internal/console"
	"github.com/meur/gearforge/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id, style, label string) string {
	return `<div style="background-image: url('` + extract.ImageBaseURL + id + `.webp')"></div>` +
		"\n<p><span class=\"d4-color-" + style + "\">" + label + "</span></p>\n"
}

const page = "<html><body>"

func TestRunFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "guide.html")
	doc := page + card("2", "unique", "Wushe Nak Pa") + card("1", "legendary", "Flickerstep's") + card("3", "unique", "Band of First Breath")
	require.NoError(t, os.WriteFile(input, []byte(doc), 0o644))

	summary := filepath.Join(dir, "out", "d4-items.json")
	table := filepath.Join(dir, "src", "data", "d4-item-ids.ts")

	var buf bytes.Buffer
	err := run([]string{"-summary", summary, "-table", table, input}, strings.NewReader(""), console.NewWriter(&buf))
	require.NoError(t, err)

	s, err := catalog.ReadSummary(summary)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Wushe Nak Pa": "2", "Band of First Breath": "3"}, s.Items)

	ts, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Equal(t, "export const D4_ITEM_IDS: Record<string, string> = {\n"+
		"  \"Band of First Breath\": \"3\",\n"+
		"  \"Wushe Nak Pa\": \"2\",\n"+
		"};\n", string(ts))

	assert.Contains(t, buf.String(), "Found: Wushe Nak Pa -> 2\n")
	assert.NotContains(t, buf.String(), "Flickerstep")
	assert.Contains(t, buf.String(), "✓ Extracted 2 items to "+summary)
}

func TestRunFromStdinGoFormat(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "d4-items.json")
	table := filepath.Join(dir, "ids.go")

	var buf bytes.Buffer
	err := run(
		[]string{"-summary", summary, "-table", table, "-format", "go", "-package", "ids", "-strategy", "dom"},
		strings.NewReader(page+card("9999", "unique", "Ring of Starless Skies")),
		console.NewWriter(&buf),
	)
	require.NoError(t, err)

	src, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package ids")
	assert.Contains(t, string(src), `"Ring of Starless Skies": "9999"`)
	assert.Contains(t, buf.String(), "Created Go lookup table")
}

func TestRunEmptyInput(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "d4-items.json")

	var buf bytes.Buffer
	err := run([]string{"-summary", summary, "-table", filepath.Join(dir, "t.ts")}, strings.NewReader(""), console.NewWriter(&buf))
	require.NoError(t, err)

	s, err := catalog.ReadSummary(summary)
	require.NoError(t, err)
	assert.Empty(t, s.Items)
	assert.Equal(t, 0, s.Count)
}

func TestRunMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := run([]string{filepath.Join(t.TempDir(), "missing.html")}, strings.NewReader(""), console.NewWriter(&buf))
	assert.ErrorIs(t, err, errInputNotFound)
}

func TestRunRejectsUnknownOptions(t *testing.T) {
	var buf bytes.Buffer
	dir := t.TempDir()
	input := filepath.Join(dir, "guide.html")
	require.NoError(t, os.WriteFile(input, []byte(page), 0o644))

	err := run([]string{"-strategy", "xpath", input}, strings.NewReader(""), console.NewWriter(&buf))
	assert.ErrorContains(t, err, "unknown extract strategy")

	err = run([]string{"-format", "yaml", input}, strings.NewReader(""), console.NewWriter(&buf))
	assert.ErrorIs(t, err, catalog.ErrUnknownFormat)
}
