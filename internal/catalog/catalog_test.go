package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meur/gearforge/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = map[string]string{
	"Wushe Nak Pa":           "2578341230",
	"Band of First Breath":   "3723615896",
	"Temerity":               "4044736160",
	`Quote "Test" \ Item`:    "1",
	"Ring of Starless Skies": "9999",
}

func TestSummaryRoundTrip(t *testing.T) {
	for _, items := range []map[string]string{sample, {}, {"Tempest Roar": "222"}} {
		data, err := MarshalSummary(items)
		require.NoError(t, err)

		got, err := ParseSummary(data)
		require.NoError(t, err)
		assert.Equal(t, items, got.Items)
		assert.Equal(t, len(items), got.Count)
	}
}

func TestMarshalSummaryShape(t *testing.T) {
	data, err := MarshalSummary(map[string]string{"Temerity": "4044736160"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":{"Temerity":"4044736160"},"count":1}`, string(data))

	data, err = MarshalSummary(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":{},"count":0}`, string(data))
}

func TestParseSummaryErrors(t *testing.T) {
	_, err := ParseSummary([]byte(`{"items":`))
	assert.ErrorContains(t, err, "decode summary")

	_, err = ParseSummary([]byte(`{"items":{"a":"1"},"count":3}`))
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestRenderTypeScriptSorted(t *testing.T) {
	out, err := RenderTable(sample, FormatTypeScript, TableOptions{})
	require.NoError(t, err)

	want := "export const D4_ITEM_IDS: Record<string, string> = {\n" +
		`  "Band of First Breath": "3723615896",` + "\n" +
		`  "Quote \"Test\" \\ Item": "1",` + "\n" +
		`  "Ring of Starless Skies": "9999",` + "\n" +
		`  "Temerity": "4044736160",` + "\n" +
		`  "Wushe Nak Pa": "2578341230",` + "\n" +
		"};\n"
	assert.Equal(t, want, string(out))
}

func TestRenderTypeScriptEmpty(t *testing.T) {
	out, err := RenderTable(map[string]string{}, FormatTypeScript, TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, "export const D4_ITEM_IDS: Record<string, string> = {\n};\n", string(out))
}

func TestRenderGo(t *testing.T) {
	out, err := RenderTable(map[string]string{"Temerity": "4044736160", "Band of First Breath": "3723615896"}, FormatGo, TableOptions{Package: "lookup"})
	require.NoError(t, err)

	src := string(out)
	assert.Contains(t, src, "package lookup\n")
	assert.Contains(t, src, "var D4ItemIDs = map[string]string{")
	assert.Less(t, strings.Index(src, "Band of First Breath"), strings.Index(src, "Temerity"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TS")
	require.NoError(t, err)
	assert.Equal(t, FormatTypeScript, f)

	f, err = ParseFormat("typescript")
	require.NoError(t, err)
	assert.Equal(t, FormatTypeScript, f)

	f, err = ParseFormat("go")
	require.NoError(t, err)
	assert.Equal(t, FormatGo, f)

	_, err = ParseFormat("yaml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = RenderTable(sample, Format("yaml"), TableOptions{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src", "data", "d4-item-ids.ts")

	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestReadSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d4-items.json")
	data, err := MarshalSummary(sample)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, data))

	s, err := ReadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, sample, s.Items)

	_, err = ReadSummary(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		want   Match
		wantOK bool
	}{
		{"exact", "Temerity", Match{Name: "Temerity", ImageID: "4044736160", ImageURL: extract.ImageBaseURL + "4044736160.webp", Exact: true}, true},
		{"query contains key", "Temerity (Pants)", Match{Name: "Temerity", ImageID: "4044736160", ImageURL: extract.ImageBaseURL + "4044736160.webp"}, true},
		{"key contains query", "Starless", Match{Name: "Ring of Starless Skies", ImageID: "9999", ImageURL: extract.ImageBaseURL + "9999.webp"}, true},
		{"first sorted partial", "a", Match{Name: "Band of First Breath", ImageID: "3723615896", ImageURL: extract.ImageBaseURL + "3723615896.webp"}, true},
		{"miss", "Doombringer", Match{}, false},
		{"empty", "", Match{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(sample, tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTypeScriptEscapesForJS(t *testing.T) {
	out, err := RenderTable(map[string]string{
		"Bell\aItem":        "1",
		"X\xffY":            "2",
		"Astral \U0001F31F": "3",
		"</script>":         "4",
	}, FormatTypeScript, TableOptions{})
	require.NoError(t, err)

	src := string(out)
	assert.Contains(t, src, `  "Bell\u0007Item": "1",`)
	assert.Contains(t, src, `  "X\ufffdY": "2",`)
	assert.Contains(t, src, "  \"Astral \U0001F31F\": \"3\",")
	assert.Contains(t, src, `  "</script>": "4",`)
	assert.NotContains(t, src, `\a`)
	assert.NotContains(t, src, `\x`)
	assert.NotContains(t, src, `\U`)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "https://assets-ng.maxroll.gg/d4-tools/images/webp/42.webp", ImageURL("42"))
	assert.Equal(t, FallbackImageURL, ImageURL(""))
}
