package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"strconv"
	"strings"
)

// ErrUnknownFormat is returned for an unsupported table format.
var ErrUnknownFormat = errors.New("unknown table format")

// Format is the language the lookup table is rendered in.
type Format string

const (
	FormatTypeScript Format = "ts"
	FormatGo         Format = "go"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTypeScript, FormatGo:
		return f, nil
	case "typescript":
		return FormatTypeScript, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// TableOptions tunes the rendered table.
type TableOptions struct {
	// Package is the Go package clause used by FormatGo.
	Package string
}

// RenderTable renders items as a source literal sorted by name.
func RenderTable(items map[string]string, f Format, opts TableOptions) ([]byte, error) {
	switch f {
	case FormatTypeScript:
		return renderTypeScript(items), nil
	case FormatGo:
		return renderGo(items, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func renderTypeScript(items map[string]string) []byte {
	var b bytes.Buffer
	b.WriteString("export const D4_ITEM_IDS: Record<string, string> = {\n")
	for _, name := range SortedNames(items) {
		fmt.Fprintf(&b, "  %s: %s,\n", jsString(name), jsString(items[name]))
	}
	b.WriteString("};\n")
	return b.Bytes()
}

// jsString quotes s as a JSON string literal, which is also valid TypeScript.
// Invalid UTF-8 becomes U+FFFD.
func jsString(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderGo(items map[string]string, opts TableOptions) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = "data"
	}

	var b bytes.Buffer
	b.WriteString("// Code generated by extract_items. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("// D4ItemIDs maps item names to d4-tools image ids.\n")
	b.WriteString("var D4ItemIDs = map[string]string{\n")
	for _, name := range SortedNames(items) {
		fmt.Fprintf(&b, "\t%s: %s,\n", strconv.Quote(name), strconv.Quote(items[name]))
	}
	b.WriteString("}\n")

	src, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format go table: %w", err)
	}
	return src, nil
}
