// Package catalog turns an extracted name to image id mapping into the
// artifacts the documentation site consumes, and resolves names against it.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrCountMismatch is returned when a summary's count disagrees with its items.
var ErrCountMismatch = errors.New("summary count does not match items")

// Summary is the JSON document written next to the lookup table.
type Summary struct {
	Items map[string]string `json:"items"`
	Count int               `json:"count"`
}

// NewSummary wraps items in a Summary.
func NewSummary(items map[string]string) Summary {
	if items == nil {
		items = map[string]string{}
	}
	return Summary{Items: items, Count: len(items)}
}

// MarshalSummary encodes items as an indented summary document.
// Map keys are emitted in sorted order.
func MarshalSummary(items map[string]string) ([]byte, error) {
	data, err := json.MarshalIndent(NewSummary(items), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseSummary decodes a summary document.
func ParseSummary(data []byte) (*Summary, error) {
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if s.Items == nil {
		s.Items = map[string]string{}
	}
	if s.Count != len(s.Items) {
		return nil, fmt.Errorf("%w: count %d, items %d", ErrCountMismatch, s.Count, len(s.Items))
	}
	return &s, nil
}

// ReadSummary loads a summary document from disk.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSummary(data)
}

// SortedNames returns the item names in lexicographic order.
func SortedNames(items map[string]string) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFile writes data to path, creating parent directories and replacing
// any existing file.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
