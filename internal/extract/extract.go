// Package extract pulls item names and image ids out of saved Maxroll build-guide pages.
//
// A page renders each item as a card: an element whose inline style sets a
// background-image from the d4-tools image CDN, followed somewhere later by a
// span styled d4-color-unique or d4-color-legendary holding the item name.
// Aspects share the legendary style; they are told apart only by their
// possessive names ("Flickerstep's"), so any name ending in 's is dropped.
// Real items whose name ends that way are dropped too.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// ImageBaseURL is the CDN prefix the card images are served from.
const ImageBaseURL = "https://assets-ng.maxroll.gg/d4-tools/images/webp/"

// StyleClass is the visual class of a card label.
type StyleClass string

const (
	StyleUnique    StyleClass = "unique"
	StyleLegendary StyleClass = "legendary"
)

// Strategy selects how a document is scanned.
type Strategy string

const (
	// StrategyRegex scans the raw markup text.
	StrategyRegex Strategy = "regex"
	// StrategyDOM walks the parsed element tree.
	StrategyDOM Strategy = "dom"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyRegex, "":
		return StrategyRegex, nil
	case StrategyDOM:
		return StrategyDOM, nil
	}
	return "", fmt.Errorf("unknown extract strategy %q", s)
}

// Candidate is one structural match before filtering.
type Candidate struct {
	ImageID  string
	RawLabel string
	Style    StyleClass
}

// Record is an accepted item.
type Record struct {
	Name     string
	ImageID  string
	Category StyleClass
}

var cardPattern = regexp.MustCompile(
	`(?s)background-image:\s*url\(['"]` + regexp.QuoteMeta(ImageBaseURL) + `(\d+)\.webp['"]\)` +
		`.*?<span class="d4-color-(unique|legendary)">([^<]+)</span>`,
)

// Scan returns every card match in the raw document, in document order.
func Scan(document string) []Candidate {
	matches := cardPattern.FindAllStringSubmatch(document, -1)
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, Candidate{
			ImageID:  m[1],
			Style:    StyleClass(m[2]),
			RawLabel: m[3],
		})
	}
	return candidates
}

// Accept trims the label and applies the aspect filter.
func Accept(c Candidate) (Record, bool) {
	name := strings.TrimSpace(c.RawLabel)
	if name == "" || strings.HasSuffix(name, "'s") {
		return Record{}, false
	}
	return Record{Name: name, ImageID: c.ImageID, Category: c.Style}, true
}

// Extract maps item names to image ids using the regex scan. Later cards with
// the same name overwrite earlier ones.
func Extract(document string) map[string]string {
	items := make(map[string]string)
	for _, c := range Scan(document) {
		if rec, ok := Accept(c); ok {
			items[rec.Name] = rec.ImageID
		}
	}
	return items
}

// Extractor runs a configured strategy and reports each accepted record.
type Extractor struct {
	strategy Strategy
	progress func(Record)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithStrategy selects the scan strategy.
func WithStrategy(s Strategy) Option {
	return func(e *Extractor) { e.strategy = s }
}

// WithProgress registers a callback invoked for every accepted record,
// duplicates included.
func WithProgress(fn func(Record)) Option {
	return func(e *Extractor) { e.progress = fn }
}

// New creates an Extractor using the regex strategy unless configured otherwise.
func New(opts ...Option) *Extractor {
	e := &Extractor{strategy: StrategyRegex}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Records returns the accepted records in document order.
func (e *Extractor) Records(document string) ([]Record, error) {
	var candidates []Candidate
	switch e.strategy {
	case StrategyDOM:
		var err error
		candidates, err = ScanDOM(document)
		if err != nil {
			return nil, err
		}
	default:
		candidates = Scan(document)
	}

	records := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		rec, ok := Accept(c)
		if !ok {
			continue
		}
		if e.progress != nil {
			e.progress(rec)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Extract returns the name to image id mapping, last write wins.
func (e *Extractor) Extract(document string) (map[string]string, error) {
	records, err := e.Records(document)
	if err != nil {
		return nil, err
	}
	items := make(map[string]string, len(records))
	for _, rec := range records {
		items[rec.Name] = rec.ImageID
	}
	return items, nil
}
