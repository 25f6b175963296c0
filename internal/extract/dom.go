package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var styleImagePattern = regexp.MustCompile(
	`background-image:\s*url\(['"]` + regexp.QuoteMeta(ImageBaseURL) + `(\d+)\.webp['"]\)`,
)

// ScanDOM finds cards by walking the parsed document. An element whose style
// carries a card image opens a card; the next non-empty label span closes it.
// Images seen while a card is open are ignored, matching the text scan.
//
// Unlike Scan, labels are entity-decoded and images are only read from style
// attributes.
func ScanDOM(document string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var (
		candidates []Candidate
		pending    string
	)
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if pending == "" {
			if style, ok := s.Attr("style"); ok {
				if m := styleImagePattern.FindStringSubmatch(style); m != nil {
					pending = m[1]
				}
			}
		}
		if pending == "" || goquery.NodeName(s) != "span" {
			return
		}

		class, _ := s.Attr("class")
		var style StyleClass
		switch class {
		case "d4-color-unique":
			style = StyleUnique
		case "d4-color-legendary":
			style = StyleLegendary
		default:
			return
		}

		label, ok := textOnly(s)
		if !ok || label == "" {
			return
		}
		candidates = append(candidates, Candidate{ImageID: pending, RawLabel: label, Style: style})
		pending = ""
	})
	return candidates, nil
}

// textOnly returns the span's text when it has no element children.
func textOnly(s *goquery.Selection) (string, bool) {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.TextNode {
				return "", false
			}
			b.WriteString(c.Data)
		}
	}
	return b.String(), true
}
