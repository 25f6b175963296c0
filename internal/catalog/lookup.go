package catalog

import (
	"strings"

	"github.com/meur/gearforge/internal/extract"
)

// FallbackImageURL is the generic unique item icon.
const FallbackImageURL = "https://assets-ng.maxroll.gg/wordpress/Maxroll_Media_Uniques.webp"

// Match is the outcome of a name lookup.
type Match struct {
	Name     string `json:"name"`
	ImageID  string `json:"image_id"`
	ImageURL string `json:"image_url"`
	Exact    bool   `json:"exact"`
}

// Lookup resolves name to an image id. An exact key wins; otherwise the first
// key in sorted order that contains name, or is contained in it, is used.
func Lookup(items map[string]string, name string) (Match, bool) {
	if name == "" {
		return Match{}, false
	}
	if id, ok := items[name]; ok {
		return Match{Name: name, ImageID: id, ImageURL: ImageURL(id), Exact: true}, true
	}
	for _, key := range SortedNames(items) {
		if key == "" {
			continue
		}
		if strings.Contains(name, key) || strings.Contains(key, name) {
			id := items[key]
			return Match{Name: key, ImageID: id, ImageURL: ImageURL(id)}, true
		}
	}
	return Match{}, false
}

// ImageURL returns the CDN URL for an image id, or the fallback icon when id is empty.
func ImageURL(id string) string {
	if id == "" {
		return FallbackImageURL
	}
	return extract.ImageBaseURL + id + ".webp"
}
