package harvest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsharvest/record"
)

// ParseArticle extracts an Article from an article page's structured-data
// block. url is the address the page was fetched from and becomes the
// record's identity. A non-nil error means the page yields no record; it
// never signals that a harvest failed.
func ParseArticle(body, url, ldjsonSelector string) (record.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return record.Article{}, err
	}

	// A page without structured data decodes as an empty document, which
	// then fails validation on its required fields
	raw := "{}"
	if script := doc.Find(ldjsonSelector).First(); script.Length() > 0 {
		raw = script.Text()
	}

	data, err := decodeMetadata(raw)
	if err != nil {
		return record.Article{}, err
	}

	data["author"] = authorName(data["author"])

	return record.NewArticle(url, data)
}

// authorName projects a structured author into a flat name. It accepts an
// object with a string name, or a list whose first such object wins.
// Anything else yields the placeholder.
func authorName(v any) string {
	switch a := v.(type) {
	case map[string]any:
		if name, ok := a["name"].(string); ok {
			return name
		}
	case []any:
		for _, elem := range a {
			if obj, ok := elem.(map[string]any); ok {
				if name, ok := obj["name"].(string); ok {
					return name
				}
			}
		}
	}
	return record.Placeholder
}
