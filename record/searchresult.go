package record

import (
	"fmt"
	"time"
)

// SearchResult is an article surfaced by a site whose search backend
// returns pre-structured results instead of HTML to crawl.
type SearchResult struct {
	CacheURL            string  `json:"cacheUrl"`
	ClicktrackURL       string  `json:"clicktrackUrl"`
	Content             string  `json:"content"`
	ContentNoFormatting string  `json:"contentNoFormatting"`
	Title               string  `json:"title"`
	TitleNoFormatting   string  `json:"titleNoFormatting"`
	FormattedURL        string  `json:"formattedUrl"`
	UnescapedURL        string  `json:"unescapedUrl"`
	URL                 string  `json:"url"`
	VisibleURL          string  `json:"visibleUrl"`
	RichSnippet         Snippet `json:"richSnippet"`
}

// Snippet holds the structured metadata attached to a search result.
type Snippet struct {
	Metatags Metatags `json:"metatags"`
}

// Metatags holds the page meta tags the search backend extracted.
type Metatags struct {
	ArticlePublishedTime time.Time `json:"articlePublishedTime"`
}

var searchResultColumns = []string{
	"cacheUrl",
	"clicktrackUrl",
	"content",
	"contentNoFormatting",
	"title",
	"titleNoFormatting",
	"formattedUrl",
	"unescapedUrl",
	"url",
	"visibleUrl",
	"richSnippet",
}

// SearchResultInclude and SearchResultExclude are the default export
// projection for search results: heavy text and redundant URL fields are
// dropped and only the publish date is added.
var (
	SearchResultInclude = []string{"date"}
	SearchResultExclude = []string{
		"cacheUrl",
		"clicktrackUrl",
		"content",
		"title",
		"formattedUrl",
		"unescapedUrl",
		"visibleUrl",
		"richSnippet",
	}
)

// NewSearchResult builds a SearchResult from one decoded result document.
// Every field is required.
func NewSearchResult(doc map[string]any) (SearchResult, error) {
	var (
		r   SearchResult
		err error
	)

	strs := []struct {
		key string
		dst *string
	}{
		{"cacheUrl", &r.CacheURL},
		{"clicktrackUrl", &r.ClicktrackURL},
		{"content", &r.Content},
		{"contentNoFormatting", &r.ContentNoFormatting},
		{"title", &r.Title},
		{"titleNoFormatting", &r.TitleNoFormatting},
		{"formattedUrl", &r.FormattedURL},
		{"unescapedUrl", &r.UnescapedURL},
		{"url", &r.URL},
		{"visibleUrl", &r.VisibleURL},
	}
	for _, f := range strs {
		if *f.dst, err = requireString(doc, f.key); err != nil {
			return SearchResult{}, err
		}
	}

	snippet, err := requireObject(doc, "richSnippet")
	if err != nil {
		return SearchResult{}, err
	}
	metatags, err := requireObject(snippet, "metatags")
	if err != nil {
		return SearchResult{}, &ValidationError{Field: "richSnippet.metatags", Reason: err.(*ValidationError).Reason}
	}
	published, err := requireTime(metatags, "articlePublishedTime")
	if err != nil {
		return SearchResult{}, &ValidationError{
			Field:  "richSnippet.metatags.articlePublishedTime",
			Reason: err.(*ValidationError).Reason,
		}
	}
	r.RichSnippet.Metatags.ArticlePublishedTime = published

	return r, nil
}

// Date returns the article's publish time.
func (r SearchResult) Date() time.Time {
	return r.RichSnippet.Metatags.ArticlePublishedTime
}

func (r SearchResult) Key() string { return r.URL }

func (r SearchResult) Published() time.Time { return r.Date() }

// Equal reports whether r and other are the same article.
func (r SearchResult) Equal(other SearchResult) bool {
	return r.URL == other.URL
}

func (r SearchResult) Columns() []string { return searchResultColumns }

func (r SearchResult) Fields() map[string]string {
	return map[string]string{
		"cacheUrl":            r.CacheURL,
		"clicktrackUrl":       r.ClicktrackURL,
		"content":             r.Content,
		"contentNoFormatting": r.ContentNoFormatting,
		"title":               r.Title,
		"titleNoFormatting":   r.TitleNoFormatting,
		"formattedUrl":        r.FormattedURL,
		"unescapedUrl":        r.UnescapedURL,
		"url":                 r.URL,
		"visibleUrl":          r.VisibleURL,
		"richSnippet":         fmt.Sprintf(`{"metatags":{"articlePublishedTime":%q}}`, formatTime(r.Date())),
		"date":                formatTime(r.Date()),
	}
}
