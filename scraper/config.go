package scraper

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Discovery modes.
const (
	DiscoverySearch = "search"
	DiscoveryFeed   = "feed"
)

// Default page sweep: pages 10 through 49.
const (
	DefaultPageStart = 10
	DefaultPageEnd   = 50
)

// ErrUnknownSite is returned when a site name has no configuration.
var ErrUnknownSite = errors.New("unknown site")

// SiteConfig defines where a site's search endpoint lives and how to find
// articles in its pages.
type SiteConfig struct {
	Name               string `json:"name" yaml:"name"`
	BaseURL            string `json:"base_url" yaml:"base_url"`
	DiscoveryMode      string `json:"discovery_mode" yaml:"discovery_mode"` // "search" or "feed"
	SearchPath         string `json:"search_path" yaml:"search_path"`
	ArticlePrefix      string `json:"article_prefix" yaml:"article_prefix"`
	ResultsSelector    string `json:"results_selector" yaml:"results_selector"`
	PaginationSelector string `json:"pagination_selector,omitempty" yaml:"pagination_selector"`
	LDJSONSelector     string `json:"ldjson_selector" yaml:"ldjson_selector"`
	FeedURL            string `json:"feed_url,omitempty" yaml:"feed_url"`
	PageStart          int    `json:"page_start" yaml:"page_start"`
	PageEnd            int    `json:"page_end" yaml:"page_end"` // Exclusive
}

// NewMirrorSite creates a site configuration for a mirror-style site with
// the given base URL and default selectors.
func NewMirrorSite(name, baseURL string) *SiteConfig {
	return &SiteConfig{
		Name:               name,
		BaseURL:            baseURL,
		DiscoveryMode:      DiscoverySearch,
		SearchPath:         "getsearchdata.cms",
		ArticlePrefix:      "news",
		ResultsSelector:    "div.searchcontent",
		PaginationSelector: "div.Pagination.clearfix",
		LDJSONSelector:     `script[type="application/ld+json"]`,
		PageStart:          DefaultPageStart,
		PageEnd:            DefaultPageEnd,
	}
}

var builtin = map[string]*SiteConfig{
	"mumbai":    NewMirrorSite("mumbai", "https://mumbaimirror.indiatimes.com"),
	"bangalore": NewMirrorSite("bangalore", "https://bangaloremirror.indiatimes.com"),
}

// Lookup returns a copy of the built-in configuration for the named site.
func Lookup(name string) (*SiteConfig, error) {
	site, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownSite
	}
	c := *site
	return &c, nil
}

// Names returns the built-in site names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithDefaults fills unset fields from the mirror defaults.
func (c *SiteConfig) WithDefaults() *SiteConfig {
	d := NewMirrorSite(c.Name, c.BaseURL)
	out := *c
	if out.DiscoveryMode == "" {
		out.DiscoveryMode = d.DiscoveryMode
		// A site with nothing but a feed can only be read as a feed
		if out.BaseURL == "" && out.FeedURL != "" {
			out.DiscoveryMode = DiscoveryFeed
		}
	}
	if out.SearchPath == "" {
		out.SearchPath = d.SearchPath
	}
	if out.ArticlePrefix == "" {
		out.ArticlePrefix = d.ArticlePrefix
	}
	if out.ResultsSelector == "" {
		out.ResultsSelector = d.ResultsSelector
	}
	if out.PaginationSelector == "" {
		out.PaginationSelector = d.PaginationSelector
	}
	if out.LDJSONSelector == "" {
		out.LDJSONSelector = d.LDJSONSelector
	}
	if out.PageStart == 0 && out.PageEnd == 0 {
		out.PageStart, out.PageEnd = d.PageStart, d.PageEnd
	}
	return &out
}

// Pages returns the page numbers to sweep, in order.
func (c *SiteConfig) Pages() []int {
	var pages []int
	for p := c.PageStart; p < c.PageEnd; p++ {
		pages = append(pages, p)
	}
	return pages
}

// SearchURL builds the search request URL for a query and page number.
func (c *SiteConfig) SearchURL(query string, page int) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("pagenumber", strconv.Itoa(page))
	return joinPath(c.BaseURL, c.SearchPath) + "?" + params.Encode()
}

// ArticleURL builds the absolute article URL for a link found on a search
// page. Relative links live under the article prefix; absolute http(s)
// links are used as they are. A trailing slash on href is kept.
func (c *SiteConfig) ArticleURL(href string) string {
	if u, err := url.Parse(href); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return href
	}
	return joinPath(c.BaseURL, c.ArticlePrefix) + "/" + strings.TrimLeft(href, "/")
}

func joinPath(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		out += "/" + p
	}
	return out
}
