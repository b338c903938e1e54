package harvest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/newsharvest/scraper"
)

// ExtractLinks returns the article links on a search-results page, in
// document order. The pagination block is removed before links are
// collected so navigation is never mistaken for an article. An empty
// result means the page has no results container, which ends a sweep.
func ExtractLinks(body string, site *scraper.SiteConfig) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	if site.PaginationSelector != "" {
		doc.Find(site.PaginationSelector).Remove()
	}

	container := doc.Find(site.ResultsSelector).First()
	if container.Length() == 0 {
		return nil
	}

	links := []string{}
	container.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, href)
	})

	return links
}
