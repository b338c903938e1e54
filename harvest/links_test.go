package harvest

import (
	"testing"

	"github.com/pevans/newsharvest/scraper"
	"github.com/stretchr/testify/assert"
)

func testSite(baseURL string) *scraper.SiteConfig {
	return scraper.NewMirrorSite("test", baseURL)
}

// TestExtractLinks_PaginationBeforeResults verifies navigation links are
// never returned when the pagination block precedes the results
func TestExtractLinks_PaginationBeforeResults(t *testing.T) {
	html := `
	<html><body>
		<div class="Pagination clearfix">
			<a href="/search?page=1">1</a>
			<a href="/search?page=2">2</a>
		</div>
		<div class="searchcontent">
			<a href="/city/one/1.cms">One</a>
			<a href="/city/two/2.cms">Two</a>
		</div>
	</body></html>
	`

	links := ExtractLinks(html, testSite("http://example.com"))

	assert.Equal(t, []string{"/city/one/1.cms", "/city/two/2.cms"}, links)
}

// TestExtractLinks_PaginationInsideResults verifies a nested pagination
// block is dropped too
func TestExtractLinks_PaginationInsideResults(t *testing.T) {
	html := `
	<div class="searchcontent">
		<a href="/a.cms">A</a>
		<div class="Pagination clearfix"><a href="/next">Next</a></div>
		<a href="/b.cms">B</a>
		<a href="/a.cms">A again</a>
	</div>
	`

	links := ExtractLinks(html, testSite("http://example.com"))

	assert.Equal(t, []string{"/a.cms", "/b.cms", "/a.cms"}, links, "should keep order and duplicates")
}

// TestExtractLinks_NoContainer verifies the end-of-results signal
func TestExtractLinks_NoContainer(t *testing.T) {
	html := `<html><body><div class="other"><a href="/x">x</a></div></body></html>`

	assert.Empty(t, ExtractLinks(html, testSite("http://example.com")))
	assert.Empty(t, ExtractLinks("", testSite("http://example.com")))
}

// TestExtractLinks_SkipsAnchorsWithoutHref verifies bare anchors are ignored
func TestExtractLinks_SkipsAnchorsWithoutHref(t *testing.T) {
	html := `<div class="searchcontent"><a name="top">top</a><a href="/a.cms">A</a></div>`

	assert.Equal(t, []string{"/a.cms"}, ExtractLinks(html, testSite("http://example.com")))
}

// TestExtractLinks_FirstContainerOnly verifies only the first container counts
func TestExtractLinks_FirstContainerOnly(t *testing.T) {
	html := `
	<div class="searchcontent"><a href="/first.cms">1</a></div>
	<div class="searchcontent"><a href="/second.cms">2</a></div>
	`

	assert.Equal(t, []string{"/first.cms"}, ExtractLinks(html, testSite("http://example.com")))
}
