package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pevans/newsharvest/metrics"
	"github.com/pevans/newsharvest/record"
	"github.com/pevans/newsharvest/scraper"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

// fakeSite serves search pages and articles the way a mirror site does.
type fakeSite struct {
	// search maps a page number to the hrefs listed on it
	search map[int][]string
	// articles maps an article path (under /news/) to its ld+json block;
	// an empty block means the page has no structured data
	articles map[string]string
	// searchStatus overrides the status of every search page when set
	searchStatus int

	searchHits  atomic.Int32
	articleHits atomic.Int32
}

func (f *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/getsearchdata.cms":
		f.searchHits.Add(1)
		if f.searchStatus != 0 {
			http.Error(w, "unavailable", f.searchStatus)
			return
		}
		var page int
		fmt.Sscanf(r.URL.Query().Get("pagenumber"), "%d", &page)
		links, ok := f.search[page]
		if !ok {
			// Past the last page the site renders no results container
			fmt.Fprint(w, `<html><body><p>No results</p></body></html>`)
			return
		}
		var b strings.Builder
		b.WriteString(`<html><body><div class="Pagination clearfix"><a href="/getsearchdata.cms?pagenumber=99">99</a></div>`)
		b.WriteString(`<div class="searchcontent">`)
		for _, href := range links {
			fmt.Fprintf(&b, `<a href="%s">story</a>`, href)
		}
		b.WriteString(`</div></body></html>`)
		fmt.Fprint(w, b.String())
	case strings.HasPrefix(r.URL.Path, "/news/"):
		f.articleHits.Add(1)
		ldjson, ok := f.articles[strings.TrimPrefix(r.URL.Path, "/news/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if ldjson == "" {
			fmt.Fprint(w, `<html><body>No metadata here</body></html>`)
			return
		}
		fmt.Fprint(w, articlePage(ldjson))
	default:
		http.NotFound(w, r)
	}
}

// Test helper: structured data for an article published at t
func articleJSON(headline string, t time.Time) string {
	return fmt.Sprintf(`{
		"datePublished": %q,
		"dateModified": %q,
		"headline": %q,
		"description": "Story about %s",
		"author": {"name": "Desk"}
	}`, t.Format(time.RFC3339), t.Format(time.RFC3339), headline, headline)
}

// Test helper: a harvester pointed at a fake site sweeping pages 1 and 2
func newTestHarvester(t *testing.T, baseURL string) (*Harvester, *metrics.Metrics, *bytes.Buffer) {
	t.Helper()

	site := scraper.NewMirrorSite("test", baseURL)
	site.PageStart, site.PageEnd = 1, 3

	m := metrics.New(nil)
	h := NewHarvester(site, &HarvestConfig{FetchTimeout: 5 * time.Second, ParseWorkers: 2}, m)

	var logs bytes.Buffer
	h.SetLogger(log.New(&logs, "", 0))

	return h, m, &logs
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func urls(records []record.Article) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.URL)
	}
	sort.Strings(out)
	return out
}

// TestRun_OverlappingPagesYieldOneRecord verifies dedup across pages
func TestRun_OverlappingPagesYieldOneRecord(t *testing.T) {
	inWindow := windowStart.Add(72 * time.Hour)
	site := &fakeSite{
		search: map[int][]string{
			1: {"/city/shared.cms", "/city/only-one.cms"},
			2: {"/city/shared.cms"},
		},
		articles: map[string]string{
			"city/shared.cms":   articleJSON("shared", inWindow),
			"city/only-one.cms": articleJSON("only one", inWindow),
		},
	}
	server := httptest.NewServer(site)
	defer server.Close()

	h, m, _ := newTestHarvester(t, server.URL)
	result := h.Run(context.Background(), Request{
		Keywords: []string{"metro"},
		Start:    windowStart,
		End:      windowEnd,
	})

	assert.Equal(t, []string{
		server.URL + "/news/city/only-one.cms",
		server.URL + "/news/city/shared.cms",
	}, urls(result.Records))
	assert.NotEqual(t, "", result.RunID.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicatesDropped.WithLabelValues("test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsKept.WithLabelValues("test")))
}

// TestRun_MultipleKeywordsShareRecords verifies the same article found by
// two keywords is kept once
func TestRun_MultipleKeywordsShareRecords(t *testing.T) {
	site := &fakeSite{
		search:   map[int][]string{1: {"/a.cms"}},
		articles: map[string]string{"a.cms": articleJSON("a", windowStart.Add(time.Hour))},
	}
	server := httptest.NewServer(site)
	defer server.Close()

	h, _, _ := newTestHarvester(t, server.URL)
	result := h.Run(context.Background(), Request{
		Keywords: []string{"rain", "flood", "monsoon"},
		Start:    windowStart,
		End:      windowEnd,
	})

	require.Len(t, result.Records, 1)
	assert.Equal(t, int32(6), site.searchHits.Load(), "every keyword sweeps every page")
}

// TestRun_DateWindow verifies records on or outside the bounds are dropped
func TestRun_DateWindow(t *testing.T) {
	site := &fakeSite{
		search: map[int][]string{
			1: {"/at-start.cms", "/inside.cms", "/at-end.cms", "/before.cms"},
		},
		articles: map[string]string{
			"at-start.cms": articleJSON("start", windowStart),
			"inside.cms":   articleJSON("inside", windowStart.Add(time.Second)),
			"at-end.cms":   articleJSON("end", windowEnd),
			"before.cms":   articleJSON("before", windowStart.Add(-time.Hour)),
		},
	}
	server := httptest.NewServer(site)
	defer server.Close()

	h, m, _ := newTestHarvester(t, server.URL)
	result := h.Run(context.Background(), Request{Keywords: []string{"x"}, Start: windowStart, End: windowEnd})

	assert.Equal(t, []string{server.URL + "/news/inside.cms"}, urls(result.Records))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsOutOfWindow.WithLabelValues("test")))
}

// TestRun_SearchPage404 verifies a missing search page spawns no article
// work and is not an error
func TestRun_SearchPage404(t *testing.T) {
	site := &fakeSite{
		search:       map[int][]string{1: {"/a.cms"}},
		articles:     map[string]string{"a.cms": articleJSON("a", windowStart.Add(time.Hour))},
		searchStatus: http.StatusNotFound,
	}
	server := httptest.NewServer(site)
	defer server.Close()

	h, m, logs := newTestHarvester(t, server.URL)
	result := h.Run(context.Background(), Request{Keywords: []string{"x"}, Start: windowStart, End: windowEnd})

	assert.Empty(t, result.Records)
	assert.Equal(t, int32(2), site.searchHits.Load())
	assert.Equal(t, int32(0), site.articleHits.Load(), "no article tasks should be spawned")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchPagesEmpty.WithLabelValues("test")))
	assert.NotContains(t, logs.String(), "ERROR", "an empty result is not logged as a failure")
}

// TestRun_FailuresDegradeToNothing verifies bad units never fail the run
func TestRun_FailuresDegradeToNothing(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	site := &fakeSite{
		search: map[int][]string{
			1: {
				"/good.cms",
				"/missing.cms",
				"/no-metadata.cms",
				"/bad-date.cms",
				deadURL + "/unreachable.cms",
			},
		},
		articles: map[string]string{
			"good.cms":        articleJSON("good", windowStart.Add(time.Hour)),
			"no-metadata.cms": "",
			"bad-date.cms":    `{"datePublished": "??", "dateModified": "??", "description": "d"}`,
		},
	}
	server := httptest.NewServer(site)
	defer server.Close()

	h, m, logs := newTestHarvester(t, server.URL)
	result := h.Run(context.Background(), Request{Keywords: []string{"x"}, Start: windowStart, End: windowEnd})

	assert.Equal(t, []string{server.URL + "/news/good.cms"}, urls(result.Records))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("test")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ArticlesSkipped.WithLabelValues("test")))
	assert.Contains(t, logs.String(), "ERROR: Harvest")
	assert.Contains(t, logs.String(), "unreachable.cms")
}

// TestRun_UnreachableSite verifies a dead site yields an empty harvest
func TestRun_UnreachableSite(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	h, m, _ := newTestHarvester(t, deadURL)
	result := h.Run(context.Background(), Request{Keywords: []string{"x"}, Start: windowStart, End: windowEnd})

	assert.Empty(t, result.Records)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("test")))
}

// TestRun_NoKeywords verifies an empty request does no work
func TestRun_NoKeywords(t *testing.T) {
	site := &fakeSite{}
	server := httptest.NewServer(site)
	defer server.Close()

	h, _, _ := newTestHarvester(t, server.URL)
	h.SetLogger(discardLogger())
	result := h.Run(context.Background(), Request{Start: windowStart, End: windowEnd})

	assert.Empty(t, result.Records)
	assert.Equal(t, int32(0), site.searchHits.Load())
}

// TestRun_VerboseLogsSkippedArticles verifies skipped articles are only
// logged in verbose mode
func TestRun_VerboseLogsSkippedArticles(t *testing.T) {
	site := &fakeSite{
		search:   map[int][]string{1: {"/no-metadata.cms"}},
		articles: map[string]string{"no-metadata.cms": ""},
	}
	server := httptest.NewServer(site)
	defer server.Close()

	req := Request{Keywords: []string{"x"}, Start: windowStart, End: windowEnd}

	h, _, logs := newTestHarvester(t, server.URL)
	h.Run(context.Background(), req)
	assert.NotContains(t, logs.String(), "DEBUG")

	h, _, logs = newTestHarvester(t, server.URL)
	h.config.Verbose = true
	h.Run(context.Background(), req)
	assert.Contains(t, logs.String(), "DEBUG: Harvest")
	assert.Contains(t, logs.String(), "no-metadata.cms")
}
