package harvest

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/newsharvest/metrics"
	"github.com/pevans/newsharvest/record"
	"github.com/pevans/newsharvest/scraper"
)

// Harvester sweeps one site's search pages for a set of keywords and
// collects the articles published inside a date window.
type Harvester struct {
	site    *scraper.SiteConfig
	config  *HarvestConfig
	fetcher *Fetcher
	metrics *metrics.Metrics
	logger  *log.Logger
}

// HarvestConfig holds configuration for the harvester.
type HarvestConfig struct {
	// Timeout applied by the shared HTTP client to every request
	FetchTimeout time.Duration
	// User-Agent header sent with every request
	UserAgent string
	// Number of workers parsing HTML and JSON; 0 means one per CPU
	ParseWorkers int
	// Log articles that yield no record
	Verbose bool
}

// DefaultHarvestConfig returns the default harvester configuration.
func DefaultHarvestConfig() *HarvestConfig {
	return &HarvestConfig{
		FetchTimeout: 10 * time.Second,
		UserAgent:    DefaultUserAgent,
		ParseWorkers: 0,
	}
}

// Request describes one harvest: the keywords to search for and the
// publish-date window (exclusive on both ends) to keep.
type Request struct {
	Keywords []string
	Start    time.Time
	End      time.Time
}

// Result is the outcome of a harvest run.
type Result struct {
	RunID    uuid.UUID
	Records  []record.Article
	Duration time.Duration
}

// NewHarvester creates a harvester for site. A nil config uses the
// defaults; a nil m records into unregistered metrics.
func NewHarvester(site *scraper.SiteConfig, config *HarvestConfig, m *metrics.Metrics) *Harvester {
	if config == nil {
		config = DefaultHarvestConfig()
	}
	if m == nil {
		m = metrics.New(nil)
	}

	return &Harvester{
		site:    site,
		config:  config,
		fetcher: NewFetcher(config.FetchTimeout, config.UserAgent),
		metrics: m,
		logger:  log.Default(),
	}
}

// SetLogger replaces the logger used for run and transport messages.
func (h *Harvester) SetLogger(logger *log.Logger) {
	h.logger = logger
}

// harvestRun carries the state shared by the tasks of one Run.
type harvestRun struct {
	*Harvester
	id    uuid.UUID
	req   Request
	parse *parsePool
}

// Run performs a full harvest. Every fetch and parse is an independent
// unit of work: a failing unit contributes nothing, and Run itself never
// fails. The returned records are deduplicated by URL in no particular
// order.
func (h *Harvester) Run(ctx context.Context, req Request) *Result {
	startTime := time.Now()

	run := &harvestRun{
		Harvester: h,
		id:        uuid.New(),
		req:       req,
		parse:     newParsePool(h.config.ParseWorkers),
	}
	defer run.parse.close()

	h.logger.Printf("INFO: Harvest %s starting: site=%s keywords=%d mode=%s",
		run.id, h.site.Name, len(req.Keywords), h.site.DiscoveryMode)

	var collected []record.Article
	if h.site.DiscoveryMode == scraper.DiscoveryFeed {
		collected = run.feed(ctx)
	} else {
		collected = run.search(ctx)
	}

	records := record.Dedupe(collected)
	h.metrics.DuplicatesDropped.WithLabelValues(h.site.Name).Add(float64(len(collected) - len(records)))
	h.metrics.RecordsKept.WithLabelValues(h.site.Name).Add(float64(len(records)))

	duration := time.Since(startTime)
	h.metrics.HarvestDuration.WithLabelValues(h.site.Name).Observe(duration.Seconds())
	h.logger.Printf("INFO: Harvest %s finished: %d records in %v", run.id, len(records), duration)

	return &Result{
		RunID:    run.id,
		Records:  records,
		Duration: duration,
	}
}

// search dispatches one task per (keyword, page) pair and waits for all
// of them.
func (r *harvestRun) search(ctx context.Context) []record.Article {
	type task struct {
		keyword string
		page    int
	}

	var tasks []task
	for _, kw := range r.req.Keywords {
		for _, page := range r.site.Pages() {
			tasks = append(tasks, task{keyword: kw, page: page})
		}
	}

	chunks := make([][]record.Article, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunks[i] = r.searchPage(ctx, t.keyword, t.page)
		}()
	}
	wg.Wait()

	var all []record.Article
	for _, chunk := range chunks {
		all = append(all, chunk...)
	}
	return all
}

// searchPage fetches one search page and harvests every article it links.
func (r *harvestRun) searchPage(ctx context.Context, keyword string, page int) []record.Article {
	url := r.site.SearchURL(keyword, page)

	body, ok, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.metrics.FetchErrors.WithLabelValues(r.site.Name).Inc()
		r.logger.Printf("ERROR: Harvest %s: %v", r.id, err)
		return nil
	}
	if !ok {
		r.metrics.SearchPagesEmpty.WithLabelValues(r.site.Name).Inc()
		return nil
	}
	r.metrics.SearchPagesFetched.WithLabelValues(r.site.Name).Inc()

	var links []string
	r.parse.do(func() {
		links = ExtractLinks(body, r.site)
	})
	if len(links) == 0 {
		r.metrics.SearchPagesEmpty.WithLabelValues(r.site.Name).Inc()
		return nil
	}

	return r.articles(ctx, links)
}

// feed harvests the keyword-matching items of the site's feed.
func (r *harvestRun) feed(ctx context.Context) []record.Article {
	links, err := FeedLinks(ctx, r.fetcher, r.site.FeedURL, r.req.Keywords)
	if err != nil {
		r.metrics.FetchErrors.WithLabelValues(r.site.Name).Inc()
		r.logger.Printf("ERROR: Harvest %s: %v", r.id, err)
		return nil
	}

	return r.articles(ctx, links)
}

// articles fetches and parses every link concurrently, waits for all of
// them and keeps the records inside the window.
func (r *harvestRun) articles(ctx context.Context, links []string) []record.Article {
	results := make([]*record.Article, len(links))

	var wg sync.WaitGroup
	for i, href := range links {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.article(ctx, r.site.ArticleURL(href))
		}()
	}
	wg.Wait()

	var kept []record.Article
	for _, a := range results {
		if a == nil {
			continue
		}
		if !record.InWindow(a.DatePublished, r.req.Start, r.req.End) {
			r.metrics.RecordsOutOfWindow.WithLabelValues(r.site.Name).Inc()
			continue
		}
		kept = append(kept, *a)
	}
	return kept
}

// article fetches and parses a single article page. It returns nil when
// the page yields no record.
func (r *harvestRun) article(ctx context.Context, url string) *record.Article {
	body, ok, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.metrics.FetchErrors.WithLabelValues(r.site.Name).Inc()
		r.logger.Printf("ERROR: Harvest %s: %v", r.id, err)
		return nil
	}
	if !ok {
		r.metrics.ArticlesSkipped.WithLabelValues(r.site.Name).Inc()
		return nil
	}
	r.metrics.ArticlesFetched.WithLabelValues(r.site.Name).Inc()

	var (
		a        record.Article
		parseErr error
	)
	r.parse.do(func() {
		a, parseErr = ParseArticle(body, url, r.site.LDJSONSelector)
	})
	if parseErr != nil {
		r.metrics.ArticlesSkipped.WithLabelValues(r.site.Name).Inc()
		if r.config.Verbose {
			r.logger.Printf("DEBUG: Harvest %s: skipped %s: %v", r.id, url, parseErr)
		}
		return nil
	}

	r.metrics.ArticlesParsed.WithLabelValues(r.site.Name).Inc()
	return &a
}
