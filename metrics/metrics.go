package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the units of work of harvest runs, labelled by site.
type Metrics struct {
	SearchPagesFetched *prometheus.CounterVec
	SearchPagesEmpty   *prometheus.CounterVec
	ArticlesFetched    *prometheus.CounterVec
	ArticlesParsed     *prometheus.CounterVec
	ArticlesSkipped    *prometheus.CounterVec
	FetchErrors        *prometheus.CounterVec
	RecordsKept        *prometheus.CounterVec
	RecordsOutOfWindow *prometheus.CounterVec
	DuplicatesDropped  *prometheus.CounterVec
	HarvestDuration    *prometheus.HistogramVec
}

// New creates the harvest metrics and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	counter := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "newsharvest",
				Name:      name,
				Help:      help,
			},
			[]string{"site"},
		)
	}

	return &Metrics{
		SearchPagesFetched: counter("search_pages_fetched_total", "Search result pages fetched with a success status"),
		SearchPagesEmpty:   counter("search_pages_empty_total", "Search result pages that were missing or listed no links"),
		ArticlesFetched:    counter("articles_fetched_total", "Article pages fetched with a success status"),
		ArticlesParsed:     counter("articles_parsed_total", "Article pages that produced a valid record"),
		ArticlesSkipped:    counter("articles_skipped_total", "Article pages that produced no valid record"),
		FetchErrors:        counter("fetch_errors_total", "Transport failures across all fetches"),
		RecordsKept:        counter("records_kept_total", "Records returned by harvest runs"),
		RecordsOutOfWindow: counter("records_out_of_window_total", "Records dropped for falling outside the date window"),
		DuplicatesDropped:  counter("duplicates_dropped_total", "Records collapsed into an earlier record with the same URL"),
		HarvestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "newsharvest",
				Name:      "harvest_duration_seconds",
				Help:      "Wall time of a harvest run",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"site"},
		),
	}
}

// WriteTextfile writes every metric in g to path in the text exposition
// format, for the node exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
