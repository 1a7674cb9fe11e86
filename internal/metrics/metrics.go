package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Using promauto to automatically register metrics with the default registry
	searchesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gistsearch_searches_total",
			Help: "Total number of search requests, by result status",
		},
		[]string{"status"},
	)

	upstreamRequestsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gistsearch_upstream_requests_total",
			Help: "Total number of requests sent to the upstream API, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gistsearch_search_duration_seconds",
			Help:    "Duration of search requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	KindList = "list"
	KindRaw  = "raw"
)

func ObserveSearch(status string, seconds float64) {
	searchesCounter.WithLabelValues(status).Inc()
	searchDuration.Observe(seconds)
}

func ObserveUpstream(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequestsCounter.WithLabelValues(kind, outcome).Inc()
}
