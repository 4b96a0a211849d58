// Package metrics holds the Prometheus collectors shared by the cache,
// fetchers and pipeline, and the HTTP handler that exposes them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts cache reads by data kind and outcome (hit, miss, corrupt, error).
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopscore_cache_lookups_total",
			Help: "Cache Store reads by data kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// UpstreamRequests counts upstream calls by source and result.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopscore_upstream_requests_total",
			Help: "Upstream requests by source and result",
		},
		[]string{"source", "result"},
	)

	// UpstreamDuration tracks upstream latency by source.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopscore_upstream_duration_seconds",
			Help:    "Upstream request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	// PipelineWarnings counts dropped or degraded records by warning kind.
	PipelineWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopscore_pipeline_warnings_total",
			Help: "Records dropped or degraded by the merge pipeline, by warning kind",
		},
		[]string{"kind"},
	)

	// SeasonsEvaluated counts season evaluations by result.
	SeasonsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopscore_seasons_evaluated_total",
			Help: "Season evaluations by result",
		},
		[]string{"result"},
	)

	// HTTPRequests counts API responses by route pattern and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopscore_http_requests_total",
			Help: "API responses by route and status",
		},
		[]string{"route", "status"},
	)
)

var registry = newRegistry()

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CacheLookups,
		UpstreamRequests,
		UpstreamDuration,
		PipelineWarnings,
		SeasonsEvaluated,
		HTTPRequests,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
