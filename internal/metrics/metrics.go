// Package metrics provides Prometheus metrics for the toolkits.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the toolkits.
type Metrics struct {
	registry *prometheus.Registry

	// Collection metrics
	FetchesTotal  *prometheus.CounterVec
	StaleServes   *prometheus.CounterVec
	CachedRecords *prometheus.GaugeVec
	LastRefresh   *prometheus.GaugeVec
	FetchDuration *prometheus.HistogramVec

	// Action metrics
	ActionsTotal    *prometheus.CounterVec
	ActionDuration  *prometheus.HistogramVec
	QueryRejections *prometheus.CounterVec
}

// New creates metrics registered on a fresh registry under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Upstream fetches by collection and result",
		}, []string{"collection", "result"}),
		StaleServes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_serves_total",
			Help:      "Reads answered with stale data after a failed refresh",
		}, []string{"collection"}),
		CachedRecords: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_records",
			Help:      "Number of records in the current snapshot",
		}, []string{"collection"}),
		LastRefresh: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh",
		}, []string{"collection"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Upstream fetch latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"collection"}),
		ActionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Action invocations by action and status code",
		}, []string{"action", "code"}),
		ActionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Action latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		QueryRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_rejections_total",
			Help:      "Queries rejected as invalid",
		}, []string{"action"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
