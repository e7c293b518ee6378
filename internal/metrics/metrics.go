// Package metrics exposes Prometheus metrics for the scoring pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "safetyscore"

// Fetch sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Fetch outcomes.
const (
	StatusFound    = "found"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Metrics holds every collector the service reports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	cacheLookups *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	skippedRows  *prometheus.CounterVec
	presigns     *prometheus.CounterVec
	reportBuilds prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by cache name and result.",
			},
			[]string{"cache", "result"}, // result: hit, miss
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fetches_total",
				Help:      "Incident CSV fetches by source and outcome.",
			},
			[]string{"source", "status"},
		),
		skippedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "csv_rows_skipped_total",
				Help:      "CSV rows dropped during parsing, by reason.",
			},
			[]string{"reason"},
		),
		presigns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clip_presigns_total",
				Help:      "Clip URL signing attempts by outcome.",
			},
			[]string{"status"},
		),
		reportBuilds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_build_duration_seconds",
				Help:      "Time taken to build an uncached scores report.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.cacheLookups.Describe(ch)
	m.fetches.Describe(ch)
	m.skippedRows.Describe(ch)
	m.presigns.Describe(ch)
	m.reportBuilds.Describe(ch)
	m.httpRequests.Describe(ch)
	m.httpDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.cacheLookups.Collect(ch)
	m.fetches.Collect(ch)
	m.skippedRows.Collect(ch)
	m.presigns.Collect(ch)
	m.reportBuilds.Collect(ch)
	m.httpRequests.Collect(ch)
	m.httpDuration.Collect(ch)
}

// CacheHit records a cache hit. It satisfies cache.Observer.
func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a cache miss.
func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// RecordFetch counts one source lookup.
func (m *Metrics) RecordFetch(source, status string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, status).Inc()
}

// RecordSkippedRow counts a dropped CSV row.
func (m *Metrics) RecordSkippedRow(reason string) {
	if m == nil {
		return
	}
	m.skippedRows.WithLabelValues(reason).Inc()
}

// RecordPresign counts one clip signing attempt.
func (m *Metrics) RecordPresign(ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = StatusError
	}
	m.presigns.WithLabelValues(status).Inc()
}

// ObserveReportBuild records how long a report build took.
func (m *Metrics) ObserveReportBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.reportBuilds.Observe(d.Seconds())
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
