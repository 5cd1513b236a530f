// Package metrics holds the Prometheus collectors of an ingestion run.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bizevents"

// Metrics groups the ingestion collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Candidates   *prometheus.CounterVec
	Dropped      *prometheus.CounterVec
	Duplicates   *prometheus.CounterVec
	Upserts      *prometheus.CounterVec
	SiteFailures *prometheus.CounterVec
	HTTPRequests *prometheus.CounterVec
	SiteDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidates produced by site adapters",
		}, []string{"site"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_total",
			Help:      "Listing items lost before becoming candidates",
		}, []string{"site", "reason"}),
		Duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Candidates removed by deduplication",
		}, []string{"site"}),
		Upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Stored events by operation",
		}, []string{"site", "op"}),
		SiteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "site_failures_total",
			Help:      "Site runs that failed entirely",
		}, []string{"site"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Outbound HTTP requests by host and status code",
		}, []string{"host", "code"}),
		SiteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "site_duration_seconds",
			Help:      "Time spent processing one site",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"site"}),
		gatherer: reg,
	}
	reg.MustRegister(m.Candidates, m.Dropped, m.Duplicates, m.Upserts, m.SiteFailures, m.HTTPRequests, m.SiteDuration)
	return m
}

// Site records the outcome of one site run.
func (m *Metrics) Site(site string, candidates, duplicates, dropped, filtered int, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.Candidates.WithLabelValues(site).Add(float64(candidates))
	m.Duplicates.WithLabelValues(site).Add(float64(duplicates))
	m.Dropped.WithLabelValues(site, "error").Add(float64(dropped))
	m.Dropped.WithLabelValues(site, "filtered").Add(float64(filtered))
	m.SiteDuration.WithLabelValues(site).Observe(d.Seconds())
	if failed {
		m.SiteFailures.WithLabelValues(site).Inc()
	}
}

// Stored records upsert outcomes for a site.
func (m *Metrics) Stored(site string, inserted, updated int) {
	if m == nil {
		return
	}
	m.Upserts.WithLabelValues(site, "insert").Add(float64(inserted))
	m.Upserts.WithLabelValues(site, "update").Add(float64(updated))
}

// Response counts one outbound request. Status 0 means no response arrived.
// Its signature matches fetch.Options.OnResponse.
func (m *Metrics) Response(host string, status int) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.HTTPRequests.WithLabelValues(host, code).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
