package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planifia/planner/internal/application/planning"
	apperrors "github.com/planifia/planner/pkg/errors"
)

// Metrics handles Prometheus metrics collection for the API and the
// reconciliation engine. It owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Reconciliation metrics
	syncPassesTotal   *prometheus.CounterVec
	syncPassDuration  *prometheus.HistogramVec
	itemChangesTotal  *prometheus.CounterVec
	suppressionsTotal prometheus.Counter
}

var _ planning.Observer = (*Metrics)(nil)

// NewMetrics creates and registers every collector
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		syncPassesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_sync_passes_total",
				Help: "Reconciliation passes by mode and outcome",
			},
			[]string{"mode", "status", "code"},
		),
		syncPassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planner_sync_pass_duration_seconds",
				Help:    "Reconciliation pass duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"mode"},
		),
		itemChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_shopping_item_changes_total",
				Help: "Auto shopping items written by reconciliation",
			},
			[]string{"operation"},
		),
		suppressionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_suppressions_total",
				Help: "Suppressions registered against the weekly ledger",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.syncPassesTotal,
		m.syncPassDuration,
		m.itemChangesTotal,
		m.suppressionsTotal,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSync records one reconciliation pass. Failed passes are labelled
// with their error code.
func (m *Metrics) ObserveSync(mode string, duration time.Duration, err error) {
	status, code := "success", ""
	if err != nil {
		status, code = "error", string(apperrors.GetCode(err))
	}
	m.syncPassesTotal.WithLabelValues(mode, status, code).Inc()
	m.syncPassDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// ObserveItemChanges records the writes of one pass
func (m *Metrics) ObserveItemChanges(created, updated, deleted int) {
	m.itemChangesTotal.WithLabelValues("create").Add(float64(created))
	m.itemChangesTotal.WithLabelValues("update").Add(float64(updated))
	m.itemChangesTotal.WithLabelValues("delete").Add(float64(deleted))
}

// ObserveSuppression counts one ledger entry
func (m *Metrics) ObserveSuppression() {
	m.suppressionsTotal.Inc()
}
