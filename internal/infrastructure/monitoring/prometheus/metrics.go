package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Bucket presets.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultMintDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300}
	DefaultGridCellBuckets     = []float64{10, 50, 100, 500, 1000, 5000, 10_000, 50_000}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// AppMetrics holds the application metric set.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Grid partitioning
	GridRequestsTotal *prometheus.CounterVec
	GridCells         *prometheus.HistogramVec
	GridDuration      *prometheus.HistogramVec

	// Mint coordination
	MintAdmissionsTotal *prometheus.CounterVec
	MintOutcomesTotal   *prometheus.CounterVec
	MintDuration        *prometheus.HistogramVec
	MintInFlight        *prometheus.GaugeVec

	// Notifications and events
	NotificationsTotal *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	EventsConsumed     *prometheus.CounterVec

	// Reconciliation worker
	ReconcileChecksTotal *prometheus.CounterVec

	// Record store
	DBQueryDuration *prometheus.HistogramVec
}

// NewAppMetrics registers the application metric set on the collector.
func NewAppMetrics(c *Collector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = c.RegisterCounter("landwho_http_requests_total",
		"HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = c.RegisterHistogram("landwho_http_request_duration_seconds",
		"HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.GridRequestsTotal = c.RegisterCounter("landwho_grid_requests_total",
		"Grid partition requests", "status")
	m.GridCells = c.RegisterHistogram("landwho_grid_cells",
		"Candidate cells per grid request", DefaultGridCellBuckets, "classification")
	m.GridDuration = c.RegisterHistogram("landwho_grid_duration_seconds",
		"Grid partition duration", DefaultHTTPDurationBuckets)

	m.MintAdmissionsTotal = c.RegisterCounter("landwho_mint_admissions_total",
		"Mint admission decisions", "decision")
	m.MintOutcomesTotal = c.RegisterCounter("landwho_mint_outcomes_total",
		"Terminal mint outcomes", "outcome")
	m.MintDuration = c.RegisterHistogram("landwho_mint_duration_seconds",
		"Mint attempt duration from admission to terminal outcome",
		DefaultMintDurationBuckets, "outcome")
	m.MintInFlight = c.RegisterGauge("landwho_mint_in_flight",
		"Mint attempts currently between admission and terminal outcome", "registry")

	m.NotificationsTotal = c.RegisterCounter("landwho_notifications_total",
		"Notifications emitted", "kind")
	m.EventsPublished = c.RegisterCounter("landwho_events_published_total",
		"Mint lifecycle events published", "topic", "status")
	m.EventsConsumed = c.RegisterCounter("landwho_events_consumed_total",
		"Mint lifecycle events consumed by the worker", "topic", "status")
	m.ReconcileChecksTotal = c.RegisterCounter("landwho_reconcile_checks_total",
		"Reconciliation checks by resolution", "resolution")

	m.DBQueryDuration = c.RegisterHistogram("landwho_db_query_duration_seconds",
		"Record store query duration", DefaultDBDurationBuckets, "repository", "operation")

	return m
}

// ObserveHTTP records one served request.
func (m *AppMetrics) ObserveHTTP(method, path string, status string, took time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// ObserveMintOutcome records one terminal mint outcome.
func (m *AppMetrics) ObserveMintOutcome(outcome string, took time.Duration) {
	m.MintOutcomesTotal.WithLabelValues(outcome).Inc()
	m.MintDuration.WithLabelValues(outcome).Observe(took.Seconds())
}
