package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the desktop core.
//
// A Registry is used instead of the default registerer so tests can
// construct isolated Metrics instances without collector collisions.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Window metrics
	WindowsLive     prometheus.Gauge
	WindowsCreated  prometheus.Counter
	WindowOps       *prometheus.CounterVec
	FocusTransfers  prometheus.Counter

	// Lifecycle metrics
	InstancesByState *prometheus.GaugeVec
	InstancesCrashed prometheus.Counter
	MessagesSent     *prometheus.CounterVec

	// Input metrics
	InputEvents        *prometheus.CounterVec
	ShortcutMatches    prometheus.Counter
	GesturesRecognized *prometheus.CounterVec
	HandlerErrors      prometheus.Counter

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "desktop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		WindowsLive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_windows_live",
				Help: "Number of live windows",
			},
		),
		WindowsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_windows_created_total",
				Help: "Total number of windows created",
			},
		),
		WindowOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_window_operations_total",
				Help: "Window registry operations by type",
			},
			[]string{"operation"},
		),
		FocusTransfers: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_focus_transfers_total",
				Help: "Total number of focus transfers",
			},
		),

		InstancesByState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "desktop_instances",
				Help: "Application instances by lifecycle state",
			},
			[]string{"state"},
		),
		InstancesCrashed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_instances_crashed_total",
				Help: "Total number of instances that crashed during mount",
			},
		),
		MessagesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_messages_total",
				Help: "Inter-application messages by kind",
			},
			[]string{"kind"},
		),

		InputEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_input_events_total",
				Help: "Input events processed by type",
			},
			[]string{"type"},
		),
		ShortcutMatches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_shortcut_matches_total",
				Help: "Total number of shortcut matches",
			},
		),
		GesturesRecognized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "desktop_gestures_recognized_total",
				Help: "Recognized gestures by type",
			},
			[]string{"gesture"},
		),
		HandlerErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_handler_errors_total",
				Help: "Input handler failures caught at the router boundary",
			},
		),

		SessionsSaved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_sessions_saved_total",
				Help: "Total number of sessions saved",
			},
		),
		SessionsRestored: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "desktop_sessions_restored_total",
				Help: "Total number of sessions restored",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "desktop_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}

	return m
}

// Registry exposes the prometheus registry for the /metrics handler
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateUptime refreshes the uptime gauge
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
