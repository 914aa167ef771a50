package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/store"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "payfront").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "payfront",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for one server.
type Metrics struct {
	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	eventErrors      *prometheus.CounterVec
	rendersSent      prometheus.Counter
	activeSessions   prometheus.Gauge
	pendingSessions  prometheus.Gauge
	stateTransitions *prometheus.CounterVec
	actorRequests    *prometheus.CounterVec
	actorDuration    *prometheus.HistogramVec
	wsErrors         *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. Registering twice on the
// same registry panics, so create one Metrics per registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of client events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		eventErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_errors_total",
			Help:        "Total number of event processing errors",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "code"}),

		rendersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_sent_total",
			Help:        "Total number of render frames sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of sessions with a live WebSocket",
			ConstLabels: config.ConstLabels,
		}),

		pendingSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_sessions",
			Help:        "Number of rendered pages waiting for their WebSocket",
			ConstLabels: config.ConstLabels,
		}),

		stateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "state_transitions_total",
			Help:        "Connection store transitions by resulting phase",
			ConstLabels: config.ConstLabels,
		}, []string{"phase"}),

		actorRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actor_requests_total",
			Help:        "Replica requests by kind, method and status",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "method", "status"}),

		actorDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actor_request_duration_seconds",
			Help:        "Replica request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind", "method"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Middleware counts and times every event.
func (m *Metrics) Middleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) error {
			start := time.Now()
			err := next(ctx, ev)
			m.eventDuration.WithLabelValues(ev.Name).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
				m.eventErrors.WithLabelValues(ev.Name, errorCode(err)).Inc()
			}
			m.eventsTotal.WithLabelValues(ev.Name, status).Inc()
			return err
		}
	}
}

// errorCode keeps the label set bounded: registered codes or "internal".
func errorCode(err error) string {
	if code := errors.Code(err); code != "" {
		return code
	}
	return "internal"
}

// ObserveCall implements actor.CallObserver.
func (m *Metrics) ObserveCall(kind, method string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.actorRequests.WithLabelValues(kind, method, status).Inc()
	m.actorDuration.WithLabelValues(kind, method).Observe(d.Seconds())
}

// OnState implements store.Observer by counting the transition's phase.
func (m *Metrics) OnState(s store.State) {
	m.stateTransitions.WithLabelValues(Phase(s)).Inc()
}

// Phase names the connection phase of s.
func Phase(s store.State) string {
	switch {
	case s.Initializing:
		return "initializing"
	case s.Error != "":
		return "error"
	case s.Connected:
		return "connected"
	default:
		return "idle"
	}
}

// RecordRender records a render frame sent to a client.
func (m *Metrics) RecordRender() {
	m.rendersSent.Inc()
}

// RecordSessionCreate records a rendered page waiting for its WebSocket.
func (m *Metrics) RecordSessionCreate() {
	m.pendingSessions.Inc()
}

// RecordSessionAttach records a pending session gaining its WebSocket.
func (m *Metrics) RecordSessionAttach() {
	m.pendingSessions.Dec()
	m.activeSessions.Inc()
}

// RecordSessionExpire records a pending session dropped before attaching.
func (m *Metrics) RecordSessionExpire() {
	m.pendingSessions.Dec()
}

// RecordSessionClose records an attached session ending.
func (m *Metrics) RecordSessionClose() {
	m.activeSessions.Dec()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}
