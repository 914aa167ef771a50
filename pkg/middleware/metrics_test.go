package middleware

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/store"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsMiddleware_RecordsSuccessAndError(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	ok := m.Middleware()(func(context.Context, Event) error { return nil })
	fail := m.Middleware()(func(context.Context, Event) error { return errors.New("E014") })
	plain := m.Middleware()(func(context.Context, Event) error { return stderrors.New("boom") })

	ev := Event{Session: "s", HID: "h1", Name: "click"}
	ok(context.Background(), ev)
	ok(context.Background(), ev)
	fail(context.Background(), ev)
	plain(context.Background(), ev)

	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("click", "success")); got != 2 {
		t.Errorf("success events = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.eventsTotal.WithLabelValues("click", "error")); got != 2 {
		t.Errorf("error events = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.eventErrors.WithLabelValues("click", "E014")); got != 1 {
		t.Errorf("E014 errors = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.eventErrors.WithLabelValues("click", "internal")); got != 1 {
		t.Errorf("internal errors = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.eventDuration.WithLabelValues("click")); got != 4 {
		t.Errorf("duration samples = %d, want 4", got)
	}
}

func TestMetrics_ObserveCall(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.ObserveCall("status", "", 5*time.Millisecond, nil)
	m.ObserveCall("query", "get_transactions", time.Millisecond, nil)
	m.ObserveCall("query", "get_transactions", time.Millisecond, stderrors.New("down"))

	if got := metricCounterValue(t, m.actorRequests.WithLabelValues("query", "get_transactions", "success")); got != 1 {
		t.Errorf("query successes = %v", got)
	}
	if got := metricCounterValue(t, m.actorRequests.WithLabelValues("query", "get_transactions", "error")); got != 1 {
		t.Errorf("query errors = %v", got)
	}
	if got := metricHistogramCount(t, m.actorDuration.WithLabelValues("status", "")); got != 1 {
		t.Errorf("status samples = %d", got)
	}
}

func TestMetrics_StateTransitions(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	var _ store.Observer = m

	m.OnState(store.State{Initializing: true})
	m.OnState(store.State{Connected: true, Initialized: true})
	m.OnState(store.State{Error: "replica down"})
	m.OnState(store.State{})

	for _, phase := range []string{"initializing", "connected", "error", "idle"} {
		if got := metricCounterValue(t, m.stateTransitions.WithLabelValues(phase)); got != 1 {
			t.Errorf("%s transitions = %v, want 1", phase, got)
		}
	}
}

func TestMetrics_Sessions(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.RecordSessionCreate()
	m.RecordSessionCreate()
	m.RecordSessionAttach()
	m.RecordSessionExpire()
	m.RecordRender()
	m.RecordWebSocketError("read")

	if got := metricGaugeValue(t, m.pendingSessions); got != 0 {
		t.Errorf("pending = %v, want 0", got)
	}
	if got := metricGaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	m.RecordSessionClose()
	if got := metricGaugeValue(t, m.activeSessions); got != 0 {
		t.Errorf("active after close = %v, want 0", got)
	}
	if got := metricCounterValue(t, m.rendersSent); got != 1 {
		t.Errorf("renders = %v", got)
	}
	if got := metricCounterValue(t, m.wsErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("ws errors = %v", got)
	}
}

func TestMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "test"}))
	m.RecordRender()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "payfront_renders_sent_total" {
			found = true
		}
	}
	if !found {
		t.Error("payfront_renders_sent_total not registered")
	}
}
