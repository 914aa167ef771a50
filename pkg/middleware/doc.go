// Package middleware wraps live event handling with logging, recovery,
// Prometheus metrics and OpenTelemetry tracing.
//
// Every DOM event the thin client forwards becomes an Event that passes
// through a chain of Middleware before it reaches the page root:
//
//	handler := middleware.Chain(dispatch,
//	    middleware.Recover(logger),
//	    middleware.OpenTelemetry(),
//	    metrics.Middleware(),
//	    middleware.Logging(logger),
//	)
//
// # Prometheus Metrics
//
// A Metrics value registers these collectors (namespace "payfront" by default):
//   - payfront_events_total: events by name and status
//   - payfront_event_duration_seconds: event handling duration
//   - payfront_event_errors_total: failed events by error code
//   - payfront_renders_sent_total: render frames pushed to clients
//   - payfront_active_sessions: sessions with a live connection
//   - payfront_pending_sessions: rendered pages not yet attached
//   - payfront_state_transitions_total: store transitions by phase
//   - payfront_actor_requests_total and payfront_actor_request_duration_seconds:
//     replica requests by kind, method and status
//   - payfront_websocket_errors_total: WebSocket errors by type
//
// Metrics also implements actor.CallObserver, so it can be handed to the
// replica agent directly.
//
// # Tracing
//
// OpenTelemetry starts one server span per event using the global tracer
// provider. Configure the provider in main before serving:
//
//	otel.SetTracerProvider(tp)
//
// The span's context is passed to the handler, so actor requests made while
// handling a click become child spans.
package middleware
