package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "payment-frontend"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "payment-frontend").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// IncludeSession includes the session id in spans. Enabled by default.
	IncludeSession bool

	// Filter determines which events to trace. If nil, all events are traced.
	Filter func(ev Event) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(ev Event) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) OTelOption {
	return func(c *OTelConfig) {
		c.Tracer = tracer
	}
}

// WithIncludeSession enables or disables the session id attribute.
func WithIncludeSession(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeSession = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:     defaultTracerName,
		IncludeSession: true,
	}
}

// OpenTelemetry creates middleware that traces every event.
// The handler receives the span's context.
func OpenTelemetry(opts ...OTelOption) Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) error {
			if config.Filter != nil && !config.Filter(ev) {
				return next(ctx, ev)
			}

			attrs := []attribute.KeyValue{
				attribute.String("payfront.event_type", ev.Name),
				attribute.String("payfront.event_target", ev.HID),
			}
			if config.IncludeSession {
				attrs = append(attrs, attribute.String("payfront.session_id", ev.Session))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(ev)...)
			}

			ctx, span := tracer.Start(ctx, SpanName(ev),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			err := next(ctx, ev)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return err
		}
	}
}

// SpanName returns the span name used for ev.
func SpanName(ev Event) string {
	if ev.Name == "" {
		return "payfront.event"
	}
	return "payfront." + ev.Name
}
