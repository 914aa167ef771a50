package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Event is one DOM event forwarded by the client.
type Event struct {
	// Session is the page session id.
	Session string

	// HID is the hydration id of the target element.
	HID string

	// Name is the DOM event name without the "on" prefix ("click").
	Name string
}

// Handler processes an event.
type Handler func(ctx context.Context, ev Event) error

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h with mws. The first middleware is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Logging logs every event at debug level and failures at warn level.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) error {
			start := time.Now()
			err := next(ctx, ev)
			attrs := []any{
				"session", ev.Session,
				"hid", ev.HID,
				"event", ev.Name,
				"duration", time.Since(start),
			}
			if err != nil {
				logger.Warn("event failed", append(attrs, "error", err)...)
				return err
			}
			logger.Debug("event", attrs...)
			return nil
		}
	}
}

// Recover turns a panic in the handler into an error.
func Recover(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event handler panic",
						"session", ev.Session,
						"hid", ev.HID,
						"event", ev.Name,
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("panic handling %s on %s: %v", ev.Name, ev.HID, r)
				}
			}()
			return next(ctx, ev)
		}
	}
}
