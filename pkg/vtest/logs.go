package vtest

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog.Handler that records every record it handles.
// Handlers derived through WithAttrs or WithGroup share the recording.
type LogRecorder struct {
	shared *recording
	attrs  []slog.Attr
}

type recording struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewLogRecorder returns an empty recorder that accepts every level.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{shared: &recording{}}
}

// Logger returns a logger writing to r.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	rec = rec.Clone()
	if len(r.attrs) > 0 {
		rec.AddAttrs(r.attrs...)
	}
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	r.shared.records = append(r.shared.records, rec)
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{
		shared: r.shared,
		attrs:  append(append([]slog.Attr(nil), r.attrs...), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}

// Records returns a copy of the recorded entries.
func (r *LogRecorder) Records() []slog.Record {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([]slog.Record(nil), r.shared.records...)
}

// Count returns how many records have the given message.
func (r *LogRecorder) Count(msg string) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Message == msg {
			n++
		}
	}
	return n
}

// Attr returns the value of key on rec, resolving LogValuers.
func Attr(rec slog.Record, key string) (slog.Value, bool) {
	var (
		found slog.Value
		ok    bool
	)
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			found, ok = a.Value.Resolve(), true
			return false
		}
		return true
	})
	return found, ok
}
