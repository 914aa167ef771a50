package app

import (
	"log/slog"

	"github.com/vango-dev/payment-frontend/pkg/store"
)

// StateLogger returns an observer that writes one "state" record per
// transition, carrying the full snapshot.
func StateLogger(logger *slog.Logger) store.Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return store.ObserverFunc(func(s store.State) {
		logger.Info("state", "state", s)
	})
}
