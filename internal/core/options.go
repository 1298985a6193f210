package core

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/metrics"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger workers derive their loggers from.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithStore enables the audit recorder backed by st.
func WithStore(st store.EventStore) Option {
	return func(h *Hub) {
		h.store = st
	}
}
