package local

import (
	"log/slog"

	"github.com/princecodes247/kamui/transport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// options holds configuration for the adapter (unexported)
type options struct {
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

// Option configures the local adapter
type Option func(*options)

// WithLogger sets the logger for the adapter
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider sets the meter provider for adapter metrics.
// Default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// newOptions creates options with defaults and applies provided options
func newOptions(opts ...Option) *options {
	o := &options{
		logger:        transport.Logger("adapter>local"),
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
