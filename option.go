package kamui

import (
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/princecodes247/kamui/transport"
)

// busOptions holds configuration for bus (unexported)
type busOptions struct {
	adapter         transport.Adapter
	logger          *slog.Logger
	clock           clock.Clock
	idFunc          func() string
	tracingEnabled  bool
	metricsEnabled  bool
	recoveryEnabled bool
}

// BusOption option function for bus configuration
type BusOption func(*busOptions)

// WithAdapter sets the transport adapter. Default is local.New().
func WithAdapter(a transport.Adapter) BusOption {
	return func(o *busOptions) {
		if a != nil {
			o.adapter = a
		}
	}
}

// WithLogger sets a custom logger for the bus
func WithLogger(l *slog.Logger) BusOption {
	return func(o *busOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracing enables/disables OpenTelemetry spans around emit. Default is true.
func WithTracing(enabled bool) BusOption {
	return func(o *busOptions) {
		o.tracingEnabled = enabled
	}
}

// WithMetrics enables/disables OpenTelemetry counters. Default is true.
// Bus counters carry the channel name as the "event" attribute, so buses with
// unbounded caller-generated channel names should disable them.
func WithMetrics(enabled bool) BusOption {
	return func(o *busOptions) {
		o.metricsEnabled = enabled
	}
}

// WithRecovery enables/disables panic recovery during emit. Default is false:
// a panicking listener unwinds through Emit to its caller.
// When enabled the panic still aborts the remaining listeners and Emit
// returns a *PanicError.
func WithRecovery(enabled bool) BusOption {
	return func(o *busOptions) {
		o.recoveryEnabled = enabled
	}
}

// WithClock sets the clock used for delivery timestamps
func WithClock(c clock.Clock) BusOption {
	return func(o *busOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithIDFunc sets the event id source
func WithIDFunc(fn func() string) BusOption {
	return func(o *busOptions) {
		if fn != nil {
			o.idFunc = fn
		}
	}
}

// newBusOptions creates options with defaults and applies provided options
func newBusOptions(opts ...BusOption) *busOptions {
	o := &busOptions{
		logger:         slog.Default(),
		tracingEnabled: true,
		metricsEnabled: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
