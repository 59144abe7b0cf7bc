// Package local provides the default in-process adapter. It stores listeners
// in the registry handed to it by the bus and invokes them on the caller's goroutine.
//
// Listeners run in registration order. A listener error stops the dispatch
// and is returned unchanged; a panic is not recovered here.
package local

import (
	"context"
	"log/slog"
	"time"

	"github.com/princecodes247/kamui/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Drop reasons recorded on the dropped counter
const (
	reasonUnknownChannel = "unknown_channel"
	reasonInactive       = "inactive"
	reasonNoListeners    = "no_listeners"
)

// Adapter implements transport.Adapter on top of transport.Registry
type Adapter struct {
	logger *slog.Logger

	// Metrics
	droppedCounter metric.Int64Counter
}

// New creates a new registry-backed adapter
func New(opts ...Option) *Adapter {
	o := newOptions(opts...)

	meter := o.meterProvider.Meter("kamui.adapter.local")
	droppedCounter, _ := meter.Int64Counter("kamui.adapter.local.dropped",
		metric.WithDescription("Number of emits that reached no listener"),
		metric.WithUnit("{emit}"),
	)

	return &Adapter{
		logger:         o.logger,
		droppedCounter: droppedCounter,
	}
}

// On adds l to an existing active channel; otherwise the call is dropped
func (a *Adapter) On(name string, l *transport.Listener, reg *transport.Registry) {
	if reg == nil {
		return
	}
	if !reg.Add(name, l) {
		a.logger.Debug("listener not added", "event", name)
		return
	}
	a.logger.Debug("added listener", "event", name, "listener", l.ID())
}

// Off clears the listener set of an active channel and marks it inactive
func (a *Adapter) Off(name string, reg *transport.Registry) {
	if reg == nil {
		return
	}
	e, ok := reg.Get(name)
	if !ok || !e.Active {
		return
	}
	n := reg.Clear(name)
	reg.SetActive(name, false)
	a.logger.Debug("cleared listeners", "event", name, "count", n)
}

// Emit invokes the listeners of an active channel in registration order
func (a *Adapter) Emit(ctx context.Context, name string, payload any, meta transport.Metadata, reg *transport.Registry) error {
	if reg == nil {
		return nil
	}

	e, ok := reg.Get(name)
	switch {
	case !ok:
		a.dropped(ctx, name, reasonUnknownChannel)
		return nil
	case !e.Active:
		a.dropped(ctx, name, reasonInactive)
		return nil
	case len(e.Listeners) == 0:
		a.dropped(ctx, name, reasonNoListeners)
		return nil
	}

	// The snapshot is taken outside the registry lock so listeners may
	// call back into the bus.
	for _, l := range e.Listeners {
		if err := l.Call(ctx, payload, meta); err != nil {
			return err
		}
	}
	return nil
}

// ListenerCount returns the listener count of an active channel
func (a *Adapter) ListenerCount(name string, reg *transport.Registry) int {
	if reg == nil {
		return 0
	}
	return reg.Count(name)
}

// RemoveListener removes a single listener from the channel
func (a *Adapter) RemoveListener(name string, l *transport.Listener, reg *transport.Registry) bool {
	if reg == nil {
		return false
	}
	return reg.Remove(name, l)
}

// dropped records an emit that reached no listener. Channel names are caller
// chosen, so only the reason is used as a metric attribute.
func (a *Adapter) dropped(ctx context.Context, name, reason string) {
	a.logger.Debug("emit reached no listener", "event", name, "reason", reason)
	if a.droppedCounter != nil {
		a.droppedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// Health reports the channels and listeners of reg
func (a *Adapter) Health(ctx context.Context, reg *transport.Registry) *transport.HealthCheckResult {
	start := time.Now()

	result := &transport.HealthCheckResult{
		Status:    transport.HealthStatusHealthy,
		Message:   "local adapter is healthy",
		CheckedAt: start,
		Details:   make(map[string]any),
	}

	var channels, active, listeners int
	if reg != nil {
		for _, name := range reg.Names() {
			channels++
			if e, ok := reg.Get(name); ok && e.Active {
				active++
				listeners += len(e.Listeners)
			}
		}
	}

	result.Latency = time.Since(start)
	result.Details["type"] = "local"
	result.Details["channels"] = channels
	result.Details["active_channels"] = active
	result.Details["listeners"] = listeners
	return result
}

// Compile-time interface checks
var _ transport.Adapter = (*Adapter)(nil)
var _ transport.ListenerRemover = (*Adapter)(nil)
var _ transport.HealthChecker = (*Adapter)(nil)
