package kamui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/princecodes247/kamui/transport"
	"github.com/princecodes247/kamui/transport/local"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationScope = "github.com/princecodes247/kamui"

const (
	spanKeyEventID   = "event.id"
	spanKeyEventName = "event.name"
	spanKeyEventBus  = "event.bus"
)

// Metadata is the delivery metadata passed to every listener
type Metadata = transport.Metadata

// Listener is a registered callback; see transport.Listener
type Listener = transport.Listener

// Events maps channel names to their initial listeners
type Events map[string][]*Listener

// NewListener wraps an untyped function in a listener
func NewListener(fn transport.Func) *Listener {
	return transport.NewListener(fn)
}

// NewID generates a new unique ID
func NewID() string {
	return transport.NewID()
}

// Bus dispatches payloads to the listeners of named channels.
// It owns one registry and one adapter for its whole lifetime.
type Bus struct {
	id              string
	registry        *transport.Registry
	adapter         transport.Adapter
	generator       *transport.Generator
	logger          *slog.Logger
	tracer          trace.Tracer
	metrics         *metrics
	recoveryEnabled bool

	typesMu sync.RWMutex
	types   map[string]reflect.Type
}

// NewBus creates a bus and seeds it with events. Every supplied channel becomes
// active with the de-duplicated listeners of its slice.
//
// The default adapter is local.New(); use WithAdapter to deliver through another backend.
func NewBus(events Events, opts ...BusOption) *Bus {
	o := newBusOptions(opts...)

	id := NewID()
	logger := o.logger.With("component", "bus>"+id)

	adapter := o.adapter
	if adapter == nil {
		adapter = local.New(local.WithLogger(o.logger.With("component", "adapter>local")))
	}

	var genOpts []transport.GeneratorOption
	if o.clock != nil {
		genOpts = append(genOpts, transport.WithClock(o.clock))
	}
	if o.idFunc != nil {
		genOpts = append(genOpts, transport.WithIDFunc(o.idFunc))
	}

	b := &Bus{
		id:              id,
		registry:        transport.NewRegistry(),
		adapter:         adapter,
		generator:       transport.NewGenerator(genOpts...),
		logger:          logger,
		recoveryEnabled: o.recoveryEnabled,
		types:           make(map[string]reflect.Type),
	}
	if o.tracingEnabled {
		b.tracer = otel.Tracer(instrumentationScope)
	}
	if o.metricsEnabled {
		b.metrics = newMetrics(instrumentationScope)
	}

	for name, listeners := range events {
		b.On(name, listeners...)
	}
	return b
}

// ID returns the bus ID
func (b *Bus) ID() string {
	return b.id
}

// Adapter returns the bus adapter
func (b *Bus) Adapter() transport.Adapter {
	return b.adapter
}

// Logger returns the bus logger
func (b *Bus) Logger() *slog.Logger {
	return b.logger
}

// On registers listeners on a channel, creating or reactivating it first.
// Nil listeners are skipped and a listener repeated in one call is added once.
func (b *Bus) On(name string, listeners ...*Listener) *Bus {
	created := b.registry.Ensure(name)
	b.registry.SetActive(name, true)

	seen := make(map[*Listener]struct{}, len(listeners))
	added := 0
	for _, l := range listeners {
		if l == nil {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		b.adapter.On(name, l, b.registry)
		added++
	}

	b.metrics.Subscribed(context.Background(), name, added)
	b.logger.Debug("registered listeners", "event", name, "listeners", added, "created", created)
	return b
}

// Off removes every listener of a channel and closes it until the next On.
// Calling Off on an unknown or closed channel is a no-op.
func (b *Bus) Off(name string) *Bus {
	b.adapter.Off(name, b.registry)
	if b.registry.SetActive(name, false) {
		b.logger.Debug("closed channel", "event", name)
	}
	return b
}

// Emit delivers payload to every listener of the channel, synchronously.
// Listeners receive fresh metadata, also available through ContextMetadata.
//
// The first listener error aborts the dispatch and is returned unchanged.
// A panicking listener unwinds through Emit unless recovery is enabled, in which
// case Emit returns a *PanicError. Unknown or closed channels are a silent no-op.
func (b *Bus) Emit(ctx context.Context, name string, payload any) error {
	meta := b.generator.Next(name)
	ctx = contextWithDelivery(ctx, b, meta)

	b.metrics.Emitted(ctx, name)

	var span trace.Span
	if b.tracer != nil {
		ctx, span = b.tracer.Start(ctx, fmt.Sprintf("%s.emit", name),
			trace.WithAttributes(
				attribute.String(spanKeyEventID, meta.EventID),
				attribute.String(spanKeyEventName, name),
				attribute.String(spanKeyEventBus, b.id)),
			trace.WithSpanKind(trace.SpanKindProducer))
		defer span.End()
	}

	err := b.dispatch(ctx, name, payload, meta)
	if err != nil {
		b.metrics.Failed(ctx, name)
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if IsPanic(err) {
			b.logger.Error("listener panic recovered", "event", name, "meta", meta, "error", err)
		}
	}
	return err
}

func (b *Bus) dispatch(ctx context.Context, name string, payload any, meta Metadata) (err error) {
	if b.recoveryEnabled {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{
					Channel: name,
					EventID: meta.EventID,
					Value:   r,
					Stack:   debug.Stack(),
				}
			}
		}()
	}
	return b.adapter.Emit(ctx, name, payload, meta, b.registry)
}

// ListenerCount returns the number of listeners on an open channel, 0 otherwise
func (b *Bus) ListenerCount(name string) int {
	return b.adapter.ListenerCount(name, b.registry)
}

// Channels returns the names of open channels, sorted
func (b *Bus) Channels() []string {
	var names []string
	for _, name := range b.registry.Names() {
		if e, ok := b.registry.Get(name); ok && e.Active {
			names = append(names, name)
		}
	}
	return names
}

// RemoveListener removes a single listener from a channel.
// Returns false if the listener was not registered or the adapter
// does not support per-listener removal.
func (b *Bus) RemoveListener(name string, l *Listener) bool {
	r, ok := b.adapter.(transport.ListenerRemover)
	if !ok {
		b.logger.Debug("adapter does not support listener removal", "event", name)
		return false
	}
	return r.RemoveListener(name, l, b.registry)
}

// bind ties a channel name to a payload type on first typed use
func (b *Bus) bind(name string, t reflect.Type) error {
	b.typesMu.RLock()
	bound, ok := b.types[name]
	b.typesMu.RUnlock()
	if ok {
		if bound != t {
			return typeMismatch(name, bound, t)
		}
		return nil
	}

	b.typesMu.Lock()
	defer b.typesMu.Unlock()
	if bound, ok := b.types[name]; ok && bound != t {
		return typeMismatch(name, bound, t)
	}
	b.types[name] = t
	return nil
}

// PayloadType returns the payload type bound to a channel through the typed API
func (b *Bus) PayloadType(name string) (reflect.Type, bool) {
	b.typesMu.RLock()
	defer b.typesMu.RUnlock()
	t, ok := b.types[name]
	return t, ok
}

// StatusCode represents the health state of the bus
type StatusCode string

const (
	// StatusHealthy indicates the bus is functioning normally
	StatusHealthy StatusCode = "healthy"
	// StatusDegraded indicates the bus is functioning but with issues
	StatusDegraded StatusCode = "degraded"
	// StatusUnhealthy indicates the bus is not functioning
	StatusUnhealthy StatusCode = "unhealthy"
)

// Status contains detailed status information for the bus
type Status struct {
	Code       StatusCode         `json:"status"`
	Message    string             `json:"message,omitempty"`
	Latency    time.Duration      `json:"latency,omitempty"`
	Details    map[string]any     `json:"details,omitempty"`
	Components map[string]*Status `json:"components,omitempty"`
	CheckedAt  time.Time          `json:"checked_at"`
}

// IsHealthy returns true if the status code is healthy
func (s *Status) IsHealthy() bool {
	return s.Code == StatusHealthy
}

// Status returns the bus state. If the adapter implements
// transport.HealthChecker, its result is included and aggregated.
func (b *Bus) Status(ctx context.Context) *Status {
	result := &Status{
		Code:       StatusHealthy,
		Message:    "bus is healthy",
		CheckedAt:  time.Now(),
		Details:    make(map[string]any),
		Components: make(map[string]*Status),
	}

	result.Details["bus_id"] = b.id
	result.Details["channels"] = len(b.registry.Names())
	result.Details["active_channels"] = len(b.Channels())

	hc, ok := b.adapter.(transport.HealthChecker)
	if !ok {
		result.Message = "bus is healthy (adapter health not available)"
		return result
	}

	th := hc.Health(ctx, b.registry)
	if th == nil {
		return result
	}
	result.Components["adapter"] = &Status{
		Code:      StatusCode(th.Status),
		Message:   th.Message,
		Latency:   th.Latency,
		Details:   th.Details,
		CheckedAt: th.CheckedAt,
	}
	switch th.Status {
	case transport.HealthStatusUnhealthy:
		result.Code = StatusUnhealthy
		result.Message = "adapter is unhealthy"
	case transport.HealthStatusDegraded:
		result.Code = StatusDegraded
		result.Message = "adapter is degraded"
	}
	return result
}

// Health returns nil if the bus is healthy, or an error describing the issue.
func (b *Bus) Health(ctx context.Context) error {
	status := b.Status(ctx)
	if status.Code == StatusUnhealthy {
		return errors.New(status.Message)
	}
	return nil
}
