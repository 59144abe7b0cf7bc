// Package transport provides the adapter contract shared by the bus and its
// delivery backends, together with the channel registry and delivery metadata.
//
// Adapter implementations (local, emitter) should import this package
// rather than the root kamui package to avoid import cycles.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Transport errors
var (
	// ErrNilListener is returned when a listener without a function is invoked.
	ErrNilListener = errors.New("listener has no function")
)

// Adapter performs the mechanical listener storage and invocation for a bus.
//
// The bus passes its registry on every call. The default adapter stores listeners
// in that registry; an external adapter may ignore it and keep its own storage
// keyed by channel name.
//
// Absent or inactive channels are a normal state: On, Off and ListenerCount
// degrade to no-op or zero and Emit invokes nothing and returns nil.
type Adapter interface {
	// On adds l to the channel's listener set
	On(name string, l *Listener, reg *Registry)

	// Off clears the channel's listener set
	Off(name string, reg *Registry)

	// Emit synchronously invokes every listener of the channel with payload and meta.
	// The first listener error stops the dispatch and is returned unchanged.
	Emit(ctx context.Context, name string, payload any, meta Metadata, reg *Registry) error

	// ListenerCount returns the number of listeners on the channel
	ListenerCount(name string, reg *Registry) int
}

// ListenerRemover is an optional interface that adapters can implement
// to support removing a single listener from a channel.
type ListenerRemover interface {
	// RemoveListener removes l from the channel and reports whether it was present.
	RemoveListener(name string, l *Listener, reg *Registry) bool
}

// HealthStatus represents the health state of a component
type HealthStatus string

const (
	// HealthStatusHealthy indicates the component is functioning normally
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded indicates the component is functioning but with issues
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusUnhealthy indicates the component is not functioning
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResult contains detailed health information
type HealthCheckResult struct {
	Status    HealthStatus   `json:"status"`
	Message   string         `json:"message,omitempty"`
	Latency   time.Duration  `json:"latency,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
}

// IsHealthy returns true if the status is healthy
func (h *HealthCheckResult) IsHealthy() bool {
	return h.Status == HealthStatusHealthy
}

// HealthChecker is an optional interface that adapters can implement
// to report their state to the bus. The bus passes its own registry, so an
// adapter shared by several buses reports on the one asking.
type HealthChecker interface {
	Health(ctx context.Context, reg *Registry) *HealthCheckResult
}

// ID generation
var counter uint64

// NewID generates a new unique ID
func NewID() string {
	u, err := uuid.NewRandom()
	if err == nil {
		return u.String()
	}
	return strconv.FormatUint(atomic.AddUint64(&counter, 1), 10)
}

// Logger returns a logger with the given component name
func Logger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
