package transport

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Metadata describes a single delivery. A fresh value is generated for every emit.
type Metadata struct {
	EventID   string
	Timestamp time.Time
	Name      string
}

// Millis returns the timestamp as unix milliseconds
func (m Metadata) Millis() int64 {
	return m.Timestamp.UnixMilli()
}

// LogValue implements slog.LogValuer
func (m Metadata) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("event_id", m.EventID),
		slog.String("name", m.Name),
		slog.Int64("timestamp", m.Millis()),
	)
}

// Generator produces delivery metadata. Timestamps issued by one generator never
// go backwards, even if the wall clock does.
type Generator struct {
	mu    sync.Mutex
	clock clock.Clock
	newID func() string
	last  time.Time
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithClock sets the clock used for timestamps
func WithClock(c clock.Clock) GeneratorOption {
	return func(g *Generator) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithIDFunc sets the event id source
func WithIDFunc(fn func() string) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// NewGenerator creates a metadata generator using the system clock and NewID
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		clock: clock.New(),
		newID: NewID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns metadata for a delivery on the named channel
func (g *Generator) Next(name string) Metadata {
	g.mu.Lock()
	now := g.clock.Now()
	if now.Before(g.last) {
		now = g.last
	}
	g.last = now
	g.mu.Unlock()

	return Metadata{
		EventID:   g.newID(),
		Timestamp: now,
		Name:      name,
	}
}
