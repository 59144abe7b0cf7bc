// Package emitter provides a standalone event emitter and an adapter that lets a
// bus deliver through it.
//
// The emitter keeps its own listener storage keyed by channel name and ignores
// the registry passed by the bus. Like a host-native emitter it is list based:
// adding the same listener twice delivers to it twice.
package emitter

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/princecodes247/kamui/transport"
)

// Emitter stores listeners per channel and invokes them synchronously
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]*transport.Listener
}

// New creates an empty emitter
func New() *Emitter {
	return &Emitter{
		listeners: make(map[string][]*transport.Listener),
	}
}

// AddListener appends l to the channel
func (e *Emitter) AddListener(name string, l *transport.Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	e.listeners[name] = append(e.listeners[name], l)
	e.mu.Unlock()
}

// RemoveListener removes every occurrence of l from the channel
func (e *Emitter) RemoveListener(name string, l *transport.Listener) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls, ok := e.listeners[name]
	if !ok {
		return false
	}
	kept := slices.DeleteFunc(ls, func(x *transport.Listener) bool { return x == l })
	removed := len(kept) != len(ls)
	if len(kept) == 0 {
		delete(e.listeners, name)
	} else {
		e.listeners[name] = kept
	}
	return removed
}

// RemoveAllListeners drops the channel and its listeners
func (e *Emitter) RemoveAllListeners(name string) {
	e.mu.Lock()
	delete(e.listeners, name)
	e.mu.Unlock()
}

// Emit calls the channel's listeners in order and reports whether any existed.
// The first listener error stops the dispatch.
func (e *Emitter) Emit(ctx context.Context, name string, payload any, meta transport.Metadata) (bool, error) {
	e.mu.RLock()
	ls := slices.Clone(e.listeners[name])
	e.mu.RUnlock()

	for _, l := range ls {
		if err := l.Call(ctx, payload, meta); err != nil {
			return true, err
		}
	}
	return len(ls) > 0, nil
}

// ListenerCount returns the number of listeners on the channel
func (e *Emitter) ListenerCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[name])
}

// EventNames returns the channels that have listeners, sorted
func (e *Emitter) EventNames() []string {
	e.mu.RLock()
	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	e.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Adapter delivers bus traffic through an Emitter
type Adapter struct {
	emitter *Emitter
	logger  *slog.Logger
}

// NewAdapter wraps e. A nil emitter is replaced by a new one.
func NewAdapter(e *Emitter) *Adapter {
	if e == nil {
		e = New()
	}
	return &Adapter{
		emitter: e,
		logger:  transport.Logger("adapter>emitter"),
	}
}

// Emitter returns the underlying emitter
func (a *Adapter) Emitter() *Emitter {
	return a.emitter
}

// On adds l to the emitter; the registry is ignored
func (a *Adapter) On(name string, l *transport.Listener, _ *transport.Registry) {
	a.emitter.AddListener(name, l)
}

// Off removes all listeners of the channel
func (a *Adapter) Off(name string, _ *transport.Registry) {
	a.emitter.RemoveAllListeners(name)
	a.logger.Debug("removed all listeners", "event", name)
}

// Emit forwards payload and metadata to the emitter
func (a *Adapter) Emit(ctx context.Context, name string, payload any, meta transport.Metadata, _ *transport.Registry) error {
	delivered, err := a.emitter.Emit(ctx, name, payload, meta)
	if !delivered {
		a.logger.Debug("emit reached no listener", "event", name)
	}
	return err
}

// ListenerCount returns the emitter's listener count for the channel
func (a *Adapter) ListenerCount(name string, _ *transport.Registry) int {
	return a.emitter.ListenerCount(name)
}

// RemoveListener removes l from the channel
func (a *Adapter) RemoveListener(name string, l *transport.Listener, _ *transport.Registry) bool {
	return a.emitter.RemoveListener(name, l)
}

// Compile-time interface checks
var _ transport.Adapter = (*Adapter)(nil)
var _ transport.ListenerRemover = (*Adapter)(nil)
