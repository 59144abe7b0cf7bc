package kamui

import (
	"context"
	"sync"
	"time"

	"github.com/princecodes247/kamui/transport"
	"github.com/princecodes247/kamui/transport/codec"
	"github.com/princecodes247/kamui/transport/local"
)

// TestBus creates a new bus configured for testing.
// A nil adapter selects local.New(). Tracing and metrics are disabled.
//
// Example:
//
//	rec := kamui.NewRecordingAdapter(local.New())
//	bus := kamui.TestBus(rec, nil)
func TestBus(a transport.Adapter, events Events) *Bus {
	if a == nil {
		a = local.New()
	}
	return NewBus(events,
		WithAdapter(a),
		WithTracing(false),
		WithMetrics(false),
	)
}

// RecordedEmit represents an emit that went through a RecordingAdapter
type RecordedEmit struct {
	Channel  string
	Payload  any
	Metadata Metadata
	Err      error
}

// RecordingAdapter wraps an adapter and records every emit.
// Useful for testing that events are emitted correctly.
type RecordingAdapter struct {
	transport.Adapter
	mu    sync.Mutex
	emits []RecordedEmit
}

// NewRecordingAdapter creates an adapter that records all emits.
// It wraps the provided adapter (which is required).
func NewRecordingAdapter(a transport.Adapter) *RecordingAdapter {
	if a == nil {
		panic("kamui: adapter is required for NewRecordingAdapter")
	}
	return &RecordingAdapter{
		Adapter: a,
		emits:   make([]RecordedEmit, 0),
	}
}

// Emit delegates to the underlying adapter and records the outcome
func (r *RecordingAdapter) Emit(ctx context.Context, name string, payload any, meta transport.Metadata, reg *transport.Registry) error {
	err := r.Adapter.Emit(ctx, name, payload, meta, reg)

	r.mu.Lock()
	r.emits = append(r.emits, RecordedEmit{
		Channel:  name,
		Payload:  payload,
		Metadata: meta,
		Err:      err,
	})
	r.mu.Unlock()
	return err
}

// Emits returns a copy of all recorded emits
func (r *RecordingAdapter) Emits() []RecordedEmit {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]RecordedEmit, len(r.emits))
	copy(result, r.emits)
	return result
}

// EmitsFor returns recorded emits for a specific channel
func (r *RecordingAdapter) EmitsFor(name string) []RecordedEmit {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []RecordedEmit
	for _, e := range r.emits {
		if e.Channel == name {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the number of recorded emits
func (r *RecordingAdapter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.emits)
}

// Reset clears all recorded emits
func (r *RecordingAdapter) Reset() {
	r.mu.Lock()
	r.emits = make([]RecordedEmit, 0)
	r.mu.Unlock()
}

// Export encodes the metadata of every recorded emit with c.
// A nil codec selects codec.Default().
func (r *RecordingAdapter) Export(c codec.Codec) ([][]byte, error) {
	if c == nil {
		c = codec.Default()
	}
	emits := r.Emits()
	out := make([][]byte, 0, len(emits))
	for _, e := range emits {
		data, err := c.Encode(e.Metadata)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// FailingAdapter fails emits with a configured error instead of dispatching.
// Useful for testing error handling of emit callers.
type FailingAdapter struct {
	transport.Adapter
	mu       sync.Mutex
	err      error
	failAll  bool
	failNext int
}

// NewFailingAdapter creates an adapter that can be configured to fail.
// The adapter parameter is required.
func NewFailingAdapter(a transport.Adapter) *FailingAdapter {
	if a == nil {
		panic("kamui: adapter is required for NewFailingAdapter")
	}
	return &FailingAdapter{
		Adapter: a,
	}
}

// Emit fails if configured, otherwise delegates to the underlying adapter
func (f *FailingAdapter) Emit(ctx context.Context, name string, payload any, meta transport.Metadata, reg *transport.Registry) error {
	f.mu.Lock()
	shouldFail := f.failAll || f.failNext > 0
	err := f.err
	if f.failNext > 0 {
		f.failNext--
	}
	f.mu.Unlock()

	if shouldFail {
		return err
	}
	return f.Adapter.Emit(ctx, name, payload, meta, reg)
}

// FailAll makes all emits fail with the given error
func (f *FailingAdapter) FailAll(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = true
	f.err = err
}

// FailNext makes the next n emits fail with the given error
func (f *FailingAdapter) FailNext(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
	f.err = err
}

// Reset clears all failure configuration
func (f *FailingAdapter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = false
	f.failNext = 0
	f.err = nil
}

// TestListener collects the calls it receives for later assertions.
type TestListener[T any] struct {
	mu       sync.Mutex
	received []TestListenerCall[T]
	handler  Handler[T]
	listener *Listener
}

// TestListenerCall represents a single call to the test listener
type TestListenerCall[T any] struct {
	Context  context.Context
	Payload  T
	Metadata Metadata
	Time     time.Time
}

// NewTestListener creates a new test listener.
// If handler is nil, every call succeeds.
func NewTestListener[T any](handler Handler[T]) *TestListener[T] {
	tl := &TestListener[T]{
		received: make([]TestListenerCall[T], 0),
		handler:  handler,
	}
	tl.listener = Listen(tl.handle)
	return tl
}

func (tl *TestListener[T]) handle(ctx context.Context, payload T, meta Metadata) error {
	tl.mu.Lock()
	tl.received = append(tl.received, TestListenerCall[T]{
		Context:  ctx,
		Payload:  payload,
		Metadata: meta,
		Time:     time.Now(),
	})
	tl.mu.Unlock()

	if tl.handler != nil {
		return tl.handler(ctx, payload, meta)
	}
	return nil
}

// Listener returns the listener to register on a bus.
// The same *Listener is returned on every call.
func (tl *TestListener[T]) Listener() *Listener {
	return tl.listener
}

// Received returns a copy of all received calls
func (tl *TestListener[T]) Received() []TestListenerCall[T] {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	result := make([]TestListenerCall[T], len(tl.received))
	copy(result, tl.received)
	return result
}

// Count returns the number of calls received
func (tl *TestListener[T]) Count() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return len(tl.received)
}

// Last returns the last received call, or nil if none
func (tl *TestListener[T]) Last() *TestListenerCall[T] {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if len(tl.received) == 0 {
		return nil
	}
	call := tl.received[len(tl.received)-1]
	return &call
}

// Reset clears all received calls
func (tl *TestListener[T]) Reset() {
	tl.mu.Lock()
	tl.received = make([]TestListenerCall[T], 0)
	tl.mu.Unlock()
}
