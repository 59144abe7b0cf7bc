package transport

import "context"

// Func is the function a Listener wraps
type Func func(ctx context.Context, payload any, meta Metadata) error

// Listener is a registered callback. Its pointer identity is the key in a
// channel's listener set, so registering the same *Listener twice is a no-op.
type Listener struct {
	id string
	fn Func
}

// NewListener wraps fn in a listener with a fresh id
func NewListener(fn Func) *Listener {
	return &Listener{
		id: NewID(),
		fn: fn,
	}
}

// ID returns the listener id
func (l *Listener) ID() string {
	return l.id
}

// Call invokes the listener
func (l *Listener) Call(ctx context.Context, payload any, meta Metadata) error {
	if l == nil || l.fn == nil {
		return ErrNilListener
	}
	return l.fn(ctx, payload, meta)
}
