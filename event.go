package kamui

import (
	"context"
	"reflect"

	"github.com/princecodes247/kamui/transport"
)

// Channel names a channel together with its payload type. Declare channels in a
// table so every publisher and listener agrees on the payload at compile time:
//
//	var Orders = struct {
//	    Status kamui.Channel[OrderStatus]
//	}{
//	    Status: kamui.NewChannel[OrderStatus]("order.status"),
//	}
type Channel[T any] struct {
	name string
}

// NewChannel creates a typed channel handle
func NewChannel[T any](name string) Channel[T] {
	return Channel[T]{name: name}
}

// Name returns the channel name
func (c Channel[T]) Name() string {
	return c.name
}

// Type returns the payload type
func (c Channel[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// String implements fmt.Stringer
func (c Channel[T]) String() string {
	return c.name
}

// Handler is a typed listener function
type Handler[T any] func(ctx context.Context, payload T, meta Metadata) error

// Listen wraps a typed handler in a listener. A payload of another type
// makes the listener fail with a *PayloadTypeError.
func Listen[T any](h Handler[T]) *Listener {
	if h == nil {
		return transport.NewListener(nil)
	}
	return transport.NewListener(func(ctx context.Context, payload any, meta Metadata) error {
		data, ok := payload.(T)
		if !ok {
			if payload != nil || !nillable[T]() {
				return &PayloadTypeError{
					Channel: meta.Name,
					Want:    reflect.TypeFor[T](),
					Got:     reflect.TypeOf(payload),
				}
			}
			// nil for a pointer, interface, map, slice, func or chan payload
		}
		return h(ctx, data, meta)
	})
}

// ListenPayload wraps a function that only needs the payload
func ListenPayload[T any](fn func(T)) *Listener {
	if fn == nil {
		return transport.NewListener(nil)
	}
	return Listen(func(_ context.Context, payload T, _ Metadata) error {
		fn(payload)
		return nil
	})
}

// CreateEvent builds the listener slice of one channel for NewBus
func CreateEvent[T any](handlers ...Handler[T]) []*Listener {
	listeners := make([]*Listener, 0, len(handlers))
	for _, h := range handlers {
		listeners = append(listeners, Listen(h))
	}
	return listeners
}

// Register binds ch's payload type to the bus ahead of use.
// Returns ErrTypeMismatch if the name is already bound to another type.
func Register[T any](b *Bus, ch Channel[T]) (Channel[T], error) {
	if err := b.bind(ch.name, ch.Type()); err != nil {
		return ch, err
	}
	return ch, nil
}

// On registers typed handlers on ch. Handlers for a channel already bound to
// another payload type are not registered and a warning is logged.
func On[T any](b *Bus, ch Channel[T], handlers ...Handler[T]) *Bus {
	if err := b.bind(ch.name, ch.Type()); err != nil {
		b.logger.Warn("typed listeners not registered", "event", ch.name, "error", err)
		return b
	}
	return b.On(ch.name, CreateEvent(handlers...)...)
}

// Off closes ch; see Bus.Off
func Off[T any](b *Bus, ch Channel[T]) *Bus {
	return b.Off(ch.name)
}

// Emit publishes payload on ch; see Bus.Emit.
// Returns ErrTypeMismatch if ch's name is bound to another payload type.
func Emit[T any](ctx context.Context, b *Bus, ch Channel[T], payload T) error {
	if err := b.bind(ch.name, ch.Type()); err != nil {
		return err
	}
	return b.Emit(ctx, ch.name, payload)
}

// ListenerCount returns the listener count of ch; see Bus.ListenerCount
func ListenerCount[T any](b *Bus, ch Channel[T]) int {
	return b.ListenerCount(ch.name)
}

func nillable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
