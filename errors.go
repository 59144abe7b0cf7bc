package kamui

import (
	"errors"
	"fmt"
	"reflect"
)

// Bus errors
var (
	// ErrTypeMismatch is returned when a channel is used with a payload type
	// different from the one it was first bound to.
	ErrTypeMismatch = errors.New("channel payload type mismatch")

	// ErrPayloadType is returned by a typed listener that received a payload
	// of the wrong type through the untyped API.
	ErrPayloadType = errors.New("unexpected payload type")

	// ErrListenerPanic is wrapped by PanicError.
	ErrListenerPanic = errors.New("listener panicked")
)

// PayloadTypeError describes a payload a typed listener could not accept.
type PayloadTypeError struct {
	Channel string
	Want    reflect.Type
	Got     reflect.Type
}

func (e *PayloadTypeError) Error() string {
	return fmt.Sprintf("%v: channel %q expects %v, got %v", ErrPayloadType, e.Channel, e.Want, e.Got)
}

func (e *PayloadTypeError) Unwrap() error {
	return ErrPayloadType
}

// PanicError is returned by Emit when recovery is enabled and a listener panicked.
type PanicError struct {
	Channel string
	EventID string
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: channel %q event %s: %v", ErrListenerPanic, e.Channel, e.EventID, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrListenerPanic
}

// IsPanic checks if an error is a recovered listener panic.
func IsPanic(err error) bool {
	var panicErr *PanicError
	return errors.As(err, &panicErr)
}

// typeMismatch wraps ErrTypeMismatch with channel details
func typeMismatch(name string, bound, requested reflect.Type) error {
	return fmt.Errorf("%w: channel %q bound to %v, requested %v", ErrTypeMismatch, name, bound, requested)
}
