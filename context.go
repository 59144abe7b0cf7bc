package kamui

import (
	"context"
)

type contextKey int

const (
	metadataContextKey contextKey = iota
	busContextKey
)

// ContextMetadata returns the delivery metadata of the emit in progress
func ContextMetadata(ctx context.Context) (Metadata, bool) {
	m, ok := ctx.Value(metadataContextKey).(Metadata)
	return m, ok
}

// ContextEventID returns the event id of the emit in progress, or ""
func ContextEventID(ctx context.Context) string {
	m, _ := ContextMetadata(ctx)
	return m.EventID
}

// ContextBus returns the bus dispatching the emit in progress, or nil
func ContextBus(ctx context.Context) *Bus {
	b, _ := ctx.Value(busContextKey).(*Bus)
	return b
}

// contextWithDelivery attaches metadata and the dispatching bus
func contextWithDelivery(ctx context.Context, b *Bus, meta Metadata) context.Context {
	ctx = context.WithValue(ctx, metadataContextKey, meta)
	return context.WithValue(ctx, busContextKey, b)
}
