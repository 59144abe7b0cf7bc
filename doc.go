// Package kamui provides an in-process, strongly typed publish/subscribe dispatcher.
// Listeners are registered on named channels and run synchronously, in
// registration order, every time a payload is emitted on their channel.
//
// Architecture:
// - Bus owns one channel registry and one transport adapter for its whole lifetime
// - Adapters perform the actual listener storage and invocation (transport.Adapter)
// - local.New() is the default registry-backed adapter; emitter.NewAdapter keeps its own storage
// - Every emit carries fresh delivery metadata: event id, timestamp and channel name
//
// Basic example:
//
//	bus := kamui.NewBus(kamui.Events{
//	    "order.status": {kamui.NewListener(func(ctx context.Context, payload any, meta kamui.Metadata) error {
//	        fmt.Println(meta.Name, payload)
//	        return nil
//	    })},
//	})
//
//	if err := bus.Emit(ctx, "order.status", "shipped"); err != nil {
//	    log.Println(err)
//	}
//
// Type Safety:
// Declare a payload table of typed channels and use the generic helpers:
//
//	type OrderStatus struct {
//	    OrderID string
//	    Status  string
//	    IsPaid  bool
//	}
//
//	var Orders = struct {
//	    Status kamui.Channel[OrderStatus]
//	}{
//	    Status: kamui.NewChannel[OrderStatus]("order.status"),
//	}
//
//	kamui.On(bus, Orders.Status, func(ctx context.Context, s OrderStatus, meta kamui.Metadata) error {
//	    fmt.Printf("%s is %s\n", s.OrderID, s.Status)
//	    return nil
//	})
//
//	// This compiles - correct type
//	kamui.Emit(ctx, bus, Orders.Status, OrderStatus{OrderID: "order123", Status: "shipped"})
//
//	// This won't compile - wrong type
//	kamui.Emit(ctx, bus, Orders.Status, "shipped")  // compile error!
//
// A channel name is bound to the payload type of its first typed use. Using the
// same name with another type later returns ErrTypeMismatch.
//
// Channel lifecycle:
// Channels are created by On. Off removes every listener and closes the channel;
// emits and counts on a closed channel are no-ops until the next On reopens it.
// Emitting on a channel that was never registered is not an error.
//
// Failure semantics:
// The first listener error aborts the emit and is returned unchanged. A panicking
// listener unwinds through Emit unless WithRecovery(true) is set, in which case
// Emit returns a *PanicError.
//
// Bus Options:
//   - WithAdapter: set transport adapter. Default is local.New().
//   - WithTracing: enable/disable OpenTelemetry tracing. Default is true.
//   - WithMetrics: enable/disable OpenTelemetry metrics. Default is true.
//   - WithRecovery: enable/disable panic recovery in listeners. Default is false.
//   - WithLogger: set logger for the bus.
//   - WithClock, WithIDFunc: control delivery metadata generation.
package kamui
