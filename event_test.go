package kamui

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"syreclabs.com/go/faker"
)

type orderStatus struct {
	OrderID string
	Status  string
	IsPaid  bool
}

type userCreated struct {
	ID   string
	Name string
}

var orders = struct {
	Status  Channel[orderStatus]
	Created Channel[*userCreated]
}{
	Status:  NewChannel[orderStatus]("order.status"),
	Created: NewChannel[*userCreated]("user.created"),
}

func TestChannel(t *testing.T) {
	if got := orders.Status.Name(); got != "order.status" {
		t.Errorf("expected name order.status, got %s", got)
	}
	if got := orders.Status.String(); got != "order.status" {
		t.Errorf("expected string order.status, got %s", got)
	}
	if got := orders.Status.Type(); got != reflect.TypeOf(orderStatus{}) {
		t.Errorf("unexpected payload type %v", got)
	}
}

func TestTypedOnEmit(t *testing.T) {
	ctx := context.Background()
	bus := TestBus(nil, nil)

	var got []orderStatus
	var metas []Metadata
	On(bus, orders.Status, func(_ context.Context, s orderStatus, meta Metadata) error {
		got = append(got, s)
		metas = append(metas, meta)
		return nil
	})

	status := orderStatus{OrderID: faker.Lorem().String(), Status: "shipped", IsPaid: true}
	if err := Emit(ctx, bus, orders.Status, status); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	if diff := cmp.Diff([]orderStatus{status}, got); diff != "" {
		t.Errorf("payloads mismatch (-want +got):\n%s", diff)
	}
	if len(metas) != 1 || metas[0].Name != "order.status" {
		t.Errorf("unexpected metadata %v", metas)
	}
	if n := ListenerCount(bus, orders.Status); n != 1 {
		t.Errorf("expected 1 listener, got %d", n)
	}
	if pt, ok := bus.PayloadType("order.status"); !ok || pt != orders.Status.Type() {
		t.Errorf("channel not bound to its payload type: %v %v", pt, ok)
	}

	Off(bus, orders.Status)
	if n := ListenerCount(bus, orders.Status); n != 0 {
		t.Errorf("expected 0 listeners after off, got %d", n)
	}
}

func TestCreateEvent(t *testing.T) {
	var calls []string
	listeners := CreateEvent(
		func(_ context.Context, s orderStatus, _ Metadata) error {
			calls = append(calls, "first:"+s.OrderID)
			return nil
		},
		func(_ context.Context, s orderStatus, _ Metadata) error {
			calls = append(calls, "second:"+s.OrderID)
			return nil
		},
	)
	if len(listeners) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(listeners))
	}

	bus := TestBus(nil, Events{orders.Status.Name(): listeners})
	if err := Emit(context.Background(), bus, orders.Status, orderStatus{OrderID: "order123"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"first:order123", "second:order123"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestListenPayload(t *testing.T) {
	var names []string
	bus := TestBus(nil, nil)
	bus.On(orders.Created.Name(), ListenPayload(func(u *userCreated) {
		if u == nil {
			names = append(names, "<nil>")
			return
		}
		names = append(names, u.Name)
	}))

	ctx := context.Background()
	name := faker.Lorem().String()
	if err := Emit(ctx, bus, orders.Created, &userCreated{ID: "1", Name: name}); err != nil {
		t.Fatal(err)
	}
	if err := Emit(ctx, bus, orders.Created, nil); err != nil {
		t.Fatalf("nil pointer payload must be accepted: %v", err)
	}
	if diff := cmp.Diff([]string{name, "<nil>"}, names); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestTypeMismatch(t *testing.T) {
	ctx := context.Background()
	bus := TestBus(nil, nil)
	called := 0
	On(bus, orders.Status, func(context.Context, orderStatus, Metadata) error {
		called++
		return nil
	})

	conflicting := NewChannel[string]("order.status")

	t.Run("emit", func(t *testing.T) {
		err := Emit(ctx, bus, conflicting, "shipped")
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch, got %v", err)
		}
		if called != 0 {
			t.Error("listener ran for a mismatched emit")
		}
	})

	t.Run("on", func(t *testing.T) {
		On(bus, conflicting, func(context.Context, string, Metadata) error { return nil })
		if n := bus.ListenerCount("order.status"); n != 1 {
			t.Errorf("mismatched listener must not be registered, got %d listeners", n)
		}
	})

	t.Run("register", func(t *testing.T) {
		if _, err := Register(bus, conflicting); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("expected ErrTypeMismatch, got %v", err)
		}
		if _, err := Register(bus, orders.Status); err != nil {
			t.Errorf("register with the bound type: %v", err)
		}
	})

	t.Run("other bus", func(t *testing.T) {
		other := TestBus(nil, nil)
		if _, err := Register(other, conflicting); err != nil {
			t.Errorf("bindings must be per bus: %v", err)
		}
	})
}

func TestPayloadTypeError(t *testing.T) {
	called := false
	bus := TestBus(nil, Events{"order.status": {Listen(func(context.Context, orderStatus, Metadata) error {
		called = true
		return nil
	})}})

	err := bus.Emit(context.Background(), "order.status", "not an order")
	if !errors.Is(err, ErrPayloadType) {
		t.Fatalf("expected ErrPayloadType, got %v", err)
	}
	var pte *PayloadTypeError
	if !errors.As(err, &pte) {
		t.Fatal("expected *PayloadTypeError")
	}
	if pte.Channel != "order.status" || pte.Want != reflect.TypeOf(orderStatus{}) || pte.Got != reflect.TypeOf("") {
		t.Errorf("unexpected error fields: %+v", pte)
	}
	if called {
		t.Error("handler ran with a mismatched payload")
	}

	t.Run("nil payload for value type", func(t *testing.T) {
		err := bus.Emit(context.Background(), "order.status", nil)
		if !errors.Is(err, ErrPayloadType) {
			t.Errorf("expected ErrPayloadType, got %v", err)
		}
	})
}

func TestNilHandlers(t *testing.T) {
	bus := TestBus(nil, Events{"c": {Listen[int](nil), ListenPayload[int](nil)}})
	if err := bus.Emit(context.Background(), "c", 1); err == nil {
		t.Error("expected error from a listener without a function")
	}
}
