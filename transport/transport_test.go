package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
)

func nopListener() *Listener {
	return NewListener(func(context.Context, any, Metadata) error { return nil })
}

func ids(ls ...*Listener) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.ID()
	}
	return out
}

func TestRegistryEnsure(t *testing.T) {
	r := NewRegistry()

	if !r.Ensure("orders") {
		t.Fatal("expected entry to be created")
	}
	if r.Ensure("orders") {
		t.Error("second Ensure should not create an entry")
	}

	e, ok := r.Get("orders")
	if !ok {
		t.Fatal("entry not found")
	}
	if !e.Active {
		t.Error("new entry should be active")
	}
	if len(e.Listeners) != 0 {
		t.Errorf("expected empty listener set, got %d", len(e.Listeners))
	}

	t.Run("ensure keeps inactive entry inactive", func(t *testing.T) {
		r.SetActive("orders", false)
		r.Ensure("orders")
		e, _ := r.Get("orders")
		if e.Active {
			t.Error("Ensure must not change an existing entry")
		}
	})

	t.Run("empty name is a regular key", func(t *testing.T) {
		if !r.Ensure("") {
			t.Fatal("expected entry for empty name")
		}
		if _, ok := r.Get(""); !ok {
			t.Error("empty name entry not found")
		}
	})
}

func TestRegistryAdd(t *testing.T) {
	r := NewRegistry()
	l1, l2 := nopListener(), nopListener()

	t.Run("unknown channel", func(t *testing.T) {
		if r.Add("missing", l1) {
			t.Error("Add on unknown channel should be dropped")
		}
		if _, ok := r.Get("missing"); ok {
			t.Error("Add must not create entries")
		}
	})

	r.Ensure("c")

	t.Run("set semantics", func(t *testing.T) {
		if !r.Add("c", l1) {
			t.Fatal("expected l1 to be added")
		}
		if r.Add("c", l1) {
			t.Error("duplicate pointer should not be added")
		}
		r.Add("c", l2)
		if got := r.Count("c"); got != 2 {
			t.Errorf("expected 2 listeners, got %d", got)
		}
		if diff := cmp.Diff(ids(l1, l2), ids(r.Listeners("c")...)); diff != "" {
			t.Errorf("insertion order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("inactive channel", func(t *testing.T) {
		r.SetActive("c", false)
		defer r.SetActive("c", true)
		if r.Add("c", nopListener()) {
			t.Error("Add on inactive channel should be dropped")
		}
		if got := r.Count("c"); got != 0 {
			t.Errorf("inactive channel should count 0, got %d", got)
		}
		if got := r.Listeners("c"); got != nil {
			t.Errorf("inactive channel should have no listeners, got %v", got)
		}
	})

	t.Run("nil listener", func(t *testing.T) {
		if r.Add("c", nil) {
			t.Error("nil listener should not be added")
		}
	})
}

func TestRegistryRemoveAndClear(t *testing.T) {
	r := NewRegistry()
	r.Ensure("c")
	l1, l2, l3 := nopListener(), nopListener(), nopListener()
	r.Add("c", l1)
	r.Add("c", l2)
	r.Add("c", l3)

	if !r.Remove("c", l2) {
		t.Fatal("expected l2 to be removed")
	}
	if r.Remove("c", l2) {
		t.Error("second remove should report false")
	}
	if diff := cmp.Diff(ids(l1, l3), ids(r.Listeners("c")...)); diff != "" {
		t.Errorf("order after remove (-want +got):\n%s", diff)
	}

	if n := r.Clear("c"); n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
	if n := r.Clear("c"); n != 0 {
		t.Errorf("expected 0 cleared on second call, got %d", n)
	}
	if n := r.Clear("missing"); n != 0 {
		t.Errorf("expected 0 for missing channel, got %d", n)
	}

	// cleared listeners can be added again
	if !r.Add("c", l1) {
		t.Error("expected l1 to be re-added after clear")
	}
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"b", "a", "c"} {
		r.Ensure(n)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, r.Names()); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if r.SetActive("zzz", true) {
		t.Error("SetActive on missing entry should report false")
	}
}

func TestGenerator(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	n := 0
	g := NewGenerator(WithClock(mock), WithIDFunc(func() string {
		n++
		return "id-" + string(rune('a'+n))
	}))

	m1 := g.Next("order.status")
	if m1.Name != "order.status" {
		t.Errorf("expected name order.status, got %s", m1.Name)
	}
	if !m1.Timestamp.Equal(mock.Now()) {
		t.Errorf("expected timestamp %v, got %v", mock.Now(), m1.Timestamp)
	}
	if m1.Millis() != mock.Now().UnixMilli() {
		t.Errorf("expected millis %d, got %d", mock.Now().UnixMilli(), m1.Millis())
	}

	mock.Add(time.Second)
	m2 := g.Next("order.status")
	if m2.EventID == m1.EventID {
		t.Error("event ids must differ")
	}
	if m2.Timestamp.Sub(m1.Timestamp) != time.Second {
		t.Errorf("expected 1s between timestamps, got %v", m2.Timestamp.Sub(m1.Timestamp))
	}

	t.Run("clock going backwards", func(t *testing.T) {
		mock.Set(mock.Now().Add(-time.Hour))
		m3 := g.Next("order.status")
		if m3.Timestamp.Before(m2.Timestamp) {
			t.Errorf("timestamp went backwards: %v < %v", m3.Timestamp, m2.Timestamp)
		}
	})
}

func TestGeneratorDefaults(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]bool)
	for range 100 {
		m := g.Next("x")
		if seen[m.EventID] {
			t.Fatalf("duplicate event id %s", m.EventID)
		}
		seen[m.EventID] = true
	}
}

func TestListenerCall(t *testing.T) {
	ctx := context.Background()

	var got Metadata
	l := NewListener(func(_ context.Context, payload any, meta Metadata) error {
		got = meta
		if payload != "hello" {
			return errors.New("unexpected payload")
		}
		return nil
	})
	if l.ID() == "" {
		t.Error("expected listener id")
	}

	meta := Metadata{EventID: "e1", Name: "c"}
	if err := l.Call(ctx, "hello", meta); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if diff := cmp.Diff(meta, got); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}

	t.Run("nil function", func(t *testing.T) {
		if err := NewListener(nil).Call(ctx, nil, meta); !errors.Is(err, ErrNilListener) {
			t.Errorf("expected ErrNilListener, got %v", err)
		}
		var nl *Listener
		if err := nl.Call(ctx, nil, meta); !errors.Is(err, ErrNilListener) {
			t.Errorf("expected ErrNilListener for nil listener, got %v", err)
		}
	})
}
