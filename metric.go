package kamui

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the bus instruments. A nil *metrics records nothing.
type metrics struct {
	emitted    metric.Int64Counter
	failed     metric.Int64Counter
	subscribed metric.Int64Counter
}

func newMetrics(scope string) *metrics {
	meter := otel.Meter(scope)
	emitted, _ := meter.Int64Counter("kamui.emitted",
		metric.WithDescription("Total number of emits"),
		metric.WithUnit("{emit}"))
	failed, _ := meter.Int64Counter("kamui.listener.failed",
		metric.WithDescription("Emits aborted by a listener error or panic"),
		metric.WithUnit("{emit}"))
	subscribed, _ := meter.Int64Counter("kamui.subscribed",
		metric.WithDescription("Total number of listener registrations"),
		metric.WithUnit("{listener}"))
	return &metrics{
		emitted:    emitted,
		failed:     failed,
		subscribed: subscribed,
	}
}

func (m *metrics) Emitted(ctx context.Context, name string) {
	if m == nil || m.emitted == nil {
		return
	}
	m.emitted.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))
}

func (m *metrics) Failed(ctx context.Context, name string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))
}

func (m *metrics) Subscribed(ctx context.Context, name string, n int) {
	if m == nil || m.subscribed == nil || n == 0 {
		return
	}
	m.subscribed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("event", name)))
}
