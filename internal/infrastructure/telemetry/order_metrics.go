package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AggregateCounter reports the number of orders currently held by the order aggregator
type AggregateCounter func() (live, archived int)

// OrderMetrics records order lifecycle activity. A nil *OrderMetrics records nothing.
type OrderMetrics struct {
	statusChanges     metric.Int64Counter
	archived          metric.Int64Counter
	archiveIncomplete metric.Int64Counter
	notifyFailures    metric.Int64Counter
	feedClients       metric.Int64UpDownCounter
	aggregateSize     metric.Int64ObservableGauge
	meter             metric.Meter
}

// NewOrderMetrics creates the order instruments on meter
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	m := &OrderMetrics{meter: meter}
	var err error

	if m.statusChanges, err = meter.Int64Counter("shop.orders.status_changes",
		metric.WithDescription("Order status changes applied by operators"),
		metric.WithUnit("{change}")); err != nil {
		return nil, fmt.Errorf("failed to create status change counter: %w", err)
	}
	if m.archived, err = meter.Int64Counter("shop.orders.archived",
		metric.WithDescription("Orders moved to an archive collection"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create archived counter: %w", err)
	}
	if m.archiveIncomplete, err = meter.Int64Counter("shop.orders.archive_incomplete",
		metric.WithDescription("Archives whose live copy could not be removed"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create archive incomplete counter: %w", err)
	}
	if m.notifyFailures, err = meter.Int64Counter("shop.orders.notification_failures",
		metric.WithDescription("Customer notifications that could not be delivered"),
		metric.WithUnit("{notification}")); err != nil {
		return nil, fmt.Errorf("failed to create notification failure counter: %w", err)
	}
	if m.feedClients, err = meter.Int64UpDownCounter("shop.orders.feed_clients",
		metric.WithDescription("Connected live order feed clients"),
		metric.WithUnit("{client}")); err != nil {
		return nil, fmt.Errorf("failed to create feed client counter: %w", err)
	}
	if m.aggregateSize, err = meter.Int64ObservableGauge("shop.orders.aggregate_size",
		metric.WithDescription("Orders held by the live order aggregate"),
		metric.WithUnit("{order}")); err != nil {
		return nil, fmt.Errorf("failed to create aggregate size gauge: %w", err)
	}
	return m, nil
}

// ObserveAggregate reports count on every collection, split by origin
func (m *OrderMetrics) ObserveAggregate(count AggregateCounter) (metric.Registration, error) {
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		live, archived := count()
		o.ObserveInt64(m.aggregateSize, int64(live), metric.WithAttributes(attribute.String("origin", "live")))
		o.ObserveInt64(m.aggregateSize, int64(archived), metric.WithAttributes(attribute.String("origin", "archive")))
		return nil
	}, m.aggregateSize)
}

func (m *OrderMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *OrderMetrics) RecordArchived(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.archived.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *OrderMetrics) RecordArchiveIncomplete(ctx context.Context) {
	if m == nil {
		return
	}
	m.archiveIncomplete.Add(ctx, 1)
}

func (m *OrderMetrics) RecordNotificationFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.notifyFailures.Add(ctx, 1)
}

// FeedClientConnected adds delta (+1 or -1) to the connected feed clients
func (m *OrderMetrics) FeedClientConnected(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.feedClients.Add(ctx, delta)
}
