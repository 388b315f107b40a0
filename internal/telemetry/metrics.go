// Package telemetry provides OpenTelemetry instrumentation for envsync.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PromotionMetricsMeterName is the name used for the promotion metrics meter
const PromotionMetricsMeterName = "github.com/stacklok/envsync/promotion"

// Operation names recorded as the "operation" attribute
const (
	OperationDiff    = "diff"
	OperationPublish = "publish"
)

// PromotionMetrics holds the OpenTelemetry instruments for diff and publish runs
type PromotionMetrics struct {
	resources metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewPromotionMetrics creates a new PromotionMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewPromotionMetrics(provider metric.MeterProvider) (*PromotionMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(PromotionMetricsMeterName)

	resources, err := meter.Int64Counter(
		"envsync.promotion.resources",
		metric.WithDescription("Number of resources processed by publish runs, by type and result"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"envsync.promotion.duration",
		metric.WithDescription("Duration of diff and publish runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	return &PromotionMetrics{
		resources: resources,
		duration:  duration,
	}, nil
}

// RecordResources adds count resources of the given type and result
// (successful, failed or skipped)
func (m *PromotionMetrics) RecordResources(ctx context.Context, resourceType, result string, count int) {
	if m == nil || m.resources == nil || count == 0 {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("resource_type", resourceType),
		attribute.String("result", result),
	}

	m.resources.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordDuration records the duration of a diff or publish run
func (m *PromotionMetrics) RecordDuration(ctx context.Context, operation string, duration time.Duration, success bool) {
	if m == nil || m.duration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}

	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
