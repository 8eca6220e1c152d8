package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Events records high-level API operation outcomes. Each resource operation
// emits one event carrying the workspace, the outcome, and the duration.
type Events struct {
	workspace string

	operationTotal    metric.Int64Counter
	operationFailures metric.Int64Counter
	operationDuration metric.Float64Histogram
}

// NewEvents creates operation event metrics scoped to a workspace.
// Returns nil when disabled; a nil *Events records nothing, so callers
// don't need to guard the disabled case.
func NewEvents(workspace string, enabled bool) (*Events, error) {
	if !enabled {
		return nil, nil
	}

	meter := otel.Meter(instrumentationName)

	operationTotal, err := meter.Int64Counter(
		"brain.api.operation.total",
		metric.WithDescription("Total number of API operations"),
	)
	if err != nil {
		return nil, err
	}

	operationFailures, err := meter.Int64Counter(
		"brain.api.operation.failures",
		metric.WithDescription("Number of failed API operations"),
	)
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram(
		"brain.api.operation.duration",
		metric.WithDescription("API operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Events{
		workspace:         workspace,
		operationTotal:    operationTotal,
		operationFailures: operationFailures,
		operationDuration: operationDuration,
	}, nil
}

// RecordOperation records one completed API operation.
func (e *Events) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if e == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("workspace", e.workspace),
		attribute.Bool("success", err == nil),
	}

	e.operationTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	e.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if err != nil {
		failureAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
		failureAttrs = append(failureAttrs, attrs...)
		failureAttrs = append(failureAttrs, attribute.String("failure.message", err.Error()))
		e.operationFailures.Add(ctx, 1, metric.WithAttributes(failureAttrs...))
	}
}
