package usecase

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/envsync/internal/telemetry"
)

type options struct {
	tracer  trace.Tracer
	metrics *telemetry.PromotionMetrics
}

// Option is a functional option for configuring the orchestrators
type Option func(*options) error

// WithTracer sets the tracer used for orchestrator spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithMetrics sets the promotion metrics. Nil metrics are a no-op.
func WithMetrics(metrics *telemetry.PromotionMetrics) Option {
	return func(o *options) error {
		o.metrics = metrics
		return nil
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
