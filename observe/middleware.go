package observe

import (
	"context"
	"time"
)

// DispatchFunc is the signature for ERP dispatch functions.
// This is the standard function signature that Middleware wraps.
type DispatchFunc func(ctx context.Context, meta CallMeta, args []any, kw map[string]any) (any, error)

// Middleware wraps dispatch with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe DispatchFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
//   - Ownership: Arguments and results pass through without modification,
//     and never appear in span attributes or log fields.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a DispatchFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn DispatchFunc) DispatchFunc {
	return func(ctx context.Context, meta CallMeta, args []any, kw map[string]any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, meta, args, kw)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordCall(ctx, meta, duration, err)

		callLogger := m.logger.WithCall(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			callLogger.Error(ctx, "call failed", fields...)
		} else {
			callLogger.Info(ctx, "call completed", fields...)
		}

		return result, err
	}
}

// NopMiddleware returns a Middleware whose instruments all discard. Useful
// as a default when no observer is wired.
func NopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
