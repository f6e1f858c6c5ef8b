package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records dispatch metrics for ERP calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one dispatch with duration and error status.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"odoo.calls.total",
		metric.WithDescription("Total number of dispatched ERP calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"odoo.calls.errors",
		metric.WithDescription("Total number of failed ERP calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"odoo.call.duration_ms",
		metric.WithDescription("ERP call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordCall records metrics for one dispatch.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("odoo.model", meta.Model),
		attribute.String("odoo.operation", meta.Operation),
	}
	if meta.Database != "" {
		attrs = append(attrs, attribute.String("odoo.database", meta.Database))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}

// PoolSnapshot is a point-in-time view of the session pool, decoupled from
// the pool package so the instrumentation has no dependency direction back
// into it.
type PoolSnapshot struct {
	Entries         int
	Hits            uint64
	Misses          uint64
	Authentications uint64
	AuthFailures    uint64
	Expirations     uint64
	Evictions       uint64
}

// RegisterPoolGauges registers asynchronous instruments that observe the
// session pool through the snapshot function on every collection cycle.
// Unregister the returned registration before shutting the pool down.
func RegisterPoolGauges(meter metric.Meter, snapshot func() PoolSnapshot) (metric.Registration, error) {
	entries, err := meter.Int64ObservableGauge(
		"pool.sessions",
		metric.WithDescription("Pooled ERP sessions currently cached"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64ObservableCounter(
		"pool.hits",
		metric.WithDescription("Acquisitions served from the pool"),
		metric.WithUnit("{acquire}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64ObservableCounter(
		"pool.misses",
		metric.WithDescription("Acquisitions that required authentication"),
		metric.WithUnit("{acquire}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64ObservableCounter(
		"pool.auth_failures",
		metric.WithDescription("Session factory failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	expirations, err := meter.Int64ObservableCounter(
		"pool.expirations",
		metric.WithDescription("Sessions dropped after their TTL elapsed"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64ObservableCounter(
		"pool.evictions",
		metric.WithDescription("Sessions replaced or invalidated before expiry"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			s := snapshot()
			o.ObserveInt64(entries, int64(s.Entries))
			o.ObserveInt64(hits, int64(s.Hits))
			o.ObserveInt64(misses, int64(s.Misses))
			o.ObserveInt64(authFailures, int64(s.AuthFailures))
			o.ObserveInt64(expirations, int64(s.Expirations))
			o.ObserveInt64(evictions, int64(s.Evictions))
			return nil
		},
		entries, hits, misses, authFailures, expirations, evictions,
	)
}
