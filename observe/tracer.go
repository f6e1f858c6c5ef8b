package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta identifies one ERP dispatch for telemetry purposes. It carries
// nothing secret: the fingerprint is a short hash of the caller's non-secret
// identity, and endpoints, usernames and passwords are deliberately absent.
type CallMeta struct {
	Database    string // Target database (may be empty in early failures)
	Model       string // ERP model, e.g. res.partner (required)
	Operation   string // ERP operation, e.g. search_read (required)
	Fingerprint string // Short caller fingerprint (optional)
}

// SpanName returns the deterministic span name for this dispatch.
// Format: odoo.call.<model>.<operation>
func (m CallMeta) SpanName() string {
	return "odoo.call." + m.Model + "." + m.Operation
}

// Tracer wraps OpenTelemetry tracing with dispatch-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one dispatch.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with dispatch metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("odoo.model", meta.Model),
		attribute.String("odoo.operation", meta.Operation),
		attribute.Bool("odoo.error", false), // Will be updated in EndSpan if error
	}

	if meta.Database != "" {
		attrs = append(attrs, attribute.String("odoo.database", meta.Database))
	}
	if meta.Fingerprint != "" {
		attrs = append(attrs, attribute.String("caller.fingerprint", meta.Fingerprint))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("odoo.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
