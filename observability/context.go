package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/voicescribe/errors"
)

// Operation tracks one handled message: its root span, its start time and
// the metrics it reports into. A nil Metrics skips metric recording.
type Operation struct {
	Name      string
	RequestID string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

type operationKey struct{}

// StartOperation starts the root span of an operation and counts it as
// active.
func StartOperation(ctx context.Context, name, requestID string, metrics *Metrics, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	op := &Operation{
		Name:      name,
		RequestID: requestID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
	ctx, op.span = StartSpan(ctx, name)
	op.span.SetAttributes(attribute.String(AttrRequestID, requestID))
	op.span.SetAttributes(attrs...)

	metrics.MessageStarted(ctx)
	return context.WithValue(ctx, operationKey{}, op), op
}

// OperationFromContext returns the Operation stored by StartOperation, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Stage starts a child span for one pipeline stage. The returned function
// ends it and records the stage duration and any error.
func (op *Operation) Stage(ctx context.Context, name, stage string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(attribute.String(AttrStage, stage))

	return ctx, func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
			code := string(apperrors.CodeOf(err))
			span.SetAttributes(attribute.String(AttrErrorCode, code))
			SetSpanError(ctx, err)
			op.Metrics.RecordError(ctx, code, stage)
		}
		span.End()
		op.Metrics.RecordStage(ctx, stage, status, time.Since(start))
	}
}

// End closes the root span and records the outcome.
func (op *Operation) End(ctx context.Context, outcome string, err error) {
	duration := time.Since(op.StartTime)
	if err != nil {
		op.span.RecordError(err)
	}
	op.span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int64("duration_ms", duration.Milliseconds()),
	)
	op.span.End()
	op.Metrics.MessageFinished(ctx, outcome, duration)
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
