// Package observability wires OpenTelemetry tracing and metrics for the
// voice pipeline.
//
// Each handled message is one Operation with a root span and child spans
// for download, conversion and transcription:
//
//	ctx, op := observability.StartOperation(ctx, observability.SpanHandleVoice, reqID, metrics)
//	stageCtx, done := op.Stage(ctx, observability.SpanConvert, "convert")
//	buf, err := conv.Convert(stageCtx, data, mime)
//	done(err)
//	op.End(ctx, "replied", nil)
//
// Export is off unless observability.enabled is set; the global no-op
// providers absorb everything in that case.
//
// Health:
//
//	sh := observability.CollectHealth(ctx, "voicescribe", version, registry)
package observability
