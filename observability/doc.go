// Package observability wires OpenTelemetry tracing and metrics.
//
// Export is configured through Config and managed by Component:
//
//	obs := observability.NewComponent(cfg.Observability, log)
//	registry.Register(obs)
//
//	ctx, span := observability.StartSpan(ctx, "asr-server.whisper")
//	defer span.End()
//	obs.Metrics().RecordOperation(ctx, "whisper", "transcribe", "ok", elapsed)
package observability
