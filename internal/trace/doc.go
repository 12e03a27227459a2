// Package trace provides structured event tracing for krait.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	krait check --trace=- --trace-level=phase src/
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, written out on Close in ring mode
//   - MultiTracer: combines several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only error events (rule faults, unreadable files)
//   - LevelPhase: driver and phase boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: everything including hook invocations
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeFile, path)
//	defer span.End("")
package trace
