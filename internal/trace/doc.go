// Package trace is relfix's logging layer: leveled span and point events,
// carried through context.Context.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	relfix fix --trace=- --trace-level=detail shared/schema.ts
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only error points (unreadable files, failed writes)
//   - LevelPhase: Driver, per-file and phase boundaries (load, rewrite, journal, write)
//   - LevelDetail: Adds one point per located declaration
//   - LevelDebug: Everything
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePhase, "rewrite", parentID)
//	defer span.End("")
package trace
