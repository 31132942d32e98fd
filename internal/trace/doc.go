// Package trace records the phases of an apix run.
//
// A Tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "collector", parentID)
//	defer span.End("")
//
// Levels filter by scope: phase keeps driver and pass spans, detail adds one
// span per package of a batch, debug keeps everything. Events go to a stream
// (text, NDJSON or Chrome trace JSON), to an in-memory ring, or both.
package trace
