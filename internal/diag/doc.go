// Package diag defines the message model shared by every analysis phase.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by the
//     front end (compiler category), the doc comment parser (tsdoc category),
//     the analyzer and collector (extractor category) and the driver (console
//     category).
//   - Offer light-weight utilities (Reporter, Bag, ReportBuilder) so producers
//     emit diagnostics without coupling to storage or formatting.
//   - Route messages through a reporting Policy that decides, per message ID,
//     the log level and whether the message is written into the API report.
//
// # Data model
//
// Diagnostic is what producers emit: a MessageID, a primary source.Span, the
// text, optional notes and an optional Anchor. The anchor is an opaque key of
// the declaration the finding belongs to; the collector uses declaration IDs.
//
// Message is what the Router keeps after resolving the span to a path, line
// and column. It carries no entity references, so messages can be cached,
// compared across runs and written to golden files.
//
// # Routing
//
// Router implements Reporter. For every diagnostic it looks up the Rule for
// the message ID (Policy.Rule falls back to the category default). Messages
// whose rule adds them to the report are kept for the report writer, which
// fetches them per anchor (FetchAssociated) or as the trailing unassociated
// section (FetchUnassociated). Everything not fetched is logged by Flush.
// Messages are append-only and never deduplicated: each occurrence is a
// distinct physical location.
//
// # Scope
//
// Package diag performs no formatting of its own beyond the golden format.
// Console rendering lives in internal/diagfmt.
package diag
