// Package diag defines the diagnostic model of a validation run.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for rule violations found
//     in an XBRL instance.
//   - Offer light-weight utilities (Reporter, Bag, Collector) that let rules
//     emit diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting, IO or CLI integration.
// Rendering lives in internal/emit; orchestration lives in internal/engine.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Inconsistency, Warning, Error).
//   - Code – compact numeric identifier (see codes.go). Clause codes render
//     as "EBA.<chapter>.<clause>[.<sub>]"; engine codes as "id-unique" and
//     "internal-rule-error".
//   - Message – human oriented text.
//   - Primary – the source.Location of the offending node.
//   - Value – the offending value when one exists (measured length, id).
//   - Notes – secondary locations such as "duplicate of".
//   - Seq – deterministic insertion sequence, the final sort tie-break.
//
// # Ordering
//
// Producers may run in any order and in parallel. Collector.Freeze sorts by
// (Primary, Code, Seq), so the report is a pure function of the input. No
// deduplication takes place: every offending node or group is reported.
//
// # Emitting diagnostics
//
// Rules construct a ReportBuilder (NewReportBuilder, ReportError,
// ReportWarning), chain WithNote / WithValue and call Emit. Engine workers
// pass a BagReporter and merge the Bag into the Collector once per batch.
package diag
