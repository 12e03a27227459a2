// Package diag defines the diagnostic model shared by the checker, the
// linter driver and the reporters.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Rule – the catalog entry that produced it (rule.Rule).
//   - Span – the primary source range.
//   - Message – human oriented text; keep it short and actionable.
//   - Notes – optional secondary spans/messages.
//   - FixTitle and Fix – an optional suggested correction.
//
// Fix is data only. Edits are produced and rendered, never applied here.
//
// # Collection
//
// Collection accumulates diagnostics of one module in emission order.
// Finalize makes the output independent of that order: it sorts by start,
// end and rule, drops exact duplicates, filters through the noqa table and
// appends unused-noqa findings when RUF100 is enabled.
package diag
