// Package logging builds the structured loggers used across bookbinder.
//
// Loggers are standard *slog.Logger values; this package supplies a compact
// single-line console handler for interactive use, a JSON handler for log
// files and scripting, optional append-mode file teeing, and typed attribute
// helpers so call sites stay terse. Tests use NewNop.
package logging
