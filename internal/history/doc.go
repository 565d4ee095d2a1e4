// Package history persists a record of every merge run in a local SQLite
// database: how many parts went in, how much garbage was skipped, whether
// the run completed or demanded the re-encode fallback. The history command
// reads it back for reporting.
package history
