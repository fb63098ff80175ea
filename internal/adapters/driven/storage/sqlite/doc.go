// Package sqlite provides a SQLite-backed implementation of driven.BatchWriter.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each batch is written inside a single
// transaction together with a batch row identified by a UUID.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Thread Safety
//
// All operations are thread-safe. The writer uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
