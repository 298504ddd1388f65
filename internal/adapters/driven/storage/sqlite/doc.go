// Package sqlite persists station directory and train catalog
// snapshots between runs, so the server can start offline and refresh
// from upstream out-of-band.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. The schema is
// managed through versioned migrations embedded at compile time.
//
// By default, the database is stored at ~/.smart-tra/data/cache.db.
// All operations are thread-safe; the store relies on database-level
// locking provided by SQLite in WAL mode.
package sqlite
