// Package sqlite stores the build catalog and scheduler state in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection serves:
//
//   - BuildCatalog: history of index builds and the committed generation
//   - SchedulerStore: the persisted rebuild schedule
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each applied version is recorded in schema_migrations.
//
// # Data Location
//
// The database is stored at <index_dir>/catalog.db next to the generations it
// describes, or ~/.cinedex/catalog.db when no directory is given.
package sqlite
