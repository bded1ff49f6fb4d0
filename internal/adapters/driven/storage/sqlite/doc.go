// Package sqlite persists the contents cache, generation artifacts and
// scheduler state in a single SQLite database.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the binary
// builds without CGO. One Store serves several driven ports:
//
//   - ContentsStore: retrieved document contents by request
//   - ArtifactStore: generation cycles and their rendered artifacts
//   - SchedulerStore: scheduled task state and run history
//
// The schema is managed by the numbered migrations in migrations/. By default
// the database lives at ~/.reportgen/data/reportgen.db and runs in WAL mode.
package sqlite
