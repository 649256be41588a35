// Package store provides SQLite-backed durable storage for simulation
// output.
//
// The store is an append-only log with:
//   - Runs: one row of metadata per simulation run
//   - Prevalence: one row per (run, step, series) compartment count
//
// Writes are idempotent via ON CONFLICT DO NOTHING: a (run, step, series)
// cell is written once and never updated, matching the engine's
// append-only output contract. Re-persisting a completed step is
// harmless, and a crash between steps never leaves a half-updated cell.
//
// Ordering never uses wall-clock time. Steps order by the logical step
// number, series by their recorded column position, and runs by their
// time-sortable UUIDv7 ids.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
