// Package store provides durable storage for survey sessions.
//
// The store holds two tables:
//   - records: one opaque text value per key, upserted on every save. The
//     session package stores its serialized session here under
//     "{experimentId}::session".
//   - exports: an append-only log of every file the exporter produced.
//
// The store never interprets record values; decoding and recovery from
// unreadable records belong to the caller.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Memory implements the same methods over maps for tests and ephemeral runs.
package store
