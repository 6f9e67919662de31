// Package store provides SQLite-backed durable storage for the provtrace
// provenance event log.
//
// The log is partitioned: every event is assigned to one of a fixed number
// of partitions at write time, and lineage computations query each partition
// as an independent step. The partition count is fixed when the store is
// created and persisted in the meta table; reopening with a conflicting
// count is an error.
//
// Relevance lookups go through the event_links table, which holds one row
// per (event, flowfile) association - the event's own flowfile plus every
// parent and child. This lets a single indexed query find all events
// touching a set of flowfile IDs.
//
// All reads order by (event_time ASC, event_id ASC), the canonical record
// order, so query results are deterministic.
//
// Database configuration:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
