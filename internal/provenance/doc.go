// Package provenance defines the event record model for provtrace.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import provenance; provenance imports nothing internal.
// This keeps the record model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Event identity is the EventID; records with equal IDs are the same record
//   - Event times are unix milliseconds (int64), comparable across partitions
//   - The (event_time, event_id) order is the ONLY total order over records;
//     every consumer that needs determinism sorts with SortRecords
//   - Identifier strings are NFC-normalized at the ingest boundary (canonical.go)
package provenance
