// Package testutil provides deterministic test fixtures shared across
// provtrace test suites.
package testutil

import "github.com/provtrace/provtrace/internal/provenance"

// Record creates a minimal valid event record for tests.
func Record(id, ts int64, typ provenance.EventType, flowFileID string) provenance.EventRecord {
	return provenance.EventRecord{
		EventID:     id,
		EventTime:   ts,
		EventType:   typ,
		FlowFileID:  flowFileID,
		ComponentID: "test-component",
	}
}

// WithParents returns a copy of rec with the given parent flowfile IDs.
func WithParents(rec provenance.EventRecord, ids ...string) provenance.EventRecord {
	rec.ParentIDs = ids
	return rec
}

// WithChildren returns a copy of rec with the given child flowfile IDs.
func WithChildren(rec provenance.EventRecord, ids ...string) provenance.EventRecord {
	rec.ChildIDs = ids
	return rec
}
