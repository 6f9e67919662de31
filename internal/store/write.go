package store

import (
	"context"
	"fmt"

	"github.com/provtrace/provtrace/internal/provenance"
)

// WriteEvents inserts event records in a single transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - re-ingesting a record with
// an already-stored event_id is silently ignored, for both the event row
// and its link rows.
//
// Each event is assigned partition_id = event_id mod the store's partition
// count, so partition placement is stable across re-ingests.
func (s *Store) WriteEvents(ctx context.Context, records []provenance.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write events: begin: %w", err)
	}
	defer tx.Rollback()

	insertEvent, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(event_id, event_time, event_type, flowfile_id, component_id, details, partition_id, parent_ids, child_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write events: prepare: %w", err)
	}
	defer insertEvent.Close()

	insertLink, err := tx.PrepareContext(ctx, `
		INSERT INTO event_links (event_id, flowfile_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write events: prepare links: %w", err)
	}
	defer insertLink.Close()

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("write events: event %d: %w", rec.EventID, err)
		}

		parentJSON, err := marshalIDList(rec.ParentIDs)
		if err != nil {
			return fmt.Errorf("write events: event %d: %w", rec.EventID, err)
		}
		childJSON, err := marshalIDList(rec.ChildIDs)
		if err != nil {
			return fmt.Errorf("write events: event %d: %w", rec.EventID, err)
		}

		_, err = insertEvent.ExecContext(ctx,
			rec.EventID,
			rec.EventTime,
			string(rec.EventType),
			rec.FlowFileID,
			rec.ComponentID,
			rec.Details,
			rec.EventID%int64(s.partitions),
			parentJSON,
			childJSON,
		)
		if err != nil {
			return fmt.Errorf("write events: event %d: %w", rec.EventID, err)
		}

		for _, id := range linkedIDs(rec) {
			if _, err := insertLink.ExecContext(ctx, rec.EventID, id); err != nil {
				return fmt.Errorf("write events: event %d link %q: %w", rec.EventID, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write events: commit: %w", err)
	}
	return nil
}

// linkedIDs returns the deduplicated set of flowfile IDs an event touches:
// its own flowfile plus all parents and children.
func linkedIDs(rec provenance.EventRecord) []string {
	seen := make(map[string]bool, 1+len(rec.ParentIDs)+len(rec.ChildIDs))
	out := make([]string, 0, 1+len(rec.ParentIDs)+len(rec.ChildIDs))

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	add(rec.FlowFileID)
	for _, id := range rec.ParentIDs {
		add(id)
	}
	for _, id := range rec.ChildIDs {
		add(id)
	}
	return out
}
