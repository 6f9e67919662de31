package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/provtrace/provtrace/internal/provenance"
)

// ReadRelevant returns the events in one partition that touch any of the
// given flowfile IDs (as primary flowfile, parent, or child).
// Results are ordered by event_time ASC, event_id ASC - the canonical
// record order - so the result is deterministic.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadRelevant(ctx context.Context, partition int, flowFileIDs []string) ([]provenance.EventRecord, error) {
	if partition < 0 || partition >= s.partitions {
		return nil, fmt.Errorf("partition %d out of range [0, %d)", partition, s.partitions)
	}
	if len(flowFileIDs) == 0 {
		return []provenance.EventRecord{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE partition_id = ?
		  AND event_id IN (
			SELECT event_id FROM event_links WHERE flowfile_id IN (%s)
		  )
		ORDER BY event_time ASC, event_id ASC
	`, eventColumns, placeholders(len(flowFileIDs)))

	args := make([]any, 0, 1+len(flowFileIDs))
	args = append(args, partition)
	for _, id := range flowFileIDs {
		args = append(args, id)
	}

	return s.queryEvents(ctx, query, args...)
}

// ReadByFlowFile returns all stored events touching one flowfile ID, across
// every partition, in canonical order.
func (s *Store) ReadByFlowFile(ctx context.Context, flowFileID string) ([]provenance.EventRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE event_id IN (
			SELECT event_id FROM event_links WHERE flowfile_id = ?
		)
		ORDER BY event_time ASC, event_id ASC
	`, eventColumns)

	return s.queryEvents(ctx, query, flowFileID)
}

// CountEvents returns the total number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]provenance.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []provenance.EventRecord{}
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// placeholders builds "?, ?, ?" for an IN clause of n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
