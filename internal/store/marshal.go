package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/provtrace/provtrace/internal/provenance"
)

// marshalIDList serializes a flowfile ID list as a JSON array. Nil and empty
// both serialize to "[]" so the column is never NULL.
func marshalIDList(ids []string) (string, error) {
	if len(ids) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("marshal id list: %w", err)
	}
	return string(data), nil
}

// unmarshalIDList deserializes a JSON array column back to an ID list.
// "[]" yields nil, so round-tripped records compare equal to their inputs.
func unmarshalIDList(data string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal id list: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanEvent.
type rowScanner interface {
	Scan(dest ...any) error
}

// eventColumns is the SELECT column list scanEvent expects, in order.
const eventColumns = "event_id, event_time, event_type, flowfile_id, component_id, details, parent_ids, child_ids"

// scanEvent reads one event row into an EventRecord.
func scanEvent(row rowScanner) (provenance.EventRecord, error) {
	var (
		rec        provenance.EventRecord
		eventType  string
		parentJSON string
		childJSON  string
	)

	err := row.Scan(
		&rec.EventID,
		&rec.EventTime,
		&eventType,
		&rec.FlowFileID,
		&rec.ComponentID,
		&rec.Details,
		&parentJSON,
		&childJSON,
	)
	if err == sql.ErrNoRows {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("scan event: %w", err)
	}

	rec.EventType = provenance.EventType(eventType)
	if rec.ParentIDs, err = unmarshalIDList(parentJSON); err != nil {
		return rec, err
	}
	if rec.ChildIDs, err = unmarshalIDList(childJSON); err != nil {
		return rec, err
	}
	return rec, nil
}
