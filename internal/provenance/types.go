package provenance

import (
	"fmt"
	"sort"
	"strings"
)

// EventType identifies the kind of provenance event.
//
// CREATE, RECEIVE, FORK, JOIN, REPLAY, FETCH and CLONE carry special
// lineage-graph semantics (they produce flowfiles). Every other type
// contributes only an ordinary succession edge.
type EventType string

const (
	EventTypeCreate  EventType = "CREATE"
	EventTypeReceive EventType = "RECEIVE"
	EventTypeFork    EventType = "FORK"
	EventTypeJoin    EventType = "JOIN"
	EventTypeReplay  EventType = "REPLAY"
	EventTypeFetch   EventType = "FETCH"
	EventTypeClone   EventType = "CLONE"

	// Ordinary event types. No special graph-construction behavior.
	EventTypeSend               EventType = "SEND"
	EventTypeDrop               EventType = "DROP"
	EventTypeAttributesModified EventType = "ATTRIBUTES_MODIFIED"
	EventTypeContentModified    EventType = "CONTENT_MODIFIED"
	EventTypeRoute              EventType = "ROUTE"
	EventTypeExpire             EventType = "EXPIRE"
)

// ValidEventTypes defines the event types accepted at the ingest boundary.
var ValidEventTypes = map[EventType]bool{
	EventTypeCreate:             true,
	EventTypeReceive:            true,
	EventTypeFork:               true,
	EventTypeJoin:               true,
	EventTypeReplay:             true,
	EventTypeFetch:              true,
	EventTypeClone:              true,
	EventTypeSend:               true,
	EventTypeDrop:               true,
	EventTypeAttributesModified: true,
	EventTypeContentModified:    true,
	EventTypeRoute:              true,
	EventTypeExpire:             true,
}

// EventRecord is one lineage-relevant occurrence in the event log.
//
// Identity is EventID alone: two records with the same EventID are the same
// record, and set semantics everywhere in this codebase key on it.
type EventRecord struct {
	EventID     int64     `json:"event_id" yaml:"event_id"`
	EventTime   int64     `json:"event_time" yaml:"event_time"` // unix millis
	EventType   EventType `json:"event_type" yaml:"event_type"`
	FlowFileID  string    `json:"flowfile_id" yaml:"flowfile_id"`
	ParentIDs   []string  `json:"parent_ids,omitempty" yaml:"parent_ids,omitempty"`
	ChildIDs    []string  `json:"child_ids,omitempty" yaml:"child_ids,omitempty"`
	ComponentID string    `json:"component_id,omitempty" yaml:"component_id,omitempty"`
	Details     string    `json:"details,omitempty" yaml:"details,omitempty"`
}

// Validate checks the invariants every stored record must satisfy.
func (r EventRecord) Validate() error {
	if r.EventID <= 0 {
		return fmt.Errorf("event_id must be positive, got %d", r.EventID)
	}
	if r.EventTime < 0 {
		return fmt.Errorf("event_time must be non-negative, got %d", r.EventTime)
	}
	if !ValidEventTypes[r.EventType] {
		return fmt.Errorf("invalid event_type %q", r.EventType)
	}
	if strings.TrimSpace(r.FlowFileID) == "" {
		return fmt.Errorf("flowfile_id is required")
	}
	for i, id := range r.ParentIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("parent_ids[%d] is empty", i)
		}
	}
	for i, id := range r.ChildIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("child_ids[%d] is empty", i)
		}
	}
	return nil
}

// Less reports whether a orders before b under the canonical record order:
// event time ascending, then event ID ascending.
//
// This order is the sole source of determinism for lineage computation.
func Less(a, b EventRecord) bool {
	if a.EventTime != b.EventTime {
		return a.EventTime < b.EventTime
	}
	return a.EventID < b.EventID
}

// SortRecords sorts records in place into the canonical (event_time,
// event_id) order.
func SortRecords(records []EventRecord) {
	sort.Slice(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}
