package lineage

import (
	"github.com/provtrace/provtrace/internal/provenance"
)

// NodeType tags the two lineage node variants.
type NodeType string

const (
	// NodeTypeEvent wraps one provenance event record.
	NodeTypeEvent NodeType = "EVENT"

	// NodeTypeFlowFile represents a flowfile's existence at a point in time.
	NodeTypeFlowFile NodeType = "FLOWFILE"
)

// Node is one vertex of a lineage graph.
//
// Node is a comparable value type: structural equality IS identity, and
// nodes deduplicate by being used as map keys. For the event variant,
// identity is carried by EventID; for the flowfile variant, by
// (FlowFileID, Timestamp). The constructors populate the remaining fields
// deterministically, so equal identities always compare equal.
type Node struct {
	Type NodeType `json:"type"`

	// FlowFileID is the owning flowfile identifier, present on both variants.
	FlowFileID string `json:"flowfile_id"`

	// Timestamp is the event time (event variant) or the creation time
	// (flowfile variant), in unix millis.
	Timestamp int64 `json:"timestamp"`

	// EventID and EventType are set on the event variant only.
	EventID   int64                `json:"event_id,omitempty"`
	EventType provenance.EventType `json:"event_type,omitempty"`
}

// EventNodeFor builds the event-variant node wrapping rec.
func EventNodeFor(rec provenance.EventRecord) Node {
	return Node{
		Type:       NodeTypeEvent,
		FlowFileID: rec.FlowFileID,
		Timestamp:  rec.EventTime,
		EventID:    rec.EventID,
		EventType:  rec.EventType,
	}
}

// FlowFileNodeAt builds the flowfile-variant node for flowFileID created at
// timestamp.
func FlowFileNodeAt(flowFileID string, timestamp int64) Node {
	return Node{
		Type:       NodeTypeFlowFile,
		FlowFileID: flowFileID,
		Timestamp:  timestamp,
	}
}

// Edge is a directed lineage edge. Like Node it is a comparable value type;
// identity is all three fields and duplicate edges collapse via map-key set
// semantics.
type Edge struct {
	From       Node   `json:"from"`
	To         Node   `json:"to"`
	FlowFileID string `json:"flowfile_id"`
}

// compareNodes orders nodes deterministically for output: timestamp, then
// variant, then event ID, then flowfile ID.
func compareNodes(a, b Node) int {
	switch {
	case a.Timestamp != b.Timestamp:
		return compareInt64(a.Timestamp, b.Timestamp)
	case a.Type != b.Type:
		return compareStrings(string(a.Type), string(b.Type))
	case a.EventID != b.EventID:
		return compareInt64(a.EventID, b.EventID)
	default:
		return compareStrings(a.FlowFileID, b.FlowFileID)
	}
}

// compareEdges orders edges deterministically for output: from node, then to
// node, then edge flowfile ID.
func compareEdges(a, b Edge) int {
	if c := compareNodes(a.From, b.From); c != 0 {
		return c
	}
	if c := compareNodes(a.To, b.To); c != 0 {
		return c
	}
	return compareStrings(a.FlowFileID, b.FlowFileID)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
