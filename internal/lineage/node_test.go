package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provtrace/provtrace/internal/provenance"
	"github.com/provtrace/provtrace/internal/testutil"
)

func TestNode_IdentityByValue(t *testing.T) {
	rec := testutil.Record(1, 100, provenance.EventTypeCreate, "u1")

	// Two nodes built from the same record identity compare equal and
	// collapse in a set.
	a := EventNodeFor(rec)
	b := EventNodeFor(rec)
	assert.Equal(t, a, b)

	set := map[Node]struct{}{a: {}, b: {}}
	assert.Len(t, set, 1)
}

func TestNode_FlowFileIdentity(t *testing.T) {
	a := FlowFileNodeAt("u1", 100)
	b := FlowFileNodeAt("u1", 100)
	c := FlowFileNodeAt("u1", 200)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "creation time is part of flowfile node identity")
}

func TestNode_VariantsAreDistinct(t *testing.T) {
	rec := testutil.Record(1, 100, provenance.EventTypeCreate, "u1")

	event := EventNodeFor(rec)
	flowFile := FlowFileNodeAt("u1", 100)

	assert.NotEqual(t, event, flowFile)
	assert.Equal(t, NodeTypeEvent, event.Type)
	assert.Equal(t, NodeTypeFlowFile, flowFile.Type)

	// Common accessor fields are populated on both variants.
	assert.Equal(t, "u1", event.FlowFileID)
	assert.Equal(t, "u1", flowFile.FlowFileID)
	assert.Equal(t, int64(100), event.Timestamp)
	assert.Equal(t, int64(100), flowFile.Timestamp)
}

func TestEdge_SetSemantics(t *testing.T) {
	from := FlowFileNodeAt("u1", 100)
	to := EventNodeFor(testutil.Record(1, 200, provenance.EventTypeSend, "u1"))

	e1 := Edge{From: from, To: to, FlowFileID: "u1"}
	e2 := Edge{From: from, To: to, FlowFileID: "u1"}
	e3 := Edge{From: from, To: to, FlowFileID: "u2"}

	set := map[Edge]struct{}{e1: {}, e2: {}, e3: {}}
	assert.Len(t, set, 2, "edge identity is (from, to, flowfile id)")
}

func TestCompareNodes_Ordering(t *testing.T) {
	early := FlowFileNodeAt("u1", 100)
	late := FlowFileNodeAt("u1", 200)
	assert.Negative(t, compareNodes(early, late))
	assert.Positive(t, compareNodes(late, early))
	assert.Zero(t, compareNodes(early, early))

	// Same timestamp: event variant sorts before flowfile variant.
	event := EventNodeFor(testutil.Record(1, 100, provenance.EventTypeCreate, "u1"))
	assert.Negative(t, compareNodes(event, early))
}
