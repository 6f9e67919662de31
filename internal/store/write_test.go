package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provtrace/provtrace/internal/provenance"
	"github.com/provtrace/provtrace/internal/testutil"
)

func TestWriteEvents_RoundTrip(t *testing.T) {
	s := createTestStore(t, 2)
	ctx := context.Background()

	rec := testutil.WithChildren(
		testutil.WithParents(testutil.Record(1, 100, provenance.EventTypeJoin, "u3"), "u1", "u2"),
		"u3")
	rec.Details = "merged upstream flowfiles"

	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{rec}))

	got, err := s.ReadByFlowFile(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
}

func TestWriteEvents_Idempotent(t *testing.T) {
	s := createTestStore(t, 2)
	ctx := context.Background()

	rec := testutil.Record(1, 100, provenance.EventTypeCreate, "u1")

	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{rec}))
	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{rec}))

	count, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWriteEvents_InvalidRecordRejected(t *testing.T) {
	s := createTestStore(t, 2)
	ctx := context.Background()

	bad := testutil.Record(0, 100, provenance.EventTypeCreate, "u1") // zero event_id

	err := s.WriteEvents(ctx, []provenance.EventRecord{bad})
	require.Error(t, err)

	// The whole transaction rolls back - nothing was stored.
	count, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestWriteEvents_InvalidRecordAbortsBatch(t *testing.T) {
	s := createTestStore(t, 2)
	ctx := context.Background()

	good := testutil.Record(1, 100, provenance.EventTypeCreate, "u1")
	bad := testutil.Record(2, 100, "BOGUS", "u1")

	require.Error(t, s.WriteEvents(ctx, []provenance.EventRecord{good, bad}))

	count, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestWriteEvents_Empty(t *testing.T) {
	s := createTestStore(t, 2)
	require.NoError(t, s.WriteEvents(context.Background(), nil))
}

func TestLinkedIDs_Deduplicates(t *testing.T) {
	rec := testutil.WithChildren(
		testutil.WithParents(testutil.Record(1, 100, provenance.EventTypeClone, "u1"), "u1"),
		"u2", "u2")

	assert.Equal(t, []string{"u1", "u2"}, linkedIDs(rec))
}
