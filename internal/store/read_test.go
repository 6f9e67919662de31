package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provtrace/provtrace/internal/provenance"
	"github.com/provtrace/provtrace/internal/testutil"
)

func TestReadRelevant_FiltersByPartition(t *testing.T) {
	s := createTestStore(t, 2)
	ctx := context.Background()

	// event_id mod 2 places ids 1,3 in partition 1 and id 2 in partition 0.
	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{
		testutil.Record(1, 100, provenance.EventTypeCreate, "u1"),
		testutil.Record(2, 200, provenance.EventTypeSend, "u1"),
		testutil.Record(3, 300, provenance.EventTypeDrop, "u1"),
	}))

	p0, err := s.ReadRelevant(ctx, 0, []string{"u1"})
	require.NoError(t, err)
	require.Len(t, p0, 1)
	assert.Equal(t, int64(2), p0[0].EventID)

	p1, err := s.ReadRelevant(ctx, 1, []string{"u1"})
	require.NoError(t, err)
	require.Len(t, p1, 2)
	assert.Equal(t, int64(1), p1[0].EventID)
	assert.Equal(t, int64(3), p1[1].EventID)
}

func TestReadRelevant_MatchesParentAndChildLinks(t *testing.T) {
	s := createTestStore(t, 1)
	ctx := context.Background()

	fork := testutil.WithChildren(
		testutil.WithParents(testutil.Record(1, 100, provenance.EventTypeFork, "u1"), "u0"),
		"u2")
	unrelated := testutil.Record(2, 200, provenance.EventTypeSend, "other")
	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{fork, unrelated}))

	for _, id := range []string{"u0", "u1", "u2"} {
		got, err := s.ReadRelevant(ctx, 0, []string{id})
		require.NoError(t, err)
		require.Len(t, got, 1, "id %q", id)
		assert.Equal(t, int64(1), got[0].EventID, "id %q", id)
	}

	got, err := s.ReadRelevant(ctx, 0, []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRelevant_CanonicalOrder(t *testing.T) {
	s := createTestStore(t, 1)
	ctx := context.Background()

	// Written out of order; same event_time for ids 2 and 3.
	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{
		testutil.Record(3, 100, provenance.EventTypeSend, "u1"),
		testutil.Record(1, 200, provenance.EventTypeDrop, "u1"),
		testutil.Record(2, 100, provenance.EventTypeCreate, "u1"),
	}))

	got, err := s.ReadRelevant(ctx, 0, []string{"u1"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(2), got[0].EventID, "time 100, lower id first")
	assert.Equal(t, int64(3), got[1].EventID)
	assert.Equal(t, int64(1), got[2].EventID, "time 200 last")
}

func TestReadRelevant_OutOfRangePartition(t *testing.T) {
	s := createTestStore(t, 2)

	_, err := s.ReadRelevant(context.Background(), 2, []string{"u1"})
	assert.Error(t, err)

	_, err = s.ReadRelevant(context.Background(), -1, []string{"u1"})
	assert.Error(t, err)
}

func TestReadRelevant_NoIDs(t *testing.T) {
	s := createTestStore(t, 2)

	got, err := s.ReadRelevant(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadByFlowFile_AcrossPartitions(t *testing.T) {
	s := createTestStore(t, 4)
	ctx := context.Background()

	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{
		testutil.Record(1, 100, provenance.EventTypeCreate, "u1"),
		testutil.Record(2, 200, provenance.EventTypeSend, "u1"),
		testutil.Record(6, 300, provenance.EventTypeDrop, "u1"),
	}))

	got, err := s.ReadByFlowFile(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].EventID)
	assert.Equal(t, int64(2), got[1].EventID)
	assert.Equal(t, int64(6), got[2].EventID)
}

func TestCountEvents(t *testing.T) {
	s := createTestStore(t, 2)
	ctx := context.Background()

	count, err := s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, s.WriteEvents(ctx, []provenance.EventRecord{
		testutil.Record(1, 100, provenance.EventTypeCreate, "u1"),
		testutil.Record(2, 200, provenance.EventTypeSend, "u1"),
	}))

	count, err = s.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
