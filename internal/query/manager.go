package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/provtrace/provtrace/internal/lineage"
	"github.com/provtrace/provtrace/internal/store"
)

// Manager runs lineage computations over a partitioned event store and
// keeps a registry of live submissions.
//
// Thread-safety model:
//   - Submit / Get / Cancel / Submissions / ReapExpired: safe from any
//     goroutine
//   - step goroutines touch only the store (concurrent reads) and the
//     submission's own Result, which synchronizes internally
type Manager struct {
	store *store.Store
	idGen IDGenerator

	mu          sync.Mutex
	submissions map[string]*Submission
}

// NewManager creates a manager over st. A nil idGen defaults to UUIDv7
// submission IDs; tests pass a FixedGenerator for determinism.
func NewManager(st *store.Store, idGen IDGenerator) *Manager {
	if idGen == nil {
		idGen = UUIDv7Generator{}
	}
	return &Manager{
		store:       st,
		idGen:       idGen,
		submissions: make(map[string]*Submission),
	}
}

// Submit starts a lineage computation for trackedIDs and registers it.
//
// The returned submission's result expects one report per store partition.
// Each partition is queried on its own goroutine; a step reports exactly one
// of success (the records it found) or failure (the query error text).
// Callers typically block on Result().AwaitCompletion or poll the registry.
func (m *Manager) Submit(ctx context.Context, trackedIDs []string) *Submission {
	steps := m.store.PartitionCount()

	sub := &Submission{
		id:          m.idGen.Generate(),
		trackedIDs:  append([]string(nil), trackedIDs...),
		submittedAt: time.Now(),
		result:      lineage.NewResult(steps, trackedIDs),
	}

	m.mu.Lock()
	m.submissions[sub.id] = sub
	m.mu.Unlock()

	slog.Debug("submitted lineage computation",
		"submission", sub.id,
		"steps", steps,
		"flowfiles", trackedIDs)

	for p := 0; p < steps; p++ {
		go m.runStep(ctx, sub, p)
	}

	return sub
}

// runStep executes one partition query and reports it into the submission.
func (m *Manager) runStep(ctx context.Context, sub *Submission, partition int) {
	records, err := m.store.ReadRelevant(ctx, partition, sub.trackedIDs)
	if err != nil {
		slog.Debug("lineage query step failed",
			"submission", sub.id,
			"partition", partition,
			"error", err)
		sub.result.ReportFailure(fmt.Sprintf("query partition %d: %v", partition, err))
		return
	}
	sub.result.ReportSuccess(records)
}

// Get returns the registered submission with the given ID.
func (m *Manager) Get(id string) (*Submission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	return sub, ok
}

// Cancel marks the submission's result canceled and reports whether the ID
// was registered. The submission stays registered until reaped.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	sub, ok := m.submissions[id]
	m.mu.Unlock()
	if !ok {
		return false
	}
	sub.result.Cancel()
	return true
}

// Submissions returns a snapshot of the live submissions, ordered by ID.
func (m *Manager) Submissions() []*Submission {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Submission, 0, len(m.submissions))
	for _, sub := range m.submissions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
