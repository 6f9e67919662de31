package lineage

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/provtrace/provtrace/internal/provenance"
)

// ResultTTL is how long a result stays fresh after its last state change.
// Expiration is advisory: a caller-side reaper reads Expiration() and
// discards stale results; the result never self-evicts.
const ResultTTL = 30 * time.Minute

// Result accumulates partial lineage query results from a fixed number of
// concurrent steps and computes the graph exactly once, on the report that
// satisfies the step count.
//
// Thread-safety model:
//   - ReportSuccess / ReportFailure: safe from any goroutine; each step
//     producer calls exactly one of them exactly once
//   - all read accessors: safe from any goroutine
//   - AwaitCompletion: safe from any goroutine; the only blocking operation
//
// A single RWMutex guards all mutable state. The finalizing report holds the
// write lock for the whole graph computation, so construction never runs
// concurrently with another report. Completion is signaled on a separate
// channel, closed after the write section ends, so waiters never park while
// holding the lock and wakeups cannot be missed.
type Result struct {
	mu sync.RWMutex

	trackedIDs []string
	numSteps   int

	// State below is guarded by mu.
	records           map[int64]provenance.EventRecord
	graph             *Graph // nil until a successful computation
	numCompletedSteps int
	finalized         bool
	errMsg            string
	expiration        time.Time
	computation       time.Duration

	created time.Time

	// canceled is read without the lock; a short, bounded delay in
	// visibility to concurrent readers is acceptable.
	canceled atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewResult creates a result expecting numSteps reports for the given
// tracked flowfile IDs.
//
// numSteps may be zero, in which case the result is complete from
// construction and never computes a graph.
func NewResult(numSteps int, trackedIDs []string) *Result {
	ids := make([]string, len(trackedIDs))
	copy(ids, trackedIDs)

	return &Result{
		trackedIDs: ids,
		numSteps:   numSteps,
		records:    make(map[int64]provenance.EventRecord),
		expiration: time.Now().Add(ResultTTL),
		created:    time.Now(),
		done:       make(chan struct{}),
	}
}

// ReportSuccess merges one step's records into the accumulated set and
// counts the step. Records seen by multiple steps collapse by identity.
//
// The report that reaches the step count - when no failure has been
// recorded - synchronously computes the lineage graph from the accumulated
// records, publishes it (or the builder's structural error), and wakes all
// AwaitCompletion waiters. The graph is computed at most once per Result.
func (r *Result) ReportSuccess(records []provenance.EventRecord) {
	finalized := false

	r.mu.Lock()
	for _, rec := range records {
		r.records[rec.EventID] = rec
	}
	if r.numCompletedSteps < r.numSteps {
		r.numCompletedSteps++
	}
	r.touchExpirationLocked()

	if !r.finalized && r.numCompletedSteps >= r.numSteps {
		r.finalized = true
		finalized = true

		if r.errMsg == "" {
			all := make([]provenance.EventRecord, 0, len(r.records))
			for _, rec := range r.records {
				all = append(all, rec)
			}
			graph, err := Compute(all, r.trackedIDs)
			if err != nil {
				r.errMsg = err.Error()
			} else {
				r.graph = graph
			}
		}
		r.computation = time.Since(r.created)
	}
	r.mu.Unlock()

	if finalized {
		slog.Info("completed lineage computation",
			"flowfiles", r.trackedIDs,
			"steps", r.numSteps,
			"duration", r.ComputationTime())
		r.doneOnce.Do(func() { close(r.done) })
	}
}

// ReportFailure records message as the result's error and counts the step.
// The first failure wins; later failures do not overwrite it. A failed
// result never computes a graph, though remaining steps are still accepted
// and counted.
func (r *Result) ReportFailure(message string) {
	finalized := false

	r.mu.Lock()
	if r.errMsg == "" {
		r.errMsg = message
	}
	if r.numCompletedSteps < r.numSteps {
		r.numCompletedSteps++
	}
	r.touchExpirationLocked()

	if !r.finalized && r.numCompletedSteps >= r.numSteps {
		r.finalized = true
		finalized = true
		r.computation = time.Since(r.created)
	}
	r.mu.Unlock()

	if finalized {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

// Nodes returns a snapshot of the graph's node set, or an empty slice
// before a successful computation.
func (r *Result) Nodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.graph == nil {
		return []Node{}
	}
	return r.graph.Nodes()
}

// Edges returns a snapshot of the graph's edge set, or an empty slice
// before a successful computation.
func (r *Result) Edges() []Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.graph == nil {
		return []Edge{}
	}
	return r.graph.Edges()
}

// Err returns the recorded error message, or "" if none.
func (r *Result) Err() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.errMsg
}

// PercentComplete returns completion progress in whole percent, truncated
// toward zero. A result with fewer than one step is 100% by definition.
func (r *Result) PercentComplete() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.numSteps < 1 {
		return 100
	}
	return int(float64(r.numCompletedSteps) / float64(r.numSteps) * 100.0)
}

// Finished reports whether every step has completed or the result was
// canceled.
func (r *Result) Finished() bool {
	if r.canceled.Load() {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.numCompletedSteps >= r.numSteps
}

// Cancel marks the result canceled. The transition is one-way.
//
// Cancel does not wake goroutines blocked in AwaitCompletion: a waiter only
// observes cancellation when it wakes independently and re-checks Finished.
// It also does not interrupt an in-flight report or an in-progress graph
// computation.
func (r *Result) Cancel() {
	r.canceled.Store(true)
}

// AwaitCompletion blocks until Finished() is true or timeout elapses, and
// returns the final Finished() value. Already-finished results return
// immediately.
func (r *Result) AwaitCompletion(timeout time.Duration) bool {
	if r.Finished() {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.done:
	case <-timer.C:
	}
	return r.Finished()
}

// TotalHitCount returns the size of the accumulated, deduplicated record
// set - the records seen so far, which may be fewer than the true total
// while steps are still outstanding.
func (r *Result) TotalHitCount() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.records))
}

// ComputationTime returns the elapsed time from construction to
// finalization; zero while the result is still in progress.
func (r *Result) ComputationTime() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.computation
}

// Expiration returns the advisory expiration timestamp: the last
// state-changing operation plus ResultTTL.
func (r *Result) Expiration() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.expiration
}

// touchExpirationLocked refreshes the expiration. Must be called with the
// write lock held.
func (r *Result) touchExpirationLocked() {
	r.expiration = time.Now().Add(ResultTTL)
}
