package query

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/provtrace/provtrace/internal/lineage"
)

// IDGenerator generates unique submission IDs.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 submission IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, making IDs
// sortable by submission time, which is helpful when listing live
// submissions.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined submission IDs for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal
// mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order and
// panics when exhausted.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Submission is one registered lineage computation.
type Submission struct {
	id          string
	trackedIDs  []string
	submittedAt time.Time
	result      *lineage.Result
}

// ID returns the submission's unique identifier.
func (s *Submission) ID() string { return s.id }

// TrackedIDs returns a copy of the flowfile IDs this computation tracks.
func (s *Submission) TrackedIDs() []string {
	out := make([]string, len(s.trackedIDs))
	copy(out, s.trackedIDs)
	return out
}

// SubmittedAt returns when the computation was submitted.
func (s *Submission) SubmittedAt() time.Time { return s.submittedAt }

// Result returns the progressive result backing this submission.
func (s *Submission) Result() *lineage.Result { return s.result }
