package lineage

import "fmt"

// BuildError represents a structural error detected during graph
// construction. A build error aborts the entire computation; no partial
// graph is ever exposed.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// FlowFileID identifies the flowfile whose production was claimed by
	// more than one event.
	FlowFileID string
}

// BuildErrorCode categorizes structural graph errors.
type BuildErrorCode string

const (
	// ErrCodeDuplicateProduction indicates two fan-out events (FORK, JOIN,
	// REPLAY, FETCH, CLONE) both claim to have produced the same flowfile.
	ErrCodeDuplicateProduction BuildErrorCode = "DUPLICATE_PRODUCTION"

	// ErrCodeCycleDetected indicates a CREATE or RECEIVE event claims a
	// flowfile that was already produced. A flowfile is born at most once,
	// so a second birth means the graph loops back on itself.
	ErrCodeCycleDetected BuildErrorCode = "CYCLE_DETECTED"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	switch e.Code {
	case ErrCodeCycleDetected:
		return fmt.Sprintf("found cycle in graph: multiple events were registered claiming to have generated the same flowfile (UUID = %s)", e.FlowFileID)
	default:
		return fmt.Sprintf("unable to generate lineage graph because multiple events were registered claiming to have generated the same flowfile (UUID = %s)", e.FlowFileID)
	}
}
