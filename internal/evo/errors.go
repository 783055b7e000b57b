package evo

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroSizedChunk reports a step or chunk that would hold no samples.
	ErrZeroSizedChunk = errors.New("zero sized chunk")
	// ErrMutation is matched by every MutationError.
	ErrMutation = errors.New("mutation failed")
	// ErrRandomSearch is reserved for scorers that can fail; the base random
	// search never returns it.
	ErrRandomSearch = errors.New("random search failed")
	ErrNoEmitter    = errors.New("exactly one of inspector or sender is required")
)

// MutationError wraps the mutator's own error with the sample index whose
// mutation failed.
type MutationError struct {
	Index int
	Err   error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation failed at sample %d: %v", e.Index, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func (e *MutationError) Is(target error) bool { return target == ErrMutation }
