package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopBudgetExceeded is matched by *LoopBudgetError.
	ErrLoopBudgetExceeded = errors.New("loop budget exceeded")
	// ErrNodeRunBudgetExceeded fails a run that executed too many nodes.
	ErrNodeRunBudgetExceeded = errors.New("node run budget exceeded")
	// ErrAborted is the error of an aborted run.
	ErrAborted = errors.New("run aborted")
	// ErrInvalidDecision is returned when a control node produces none or
	// both of its region-selecting outputs.
	ErrInvalidDecision = errors.New("control node must produce exactly one decision")
	// ErrPanic wraps a recovered panic of a node behavior.
	ErrPanic = errors.New("node panicked")
)

// NodeError is the failure of one node execution.
type NodeError struct {
	NodeID string
	Type   string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s' (%s) failed: %v", e.NodeID, e.Type, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// LoopBudgetError reports a loop that asked for more passes than allowed.
type LoopBudgetError struct {
	NodeID string
	Budget int
}

func (e *LoopBudgetError) Error() string {
	return fmt.Sprintf("%s: loop '%s' did not finish within %d iterations", ErrLoopBudgetExceeded, e.NodeID, e.Budget)
}

// Is reports ErrLoopBudgetExceeded as a match.
func (e *LoopBudgetError) Is(target error) bool { return target == ErrLoopBudgetExceeded }
