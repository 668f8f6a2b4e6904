// Package nodestore defines the interface for storing and retrieving the
// mutable per-run state of nodes during graph execution.
//
// The store keeps execution state (produced outputs, node scratch state and
// errors) apart from the graph structure, which is immutable for the duration
// of a run. A store is created once per run, mutated by the engine as nodes
// execute and discarded when the run ends.
//
// Outputs are keyed by node and port. A port with no entry has not been
// produced in the current pass; clearing a node's outputs makes all its ports
// unproduced again, which is how branch and loop regions reset.
package nodestore

import (
	"context"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/value"
)

// Store is the interface for managing the per-run state of nodes.
//
// Implementations must be safe for concurrent use: the engine writes while
// observers such as result consumers may read.
type Store interface {
	// SetOutputs replaces every output of a node. Ports missing from out
	// become unproduced.
	SetOutputs(ctx context.Context, id string, out node.Values) error

	// GetOutput returns one produced output port. ok is false when the port
	// was not produced.
	GetOutput(ctx context.Context, id, port string) (v value.Value, ok bool, err error)

	// GetOutputs returns a copy of every produced output of a node.
	GetOutputs(ctx context.Context, id string) (node.Values, error)

	// ClearOutputs marks every output of the given nodes unproduced.
	ClearOutputs(ctx context.Context, ids ...string) error

	// SetError records the failure error of a node.
	SetError(ctx context.Context, id string, nodeErr error) error

	// GetError retrieves the recorded error of a failed node. It returns nil
	// if the node succeeded or has not executed.
	GetError(ctx context.Context, id string) (error, error)

	// State returns the run-scoped scratch space of a node.
	State(id string) node.State
}
