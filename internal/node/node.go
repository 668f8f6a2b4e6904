package node

import (
	"fmt"
	"maps"
	"sync"

	"github.com/specialistvlad/robogrid/internal/value"
)

// Status is the outcome of one node execution in a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Node is one instance of a node type inside a graph.
//
// Parameters are edited at design time. Inputs and outputs hold the values seen
// during the most recent execution and are written by the engine only.
type Node struct {
	id       string
	spec     *Spec
	behavior Behavior

	mu      sync.RWMutex
	params  value.Record
	inputs  Values
	outputs Values
}

// New creates a node with default parameters and empty inputs and outputs.
func New(id string, spec Spec, behavior Behavior) *Node {
	s := spec
	s.Params = spec.Params.Clone()
	return &Node{
		id:       id,
		spec:     &s,
		behavior: behavior,
		params:   spec.Params.Clone(),
		inputs:   Values{},
		outputs:  Values{},
	}
}

// ID returns the node id.
func (n *Node) ID() string { return n.id }

// Type returns the registry key of the node type.
func (n *Node) Type() string { return n.spec.Type }

// Kind returns the node kind.
func (n *Node) Kind() Kind { return n.spec.Kind }

// Spec returns the static description of the node type.
func (n *Node) Spec() *Spec { return n.spec }

// Behavior returns the node's execution and code fragment implementation.
func (n *Node) Behavior() Behavior { return n.behavior }

// IsControl reports whether the node is an if or while_loop.
func (n *Node) IsControl() bool { return n.spec.IsControl() }

// Param returns one parameter value, or Null for undeclared names.
func (n *Node) Param(name string) value.Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.params.Get(name)
}

// Params returns a copy of all parameters.
func (n *Node) Params() value.Record {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.params.Clone()
}

// SetParam updates a declared parameter.
func (n *Node) SetParam(name string, v value.Value) error {
	if _, ok := n.spec.Params[name]; !ok {
		return fmt.Errorf("node '%s' (%s) has no parameter '%s'", n.id, n.spec.Type, name)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.params[name] = v
	return nil
}

// Inputs returns a copy of the inputs of the most recent execution.
func (n *Node) Inputs() Values {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.inputs)
}

// Outputs returns a copy of the outputs of the most recent execution.
func (n *Node) Outputs() Values {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.outputs)
}

// Record stores the inputs and outputs of an execution for display.
func (n *Node) Record(inputs, outputs Values) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs = maps.Clone(inputs)
	n.outputs = maps.Clone(outputs)
}

// Reset clears recorded inputs and outputs.
func (n *Node) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs = Values{}
	n.outputs = Values{}
}
