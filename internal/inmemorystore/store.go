package inmemorystore

import (
	"context"
	"maps"
	"sync"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/nodestore"
	"github.com/specialistvlad/robogrid/internal/value"
)

// Store is an in-memory implementation of nodestore.Store.
//
// The store maintains three independent sync.Maps:
//   - outputs: node id to node.Values, replaced as a whole on every write
//   - errors: node id to the error of a failed node
//   - states: node id to the node's *scratch state
type Store struct {
	outputs sync.Map
	errors  sync.Map
	states  sync.Map
}

// New creates a new, empty in-memory store.
func New() nodestore.Store {
	return &Store{}
}

// SetOutputs replaces the outputs of a node.
func (s *Store) SetOutputs(ctx context.Context, id string, out node.Values) error {
	s.outputs.Store(id, maps.Clone(out))
	return nil
}

// GetOutput retrieves one produced output port.
func (s *Store) GetOutput(ctx context.Context, id, port string) (value.Value, bool, error) {
	raw, ok := s.outputs.Load(id)
	if !ok {
		return value.Null(), false, nil
	}
	v, ok := raw.(node.Values)[port]
	return v, ok, nil
}

// GetOutputs retrieves every produced output of a node.
func (s *Store) GetOutputs(ctx context.Context, id string) (node.Values, error) {
	raw, ok := s.outputs.Load(id)
	if !ok {
		return node.Values{}, nil
	}
	return maps.Clone(raw.(node.Values)), nil
}

// ClearOutputs drops the outputs of the given nodes.
func (s *Store) ClearOutputs(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		s.outputs.Delete(id)
	}
	return nil
}

// SetError records the failure error of a node.
func (s *Store) SetError(ctx context.Context, id string, nodeErr error) error {
	s.errors.Store(id, nodeErr)
	return nil
}

// GetError retrieves the recorded error of a failed node.
func (s *Store) GetError(ctx context.Context, id string) (error, error) {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// State returns the scratch state of a node, creating it on first use.
func (s *Store) State(id string) node.State {
	st, _ := s.states.LoadOrStore(id, &scratch{})
	return st.(*scratch)
}

// scratch is the node.State of one node.
type scratch struct {
	m sync.Map
}

func (sc *scratch) Load(key string) (value.Value, bool) {
	v, ok := sc.m.Load(key)
	if !ok {
		return value.Null(), false
	}
	return v.(value.Value), true
}

func (sc *scratch) Store(key string, v value.Value) { sc.m.Store(key, v) }

func (sc *scratch) Delete(key string) { sc.m.Delete(key) }
