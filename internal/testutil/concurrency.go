package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/value"
)

// SleeperType is the type id registered by MockSleeperModule.
const SleeperType = "sleeper"

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// Its nodes sleep, record their execution time and report their id on the
// completion channel.
type MockSleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(completionChan chan<- string, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Register registers the "sleeper" node type.
func (m *MockSleeperModule) Register(r *registry.Registry) error {
	spec := node.Spec{
		Type:    SleeperType,
		Kind:    node.KindLogic,
		Inputs:  []node.PortSpec{{Name: "in", Kind: value.KindAny}},
		Outputs: []node.PortSpec{{Name: "out", Kind: value.KindBool}},
	}
	behavior := FuncBehavior{Fn: func(ctx context.Context, _ node.Values, rc node.RunContext) (node.Values, error) {
		startTime := time.Now()
		select {
		case <-time.After(m.sleepDuration):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		endTime := time.Now()

		m.mu.Lock()
		m.ExecutionTimes[rc.NodeID()] = &ExecutionRecord{Start: startTime, End: endTime}
		m.mu.Unlock()

		if m.completionChan != nil {
			m.completionChan <- rc.NodeID()
		}
		return node.Values{"out": value.Bool(true)}, nil
	}}
	return r.Register(SleeperType, func(id string) *node.Node {
		return node.New(id, spec, behavior)
	})
}

// Executed reports whether the node with the given id finished sleeping.
func (m *MockSleeperModule) Executed(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ExecutionTimes[id]
	return ok
}
