package stop

import (
	"context"
	"fmt"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/value"
)

// TypeID is the registry key of the stop node.
const TypeID = "stop"

// Action is the robot action the node dispatches.
const Action = "stop"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the stop node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(TypeID, New)
}

// Spec describes the stop node type.
func Spec() node.Spec {
	return node.Spec{
		Type:        TypeID,
		Kind:        node.KindAction,
		DisplayName: "Stop",
		Description: "Stop robot motion",
		Inputs:      []node.PortSpec{{Name: "in", Kind: value.KindAny}},
		Outputs:     []node.PortSpec{{Name: "out", Kind: value.KindRecord}},
	}
}

// New creates a stop node.
func New(id string) *node.Node {
	return node.New(id, Spec(), Behavior{})
}

// Behavior halts robot motion.
type Behavior struct{}

func (Behavior) Execute(ctx context.Context, _ node.Values, rc node.RunContext) (node.Values, error) {
	result, err := rc.Robot().Dispatch(ctx, Action, nil)
	if err != nil {
		return nil, fmt.Errorf("stop failed: %w", err)
	}
	return node.Values{"out": value.RecordOf(value.Record{
		"status": value.Text("stopped"),
		"result": result,
	})}, nil
}

func (Behavior) Code(value.Record) string {
	return `{{out "out"}} = {'status': 'stopped', 'result': robot.stop()}`
}
