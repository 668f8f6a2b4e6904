package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// TypeID is the registry key of the action node.
const TypeID = "action_execution"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the action_execution node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(TypeID, New)
}

// Spec describes the action_execution node type.
func Spec() node.Spec {
	return node.Spec{
		Type:        TypeID,
		Kind:        node.KindAction,
		DisplayName: "Action Execution",
		Description: "Execute robot action (stand, lift leg, walk, etc.)",
		Inputs:      []node.PortSpec{{Name: "in", Kind: value.KindAny}},
		Outputs:     []node.PortSpec{{Name: "out", Kind: value.KindRecord}},
		Params: value.Record{
			"action": value.Text("stand"),
			"args":   value.RecordOf(nil),
		},
	}
}

// New creates an action_execution node.
func New(id string) *node.Node {
	return node.New(id, Spec(), Behavior{})
}

// Behavior dispatches one robot action. The action and its arguments come
// from the node parameters; the input port only sequences the node.
type Behavior struct{}

func (Behavior) Execute(ctx context.Context, in node.Values, rc node.RunContext) (node.Values, error) {
	params := rc.Params()
	action := strings.TrimSpace(params.Get("action").AsText())
	if action == "" {
		return nil, fmt.Errorf("no action configured")
	}
	args := params.Get("args").AsRecord()

	rc.Logger().Debug("Dispatching robot action.", "action", action)
	result, err := rc.Robot().Dispatch(ctx, action, args)
	if err != nil {
		return nil, fmt.Errorf("action '%s' failed: %w", action, err)
	}
	return node.Values{"out": Outcome(action, result)}, nil
}

func (Behavior) Code(params value.Record) string {
	action := script.Literal(value.Text(strings.TrimSpace(params.Get("action").AsText())))
	args := script.Literal(value.RecordOf(params.Get("args").AsRecord()))
	return fmt.Sprintf(`{{out "out"}} = robot.run_action(%s, %s)
{{out "out"}} = {'status': 'success' if _bool({{out "out"}}) else 'failed', 'action': %s, 'result': {{out "out"}}}`,
		action, args, action)
}

// Outcome builds the record an action node emits for a dispatch result.
func Outcome(action string, result value.Value) value.Value {
	status := "failed"
	if result.AsBool() {
		status = "success"
	}
	return value.RecordOf(value.Record{
		"status": value.Text(status),
		"action": value.Text(action),
		"result": result,
	})
}
