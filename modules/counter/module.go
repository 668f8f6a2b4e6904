package counter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// TypeID is the registry key of the counter node.
const TypeID = "counter"

const stateKey = "count"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the counter node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(TypeID, New)
}

// Spec describes the counter node type.
func Spec() node.Spec {
	return node.Spec{
		Type:        TypeID,
		Kind:        node.KindLogic,
		DisplayName: "Counter",
		Description: "Count executions within a run",
		Inputs: []node.PortSpec{
			{Name: "in", Kind: value.KindAny},
			{Name: "reset", Kind: value.KindBool},
		},
		Outputs: []node.PortSpec{{Name: "count", Kind: value.KindNumber}},
		Params: value.Record{
			"start": value.Number(0),
			"step":  value.Number(1),
		},
		Stateful: true,
	}
}

// New creates a counter node.
func New(id string) *node.Node {
	return node.New(id, Spec(), Behavior{})
}

// Behavior keeps its count in the run context, so every run starts over.
type Behavior struct{}

func (Behavior) Execute(_ context.Context, in node.Values, rc node.RunContext) (node.Values, error) {
	params := rc.Params()
	state := rc.State()
	if in["reset"].AsBool() {
		state.Delete(stateKey)
	}

	prev, ok := state.Load(stateKey)
	if !ok {
		prev = params.Get("start")
	}
	count := value.Number(prev.AsNumber() + params.Get("step").AsNumber())
	state.Store(stateKey, count)
	return node.Values{"count": count}, nil
}

func (Behavior) Code(params value.Record) string {
	start := script.Number(params.Get("start").AsNumber())
	step := script.Number(params.Get("step").AsNumber())
	return fmt.Sprintf(`if {{in "reset"}}:
    {{state "count"}} = None
{{state "count"}} = _coalesce({{state "count"}}, %s) + %s
{{out "count"}} = {{state "count"}}`, start, step)
}
