package constant

import (
	"context"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// TypeID is the registry key of the constant node.
const TypeID = "constant"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the constant node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(TypeID, New)
}

// Spec describes the constant node type.
func Spec() node.Spec {
	return node.Spec{
		Type:        TypeID,
		Kind:        node.KindLogic,
		DisplayName: "Constant",
		Description: "Emit a fixed value",
		Outputs:     []node.PortSpec{{Name: "value", Kind: value.KindAny}},
		Params:      value.Record{"value": value.Number(0)},
	}
}

// New creates a constant node.
func New(id string) *node.Node {
	return node.New(id, Spec(), Behavior{})
}

// Behavior emits its value parameter.
type Behavior struct{}

func (Behavior) Execute(_ context.Context, _ node.Values, rc node.RunContext) (node.Values, error) {
	return node.Values{"value": rc.Params().Get("value")}, nil
}

func (Behavior) Code(params value.Record) string {
	return `{{out "value"}} = ` + script.Literal(params.Get("value"))
}
