package control

import (
	"context"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/value"
)

// IfSpec describes the if node type.
func IfSpec() node.Spec {
	return node.Spec{
		Type:        node.TypeIf,
		Kind:        node.KindControl,
		DisplayName: "If",
		Description: "Conditional branch",
		Inputs:      []node.PortSpec{{Name: node.PortCondition, Kind: value.KindBool}},
		Outputs: []node.PortSpec{
			{Name: node.PortThen, Kind: value.KindBool},
			{Name: node.PortElse, Kind: value.KindBool},
		},
	}
}

// NewIf creates an if node.
func NewIf(id string) *node.Node {
	return node.New(id, IfSpec(), If{})
}

// If produces exactly one of its then and else outputs.
type If struct{}

func (If) Execute(_ context.Context, in node.Values, _ node.RunContext) (node.Values, error) {
	if in[node.PortCondition].AsBool() {
		return node.Values{node.PortThen: value.Bool(true)}, nil
	}
	return node.Values{node.PortElse: value.Bool(true)}, nil
}

// Code returns the branch header. The generator emits the branches.
func (If) Code(value.Record) string {
	return `if {{in "condition"}}:`
}
