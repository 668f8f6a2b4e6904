package comparison

import (
	"context"
	"fmt"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// TypeID is the registry key of the comparison node.
const TypeID = "comparison"

var operators = map[string]func(a, b float64) bool{
	"==": func(a, b float64) bool { return a == b },
	"!=": func(a, b float64) bool { return a != b },
	">":  func(a, b float64) bool { return a > b },
	"<":  func(a, b float64) bool { return a < b },
	">=": func(a, b float64) bool { return a >= b },
	"<=": func(a, b float64) bool { return a <= b },
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the comparison node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.Register(TypeID, New)
}

// Spec describes the comparison node type.
func Spec() node.Spec {
	return node.Spec{
		Type:        TypeID,
		Kind:        node.KindLogic,
		DisplayName: "Comparison",
		Description: "Compare two values",
		Inputs: []node.PortSpec{
			{Name: "left", Kind: value.KindNumber},
			{Name: "right", Kind: value.KindAny},
		},
		Outputs: []node.PortSpec{{Name: "result", Kind: value.KindBool}},
		Params: value.Record{
			"operator":      value.Text("=="),
			"compare_value": value.Number(0),
		},
	}
}

// New creates a comparison node.
func New(id string) *node.Node {
	return node.New(id, Spec(), Behavior{})
}

// Behavior compares left against right, or against compare_value when right
// was not produced.
type Behavior struct{}

func (Behavior) Execute(_ context.Context, in node.Values, rc node.RunContext) (node.Values, error) {
	params := rc.Params()
	op := params.Get("operator").AsText()
	cmp, ok := operators[op]
	if !ok {
		return nil, fmt.Errorf("unknown operator '%s'", op)
	}

	right := in["right"]
	if right.IsNull() {
		right = params.Get("compare_value")
	}
	return node.Values{"result": value.Bool(cmp(in["left"].AsNumber(), right.AsNumber()))}, nil
}

func (Behavior) Code(params value.Record) string {
	op := params.Get("operator").AsText()
	if _, ok := operators[op]; !ok {
		return fmt.Sprintf("raise ValueError(%s)", script.Literal(value.Text("unknown operator: "+op)))
	}
	fallback := script.Number(params.Get("compare_value").AsNumber())
	return fmt.Sprintf(`{{out "result"}} = {{in "left"}} %s _coalesce({{in "right"}}, %s)`, op, fallback)
}
