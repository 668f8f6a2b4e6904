package control

import (
	"context"
	"fmt"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
)

// Loop modes.
const (
	LoopWhile = "while"
	LoopFor   = "for"
)

// WhileLoopSpec describes the while_loop node type.
func WhileLoopSpec() node.Spec {
	return node.Spec{
		Type:        node.TypeWhileLoop,
		Kind:        node.KindControl,
		DisplayName: "While Loop",
		Description: "Repeat the body while a condition holds, or over a numeric range",
		Inputs: []node.PortSpec{
			{Name: node.PortCondition, Kind: value.KindBool},
			{Name: "for_start", Kind: value.KindAny},
			{Name: "for_end", Kind: value.KindAny},
			{Name: "for_step", Kind: value.KindAny},
		},
		Outputs: []node.PortSpec{
			{Name: node.PortBody, Kind: value.KindNumber},
			{Name: node.PortDone, Kind: value.KindNumber},
		},
		Params: value.Record{
			"loop_type": value.Text(LoopWhile),
			"for_start": value.Number(0),
			"for_end":   value.Number(1),
			"for_step":  value.Number(1),
		},
	}
}

// NewWhileLoop creates a while_loop node.
func NewWhileLoop(id string) *node.Node {
	return node.New(id, WhileLoopSpec(), WhileLoop{})
}

// WhileLoop decides before every pass whether the body runs again. It emits
// body when it continues and done, carrying the number of completed passes,
// when it exits. rc.Iteration reports the passes completed so far.
type WhileLoop struct{}

func (WhileLoop) Execute(_ context.Context, in node.Values, rc node.RunContext) (node.Values, error) {
	params := rc.Params()
	pass := rc.Iteration()
	if pass < 0 {
		pass = 0
	}

	switch mode := params.Get("loop_type").AsText(); mode {
	case LoopWhile:
		if in[node.PortCondition].AsBool() {
			return node.Values{node.PortBody: value.Int(pass)}, nil
		}
	case LoopFor:
		r := rangeOf(in, params)
		if v := r.at(pass); r.active(v) {
			return node.Values{node.PortBody: value.Number(v)}, nil
		}
	default:
		return nil, fmt.Errorf("unknown loop type '%s'", mode)
	}
	return node.Values{node.PortDone: value.Int(pass)}, nil
}

// Code returns the loop header on its first line, followed by the prologue
// that runs at the top of every pass. {{iter}} counts started passes.
func (WhileLoop) Code(params value.Record) string {
	switch mode := params.Get("loop_type").AsText(); mode {
	case LoopWhile:
		return `while {{in "condition"}}:
{{out "body"}} = {{iter}} - 1`
	case LoopFor:
		start := fmt.Sprintf(`_coalesce({{in "for_start"}}, %s)`, script.Number(params.Get("for_start").AsNumber()))
		end := fmt.Sprintf(`_coalesce({{in "for_end"}}, %s)`, script.Number(params.Get("for_end").AsNumber()))
		step := fmt.Sprintf(`_coalesce({{in "for_step"}}, %s)`, script.Number(params.Get("for_step").AsNumber()))
		return fmt.Sprintf("while _for_active({{iter}}, %s, %s, %s):\n{{out \"body\"}} = %s + ({{iter}} - 1) * %s",
			start, end, step, start, step)
	default:
		return "while True:\nraise ValueError(" + script.Literal(value.Text("unknown loop type: "+mode)) + ")"
	}
}

type forRange struct {
	start, end, step float64
}

// rangeOf reads the range bounds from the for_* inputs, falling back to the
// parameters for inputs that were not produced.
func rangeOf(in node.Values, params value.Record) forRange {
	bound := func(name string) float64 {
		if v := in[name]; !v.IsNull() {
			return v.AsNumber()
		}
		return params.Get(name).AsNumber()
	}
	return forRange{start: bound("for_start"), end: bound("for_end"), step: bound("for_step")}
}

func (r forRange) at(pass int) float64 { return r.start + float64(pass)*r.step }

func (r forRange) active(v float64) bool {
	if r.step > 0 {
		return v < r.end
	}
	return v > r.end
}
