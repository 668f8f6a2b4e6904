package graphfile

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are callable from parameter expressions.
var functions = map[string]function.Function{
	"abs":    stdlib.AbsoluteFunc,
	"ceil":   stdlib.CeilFunc,
	"floor":  stdlib.FloorFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
	"format": stdlib.FormatFunc,
	"lower":  stdlib.LowerFunc,
	"upper":  stdlib.UpperFunc,
	"merge":  stdlib.MergeFunc,
}

type variableBlock struct {
	Name        string         `hcl:"name,label"`
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
	DeclRange   hcl.Range      `hcl:",def_range"`
}

// evalContext resolves every variable block against overrides and returns the
// context parameter expressions are evaluated in. A variable without a
// default must be overridden. Overrides for undeclared variables are rejected.
func evalContext(blocks []*variableBlock, overrides value.Record) (*hcl.EvalContext, error) {
	declared := make(map[string]bool, len(blocks))
	vars := make(map[string]cty.Value, len(blocks))

	for _, b := range blocks {
		if declared[b.Name] {
			return nil, fmt.Errorf("%s: variable '%s' is declared twice", b.DeclRange, b.Name)
		}
		declared[b.Name] = true

		def, diags := b.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("variable '%s' default: %w", b.Name, diags)
		}
		dv, err := value.FromCty(def)
		if err != nil {
			return nil, fmt.Errorf("%s: variable '%s' default: %w", b.DeclRange, b.Name, err)
		}

		v, overridden := overrides[b.Name]
		switch {
		case overridden && !dv.IsNull():
			v = value.Coerce(v, dv.Kind())
		case !overridden && dv.IsNull():
			return nil, fmt.Errorf("%s: variable '%s' has no default and was not set", b.DeclRange, b.Name)
		case !overridden:
			v = dv
		}
		vars[b.Name] = v.ToCty()
	}

	for _, name := range overrides.Keys() {
		if !declared[name] {
			return nil, fmt.Errorf("variable '%s' is not declared in the graph", name)
		}
	}

	obj := cty.EmptyObjectVal
	if len(vars) > 0 {
		obj = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": obj},
		Functions: functions,
	}, nil
}

// checkReferences rejects traversals rooted anywhere but var.
func checkReferences(expr hcl.Expression) error {
	var roots []string
	for _, t := range expr.Variables() {
		if root := t.RootName(); root != "var" && !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
	}
	if len(roots) > 0 {
		return fmt.Errorf("only var.<name> references are allowed, found %v", roots)
	}
	return nil
}
