package extension

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/script"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/specialistvlad/robogrid/modules/action"
	"github.com/specialistvlad/robogrid/modules/sensor"
)

// parseCode parses a manifest code template. Code-generator directives render
// back to themselves so the generator can bind them later.
func parseCode(typeID, src string) (*template.Template, error) {
	passthrough := func(name string) func(string) string {
		return func(arg string) string { return fmt.Sprintf("{{%s %q}}", name, arg) }
	}
	funcs := template.FuncMap{
		"param": func(string) string { return "" },
		"in":    passthrough("in"),
		"out":   passthrough("out"),
		"state": passthrough("state"),
		"iter":  func() string { return "{{iter}}" },
	}
	tmpl, err := template.New(typeID).Funcs(funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("code: %w", err)
	}
	return tmpl, nil
}

func (d *Definition) constructor() func(id string) *node.Node {
	return func(id string) *node.Node {
		var b node.Behavior
		if d.Spec.Kind == node.KindSensor {
			b = &sensorBehavior{def: d}
		} else {
			b = &actionBehavior{def: d}
		}
		return node.New(id, d.Spec, b)
	}
}

func (d *Definition) renderCode(params value.Record, fallback string) string {
	if d.Code == nil {
		return fallback
	}
	tmpl, err := d.Code.Clone()
	if err != nil {
		return fallback
	}
	tmpl.Funcs(template.FuncMap{
		"param": func(name string) string { return script.Literal(params.Get(name)) },
	})
	var sb strings.Builder
	if err := tmpl.Execute(&sb, nil); err != nil {
		return fmt.Sprintf("raise RuntimeError(%s)", script.String(err.Error()))
	}
	return sb.String()
}

type actionBehavior struct {
	def *Definition
}

func (b *actionBehavior) Execute(ctx context.Context, _ node.Values, rc node.RunContext) (node.Values, error) {
	result, err := rc.Robot().Dispatch(ctx, b.def.Target, rc.Params())
	if err != nil {
		return nil, fmt.Errorf("action '%s': %w", b.def.Target, err)
	}
	return node.Values{"out": action.Outcome(b.def.Target, result)}, nil
}

func (b *actionBehavior) Code(params value.Record) string {
	fallback := action.Behavior{}.Code(value.Record{
		"action": value.Text(b.def.Target),
		"args":   value.RecordOf(params),
	})
	return b.def.renderCode(params, fallback)
}

type sensorBehavior struct {
	def *Definition
}

func (b *sensorBehavior) Execute(_ context.Context, _ node.Values, rc node.RunContext) (node.Values, error) {
	return sensor.Read(rc.Robot().ReadSensors(), b.def.Target, rc.Params().Get("threshold").AsNumber()), nil
}

func (b *sensorBehavior) Code(params value.Record) string {
	return b.def.renderCode(params, sensor.ReadCode(b.def.Target, params.Get("threshold").AsNumber()))
}
