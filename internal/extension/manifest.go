package extension

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/nodeid"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// manifestFile is the root of one manifest file.
type manifestFile struct {
	NodeTypes []*nodeTypeBlock `hcl:"node_type,block"`
}

type nodeTypeBlock struct {
	ID          string    `hcl:"id,label"`
	Kind        string    `hcl:"kind"`
	DisplayName string    `hcl:"display_name,optional"`
	Description string    `hcl:"description,optional"`
	Action      string    `hcl:"action,optional"`
	Sensor      string    `hcl:"sensor,optional"`
	Params      cty.Value `hcl:"params,optional"`
	Code        string    `hcl:"code,optional"`
	DeclRange   hcl.Range `hcl:",def_range"`
}

// Definition is a decoded node_type block.
type Definition struct {
	Spec node.Spec
	// Target is the dispatched action or the read sensor key.
	Target string
	// Code is the optional fragment template.
	Code   *template.Template
	Origin string
}

// ParseFile decodes every node_type block of the manifest at path. Any error
// rejects the whole file.
func ParseFile(parser *hclparse.Parser, path string) ([]*Definition, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	var root manifestFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}

	defs := make([]*Definition, 0, len(root.NodeTypes))
	for _, block := range root.NodeTypes {
		def, err := translate(block)
		if err != nil {
			return nil, fmt.Errorf("%s: node_type '%s': %w", block.DeclRange, block.ID, err)
		}
		def.Origin = path
		defs = append(defs, def)
	}
	return defs, nil
}

func translate(b *nodeTypeBlock) (*Definition, error) {
	if err := nodeid.Validate(b.ID); err != nil {
		return nil, err
	}

	params := value.Record{}
	if !b.Params.IsNull() {
		v, err := value.FromCty(b.Params)
		if err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		if v.Kind() != value.KindRecord {
			return nil, fmt.Errorf("params must be an object, got %s", v.Kind())
		}
		params = v.AsRecord()
	}

	spec := node.Spec{
		Type:        b.ID,
		Kind:        node.Kind(b.Kind),
		DisplayName: b.DisplayName,
		Description: b.Description,
		Params:      params,
	}
	if spec.DisplayName == "" {
		spec.DisplayName = b.ID
	}

	def := &Definition{Spec: spec}
	switch spec.Kind {
	case node.KindAction:
		if strings.TrimSpace(b.Action) == "" {
			return nil, fmt.Errorf("an action node type needs an 'action' attribute")
		}
		def.Target = strings.TrimSpace(b.Action)
		def.Spec.Inputs = []node.PortSpec{{Name: "in", Kind: value.KindAny}}
		def.Spec.Outputs = []node.PortSpec{{Name: "out", Kind: value.KindRecord}}
	case node.KindSensor:
		if strings.TrimSpace(b.Sensor) == "" {
			return nil, fmt.Errorf("a sensor node type needs a 'sensor' attribute")
		}
		def.Target = strings.TrimSpace(b.Sensor)
		def.Spec.Inputs = []node.PortSpec{{Name: "in", Kind: value.KindAny}}
		def.Spec.Outputs = []node.PortSpec{
			{Name: "out", Kind: value.KindAny},
			{Name: "value", Kind: value.KindNumber},
			{Name: "triggered", Kind: value.KindBool},
		}
		if _, ok := params["threshold"]; !ok {
			def.Spec.Params["threshold"] = value.Number(0)
		}
	default:
		return nil, fmt.Errorf("unsupported kind '%s': manifests declare 'action' or 'sensor' node types", b.Kind)
	}

	if b.Code != "" {
		tmpl, err := parseCode(b.ID, b.Code)
		if err != nil {
			return nil, err
		}
		def.Code = tmpl
	}
	return def, nil
}
