package graphfile

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/nodeid"
	"github.com/specialistvlad/robogrid/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Encode renders g in the graph file format. Only parameters that differ from
// the node type's defaults are written; variables are already resolved.
func Encode(g *graph.Graph) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, n := range g.Nodes() {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("node", []string{n.ID()}).Body()
		block.SetAttributeValue("type", cty.StringVal(n.Type()))

		changed := value.Record{}
		params := n.Params()
		for _, k := range params.Keys() {
			if !value.Equal(params[k], n.Spec().Params.Get(k)) {
				changed[k] = params[k]
			}
		}
		if len(changed) > 0 {
			block.SetAttributeValue("params", value.RecordOf(changed).ToCty())
		}
	}

	for _, c := range g.Connections() {
		body.AppendNewline()
		block := body.AppendNewBlock("connect", nil).Body()
		block.SetAttributeValue("from", cty.StringVal(nodeid.Ref{Node: c.From, Port: c.FromPort}.String()))
		block.SetAttributeValue("to", cty.StringVal(nodeid.Ref{Node: c.To, Port: c.ToPort}.String()))
	}
	return hclwrite.Format(f.Bytes())
}
