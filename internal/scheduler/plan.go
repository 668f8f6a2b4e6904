package scheduler

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/robogrid/internal/graph"
	"github.com/specialistvlad/robogrid/internal/node"
)

type regionKey struct {
	control string
	port    string
}

// Plan is the execution plan of one graph snapshot.
type Plan struct {
	snap    *graph.Snapshot
	root    *Region
	order   []string
	owner   map[string]*Region
	regions map[regionKey]*Region
}

// arrival is the region a connection delivers its value into.
type arrival struct {
	region *Region
	// exit is set when the connection leaves a loop through its done port.
	exit string
}

// Build validates snap and computes its plan. Errors are *graph.ValidationError
// values.
func Build(snap *graph.Snapshot) (*Plan, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	p := &Plan{
		snap:    snap,
		root:    &Region{},
		owner:   make(map[string]*Region, len(snap.Nodes())),
		regions: make(map[regionKey]*Region),
	}

	var dataEdges []edge
	for _, c := range snap.Connections() {
		if !snap.IsBackEdge(c) {
			dataEdges = append(dataEdges, edge{c.From, c.To})
		}
	}
	initial, stuck := topoSort(snap, dataEdges)
	if len(stuck) > 0 {
		return nil, &graph.ValidationError{Err: graph.ErrStructuralCycle, Nodes: stuck}
	}

	for _, id := range initial {
		p.assignOwner(id)
	}
	if err := p.checkBackEdges(); err != nil {
		return nil, err
	}

	edges := append(dataEdges, p.hoistingEdges()...)
	order, stuck := topoSort(snap, edges)
	if len(stuck) > 0 {
		return nil, &graph.ValidationError{
			Err:    graph.ErrStructuralCycle,
			Nodes:  stuck,
			Detail: "a region consumes a value that is only produced after the region completes",
		}
	}
	p.order = order

	for _, id := range order {
		r := p.owner[id]
		r.Steps = append(r.Steps, id)
	}
	return p, nil
}

// Check reports whether snap can be planned. It is a graph.Planner.
func Check(snap *graph.Snapshot) error {
	_, err := Build(snap)
	return err
}

func (p *Plan) assignOwner(id string) {
	n, _ := p.snap.Node(id)

	var arrivals []arrival
	for _, c := range p.snap.Incoming(id) {
		if p.snap.IsBackEdge(c) {
			continue
		}
		arrivals = append(arrivals, p.arrivalOf(c))
	}

	owner := p.root
	if len(arrivals) > 0 {
		owner = settle(arrivals)
		for changed := true; changed; {
			changed = false
			for _, a := range arrivals {
				if a.exit == "" {
					continue
				}
				if body := p.regions[regionKey{a.exit, node.PortBody}]; body.Contains(owner) {
					owner = body.Parent
					changed = true
				}
			}
		}
	}
	p.owner[id] = owner

	if !n.IsControl() {
		return
	}
	for _, port := range ControlPorts(n.Type()) {
		p.regions[regionKey{id, port}] = &Region{Control: id, Port: port, Parent: owner, Depth: owner.Depth + 1}
	}
}

func (p *Plan) arrivalOf(c graph.Connection) arrival {
	src, _ := p.snap.Node(c.From)
	if src.IsControl() {
		if r, ok := p.regions[regionKey{c.From, c.FromPort}]; ok {
			return arrival{region: r}
		}
		if src.Type() == node.TypeWhileLoop && c.FromPort == node.PortDone {
			return arrival{region: p.owner[c.From], exit: c.From}
		}
	}
	return arrival{region: p.owner[c.From]}
}

// settle picks the deepest arrival when they form a chain and their lowest
// common ancestor otherwise.
func settle(arrivals []arrival) *Region {
	deepest := arrivals[0].region
	for _, a := range arrivals[1:] {
		if a.region.Depth > deepest.Depth {
			deepest = a.region
		}
	}
	chain := true
	for _, a := range arrivals {
		if !a.region.Contains(deepest) {
			chain = false
			break
		}
	}
	if chain {
		return deepest
	}
	common := arrivals[0].region
	for _, a := range arrivals[1:] {
		common = lca(common, a.region)
	}
	return common
}

// checkBackEdges rejects back-edges whose source ended up outside the body of
// the loop it feeds.
func (p *Plan) checkBackEdges() error {
	for _, c := range p.snap.Connections() {
		if !p.snap.IsBackEdge(c) {
			continue
		}
		body := p.regions[regionKey{c.To, node.PortBody}]
		if !body.Contains(p.owner[c.From]) {
			conn := c
			return &graph.ValidationError{
				Err:        graph.ErrStructuralCycle,
				Connection: &conn,
				Detail:     fmt.Sprintf("'%s' feeds back into '%s' but does not belong to its body", c.From, c.To),
			}
		}
	}
	return nil
}

// hoistingEdges orders the producer of every value entering a region from an
// enclosing region before the control node opening that region.
func (p *Plan) hoistingEdges() []edge {
	var out []edge
	for _, c := range p.snap.Connections() {
		if p.snap.IsBackEdge(c) {
			continue
		}
		from := p.arrivalOf(c).region
		to := p.owner[c.To]
		if from == to || !from.Contains(to) {
			continue
		}
		control := childToward(from, to).Control
		if control != c.From {
			out = append(out, edge{c.From, control})
		}
	}
	return out
}

// Snapshot returns the snapshot the plan was built from.
func (p *Plan) Snapshot() *graph.Snapshot { return p.snap }

// Root returns the root region.
func (p *Plan) Root() *Region { return p.root }

// Order returns every node in global execution order.
func (p *Plan) Order() []string { return p.order }

// Owner returns the region owning id.
func (p *Plan) Owner(id string) *Region { return p.owner[id] }

// Region returns the region opened by port of a control node, or nil.
func (p *Plan) Region(control, port string) *Region {
	return p.regions[regionKey{control, port}]
}

// Members returns every node owned by r or by a region nested in r, in global
// execution order.
func (p *Plan) Members(r *Region) []string {
	var out []string
	for _, id := range p.order {
		if r.Contains(p.owner[id]) {
			out = append(out, id)
		}
	}
	return out
}

// IsBackEdge reports whether c feeds a loop from inside its body.
func (p *Plan) IsBackEdge(c graph.Connection) bool { return p.snap.IsBackEdge(c) }

// String renders the region tree, one node per line, for diagnostics.
func (p *Plan) String() string {
	var sb strings.Builder
	var walk func(r *Region, depth int)
	walk = func(r *Region, depth int) {
		for _, id := range r.Steps {
			n, _ := p.snap.Node(id)
			fmt.Fprintf(&sb, "%s%s (%s)\n", strings.Repeat("  ", depth), id, n.Type())
			if !n.IsControl() {
				continue
			}
			for _, port := range ControlPorts(n.Type()) {
				fmt.Fprintf(&sb, "%s[%s]\n", strings.Repeat("  ", depth+1), port)
				walk(p.regions[regionKey{id, port}], depth+2)
			}
		}
	}
	walk(p.root, 0)
	return sb.String()
}

// ControlPorts returns the region-opening ports of a control node type.
func ControlPorts(typeID string) []string {
	switch typeID {
	case node.TypeIf:
		return []string{node.PortThen, node.PortElse}
	case node.TypeWhileLoop:
		return []string{node.PortBody}
	}
	return nil
}
