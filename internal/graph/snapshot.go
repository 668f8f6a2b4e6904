package graph

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/robogrid/internal/node"
)

// Snapshot is an immutable view of a graph's structure.
type Snapshot struct {
	nodes     []*node.Node
	index     map[string]int
	conns     []Connection
	inbound   map[portKey]Connection
	incoming  map[string][]Connection
	outgoing  map[string][]Connection
	backEdges map[Connection]bool
}

// NewSnapshot builds a snapshot from nodes in insertion order and connections
// in creation order. Connections with unknown endpoints are kept so that
// Validate can report them.
func NewSnapshot(nodes []*node.Node, conns []Connection) *Snapshot {
	s := &Snapshot{
		nodes:     slices.Clone(nodes),
		index:     make(map[string]int, len(nodes)),
		conns:     slices.Clone(conns),
		inbound:   make(map[portKey]Connection, len(conns)),
		incoming:  make(map[string][]Connection),
		outgoing:  make(map[string][]Connection),
		backEdges: make(map[Connection]bool),
	}
	for i, n := range s.nodes {
		s.index[n.ID()] = i
	}
	for _, c := range s.conns {
		if _, ok := s.inbound[portKey{c.To, c.ToPort}]; !ok {
			s.inbound[portKey{c.To, c.ToPort}] = c
		}
		s.incoming[c.To] = append(s.incoming[c.To], c)
		s.outgoing[c.From] = append(s.outgoing[c.From], c)
	}
	s.findBackEdges()
	return s
}

// Nodes returns the nodes in insertion order.
func (s *Snapshot) Nodes() []*node.Node { return s.nodes }

// Node looks up a node by id.
func (s *Snapshot) Node(id string) (*node.Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.nodes[i], true
}

// Index returns the insertion position of id, or -1.
func (s *Snapshot) Index(id string) int {
	i, ok := s.index[id]
	if !ok {
		return -1
	}
	return i
}

// Connections returns all connections in creation order.
func (s *Snapshot) Connections() []Connection { return s.conns }

// Inbound returns the connection feeding an input port.
func (s *Snapshot) Inbound(id, port string) (Connection, bool) {
	c, ok := s.inbound[portKey{id, port}]
	return c, ok
}

// Incoming returns every connection into id.
func (s *Snapshot) Incoming(id string) []Connection { return s.incoming[id] }

// Outgoing returns every connection out of id.
func (s *Snapshot) Outgoing(id string) []Connection { return s.outgoing[id] }

// OutgoingFrom returns the connections leaving one output port of id.
func (s *Snapshot) OutgoingFrom(id, port string) []Connection {
	var out []Connection
	for _, c := range s.outgoing[id] {
		if c.FromPort == port {
			out = append(out, c)
		}
	}
	return out
}

// IsBackEdge reports whether c feeds a while_loop from inside its own body.
func (s *Snapshot) IsBackEdge(c Connection) bool { return s.backEdges[c] }

// Reachable returns the nodes reachable from the destinations of conns
// without entering stop.
func (s *Snapshot) Reachable(conns []Connection, stop string) map[string]bool {
	seen := make(map[string]bool)
	queue := make([]string, 0, len(conns))
	for _, c := range conns {
		if c.To != stop && !seen[c.To] {
			seen[c.To] = true
			queue = append(queue, c.To)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range s.outgoing[id] {
			if c.To == stop || seen[c.To] {
				continue
			}
			seen[c.To] = true
			queue = append(queue, c.To)
		}
	}
	return seen
}

func (s *Snapshot) findBackEdges() {
	for _, n := range s.nodes {
		if n.Type() != node.TypeWhileLoop || !n.IsControl() {
			continue
		}
		body := s.Reachable(s.OutgoingFrom(n.ID(), node.PortBody), n.ID())
		for _, c := range s.incoming[n.ID()] {
			if body[c.From] {
				s.backEdges[c] = true
			}
		}
	}
}

// Validate checks endpoints, the fan-in invariant and the absence of
// structural cycles. It returns nil or a *ValidationError.
func (s *Snapshot) Validate() error {
	nodes := make(map[string]*node.Node, len(s.nodes))
	for _, n := range s.nodes {
		nodes[n.ID()] = n
	}

	bound := make(map[portKey]Connection, len(s.conns))
	for _, c := range s.conns {
		if err := checkEndpoints(nodes, c); err != nil {
			return err
		}
		key := portKey{c.To, c.ToPort}
		if existing, ok := bound[key]; ok {
			return &ValidationError{Err: ErrPortAlreadyBound, Connection: &c, Detail: fmt.Sprintf("already fed by %s.%s", existing.From, existing.FromPort)}
		}
		bound[key] = c
	}

	return s.detectCycles()
}

// detectCycles runs a depth-first search over the connections that are not
// back-edges, tracking permanently visited nodes and the current path.
func (s *Snapshot) detectCycles() error {
	permanent := make(map[string]bool, len(s.nodes))
	onPath := make(map[string]int, len(s.nodes))
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if start, ok := onPath[id]; ok {
			cycle := slices.Clone(path[start:])
			return &ValidationError{Err: ErrStructuralCycle, Nodes: cycle, Detail: "only loop bodies may feed back into their while_loop"}
		}

		onPath[id] = len(path)
		path = append(path, id)
		for _, c := range s.outgoing[id] {
			if s.backEdges[c] {
				continue
			}
			if err := visit(c.To); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(onPath, id)
		permanent[id] = true
		return nil
	}

	for _, n := range s.nodes {
		if err := visit(n.ID()); err != nil {
			return err
		}
	}
	return nil
}
