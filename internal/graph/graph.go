package graph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/nodeid"
)

// Factory creates node instances. *registry.Registry satisfies it.
type Factory interface {
	Create(typeID, nodeID string) (*node.Node, error)
}

// Connection binds an output port of one node to an input port of another.
type Connection struct {
	From     string
	FromPort string
	To       string
	ToPort   string
}

// Connect is shorthand for building a Connection.
func Connect(from, fromPort, to, toPort string) Connection {
	return Connection{From: from, FromPort: fromPort, To: to, ToPort: toPort}
}

func (c Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", c.From, c.FromPort, c.To, c.ToPort)
}

type portKey struct {
	node string
	port string
}

// Graph is the editable node graph of one editing session.
type Graph struct {
	mu      sync.RWMutex
	factory Factory
	planner Planner
	ids     *nodeid.Generator
	nodes   map[string]*node.Node
	order   []string
	conns   []Connection
	inbound map[portKey]Connection
}

// Planner runs the checks that need an execution plan, on top of the
// structural ones. scheduler.Check satisfies it.
type Planner func(*Snapshot) error

// Option customises a new graph.
type Option func(*Graph)

// WithPlanner makes Validate reject every graph p cannot plan, so a graph
// that validates is one the engine and the generator accept.
func WithPlanner(p Planner) Option {
	return func(g *Graph) { g.planner = p }
}

// New creates an empty graph that builds nodes through factory. factory may be
// nil when nodes are only added with AddNode.
func New(factory Factory, opts ...Option) *Graph {
	g := &Graph{
		factory: factory,
		ids:     nodeid.NewGenerator(),
		nodes:   make(map[string]*node.Node),
		inbound: make(map[portKey]Connection),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Create builds a node of typeID with a generated id and adds it.
func (g *Graph) Create(typeID string) (*node.Node, error) {
	if g.factory == nil {
		return nil, fmt.Errorf("graph has no node factory")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids.Next(typeID, func(id string) bool {
		_, taken := g.nodes[id]
		return taken
	})
	n, err := g.factory.Create(typeID, id)
	if err != nil {
		return nil, err
	}
	g.addLocked(n)
	return n, nil
}

// CreateWithID builds a node of typeID with the given id and adds it.
func (g *Graph) CreateWithID(typeID, id string) (*node.Node, error) {
	if g.factory == nil {
		return nil, fmt.Errorf("graph has no node factory")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; ok {
		return nil, fmt.Errorf("%w: '%s'", ErrDuplicateNode, id)
	}
	n, err := g.factory.Create(typeID, id)
	if err != nil {
		return nil, err
	}
	g.addLocked(n)
	return n, nil
}

// AddNode adds an existing node instance.
func (g *Graph) AddNode(n *node.Node) error {
	if err := nodeid.Validate(n.ID()); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[n.ID()]; ok {
		return fmt.Errorf("%w: '%s'", ErrDuplicateNode, n.ID())
	}
	g.addLocked(n)
	return nil
}

func (g *Graph) addLocked(n *node.Node) {
	g.nodes[n.ID()] = n
	g.order = append(g.order, n.ID())
}

// RemoveNode removes a node together with every connection touching it.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: '%s'", ErrNodeNotFound, id)
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(other string) bool { return other == id })
	g.conns = slices.DeleteFunc(g.conns, func(c Connection) bool {
		if c.From == id || c.To == id {
			delete(g.inbound, portKey{c.To, c.ToPort})
			return true
		}
		return false
	})
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*node.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*node.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// Connect adds a connection. The graph is unchanged when it fails.
func (g *Graph) Connect(c Connection) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := checkEndpoints(g.nodes, c); err != nil {
		return err
	}
	if c.From == c.To {
		return &ValidationError{Err: ErrStructuralCycle, Connection: &c, Detail: "a node cannot feed itself"}
	}
	key := portKey{c.To, c.ToPort}
	if existing, ok := g.inbound[key]; ok {
		return &ValidationError{Err: ErrPortAlreadyBound, Connection: &c, Detail: fmt.Sprintf("already fed by %s.%s", existing.From, existing.FromPort)}
	}
	g.conns = append(g.conns, c)
	g.inbound[key] = c
	return nil
}

// Disconnect removes a connection.
func (g *Graph) Disconnect(c Connection) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := slices.Index(g.conns, c)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, c)
	}
	g.conns = slices.Delete(g.conns, idx, idx+1)
	delete(g.inbound, portKey{c.To, c.ToPort})
	return nil
}

// Connections returns every connection in the order they were made.
func (g *Graph) Connections() []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.conns)
}

// Successors returns the distinct nodes fed by id, in connection order.
func (g *Graph) Successors(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNodeNotFound, id)
	}
	var out []string
	for _, c := range g.conns {
		if c.From == id && !slices.Contains(out, c.To) {
			out = append(out, c.To)
		}
	}
	return out, nil
}

// Predecessors returns the distinct nodes feeding id, in connection order.
func (g *Graph) Predecessors(id string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNodeNotFound, id)
	}
	var out []string
	for _, c := range g.conns {
		if c.To == id && !slices.Contains(out, c.From) {
			out = append(out, c.From)
		}
	}
	return out, nil
}

// Validate checks the structural invariants and, when the graph has a
// planner, that it can be planned. It returns nil or a *ValidationError.
func (g *Graph) Validate() error {
	snap := g.Snapshot()
	if g.planner != nil {
		return g.planner(snap)
	}
	return snap.Validate()
}

// Snapshot returns an immutable view of the current graph.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return NewSnapshot(nodes, g.conns)
}

func checkEndpoints(nodes map[string]*node.Node, c Connection) error {
	src, ok := nodes[c.From]
	if !ok {
		return &ValidationError{Err: ErrDanglingConnection, Connection: &c, Detail: fmt.Sprintf("source node '%s' does not exist", c.From)}
	}
	dst, ok := nodes[c.To]
	if !ok {
		return &ValidationError{Err: ErrDanglingConnection, Connection: &c, Detail: fmt.Sprintf("destination node '%s' does not exist", c.To)}
	}
	if _, ok := src.Spec().Port(node.Out, c.FromPort); !ok {
		return &ValidationError{Err: ErrPortNotFound, Connection: &c, Detail: fmt.Sprintf("'%s' (%s) has no output port '%s'", c.From, src.Type(), c.FromPort)}
	}
	if _, ok := dst.Spec().Port(node.In, c.ToPort); !ok {
		return &ValidationError{Err: ErrPortNotFound, Connection: &c, Detail: fmt.Sprintf("'%s' (%s) has no input port '%s'", c.To, dst.Type(), c.ToPort)}
	}
	return nil
}
