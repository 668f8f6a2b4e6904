package registry

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/nodeid"
)

var (
	// ErrDuplicateType is returned when a type id is registered twice.
	ErrDuplicateType = errors.New("duplicate node type")
	// ErrUnknownType is returned when creating an unregistered type.
	ErrUnknownType = errors.New("unknown node type")
	// ErrSealed is returned when registering after the registry was sealed.
	ErrSealed = errors.New("registry is sealed")
)

// Scope filters type listings.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeBuiltin
	ScopeExtension
)

// ParseScope parses "all", "builtin" or "extension".
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "all":
		return ScopeAll, nil
	case "builtin":
		return ScopeBuiltin, nil
	case "extension":
		return ScopeExtension, nil
	}
	return ScopeAll, fmt.Errorf("invalid scope %q: must be 'all', 'builtin' or 'extension'", s)
}

func (s Scope) String() string {
	switch s {
	case ScopeBuiltin:
		return "builtin"
	case ScopeExtension:
		return "extension"
	}
	return "all"
}

// Constructor builds a fresh node instance with the given id.
type Constructor func(id string) *node.Node

// Module is the interface that all built-in node modules implement.
type Module interface {
	Register(r *Registry) error
}

type entry struct {
	scope  Scope
	ctor   Constructor
	spec   node.Spec
	origin string
}

// Registry holds the node constructors of one application instance.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	sealed  bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a built-in constructor under typeID. The constructor is
// invoked once to capture the type's spec, which must report the same type id.
func (r *Registry) Register(typeID string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(typeID, ctor, ScopeBuiltin, "builtin")
}

// RegisterExtension adds a constructor under typeID in the extension scope.
func (r *Registry) RegisterExtension(typeID string, ctor Constructor, origin string) error {
	if origin == "" {
		origin = "extension"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(typeID, ctor, ScopeExtension, origin)
}

func (r *Registry) registerLocked(typeID string, ctor Constructor, scope Scope, origin string) error {
	if typeID == "" {
		return fmt.Errorf("node type id cannot be empty")
	}
	if existing, ok := r.entries[typeID]; ok {
		return fmt.Errorf("%w: '%s' is already registered by %s", ErrDuplicateType, typeID, existing.origin)
	}
	if r.sealed {
		return fmt.Errorf("%w: cannot register '%s'", ErrSealed, typeID)
	}
	if ctor == nil {
		return fmt.Errorf("node type '%s' has a nil constructor", typeID)
	}

	probe := ctor("probe")
	if probe == nil {
		return fmt.Errorf("constructor for '%s' returned nil", typeID)
	}
	if probe.Type() != typeID {
		return fmt.Errorf("constructor for '%s' builds nodes of type '%s'", typeID, probe.Type())
	}
	if !probe.Kind().Valid() {
		return fmt.Errorf("node type '%s' declares invalid kind '%s'", typeID, probe.Kind())
	}

	r.entries[typeID] = &entry{scope: scope, ctor: ctor, spec: *probe.Spec(), origin: origin}
	r.order = append(r.order, typeID)
	return nil
}

// Create builds a fresh node of typeID identified by nodeID.
func (r *Registry) Create(typeID, nodeID string) (*node.Node, error) {
	r.mu.RLock()
	e, ok := r.entries[typeID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownType, typeID)
	}
	if err := nodeid.Validate(nodeID); err != nil {
		return nil, fmt.Errorf("cannot create node of type '%s': %w", typeID, err)
	}
	return e.ctor(nodeID), nil
}

// Lookup returns the spec of a registered type.
func (r *Registry) Lookup(typeID string) (node.Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeID]
	if !ok {
		return node.Spec{}, false
	}
	return e.spec, true
}

// ScopeOf reports which scope a registered type belongs to.
func (r *Registry) ScopeOf(typeID string) (Scope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeID]
	if !ok {
		return ScopeAll, false
	}
	return e.scope, true
}

// ListTypes yields registered type ids in registration order, optionally
// filtered to one scope. The sequence reflects the table at the time of the
// call.
func (r *Registry) ListTypes(scope Scope) iter.Seq[string] {
	r.mu.RLock()
	ids := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if scope == ScopeAll || r.entries[id].scope == scope {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
