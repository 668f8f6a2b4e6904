// Package control provides the two control node types, if and while_loop.
//
// Control nodes only decide: the if node reports which branch to take and
// the loop node reports, before every pass, whether to enter its body again.
// Running the regions they open is left to the engine and the code generator.
package control

import (
	"github.com/specialistvlad/robogrid/internal/node"
	"github.com/specialistvlad/robogrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the if and while_loop node types.
func (m *Module) Register(r *registry.Registry) error {
	if err := r.Register(node.TypeIf, NewIf); err != nil {
		return err
	}
	return r.Register(node.TypeWhileLoop, NewWhileLoop)
}
