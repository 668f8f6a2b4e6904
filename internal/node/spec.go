package node

import (
	"github.com/specialistvlad/robogrid/internal/value"
)

// Kind is the closed set of node categories. The engine special-cases
// KindControl and treats every other kind alike.
type Kind string

const (
	KindAction  Kind = "action"
	KindLogic   Kind = "logic"
	KindSensor  Kind = "sensor"
	KindControl Kind = "control"
)

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAction, KindLogic, KindSensor, KindControl:
		return true
	}
	return false
}

// Type ids and port names of the two control variants.
const (
	TypeIf        = "if"
	TypeWhileLoop = "while_loop"

	PortCondition = "condition"
	PortThen      = "then"
	PortElse      = "else"
	PortBody      = "body"
	PortDone      = "done"
)

// Direction tells input ports from output ports.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// PortSpec declares one port of a node type.
type PortSpec struct {
	Name string
	Kind value.Kind
}

// Spec is the static description of a node type.
type Spec struct {
	Type        string
	Kind        Kind
	DisplayName string
	Description string
	Inputs      []PortSpec
	Outputs     []PortSpec
	// Params holds the declared parameters with their default values.
	Params value.Record
	// Stateful marks types that keep run-context state between executions.
	Stateful bool
}

// Port looks up a declared port by direction and name.
func (s *Spec) Port(dir Direction, name string) (PortSpec, bool) {
	ports := s.Inputs
	if dir == Out {
		ports = s.Outputs
	}
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

// IsControl reports whether the spec describes one of the control variants.
func (s *Spec) IsControl() bool {
	return s.Kind == KindControl && (s.Type == TypeIf || s.Type == TypeWhileLoop)
}
