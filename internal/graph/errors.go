package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDanglingConnection = errors.New("dangling connection")
	ErrPortNotFound       = errors.New("port not found")
	ErrStructuralCycle    = errors.New("structural cycle")
	ErrPortAlreadyBound   = errors.New("port already bound")

	ErrDuplicateNode      = errors.New("duplicate node id")
	ErrNodeNotFound       = errors.New("node not found")
	ErrConnectionNotFound = errors.New("connection not found")
)

// ValidationError describes one structural problem of a graph.
type ValidationError struct {
	// Err is one of the structural sentinel errors.
	Err error
	// Connection is the offending connection, if any.
	Connection *Connection
	// Nodes lists the nodes involved, e.g. the members of a cycle.
	Nodes  []string
	Detail string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if e.Connection != nil {
		fmt.Fprintf(&sb, " %s", e.Connection)
	}
	if len(e.Nodes) > 0 {
		fmt.Fprintf(&sb, " involving %s", strings.Join(e.Nodes, ", "))
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }
