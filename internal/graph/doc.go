// Package graph holds the editable node graph: node instances plus directed
// port-to-port connections.
//
// # Invariants
//
//   - Node ids are unique within a graph.
//   - Every connection joins an existing output port to an existing input port.
//   - An input port has at most one incoming connection. Output ports fan out
//     freely.
//
// The graph is not required to be acyclic. A connection from inside the body
// of a while_loop back into the loop node itself is a back-edge and is
// excluded from cycle detection; any other cycle is a StructuralCycle.
//
// # Snapshots
//
// Editing methods are safe for concurrent use. Consumers that need a stable
// view (the scheduler, the engine, the code generator) take a Snapshot, which
// is immutable and shares the live *node.Node pointers so that execution
// results stay visible to the editor.
//
// # Error Taxonomy
//
// Structural problems are reported as *ValidationError values wrapping one of
// ErrDanglingConnection, ErrPortNotFound, ErrStructuralCycle or
// ErrPortAlreadyBound, so callers can branch with errors.Is.
package graph
