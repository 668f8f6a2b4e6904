// Package scheduler turns a graph snapshot into an execution plan: a global
// visiting order plus a tree of control regions. The engine and the code
// generator both walk the same plan, which keeps live execution and generated
// scripts behaviorally equivalent.
//
// # Regions
//
// The ports if.then, if.else and while_loop.body each open a region. Every
// node is owned by exactly one region, computed from the connections that
// arrive at it:
//
//   - a connection from a region-opening port arrives in that region;
//   - a connection from while_loop.done, or from any ordinary node, arrives in
//     the region that owns the source.
//
// When all arrivals lie on one root-to-leaf path of the region tree the node
// joins the deepest of them; a node fed from sibling or unrelated regions is a
// merge point and joins their lowest common ancestor. A node consuming a loop's
// done output is never placed inside that loop's body. Nodes without inputs
// belong to the root region.
//
// # Ordering
//
// The order is a Kahn topological sort over every connection except loop
// back-edges, with ties broken by node insertion order. When a value enters a
// region from an enclosing one, its producer is also ordered before the control
// node that opens the region, so the producer has run by the time the region
// executes.
package scheduler
