// internal/nodeid/doc.go

/*
Package nodeid centralizes the rules for node identifiers and port references.

A node id is a single segment made of ASCII letters, digits and underscores,
not starting with a digit and never containing a double underscore, e.g.
`sense`, `turn_left_2`. Ids double as identifiers in generated scripts, where
`__` separates the node from the port, so the restriction keeps generated
variable names collision free.

A port reference addresses one port of one node in the canonical form
`node.port`, e.g. `sense.triggered`.
*/
package nodeid
