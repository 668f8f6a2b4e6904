// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// A store is created fresh for each run and never persisted. Each map is a
// sync.Map keyed by node id: the key space is fixed by the graph while values
// change on every node execution.
package inmemorystore
