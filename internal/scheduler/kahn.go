package scheduler

import (
	"slices"

	"github.com/specialistvlad/robogrid/internal/graph"
)

type edge struct {
	from string
	to   string
}

// topoSort orders the snapshot's nodes along edges, picking the lowest
// insertion index among ready nodes. On a cycle it returns the partial order
// and the ids that could not be scheduled.
func topoSort(snap *graph.Snapshot, edges []edge) ([]string, []string) {
	nodes := snap.Nodes()
	indegree := make(map[string]int, len(nodes))
	next := make(map[string][]string, len(nodes))
	seen := make(map[edge]bool, len(edges))
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		indegree[e.to]++
		next[e.from] = append(next[e.from], e.to)
	}

	byIndex := func(a, b string) int { return snap.Index(a) - snap.Index(b) }

	var ready []string
	for _, n := range nodes {
		if indegree[n.ID()] == 0 {
			ready = append(ready, n.ID())
		}
	}

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, to := range next[id] {
			indegree[to]--
			if indegree[to] == 0 {
				pos, _ := slices.BinarySearchFunc(ready, to, byIndex)
				ready = slices.Insert(ready, pos, to)
			}
		}
	}

	if len(order) == len(nodes) {
		return order, nil
	}
	var stuck []string
	for _, n := range nodes {
		if indegree[n.ID()] > 0 {
			stuck = append(stuck, n.ID())
		}
	}
	return order, stuck
}
