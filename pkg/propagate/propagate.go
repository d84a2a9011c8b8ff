// Package propagate implements single-pass label propagation over a DAG.
package propagate

import (
	"github.com/odvcencio/pushdate/pkg/history"
	"github.com/odvcencio/pushdate/pkg/object"
)

// Result holds the outcome of a propagation pass.
type Result[L any] struct {
	// Labels maps every node to the least label among itself and the nodes
	// that reach it.
	Labels map[object.Hash]L
	// Origins maps every node to the node whose initial label it carries.
	// Origins[Origins[v]] == Origins[v] for every v.
	Origins map[object.Hash]object.Hash
	// Visited counts the nodes taken off the work queue.
	Visited int
}

// Complete reports whether every node was visited. It is false only when
// the graph has a cycle.
func (r Result[L]) Complete() bool {
	return r.Visited == len(r.Labels)
}

// AncestorMin labels every node of g with the least label, per less, found
// among the node itself and all nodes that reach it by following edges, and
// records which node that label came from.
//
// The sweep is Kahn's algorithm with a FIFO queue seeded by the sources in
// sorted order. A node's label is replaced only when a predecessor's label is
// strictly less, so among equal candidates the first one reached wins. Each
// node and edge is handled once.
//
// On a cyclic graph, nodes on or behind a cycle are never dequeued: they keep
// whatever they received from dequeued predecessors and pass nothing on.
func AncestorMin[L any](g *history.Graph, initial func(object.Hash) L, less func(a, b L) bool) Result[L] {
	nodes := g.Nodes()
	res := Result[L]{
		Labels:  make(map[object.Hash]L, len(nodes)),
		Origins: make(map[object.Hash]object.Hash, len(nodes)),
	}
	if len(nodes) == 0 {
		return res
	}

	remaining := make(map[object.Hash]int, len(nodes))
	queue := make([]object.Hash, 0, len(nodes))
	for _, n := range nodes {
		res.Labels[n] = initial(n)
		remaining[n] = g.InDegree(n)
		if remaining[n] == 0 {
			res.Origins[n] = n
			queue = append(queue, n)
		}
	}

	for head := 0; head < len(queue); head++ {
		u := queue[head]
		res.Visited++
		g.EachSuccessor(u, func(v object.Hash) {
			if less(res.Labels[u], res.Labels[v]) {
				res.Labels[v] = res.Labels[u]
				res.Origins[v] = res.Origins[u]
			}
			remaining[v]--
			if remaining[v] == 0 {
				queue = append(queue, v)
				if _, ok := res.Origins[v]; !ok {
					res.Origins[v] = v
				}
			}
		})
	}

	for _, n := range nodes {
		if _, ok := res.Origins[n]; !ok {
			res.Origins[n] = n
		}
	}
	return res
}
