package history

import "github.com/odvcencio/pushdate/pkg/object"

// Filter returns the subgraph induced by the nodes satisfying keep: exactly
// those nodes, and every edge whose endpoints both survive. Paths through a
// dropped node are lost; no shortcut edges are added in their place.
func (g *Graph) Filter(keep func(object.Hash) bool) *Graph {
	b := newBuilder()
	if g == nil {
		return b.finish()
	}
	for h := range g.nodes {
		if keep(h) {
			b.addNode(h)
		}
	}
	for from := range b.nodes {
		for _, to := range g.succ[from] {
			if _, ok := b.nodes[to]; ok {
				b.addEdge(from, to)
			}
		}
	}
	return b.finish()
}

// Restrict returns the entries of m whose keys are nodes of g.
func Restrict[V any](g *Graph, m map[object.Hash]V) map[object.Hash]V {
	out := make(map[object.Hash]V, len(m))
	for h, v := range m {
		if g.Has(h) {
			out[h] = v
		}
	}
	return out
}

// Only returns a predicate that keeps exactly the given hashes.
func Only(hashes ...object.Hash) func(object.Hash) bool {
	set := make(map[object.Hash]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return func(h object.Hash) bool {
		_, ok := set[h]
		return ok
	}
}

// Without returns a predicate that drops exactly the given hashes.
func Without(hashes ...object.Hash) func(object.Hash) bool {
	only := Only(hashes...)
	return func(h object.Hash) bool { return !only(h) }
}
