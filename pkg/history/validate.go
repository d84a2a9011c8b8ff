package history

import "github.com/odvcencio/pushdate/pkg/object"

// Validate proves g is acyclic using Kahn's algorithm. When a cycle exists
// it returns a *GraphError of kind ErrCycle carrying one deterministic
// witness path.
func (g *Graph) Validate() error {
	if len(g.TopoOrder()) == g.Len() {
		return nil
	}
	return cycleError(g.findCycle())
}

// TopoOrder returns nodes in a deterministic topological order: every node
// precedes its successors, and among ready nodes the smallest hash goes
// first. Nodes on or behind a cycle are omitted.
func (g *Graph) TopoOrder() []object.Hash {
	if g.Len() == 0 {
		return nil
	}
	indeg := make(map[object.Hash]int, len(g.nodes))
	for h := range g.nodes {
		indeg[h] = len(g.pred[h])
	}

	ready := &hashMinHeap{}
	for _, h := range g.Sources() {
		ready.push(h)
	}

	out := make([]object.Hash, 0, len(g.nodes))
	for ready.Len() > 0 {
		n := ready.pop()
		out = append(out, n)
		for _, m := range g.succ[n] {
			indeg[m]--
			if indeg[m] == 0 {
				ready.push(m)
			}
		}
	}
	return out
}

// findCycle runs a DFS over sorted nodes and returns the first back-edge
// cycle it meets, closed on its starting node.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[object.Hash]int, len(g.nodes))
	parent := make(map[object.Hash]object.Hash, len(g.nodes))
	var cycle []object.Hash

	var dfs func(u object.Hash) bool
	dfs = func(u object.Hash) bool {
		color[u] = gray
		for _, v := range g.succ[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back-edge u -> v closes v ... u -> v.
				path := []object.Hash{u}
				for cur := u; cur != v; {
					cur = parent[cur]
					path = append(path, cur)
				}
				for i := len(path) - 1; i >= 0; i-- {
					cycle = append(cycle, path[i])
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, h := range g.Nodes() {
		if color[h] != white {
			continue
		}
		if dfs(h) {
			break
		}
	}

	out := make([]string, len(cycle))
	for i, h := range cycle {
		out[i] = string(h)
	}
	return out
}
