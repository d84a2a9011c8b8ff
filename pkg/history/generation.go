package history

import "github.com/odvcencio/pushdate/pkg/object"

// Generations returns the generation number of every commit, assuming
// ancestry orientation: a root has generation 1 and any other commit has
// one more than its highest-generation parent. Commits on or behind a cycle
// have no generation and are omitted.
func (g *Graph) Generations() map[object.Hash]uint64 {
	out := make(map[object.Hash]uint64, g.Len())
	if g.Len() == 0 {
		return out
	}

	// Walk the transpose in topological order so every parent is settled
	// before its children.
	pending := make(map[object.Hash]int, len(g.nodes))
	queue := make([]object.Hash, 0)
	for _, h := range g.Nodes() {
		pending[h] = len(g.succ[h])
		if pending[h] == 0 {
			out[h] = 1
			queue = append(queue, h)
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, child := range g.pred[u] {
			if gen := out[u] + 1; gen > out[child] {
				out[child] = gen
			}
			pending[child]--
			if pending[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for h := range out {
		if pending[h] != 0 {
			delete(out, h)
		}
	}
	return out
}
