// Package history models a commit history as an immutable directed acyclic
// graph over commit hashes.
//
// The graph itself is orientation-agnostic: Successors and Predecessors are
// plain graph-theoretic queries. Histories built from commit metadata use the
// ancestry orientation, where every edge points from a commit to one of its
// parents. In that orientation Tips are the sources and Roots are the sinks;
// Transpose flips the graph into chronological order.
package history

import (
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/pushdate/pkg/object"
)

// Edge is a directed edge From -> To.
type Edge struct {
	From object.Hash
	To   object.Hash
}

// SuccessorFunc enumerates the direct successors of a node, typically the
// parents of a commit.
type SuccessorFunc func(h object.Hash) ([]object.Hash, error)

// Graph is an immutable directed graph. The zero value is an empty graph.
// Successor and predecessor lists are kept sorted and duplicate-free so every
// traversal over a Graph is deterministic.
type Graph struct {
	nodes map[object.Hash]struct{}
	succ  map[object.Hash][]object.Hash
	pred  map[object.Hash][]object.Hash
}

// Build discovers a graph forward from seeds by calling next on every newly
// found node until no new nodes appear. Each node is expanded exactly once,
// so a cyclic source terminates, but cycles are not rejected here; see
// Validate.
func Build(seeds []object.Hash, next SuccessorFunc) (*Graph, error) {
	b := newBuilder()
	queue := make([]object.Hash, 0, len(seeds))
	for _, s := range seeds {
		s = object.Hash(strings.TrimSpace(string(s)))
		if s == "" {
			continue
		}
		if b.addNode(s) {
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		succ, err := next(h)
		if err != nil {
			return nil, fmt.Errorf("build history: expand %s: %w", h, err)
		}
		for _, s := range succ {
			s = object.Hash(strings.TrimSpace(string(s)))
			if s == "" {
				continue
			}
			if b.addNode(s) {
				queue = append(queue, s)
			}
			b.addEdge(h, s)
		}
	}
	return b.finish(), nil
}

// FromParents builds a graph in ancestry orientation from a commit -> parents
// map. Every key and every listed parent becomes a node.
func FromParents(parents map[object.Hash][]object.Hash) *Graph {
	b := newBuilder()
	for h, ps := range parents {
		b.addNode(h)
		for _, p := range ps {
			if p == "" {
				continue
			}
			b.addNode(p)
			b.addEdge(h, p)
		}
	}
	return b.finish()
}

// New builds a graph from an explicit node set and edge list. Edges whose
// endpoints are not declared nodes are rejected with ErrDanglingEdge.
func New(nodes []object.Hash, edges []Edge) (*Graph, error) {
	b := newBuilder()
	for _, n := range nodes {
		b.addNode(n)
	}
	for _, e := range edges {
		if _, ok := b.nodes[e.From]; !ok {
			return nil, danglingEdgeError(e, e.From)
		}
		if _, ok := b.nodes[e.To]; !ok {
			return nil, danglingEdgeError(e, e.To)
		}
		b.addEdge(e.From, e.To)
	}
	return b.finish(), nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Has reports whether h is a node of g.
func (g *Graph) Has(h object.Hash) bool {
	if g == nil {
		return false
	}
	_, ok := g.nodes[h]
	return ok
}

// HasEdge reports whether g contains the edge from -> to.
func (g *Graph) HasEdge(from, to object.Hash) bool {
	if g == nil {
		return false
	}
	succ := g.succ[from]
	i := sort.Search(len(succ), func(i int) bool { return succ[i] >= to })
	return i < len(succ) && succ[i] == to
}

// Nodes returns all nodes in sorted order.
func (g *Graph) Nodes() []object.Hash {
	if g == nil {
		return nil
	}
	out := make([]object.Hash, 0, len(g.nodes))
	for h := range g.nodes {
		out = append(out, h)
	}
	sortHashes(out)
	return out
}

// Successors returns the direct successors of h, sorted.
func (g *Graph) Successors(h object.Hash) []object.Hash {
	if g == nil {
		return nil
	}
	return cloneHashes(g.succ[h])
}

// Predecessors returns the direct predecessors of h, sorted.
func (g *Graph) Predecessors(h object.Hash) []object.Hash {
	if g == nil {
		return nil
	}
	return cloneHashes(g.pred[h])
}

// InDegree returns the number of direct predecessors of h.
func (g *Graph) InDegree(h object.Hash) int {
	if g == nil {
		return 0
	}
	return len(g.pred[h])
}

// OutDegree returns the number of direct successors of h.
func (g *Graph) OutDegree(h object.Hash) int {
	if g == nil {
		return 0
	}
	return len(g.succ[h])
}

// EachSuccessor calls fn for every direct successor of h in sorted order
// without copying the successor list.
func (g *Graph) EachSuccessor(h object.Hash, fn func(object.Hash)) {
	if g == nil {
		return
	}
	for _, s := range g.succ[h] {
		fn(s)
	}
}

// Sources returns the nodes without predecessors, sorted.
func (g *Graph) Sources() []object.Hash {
	return g.selectNodes(func(h object.Hash) bool { return len(g.pred[h]) == 0 })
}

// Sinks returns the nodes without successors, sorted.
func (g *Graph) Sinks() []object.Hash {
	return g.selectNodes(func(h object.Hash) bool { return len(g.succ[h]) == 0 })
}

// Roots returns the commits without parents. It assumes ancestry
// orientation.
func (g *Graph) Roots() []object.Hash {
	return g.Sinks()
}

// Tips returns the commits no other commit lists as a parent. It assumes
// ancestry orientation.
func (g *Graph) Tips() []object.Hash {
	return g.Sources()
}

// Edges returns every edge sorted by (From, To).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.Nodes() {
		for _, to := range g.succ[from] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Ancestors returns every node reachable from h by following one or more
// edges, sorted. In ancestry orientation these are the commit's ancestors.
func (g *Graph) Ancestors(h object.Hash) []object.Hash {
	if !g.Has(h) {
		return nil
	}
	seen := make(map[object.Hash]struct{})
	stack := cloneHashes(g.succ[h])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, g.succ[n]...)
	}
	out := make([]object.Hash, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sortHashes(out)
	return out
}

// Reaches reports whether to can be reached from from by following one or
// more edges.
func (g *Graph) Reaches(from, to object.Hash) bool {
	if !g.Has(from) || !g.Has(to) {
		return false
	}
	seen := make(map[object.Hash]struct{})
	stack := cloneHashes(g.succ[from])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, g.succ[n]...)
	}
	return false
}

// Transpose returns the graph with every edge reversed.
func (g *Graph) Transpose() *Graph {
	if g == nil {
		return &Graph{}
	}
	return &Graph{nodes: g.nodes, succ: g.pred, pred: g.succ}
}

// Equal reports whether g and other have the same node set and edge set.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	if g.Len() == 0 {
		return true
	}
	for h := range g.nodes {
		if !other.Has(h) {
			return false
		}
		a, b := g.succ[h], other.succ[h]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

func (g *Graph) selectNodes(keep func(object.Hash) bool) []object.Hash {
	if g == nil {
		return nil
	}
	var out []object.Hash
	for h := range g.nodes {
		if keep(h) {
			out = append(out, h)
		}
	}
	sortHashes(out)
	return out
}

// builder accumulates nodes and edges and freezes them into a Graph.
type builder struct {
	nodes map[object.Hash]struct{}
	succ  map[object.Hash]map[object.Hash]struct{}
}

func newBuilder() *builder {
	return &builder{
		nodes: make(map[object.Hash]struct{}),
		succ:  make(map[object.Hash]map[object.Hash]struct{}),
	}
}

// addNode adds h and reports whether it was new.
func (b *builder) addNode(h object.Hash) bool {
	if _, ok := b.nodes[h]; ok {
		return false
	}
	b.nodes[h] = struct{}{}
	return true
}

func (b *builder) addEdge(from, to object.Hash) {
	set, ok := b.succ[from]
	if !ok {
		set = make(map[object.Hash]struct{})
		b.succ[from] = set
	}
	set[to] = struct{}{}
}

func (b *builder) finish() *Graph {
	g := &Graph{
		nodes: b.nodes,
		succ:  make(map[object.Hash][]object.Hash, len(b.succ)),
		pred:  make(map[object.Hash][]object.Hash),
	}
	for from, set := range b.succ {
		list := make([]object.Hash, 0, len(set))
		for to := range set {
			list = append(list, to)
			g.pred[to] = append(g.pred[to], from)
		}
		sortHashes(list)
		g.succ[from] = list
	}
	for to := range g.pred {
		sortHashes(g.pred[to])
	}
	return g
}

func sortHashes(hs []object.Hash) {
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
}

func cloneHashes(hs []object.Hash) []object.Hash {
	if len(hs) == 0 {
		return nil
	}
	out := make([]object.Hash, len(hs))
	copy(out, hs)
	return out
}
