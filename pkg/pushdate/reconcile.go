// Package pushdate reconciles externally reported push times with commit
// ancestry.
//
// Hosting services report when a commit was pushed, but the reports are
// partial and sometimes contradict the history: a commit may claim a push
// time later than one of its descendants. A History repairs the reports in
// two propagation passes over the commit graph:
//
//   - Ceiling. Walking from the tips towards the roots, every reported
//     commit is capped by the earliest report among its descendants. A
//     commit whose report was lowered this way is a patched known.
//   - Floor. Walking from the roots towards the tips, every commit is
//     raised to the latest capped report among its ancestors. Commits with
//     no report inherit it; commits with no reported ancestor stay at Min.
//
// The result is total over the graph and never raises for bad data;
// contradictions are returned as anomalies instead.
package pushdate

import (
	"fmt"
	"sort"
	"time"

	"github.com/odvcencio/pushdate/pkg/history"
	"github.com/odvcencio/pushdate/pkg/object"
	"github.com/odvcencio/pushdate/pkg/propagate"
)

// History is a commit graph in ancestry orientation together with its
// creation times, reported push times and the reconciled push times. It is
// immutable; all accessors return copies.
type History struct {
	graph    *history.Graph
	created  map[object.Hash]time.Time
	reported map[object.Hash]time.Time

	completed map[object.Hash]Instant
	ceiling   map[object.Hash]object.Hash // ceiling-pass originators
	floor     map[object.Hash]object.Hash // floor-pass originators
	patched   *history.Graph
}

// New reconciles reported push times over g. Edges of g must point from a
// commit to its parents. created and reported may be partial; entries for
// commits outside g are ignored. New fails only when g is structurally
// invalid, in which case the error matches history.ErrInvariantViolation.
func New(g *history.Graph, created, reported map[object.Hash]time.Time) (*History, error) {
	if g == nil {
		g = &history.Graph{}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("pushdate: invalid history: %w", err)
	}

	h := &History{
		graph:    g,
		created:  history.Restrict(g, created),
		reported: history.Restrict(g, reported),
	}

	ceiling := propagate.AncestorMin(g, h.ceilingLabel, Instant.Before)
	h.ceiling = ceiling.Origins

	flagged := make(map[object.Hash][]object.Hash)
	for v := range h.reported {
		if origin := ceiling.Origins[v]; origin != v {
			flagged[v] = []object.Hash{origin}
		}
	}
	h.patched = history.FromParents(flagged)

	// A reported commit restarts the floor pass from its capped value, which
	// is the report of its ceiling originator.
	floorLabel := func(v object.Hash) Instant {
		if _, ok := h.reported[v]; !ok {
			return Min
		}
		return At(h.reported[ceiling.Origins[v]])
	}
	floor := propagate.AncestorMin(g.Transpose(), floorLabel, Instant.After)
	h.completed = floor.Labels
	h.floor = floor.Origins

	return h, nil
}

func (h *History) ceilingLabel(v object.Hash) Instant {
	if t, ok := h.reported[v]; ok {
		return At(t)
	}
	return Max
}

// Graph returns the underlying commit graph.
func (h *History) Graph() *history.Graph {
	return h.graph
}

// Len returns the number of commits.
func (h *History) Len() int {
	return h.graph.Len()
}

// Completed returns the reconciled push instant of commit c. The boolean is
// false when c is not part of the history.
func (h *History) Completed(c object.Hash) (Instant, bool) {
	i, ok := h.completed[c]
	return i, ok
}

// AllCompleted returns the reconciled push instant of every commit.
func (h *History) AllCompleted() map[object.Hash]Instant {
	out := make(map[object.Hash]Instant, len(h.completed))
	for c, i := range h.completed {
		out[c] = i
	}
	return out
}

// Reported returns the raw reported push time of commit c, if any.
func (h *History) Reported(c object.Hash) (time.Time, bool) {
	t, ok := h.reported[c]
	return t, ok
}

// AllReported returns every reported push time within the history.
func (h *History) AllReported() map[object.Hash]time.Time {
	return copyTimes(h.reported)
}

// Created returns the creation time of commit c, if known.
func (h *History) Created(c object.Hash) (time.Time, bool) {
	t, ok := h.created[c]
	return t, ok
}

// AllCreated returns every known creation time within the history.
func (h *History) AllCreated() map[object.Hash]time.Time {
	return copyTimes(h.created)
}

// Originator returns the commit whose report capped c during the ceiling
// pass. It is c itself unless a descendant reported an earlier push.
func (h *History) Originator(c object.Hash) (object.Hash, bool) {
	o, ok := h.ceiling[c]
	return o, ok
}

// Originators returns the ceiling-pass originator of every commit.
func (h *History) Originators() map[object.Hash]object.Hash {
	return copyHashes(h.ceiling)
}

// Provenance returns the commit whose capped report c's completed instant
// was carried from during the floor pass. For a commit with no reported
// ancestor and no report of its own it is c itself.
func (h *History) Provenance(c object.Hash) (object.Hash, bool) {
	o, ok := h.floor[c]
	return o, ok
}

// PatchedKnowns returns a graph with one edge from every commit whose
// report was lowered in the ceiling pass to the descendant whose earlier
// report lowered it.
func (h *History) PatchedKnowns() *history.Graph {
	return h.patched
}

// Unknown returns the commits with no reported push on themselves or any
// ancestor, sorted.
func (h *History) Unknown() []object.Hash {
	var out []object.Hash
	for _, c := range h.graph.Nodes() {
		if h.completed[c].IsMin() {
			out = append(out, c)
		}
	}
	return out
}

// Latest returns the tip with the latest completed instant. Ties go to the
// smallest hash. The boolean is false when no tip has a known instant.
func (h *History) Latest() (object.Hash, Instant, bool) {
	var (
		best     object.Hash
		bestTime Instant
		found    bool
	)
	for _, tip := range h.graph.Tips() {
		i := h.completed[tip]
		if !i.Known() {
			continue
		}
		if !found || i.After(bestTime) {
			best, bestTime, found = tip, i, true
		}
	}
	return best, bestTime, found
}

func copyTimes(m map[object.Hash]time.Time) map[object.Hash]time.Time {
	out := make(map[object.Hash]time.Time, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyHashes(m map[object.Hash]object.Hash) map[object.Hash]object.Hash {
	out := make(map[object.Hash]object.Hash, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[object.Hash]V) []object.Hash {
	out := make([]object.Hash, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
