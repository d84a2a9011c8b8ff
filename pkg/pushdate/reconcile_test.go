package pushdate

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/pushdate/pkg/history"
	"github.com/odvcencio/pushdate/pkg/object"
)

type h = object.Hash

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// at returns base shifted by n hours.
func at(n int) time.Time {
	return base.Add(time.Duration(n) * time.Hour)
}

// linear returns a -> b -> c in chronological order (a oldest), stored in
// ancestry orientation.
func linear() *history.Graph {
	return history.FromParents(map[h][]h{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
	})
}

func mustNew(t *testing.T, g *history.Graph, created, reported map[h]time.Time) *History {
	t.Helper()
	hist, err := New(g, created, reported)
	require.NoError(t, err)
	return hist
}

func TestScenario_NothingReported(t *testing.T) {
	hist := mustNew(t, linear(), nil, map[h]time.Time{})

	assert.Equal(t, map[h]Instant{"a": Min, "b": Min, "c": Min}, hist.AllCompleted())
	assert.Equal(t, 0, hist.PatchedKnowns().Len())
	assert.Empty(t, hist.Patched())
	assert.Equal(t, []h{"a", "b", "c"}, hist.Unknown())
}

func TestScenario_RootReportedFillsForward(t *testing.T) {
	hist := mustNew(t, linear(), nil, map[h]time.Time{"a": at(1)})

	want := At(at(1))
	for _, c := range []h{"a", "b", "c"} {
		got, ok := hist.Completed(c)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "%s: got %v, want %v", c, got, want)
	}
	assert.Equal(t, 0, hist.PatchedKnowns().Len())
	assert.Empty(t, hist.Unknown())

	prov, ok := hist.Provenance("c")
	require.True(t, ok)
	assert.Equal(t, h("a"), prov)
}

func TestScenario_DescendantReportsEarlier(t *testing.T) {
	// a is the parent of b, but b claims an earlier push.
	g := history.FromParents(map[h][]h{"a": nil, "b": {"a"}})
	hist := mustNew(t, g, nil, map[h]time.Time{"a": at(5), "b": at(1)})

	origin, ok := hist.Originator("a")
	require.True(t, ok)
	assert.Equal(t, h("b"), origin)

	patched := hist.PatchedKnowns()
	assert.Equal(t, []history.Edge{{From: "a", To: "b"}}, patched.Edges())
	assert.Equal(t, []Patch{{
		Commit:    "a",
		Reported:  at(5),
		Source:    "b",
		Corrected: at(1),
	}}, hist.Patched())

	for _, c := range []h{"a", "b"} {
		got, _ := hist.Completed(c)
		assert.True(t, At(at(1)).Equal(got), "%s completed %v", c, got)
	}

	reported, ok := hist.Reported("a")
	require.True(t, ok)
	assert.Equal(t, at(5), reported, "raw report must pass through untouched")
}

func TestNew_MiddleGapIsFilledFromAncestor(t *testing.T) {
	g := history.FromParents(map[h][]h{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
		"d": {"c"},
	})
	hist := mustNew(t, g, nil, map[h]time.Time{"a": at(1), "c": at(3)})

	completed := hist.AllCompleted()
	assert.True(t, At(at(1)).Equal(completed["b"]))
	assert.True(t, At(at(3)).Equal(completed["d"]))
}

func TestNew_MergeTakesLatestParent(t *testing.T) {
	// m merges two branches b and c from root a.
	g := history.FromParents(map[h][]h{
		"a": nil,
		"b": {"a"},
		"c": {"a"},
		"m": {"b", "c"},
	})
	hist := mustNew(t, g, nil, map[h]time.Time{"b": at(2), "c": at(4)})

	m, _ := hist.Completed("m")
	assert.True(t, At(at(4)).Equal(m))
	a, _ := hist.Completed("a")
	assert.True(t, a.IsMin(), "root has no reported ancestor")
}

func TestNew_ReportsOutsideGraphIgnored(t *testing.T) {
	hist := mustNew(t, linear(),
		map[h]time.Time{"zzz": at(0)},
		map[h]time.Time{"zzz": at(1)},
	)

	_, ok := hist.Reported("zzz")
	assert.False(t, ok)
	_, ok = hist.Created("zzz")
	assert.False(t, ok)
	_, ok = hist.Completed("zzz")
	assert.False(t, ok)
	assert.Empty(t, hist.AllReported())
}

func TestNew_RejectsCycle(t *testing.T) {
	g := history.FromParents(map[h][]h{"a": {"b"}, "b": {"a"}})

	_, err := New(g, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, history.ErrInvariantViolation)
	assert.ErrorIs(t, err, history.ErrCycle)
}

func TestNew_NilGraph(t *testing.T) {
	hist, err := New(nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, hist.Len())
	assert.Empty(t, hist.AllCompleted())
	assert.Empty(t, hist.PushedBeforeCommitted())
	_, _, ok := hist.Latest()
	assert.False(t, ok)
}

func TestNew_InputsAreCopied(t *testing.T) {
	reported := map[h]time.Time{"a": at(1)}
	hist := mustNew(t, linear(), nil, reported)

	reported["a"] = at(9)
	reported["b"] = at(9)

	got, _ := hist.Reported("a")
	assert.Equal(t, at(1), got)
	_, ok := hist.Reported("b")
	assert.False(t, ok)
}

func TestPushedBeforeCommitted(t *testing.T) {
	g := history.FromParents(map[h][]h{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
	})
	created := map[h]time.Time{"a": at(0), "b": at(2), "c": at(3)}
	// b's push predates its own creation; c is unreported and inherits it.
	reported := map[h]time.Time{"a": at(1), "b": at(1)}

	hist := mustNew(t, g, created, reported)

	assert.Equal(t, []h{"b"}, hist.PushedBeforeCommitted())
}

func TestPushedBeforeCommitted_CappedByDescendant(t *testing.T) {
	g := history.FromParents(map[h][]h{"a": nil, "b": {"a"}})
	created := map[h]time.Time{"a": at(2), "b": at(3)}
	// a reported late, b reported before a was even created.
	reported := map[h]time.Time{"a": at(6), "b": at(1)}

	hist := mustNew(t, g, created, reported)

	assert.Equal(t, []h{"a", "b"}, hist.PushedBeforeCommitted())
}

func TestLatest(t *testing.T) {
	g := history.FromParents(map[h][]h{
		"a":  nil,
		"t1": {"a"},
		"t2": {"a"},
		"t3": {"a"},
	})
	hist := mustNew(t, g, nil, map[h]time.Time{"t1": at(2), "t2": at(7), "t3": at(7)})

	tip, when, ok := hist.Latest()
	require.True(t, ok)
	assert.Equal(t, h("t2"), tip)
	assert.True(t, At(at(7)).Equal(when))
}

// randomHistory returns a random ancestry graph over n commits where a
// commit only takes parents with a smaller index, plus random reports.
func randomHistory(rng *rand.Rand, n int) (*history.Graph, map[h]time.Time) {
	parents := make(map[h][]h, n)
	reported := make(map[h]time.Time)
	for i := 0; i < n; i++ {
		id := h(fmt.Sprintf("c%03d", i))
		parents[id] = nil
		for j := 0; j < i; j++ {
			if rng.Float64() < 0.06 {
				parents[id] = append(parents[id], h(fmt.Sprintf("c%03d", j)))
			}
		}
		if rng.Float64() < 0.4 {
			reported[id] = at(rng.Intn(48))
		}
	}
	return history.FromParents(parents), reported
}

func TestProperties_RandomHistories(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		g, reported := randomHistory(rng, 60)
		hist := mustNew(t, g, nil, reported)
		completed := hist.AllCompleted()
		origins := hist.Originators()

		// Totality.
		require.Len(t, completed, g.Len())
		for _, c := range g.Nodes() {
			_, ok := completed[c]
			require.True(t, ok, "round %d: %s missing", round, c)
		}

		// Originator idempotence.
		for c, o := range origins {
			assert.Equal(t, o, origins[o], "round %d: originator of %s", round, c)
		}

		for _, e := range g.Edges() {
			child, parent := e.From, e.To

			// Ceiling: no reported parent ends above a reported descendant.
			if childReport, ok := reported[child]; ok {
				if _, ok := reported[parent]; ok {
					ceiling := reported[origins[parent]]
					assert.False(t, ceiling.After(childReport),
						"round %d: parent %s capped at %v above child %s reported %v",
						round, parent, ceiling, child, childReport)
				}
			}

			// Completed instants never run backwards along ancestry.
			assert.False(t, completed[parent].After(completed[child]),
				"round %d: parent %s (%v) after child %s (%v)",
				round, parent, completed[parent], child, completed[child])
		}

		// Reported commits end at their capped report.
		for c := range reported {
			assert.True(t, At(reported[origins[c]]).Equal(completed[c]), "round %d: %s", round, c)
		}

		// Patched knowns are exactly the reported commits with a foreign originator.
		for c := range reported {
			assert.Equal(t, origins[c] != c, hist.PatchedKnowns().OutDegree(c) == 1, "round %d: %s", round, c)
		}
	}
}

func TestProperties_NothingReportedIsAllMin(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g, _ := randomHistory(rng, 50)

	hist := mustNew(t, g, nil, nil)

	for c, i := range hist.AllCompleted() {
		assert.True(t, i.IsMin(), "%s completed %v", c, i)
	}
}
