package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AcyclicPasses(t *testing.T) {
	assert.NoError(t, diamond().Validate())
	assert.NoError(t, (&Graph{}).Validate())
}

func TestValidate_ReportsCycleWitness(t *testing.T) {
	g := FromParents(map[h][]h{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
		"d": {"a"},
	})

	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	var graphErr *GraphError
	require.True(t, errors.As(err, &graphErr))
	assert.Equal(t, "a -> b -> c -> a", graphErr.Msg)
	assert.Equal(t, "history invariant violation: cycle detected: a -> b -> c -> a", err.Error())
}

func TestValidate_SelfLoop(t *testing.T) {
	g := FromParents(map[h][]h{"a": {"a"}})

	err := g.Validate()
	require.Error(t, err)

	var graphErr *GraphError
	require.True(t, errors.As(err, &graphErr))
	assert.Equal(t, "a -> a", graphErr.Msg)
}

func TestTopoOrder_Deterministic(t *testing.T) {
	g := diamond()

	assert.Equal(t, []h{"d", "b", "c", "a"}, g.TopoOrder())
	assert.Equal(t, []h{"a", "b", "c", "d"}, g.Transpose().TopoOrder())
}

func TestTopoOrder_OmitsCycle(t *testing.T) {
	g := FromParents(map[h][]h{
		"x": {"a"},
		"a": {"b"},
		"b": {"a"},
	})

	assert.Equal(t, []h{"x"}, g.TopoOrder())
}

func TestGenerations(t *testing.T) {
	g := FromParents(map[h][]h{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
		"m": {"c", "a"},
	})

	assert.Equal(t, map[h]uint64{"a": 1, "b": 2, "c": 3, "m": 4}, g.Generations())
}

func TestGenerations_SkipsCycles(t *testing.T) {
	g := FromParents(map[h][]h{
		"r": nil,
		"x": {"r", "y"},
		"y": {"x"},
	})

	assert.Equal(t, map[h]uint64{"r": 1}, g.Generations())
}
