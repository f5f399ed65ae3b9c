package juntree_test

import (
	"testing"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/juntree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInteractionGraph_Adjacency checks the induced adjacency and the
// fill bookkeeping on a 4-cycle.
func TestInteractionGraph_Adjacency(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 4, 2)
	require.NoError(t, err)
	a, b, c, d := vars[0], vars[1], vars[2], vars[3]

	// Cycle a-b-c-d-a.
	domains := []core.Domain{
		core.NewDomain(a, b),
		core.NewDomain(b, c),
		core.NewDomain(c, d),
		core.NewDomain(d, a),
	}
	g := juntree.NewInteractionGraph(domains)

	assert.Equal(t, 4, g.NumVars())
	assert.Equal(t, 2, g.Degree(a))
	assert.True(t, g.Neighbors(a).Equal(core.NewDomain(b, d)))
	assert.Equal(t, 1, g.FillCount(a), "eliminating a corner of the cycle adds one chord")

	clique := g.Eliminate(a)
	assert.True(t, clique.Equal(core.NewDomain(a, b, d)))
	assert.Equal(t, 3, g.NumVars())
	assert.True(t, g.Neighbors(b).Contains(d), "fill edge b-d materialized")
	assert.Equal(t, 0, g.FillCount(b), "triangle left behind needs no fill")
}

// TestEliminationStrategies checks determinism and the min-degree /
// min-fill choices on a star-plus-clique graph.
func TestEliminationStrategies(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 4, 2)
	require.NoError(t, err)
	hub, l1, l2, l3 := vars[0], vars[1], vars[2], vars[3]

	// Star: hub adjacent to three leaves.
	domains := []core.Domain{
		core.NewDomain(hub, l1),
		core.NewDomain(hub, l2),
		core.NewDomain(hub, l3),
	}

	g := juntree.NewInteractionGraph(domains)
	first := juntree.MinDegree{}.NextVariable(g, g.Vars())
	assert.Same(t, l1, first, "lowest-ID leaf wins the degree tie")

	g = juntree.NewInteractionGraph(domains)
	first = juntree.MinFill{}.NextVariable(g, g.Vars())
	assert.Same(t, l1, first, "leaves need no fill; the hub would need three chords")

	// Candidate masking: with the leaves off the table, the hub is the
	// only legal pick.
	g = juntree.NewInteractionGraph(domains)
	first = juntree.MinDegree{}.NextVariable(g, []*core.Variable{hub})
	assert.Same(t, hub, first)
}

// TestEliminationOrder consumes the graph completely and yields one
// clique per variable.
func TestEliminationOrder(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 3, 2)
	require.NoError(t, err)

	domains := []core.Domain{
		core.NewDomain(vars[0], vars[1]),
		core.NewDomain(vars[1], vars[2]),
	}
	g := juntree.NewInteractionGraph(domains)
	order, cliques := juntree.EliminationOrder(g, juntree.MinDegree{})

	assert.Len(t, order, 3)
	assert.Len(t, cliques, 3)
	assert.Equal(t, 0, g.NumVars(), "elimination consumes the graph")
	// x0 goes first (degree 1, lowest ID); its clique is {x0, x1}.
	assert.Same(t, vars[0], order[0])
	assert.True(t, cliques[0].Equal(core.NewDomain(vars[0], vars[1])))
}
