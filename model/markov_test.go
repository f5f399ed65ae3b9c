package model_test

import (
	"math/rand"
	"testing"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarkovNetwork_Assembly covers potential attachment and the
// membership contract.
func TestMarkovNetwork_Assembly(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 3, 2)
	require.NoError(t, err)
	m := model.NewMarkovNetwork(vars[:2])

	require.NoError(t, m.SetNodePotential(vars[0], []float64{0.4, 0.6}))
	require.NoError(t, m.SetEdgePotential(vars[0], vars[1], []float64{1, 2, 3, 4}))
	assert.Equal(t, 2, m.NumFactors())

	doms := m.Domains()
	require.Len(t, doms, 2)
	assert.True(t, doms[1].Equal(core.NewDomain(vars[0], vars[1])))

	// vars[2] is outside the network.
	f, err := factor.New([]*core.Variable{vars[2]}, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, m.AddFactor(f), model.ErrUnknownName)
}

// TestMarkovNetwork_Condition folds evidence at the model level.
func TestMarkovNetwork_Condition(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 2, 2)
	require.NoError(t, err)
	m := model.NewMarkovNetwork(vars)
	require.NoError(t, m.SetEdgePotential(vars[0], vars[1], []float64{1, 2, 3, 4}))

	cond, err := m.Condition(core.Assignment{vars[1]: 1})
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{vars[0]}, cond.Vars())
	fs := cond.Factors()
	require.Len(t, fs, 1)
	assert.Equal(t, []float64{3, 4}, fs[0].Values(), "edge potential restricted at x1=1")
}

// TestGridNetwork pins the 4-neighborhood edge count and the size check.
func TestGridNetwork(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("s", 6, 2)
	require.NoError(t, err)

	_, edges, err := model.GridNetwork(vars, 2, 3)
	require.NoError(t, err)
	assert.Len(t, edges, 7, "2x3 grid has 2*2 horizontal + 3 vertical edges")

	_, _, err = model.GridNetwork(vars, 2, 2)
	assert.ErrorIs(t, err, model.ErrBadModel)
}

// TestRandomIsing checks the fixture shape: one node potential per
// site, one edge potential per grid edge, all cells positive.
func TestRandomIsing(t *testing.T) {
	u := core.NewUniverse()
	rng := rand.New(rand.NewSource(11))

	m, err := model.RandomIsing(u, 3, 3, rng, 0.5)
	require.NoError(t, err)
	assert.Len(t, m.Vars(), 9)
	assert.Equal(t, 9+12, m.NumFactors(), "9 node + 12 edge potentials")
	for _, f := range m.Factors() {
		for _, v := range f.Values() {
			assert.Greater(t, v, 0.0)
		}
	}
}
