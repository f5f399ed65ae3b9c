package inference_test

import (
	"math/rand"
	"testing"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/Matt3164/sill/inference"
	"github.com/Matt3164/sill/juntree"
	"github.com/Matt3164/sill/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Calibration engines are cross-checked against brute force (one big
// product) and against each other within calTol.
const calTol = 1e-10

// chainModel builds a 4-variable binary chain with asymmetric pairwise
// potentials and returns its variables, factors, and populated tree.
func chainModel(t *testing.T) ([]*core.Variable, []*factor.TableFactor, *juntree.Tree) {
	t.Helper()
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 4, 2)
	require.NoError(t, err)

	mk := func(a, b *core.Variable, vals []float64) *factor.TableFactor {
		f, err := factor.FromValues([]*core.Variable{a, b}, vals)
		require.NoError(t, err)
		return f
	}
	factors := []*factor.TableFactor{
		mk(vars[0], vars[1], []float64{0.9, 0.1, 0.3, 0.7}),
		mk(vars[1], vars[2], []float64{0.5, 0.5, 0.8, 0.2}),
		mk(vars[2], vars[3], []float64{0.2, 0.8, 0.6, 0.4}),
	}
	domains := make([]core.Domain, len(factors))
	for i, f := range factors {
		domains[i] = f.Args()
	}
	tr, err := juntree.Build(domains, juntree.MinDegree{})
	require.NoError(t, err)
	require.NoError(t, tr.Populate(factors))

	return vars, factors, tr
}

// bruteMarginal multiplies every factor and marginalizes, normalized.
func bruteMarginal(t *testing.T, factors []*factor.TableFactor, d core.Domain) *factor.TableFactor {
	t.Helper()
	joint := factor.Constant(1)
	for _, f := range factors {
		require.NoError(t, joint.CombineIn(f, factor.OpProduct))
	}
	m, err := joint.Marginal(d)
	require.NoError(t, err)
	require.NoError(t, m.Normalize())
	return m
}

// TestVariableElimination_AgainstBruteForce checks VE on every single
// variable and one pair, under both strategies.
func TestVariableElimination_AgainstBruteForce(t *testing.T) {
	vars, factors, _ := chainModel(t)

	for _, s := range []juntree.EliminationStrategy{juntree.MinDegree{}, juntree.MinFill{}} {
		for _, v := range vars {
			d := core.NewDomain(v)
			got, err := inference.VariableElimination(factors, d, s)
			require.NoError(t, err)
			require.NoError(t, got.Normalize())
			assert.True(t, got.AllClose(bruteMarginal(t, factors, d), calTol),
				"marginal of %v", v)
		}
		d := core.NewDomain(vars[0], vars[3])
		got, err := inference.VariableElimination(factors, d, s)
		require.NoError(t, err)
		require.NoError(t, got.Normalize())
		assert.True(t, got.AllClose(bruteMarginal(t, factors, d), calTol))
	}
}

// TestShaferShenoy_Chain calibrates the chain and checks every clique
// belief against brute force.
func TestShaferShenoy_Chain(t *testing.T) {
	_, factors, tr := chainModel(t)
	eng, err := inference.NewShaferShenoy(tr)
	require.NoError(t, err)
	require.NoError(t, eng.Calibrate())
	require.NoError(t, eng.Normalize())

	beliefs, err := eng.CliqueBeliefs()
	require.NoError(t, err)
	for id, b := range beliefs {
		d, err := tr.Clique(id)
		require.NoError(t, err)
		assert.True(t, b.AllClose(bruteMarginal(t, factors, d), calTol),
			"clique %d belief", id)
	}
}

// TestHugin_Chain does the same through the absorption engine.
func TestHugin_Chain(t *testing.T) {
	_, factors, tr := chainModel(t)
	eng, err := inference.NewHugin(tr)
	require.NoError(t, err)
	require.NoError(t, eng.Calibrate())
	require.NoError(t, eng.Normalize())

	beliefs, err := eng.CliqueBeliefs()
	require.NoError(t, err)
	for id, b := range beliefs {
		d, err := tr.Clique(id)
		require.NoError(t, err)
		assert.True(t, b.AllClose(bruteMarginal(t, factors, d), calTol),
			"clique %d belief", id)
	}
}

// TestEngines_AgreeOnRandomIsing cross-checks the two engines and VE on
// a 3x3 random Ising grid.
func TestEngines_AgreeOnRandomIsing(t *testing.T) {
	u := core.NewUniverse()
	rng := rand.New(rand.NewSource(42))
	m, err := model.RandomIsing(u, 3, 3, rng, 1.0)
	require.NoError(t, err)

	tr, err := juntree.Build(m.Domains(), juntree.MinFill{})
	require.NoError(t, err)
	require.NoError(t, tr.Populate(m.Factors()))

	ss, err := inference.NewShaferShenoy(tr)
	require.NoError(t, err)
	require.NoError(t, ss.Calibrate())
	require.NoError(t, ss.Normalize())

	hg, err := inference.NewHugin(tr)
	require.NoError(t, err)
	require.NoError(t, hg.Calibrate())
	require.NoError(t, hg.Normalize())

	for _, v := range m.Vars() {
		d := core.NewDomain(v)
		bs, err := ss.Belief(d)
		require.NoError(t, err)
		bh, err := hg.Belief(d)
		require.NoError(t, err)
		assert.True(t, bs.AllClose(bh, calTol), "engines disagree on %v", v)

		ve, err := inference.VariableElimination(m.Factors(), d, juntree.MinFill{})
		require.NoError(t, err)
		require.NoError(t, ve.Normalize())
		assert.True(t, bs.AllClose(ve, calTol), "engine vs elimination on %v", v)
	}

	zs, err := ss.PartitionFunction()
	require.NoError(t, err)
	zh, err := hg.PartitionFunction()
	require.NoError(t, err)
	assert.InDelta(t, zs, zh, calTol*zs, "partition functions agree")
}

// TestSeparatorConsistency pins the calibration property: a separator
// belief equals either endpoint belief marginalized onto it.
func TestSeparatorConsistency(t *testing.T) {
	_, _, tr := chainModel(t)
	eng, err := inference.NewShaferShenoy(tr)
	require.NoError(t, err)
	require.NoError(t, eng.Calibrate())

	ids := tr.Cliques()
	for i, a := range ids {
		nbrs, err := tr.Neighbors(a)
		require.NoError(t, err)
		for _, b := range nbrs {
			if b < a {
				continue
			}
			sep, err := tr.Separator(a, b)
			require.NoError(t, err)
			sb, err := eng.SeparatorBelief(a, b)
			require.NoError(t, err)

			for _, end := range []juntree.CliqueID{a, b} {
				cb, err := eng.CliqueBelief(end)
				require.NoError(t, err)
				proj, err := cb.Marginal(sep)
				require.NoError(t, err)
				assert.True(t, sb.AllClose(proj, calTol),
					"separator %d-%d vs clique %d (pair %d)", a, b, end, i)
			}
		}
	}
}

// TestCondition_Recalibrate applies evidence through the tree and
// checks posteriors after recalibration.
func TestCondition_Recalibrate(t *testing.T) {
	vars, factors, tr := chainModel(t)
	eng, err := inference.NewShaferShenoy(tr)
	require.NoError(t, err)
	require.NoError(t, eng.Calibrate())

	require.NoError(t, tr.Condition(core.Assignment{vars[3]: 1}))

	// The engine notices the change and refuses stale beliefs.
	_, err = eng.CliqueBelief(tr.Cliques()[0])
	assert.ErrorIs(t, err, inference.ErrNotCalibrated)

	require.NoError(t, eng.Calibrate())
	require.NoError(t, eng.Normalize())

	// Ground truth: restrict the model factors the same way.
	restricted := make([]*factor.TableFactor, len(factors))
	for i, f := range factors {
		r, err := f.Restrict(core.Assignment{vars[3]: 1})
		require.NoError(t, err)
		restricted[i] = r
	}
	d := core.NewDomain(vars[0])
	got, err := eng.Belief(d)
	require.NoError(t, err)
	assert.True(t, got.AllClose(bruteMarginal(t, restricted, d), calTol),
		"posterior after evidence")
}

// TestBelief_Fallback queries a domain no clique covers.
func TestBelief_Fallback(t *testing.T) {
	vars, factors, tr := chainModel(t)
	eng, err := inference.NewHugin(tr)
	require.NoError(t, err)
	require.NoError(t, eng.Calibrate())
	require.NoError(t, eng.Normalize())

	// The chain's cliques are pairwise; {x0, x3} spans the tree.
	d := core.NewDomain(vars[0], vars[3])
	got, err := eng.Belief(d)
	require.NoError(t, err)
	assert.True(t, got.AllClose(bruteMarginal(t, factors, d), calTol))

	// A variable outside the tree is refused.
	u2 := core.NewUniverse()
	z, _ := u2.NewVariable("z", 2)
	_, err = eng.Belief(core.NewDomain(z))
	assert.ErrorIs(t, err, inference.ErrNoCoveringClique)
}

// TestEngine_LifecycleErrors covers the unpopulated and uncalibrated
// contracts.
func TestEngine_LifecycleErrors(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("x", 2, 2)
	require.NoError(t, err)
	tr, err := juntree.Build([]core.Domain{core.NewDomain(vars[0], vars[1])}, juntree.MinDegree{})
	require.NoError(t, err)

	_, err = inference.NewShaferShenoy(tr)
	assert.ErrorIs(t, err, juntree.ErrNotPopulated)
	_, err = inference.NewHugin(nil)
	assert.ErrorIs(t, err, inference.ErrNilTree)

	require.NoError(t, tr.Populate(nil))
	eng, err := inference.NewShaferShenoy(tr)
	require.NoError(t, err)
	_, err = eng.Belief(core.NewDomain(vars[0]))
	assert.ErrorIs(t, err, inference.ErrNotCalibrated)
}

// TestNormalize_ContradictoryEvidence drives the partition function to
// zero and checks the error.
func TestNormalize_ContradictoryEvidence(t *testing.T) {
	u := core.NewUniverse()
	x, err := u.NewVariable("x", 2)
	require.NoError(t, err)
	// Two potentials with disjoint support: the product is all zero.
	f1, _ := factor.FromValues([]*core.Variable{x}, []float64{1, 0})
	f2, _ := factor.FromValues([]*core.Variable{x}, []float64{0, 1})

	tr, err := juntree.Build([]core.Domain{core.NewDomain(x)}, juntree.MinDegree{})
	require.NoError(t, err)
	require.NoError(t, tr.Populate([]*factor.TableFactor{f1, f2}))

	eng, err := inference.NewHugin(tr)
	require.NoError(t, err)
	require.NoError(t, eng.Calibrate())
	assert.ErrorIs(t, eng.Normalize(), factor.ErrNonNormalizable)
}
