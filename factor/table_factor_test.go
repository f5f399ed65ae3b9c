package factor_test

import (
	"math"
	"testing"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBinary allocates a fresh universe with two binary variables.
func twoBinary(t *testing.T) (*core.Universe, *core.Variable, *core.Variable) {
	t.Helper()
	u := core.NewUniverse()
	x, err := u.NewVariable("x", 2)
	require.NoError(t, err)
	y, err := u.NewVariable("y", 2)
	require.NoError(t, err)
	return u, x, y
}

// TestNew_Construction pins the constructor contracts: dimension order
// follows the given sequence, duplicates and nils are rejected, and the
// zero-argument factor is a one-cell scalar.
func TestNew_Construction(t *testing.T) {
	_, x, y := twoBinary(t)

	f, err := factor.New([]*core.Variable{y, x}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{y, x}, f.ArgSeq(), "sequence order preserved, not re-sorted")
	assert.Equal(t, 4, f.Size())
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, f.Values())

	_, err = factor.New([]*core.Variable{x, x}, 0)
	assert.ErrorIs(t, err, core.ErrDuplicateVars, "repeated argument must be rejected")

	_, err = factor.New([]*core.Variable{x, nil}, 0)
	assert.ErrorIs(t, err, core.ErrNilVariable)

	c := factor.Constant(3)
	assert.Equal(t, 0, c.NumArgs())
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, 3.0, c.Values()[0])
}

// TestFromValues_LinearOrder pins the linear cell order: the first
// argument varies fastest.
func TestFromValues_LinearOrder(t *testing.T) {
	_, x, y := twoBinary(t)

	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	got, err := f.At(core.Assignment{x: 1, y: 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got, "x=1,y=0 is the second cell")
	got, err = f.At(core.Assignment{x: 0, y: 1})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got, "x=0,y=1 is the third cell")

	_, err = factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, factor.ErrValueCount)
}

// TestAtSet_Assignments covers coverage and bounds errors.
func TestAtSet_Assignments(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.New([]*core.Variable{x, y}, 0)
	require.NoError(t, err)

	require.NoError(t, f.Set(core.Assignment{x: 1, y: 1}, 7))
	got, err := f.At(core.Assignment{x: 1, y: 1})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	_, err = f.At(core.Assignment{x: 0})
	assert.ErrorIs(t, err, factor.ErrMissingVariable, "missing y must be reported")

	// A larger assignment is fine: extra variables are ignored.
	u2 := core.NewUniverse()
	z, _ := u2.NewVariable("z", 2)
	got, err = f.At(core.Assignment{x: 1, y: 1, z: 0})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

// TestCombine_ProductBroadcast pins the union-with-broadcast contract:
// the result's sequence is x's arguments then y's new ones, and each
// operand repeats across the dimensions unique to the other.
func TestCombine_ProductBroadcast(t *testing.T) {
	_, x, y := twoBinary(t)
	fx, err := factor.FromValues([]*core.Variable{x}, []float64{1, 2})
	require.NoError(t, err)
	fy, err := factor.FromValues([]*core.Variable{y}, []float64{3, 4})
	require.NoError(t, err)

	p, err := factor.Combine(fx, fy, factor.OpProduct)
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{x, y}, p.ArgSeq())
	assert.Equal(t, []float64{3, 6, 4, 8}, p.Values())

	_, err = factor.Combine(fx, fy, factor.Op(99))
	assert.ErrorIs(t, err, factor.ErrBadOp)
}

// TestCombine_SharedVariable checks alignment when the operands overlap.
func TestCombine_SharedVariable(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("v", 3, 2)
	require.NoError(t, err)
	a, b, c := vars[0], vars[1], vars[2]

	fab, err := factor.FromValues([]*core.Variable{a, b}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	fbc, err := factor.FromValues([]*core.Variable{b, c}, []float64{10, 20, 30, 40})
	require.NoError(t, err)

	p, err := factor.Combine(fab, fbc, factor.OpProduct)
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{a, b, c}, p.ArgSeq())

	// Spot-check: cell (a=1, b=1, c=0) = fab(1,1) * fbc(1,0) = 4 * 20.
	got, err := p.At(core.Assignment{a: 1, b: 1, c: 0})
	require.NoError(t, err)
	assert.Equal(t, 80.0, got)
	// Cell (a=0, b=1, c=1) = fab(0,1) * fbc(1,1) = 3 * 40.
	got, err = p.At(core.Assignment{a: 0, b: 1, c: 1})
	require.NoError(t, err)
	assert.Equal(t, 120.0, got)
}

// TestCombineIn_SupersetFastPath checks the in-place path keeps the
// receiver's sequence, and the general path grows the argument set.
func TestCombineIn_SupersetFastPath(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	g, err := factor.FromValues([]*core.Variable{y}, []float64{10, 100})
	require.NoError(t, err)

	require.NoError(t, f.CombineIn(g, factor.OpProduct))
	assert.Equal(t, []*core.Variable{x, y}, f.ArgSeq(), "superset path keeps the sequence")
	assert.Equal(t, []float64{10, 20, 300, 400}, f.Values())

	// Receiver grows when the operand brings a new variable.
	h, err := factor.FromValues([]*core.Variable{x}, []float64{1, 2})
	require.NoError(t, err)
	require.NoError(t, h.CombineIn(g, factor.OpSum))
	assert.True(t, h.Args().Equal(core.NewDomain(x, y)))
	assert.Equal(t, []float64{11, 12, 101, 102}, h.Values())
}

// TestSafeDivide pins x/0 = 0 for both cell values and broadcasts.
func TestSafeDivide(t *testing.T) {
	_, x, _ := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x}, []float64{1, 5})
	require.NoError(t, err)
	g, err := factor.FromValues([]*core.Variable{x}, []float64{2, 0})
	require.NoError(t, err)

	q, err := factor.Combine(f, g, factor.OpDivide)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0}, q.Values(), "division by zero yields zero, not Inf")
}

// TestCollapse_Marginal pins the reduction identities and the retained
// dimension order.
func TestCollapse_Marginal(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	mx, err := f.Marginal(core.NewDomain(x))
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, mx.Values(), "sum over y")

	my, err := f.Marginal(core.NewDomain(y))
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, my.Values(), "sum over x")

	mmax, err := f.Maximum(core.NewDomain(y))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, mmax.Values())

	mmin, err := f.Minimum(core.NewDomain(x))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, mmin.Values())

	// Retaining a superset is a copy.
	all, err := f.Marginal(core.NewDomain(x, y))
	require.NoError(t, err)
	assert.True(t, all.Equal(f))

	// Collapsing everything gives the scalar total.
	total, err := f.CollapseAll(factor.OpSum)
	require.NoError(t, err)
	assert.Equal(t, 10.0, total)
	assert.Equal(t, 10.0, f.Sum())
	assert.Equal(t, 4.0, f.MaxValue())
	assert.Equal(t, 1.0, f.MinValue())
}

// TestRestrict fixes arguments and keeps the rest in order.
func TestRestrict(t *testing.T) {
	u := core.NewUniverse()
	vars, err := u.NewVariables("v", 3, 2)
	require.NoError(t, err)
	a, b, c := vars[0], vars[1], vars[2]

	f, err := factor.FromValues([]*core.Variable{a, b, c},
		[]float64{0, 1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)

	r, err := f.Restrict(core.Assignment{b: 1})
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{a, c}, r.ArgSeq())
	assert.Equal(t, []float64{2, 3, 6, 7}, r.Values())

	// Restricting everything leaves the scalar.
	s, err := f.Restrict(core.Assignment{a: 1, b: 0, c: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, s.NumArgs())
	assert.Equal(t, []float64{5}, s.Values())

	// No restricted variable: plain copy.
	cp, err := f.Restrict(core.Assignment{})
	require.NoError(t, err)
	assert.True(t, cp.Equal(f))
}

// TestRestrictSubset_Strict checks the strict-mode contract.
func TestRestrictSubset_Strict(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	// Lenient: y nominated but unassigned, so it survives.
	r, err := f.RestrictSubset(core.Assignment{x: 0}, core.NewDomain(x, y), false)
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{y}, r.ArgSeq())
	assert.Equal(t, []float64{1, 3}, r.Values())

	// Strict: the same call fails.
	_, err = f.RestrictSubset(core.Assignment{x: 0}, core.NewDomain(x, y), true)
	assert.ErrorIs(t, err, factor.ErrStrictRestrict)

	// Variables outside the nominated set are never restricted.
	r, err = f.RestrictSubset(core.Assignment{x: 1, y: 1}, core.NewDomain(y), true)
	require.NoError(t, err)
	assert.Equal(t, []*core.Variable{x}, r.ArgSeq())
	assert.Equal(t, []float64{3, 4}, r.Values())
}

// TestNormalize covers the happy path and the non-normalizable cases.
func TestNormalize(t *testing.T) {
	_, x, _ := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x}, []float64{1, 3})
	require.NoError(t, err)

	assert.True(t, f.IsNormalizable())
	require.NoError(t, f.Normalize())
	assert.Equal(t, []float64{0.25, 0.75}, f.Values())
	assert.InDelta(t, 1.0, f.NormConstant(), 1e-12)

	zero, err := factor.New([]*core.Variable{x}, 0)
	require.NoError(t, err)
	assert.False(t, zero.IsNormalizable())
	err = zero.Normalize()
	assert.ErrorIs(t, err, factor.ErrNonNormalizable)
	assert.Equal(t, []float64{0, 0}, zero.Values(), "failed normalize must not mutate")

	inf, err := factor.FromValues([]*core.Variable{x}, []float64{1, math.Inf(1)})
	require.NoError(t, err)
	assert.ErrorIs(t, inf.Normalize(), factor.ErrNonNormalizable)
}

// TestConditional checks P(x|y) columns sum to one, the zero-marginal
// column is all zero, and the subset precondition.
func TestConditional(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 3, 0, 0})
	require.NoError(t, err)

	cond, err := f.Conditional(core.NewDomain(y))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75, 0, 0}, cond.Values(),
		"y=0 column normalized, y=1 column zeroed by safe divide")

	u2 := core.NewUniverse()
	z, _ := u2.NewVariable("z", 2)
	_, err = f.Conditional(core.NewDomain(z))
	assert.ErrorIs(t, err, factor.ErrNotSubset)
}

// TestSubstArgs renames arguments without touching cells.
func TestSubstArgs(t *testing.T) {
	u := core.NewUniverse()
	x, _ := u.NewVariable("x", 2)
	y, _ := u.NewVariable("y", 2)
	x2, _ := u.NewVariable("x2", 2)
	w, _ := u.NewVariable("w", 3)

	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, f.SubstArgs(core.VarMap{x: x2}))
	assert.Equal(t, []*core.Variable{x2, y}, f.ArgSeq())
	assert.Equal(t, []float64{1, 2, 3, 4}, f.Values())

	err = f.SubstArgs(core.VarMap{x2: w})
	assert.ErrorIs(t, err, core.ErrIncompatibleVars, "arity change must be rejected")

	err = f.SubstArgs(core.VarMap{x2: y})
	assert.ErrorIs(t, err, core.ErrDuplicateVars, "collapsing substitution must be rejected")
}

// TestEqual_OrderIndependent pins value equality across different
// dimension orders of the same argument set.
func TestEqual_OrderIndependent(t *testing.T) {
	_, x, y := twoBinary(t)
	fxy, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	// Same function laid out with y first: (y,x) linear order is
	// f(0,0), f(y=1,x=0)... i.e. 1, 3, 2, 4.
	fyx, err := factor.FromValues([]*core.Variable{y, x}, []float64{1, 3, 2, 4})
	require.NoError(t, err)

	assert.True(t, fxy.Equal(fyx))
	assert.True(t, fyx.Equal(fxy))
	assert.True(t, fxy.AllClose(fyx, 0))

	fyx.Values()[2] += 1e-12
	assert.False(t, fxy.Equal(fyx))
	assert.True(t, fxy.AllClose(fyx, 1e-9))

	other, _ := factor.New([]*core.Variable{x}, 0)
	assert.False(t, fxy.Equal(other), "different argument sets are never equal")
}

// TestClone_Independence verifies deep copies.
func TestClone_Independence(t *testing.T) {
	_, x, _ := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x}, []float64{1, 2})
	require.NoError(t, err)
	g := f.Clone()
	g.Values()[0] = 99
	assert.Equal(t, 1.0, f.Values()[0], "clone must not alias the original")
}

// TestCombine_Identity checks that combining with the scalar identity
// of each operator leaves the operand unchanged. And/Or map cells into
// {0,1}, so their identity law is checked on a boolean-valued factor.
func TestCombine_Identity(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	boolean, err := factor.FromValues([]*core.Variable{x, y}, []float64{0, 1, 1, 0})
	require.NoError(t, err)

	arith := []factor.Op{factor.OpSum, factor.OpDifference, factor.OpProduct,
		factor.OpDivide, factor.OpMax, factor.OpMin}
	for _, op := range arith {
		got, err := factor.Combine(f, factor.Constant(op.Identity()), op)
		require.NoError(t, err, op.String())
		assert.True(t, got.Equal(f), "%v with its identity must be a no-op", op)
	}
	for _, op := range []factor.Op{factor.OpAnd, factor.OpOr} {
		got, err := factor.Combine(boolean, factor.Constant(op.Identity()), op)
		require.NoError(t, err, op.String())
		assert.True(t, got.Equal(boolean), "%v with its identity must be a no-op", op)
	}
}

// TestCombine_Commutative checks x ⊕ y = y ⊕ x for the symmetric
// operators, across partially overlapping argument sets so the
// broadcast paths are exercised in both directions.
func TestCombine_Commutative(t *testing.T) {
	u := core.NewUniverse()
	x, _ := u.NewVariable("x", 2)
	y, _ := u.NewVariable("y", 3)
	z, _ := u.NewVariable("z", 2)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 0, 2, 3, 0, 4})
	require.NoError(t, err)
	g, err := factor.FromValues([]*core.Variable{y, z}, []float64{5, 0, 6, 7, 8, 0})
	require.NoError(t, err)

	symmetric := []factor.Op{factor.OpSum, factor.OpProduct, factor.OpMax,
		factor.OpMin, factor.OpAnd, factor.OpOr}
	for _, op := range symmetric {
		fg, err := factor.Combine(f, g, op)
		require.NoError(t, err, op.String())
		gf, err := factor.Combine(g, f, op)
		require.NoError(t, err, op.String())
		assert.True(t, fg.Equal(gf), "%v must commute", op)
	}
}

// TestCombine_Associative checks (x ⊕ y) ⊕ z = x ⊕ (y ⊕ z) for the
// associative operators over a chain of overlapping argument sets.
// Integer cell values keep the float arithmetic exact either way.
func TestCombine_Associative(t *testing.T) {
	u := core.NewUniverse()
	x, _ := u.NewVariable("x", 2)
	y, _ := u.NewVariable("y", 2)
	z, _ := u.NewVariable("z", 2)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 0, 3, 4})
	require.NoError(t, err)
	g, err := factor.FromValues([]*core.Variable{y, z}, []float64{5, 6, 0, 8})
	require.NoError(t, err)
	h, err := factor.FromValues([]*core.Variable{z, x}, []float64{9, 0, 11, 12})
	require.NoError(t, err)

	associative := []factor.Op{factor.OpSum, factor.OpProduct, factor.OpMax,
		factor.OpMin, factor.OpAnd, factor.OpOr}
	for _, op := range associative {
		fg, err := factor.Combine(f, g, op)
		require.NoError(t, err, op.String())
		left, err := factor.Combine(fg, h, op)
		require.NoError(t, err, op.String())

		gh, err := factor.Combine(g, h, op)
		require.NoError(t, err, op.String())
		right, err := factor.Combine(f, gh, op)
		require.NoError(t, err, op.String())

		assert.True(t, left.Equal(right), "%v must associate", op)
	}
}

// TestNormalize_Idempotent verifies a second Normalize is a no-op.
func TestNormalize_Idempotent(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	require.NoError(t, f.Normalize())
	once := f.Clone()
	require.NoError(t, f.Normalize())
	assert.True(t, f.AllClose(once, 1e-15), "renormalizing a distribution must not move its cells")
	assert.InDelta(t, 1.0, f.NormConstant(), 1e-12)
}

// TestConditional_Reconstruct verifies the chain rule: the conditional
// times the marginal it divided out rebuilds the joint.
func TestConditional_Reconstruct(t *testing.T) {
	_, x, y := twoBinary(t)
	f, err := factor.FromValues([]*core.Variable{x, y}, []float64{0.1, 0.2, 0.3, 0.4})
	require.NoError(t, err)

	marg, err := f.Marginal(core.NewDomain(y))
	require.NoError(t, err)
	cond, err := f.Conditional(core.NewDomain(y))
	require.NoError(t, err)

	back, err := factor.Combine(cond, marg, factor.OpProduct)
	require.NoError(t, err)
	assert.True(t, back.AllClose(f, 1e-12), "P(x|y)·P(y) must rebuild the joint")
}
