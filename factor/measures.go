package factor

import (
	"fmt"
	"math"

	"github.com/Matt3164/sill/core"
)

// Information-theoretic measures and norms over factors interpreted as
// (unnormalized) distributions. All logarithms are natural; the
// convention 0·log 0 = 0 applies throughout.

// Entropy returns -Σ p·log p over the cells. The caller is expected to
// pass a normalized factor; no normalization happens here.
func (f *TableFactor) Entropy() float64 {
	return f.tab.TransformAccumulate(0,
		func(p float64) float64 {
			if p <= 0 {
				return 0
			}
			return -p * math.Log(p)
		},
		func(a, b float64) float64 { return a + b })
}

// EntropyBase returns the entropy in the given logarithm base (base 2
// gives bits). The base must be positive and different from 1.
func (f *TableFactor) EntropyBase(base float64) float64 {
	return f.Entropy() / math.Log(base)
}

// alignedFold folds visit(a, b) over corresponding cells of f and g,
// which must share an argument set (ErrArgsMismatch). Dimension orders
// may differ.
func (f *TableFactor) alignedFold(g *TableFactor, cell func(a, b float64) float64) (float64, error) {
	if g == nil || !f.args.Equal(g.args) {
		return 0, fmt.Errorf("factor%v vs %v: %w", f.args, g.Args(), ErrArgsMismatch)
	}
	total := 0.0
	f.forEachAligned(g, func(a, b float64) bool {
		total += cell(a, b)
		return true
	})

	return total, nil
}

// RelativeEntropy returns KL(f ‖ g) = Σ f·log(f/g). Cells with f = 0
// contribute 0 regardless of g; the total is clamped at 0 so that
// round-off on near-identical distributions never reports a negative
// divergence. Both factors must share an argument set.
func (f *TableFactor) RelativeEntropy(g *TableFactor) (float64, error) {
	kl, err := f.alignedFold(g, func(p, q float64) float64 {
		if p <= 0 {
			return 0
		}
		return p * math.Log(p/q)
	})
	if err != nil {
		return 0, err
	}
	if kl < 0 {
		kl = 0
	}

	return kl, nil
}

// CrossEntropy returns -Σ f·log g, with f = 0 cells contributing 0.
func (f *TableFactor) CrossEntropy(g *TableFactor) (float64, error) {
	return f.alignedFold(g, func(p, q float64) float64 {
		if p <= 0 {
			return 0
		}
		return -p * math.Log(q)
	})
}

// JSDivergence returns the Jensen-Shannon divergence
// ½KL(f‖m) + ½KL(g‖m) with m the cellwise mean. Symmetric, finite, and
// bounded by log 2 for normalized inputs.
func (f *TableFactor) JSDivergence(g *TableFactor) (float64, error) {
	if g == nil || !f.args.Equal(g.args) {
		return 0, fmt.Errorf("factor%v vs %v: %w", f.args, g.Args(), ErrArgsMismatch)
	}
	m, err := Combine(f, g, OpSum)
	if err != nil {
		return 0, err
	}
	m.Apply(func(x float64) float64 { return x / 2 })
	kf, err := f.RelativeEntropy(m)
	if err != nil {
		return 0, err
	}
	kg, err := g.RelativeEntropy(m)
	if err != nil {
		return 0, err
	}

	return (kf + kg) / 2, nil
}

// MutualInformation returns I(A;B) = H(A) + H(B) - H(A,B) under the
// distribution obtained by marginalizing f onto A ∪ B and normalizing.
// A and B must be disjoint (ErrNotDisjoint) subsets of the arguments
// (ErrNotSubset).
func (f *TableFactor) MutualInformation(a, b core.Domain) (float64, error) {
	if !a.Disjoint(b) {
		return 0, fmt.Errorf("factor%v: I(%v;%v): %w", f.args, a, b, ErrNotDisjoint)
	}
	if !f.args.Includes(a) || !f.args.Includes(b) {
		return 0, fmt.Errorf("factor%v: I(%v;%v): %w", f.args, a, b, ErrNotSubset)
	}
	pab, err := f.Marginal(a.Union(b))
	if err != nil {
		return 0, err
	}
	if err := pab.Normalize(); err != nil {
		return 0, err
	}
	pa, err := pab.Marginal(a)
	if err != nil {
		return 0, err
	}
	pb, err := pab.Marginal(b)
	if err != nil {
		return 0, err
	}

	return pa.Entropy() + pb.Entropy() - pab.Entropy(), nil
}

// Norm1 returns Σ |f - g| over corresponding cells.
func (f *TableFactor) Norm1(g *TableFactor) (float64, error) {
	return f.alignedFold(g, func(a, b float64) float64 { return math.Abs(a - b) })
}

// NormInf returns max |f - g| over corresponding cells.
func (f *TableFactor) NormInf(g *TableFactor) (float64, error) {
	if g == nil || !f.args.Equal(g.args) {
		return 0, fmt.Errorf("factor%v vs %v: %w", f.args, g.Args(), ErrArgsMismatch)
	}
	worst := 0.0
	f.forEachAligned(g, func(a, b float64) bool {
		if d := math.Abs(a - b); d > worst {
			worst = d
		}
		return true
	})

	return worst, nil
}

// Norm1Log returns Σ |log f - log g|, the L1 distance in the log domain.
// Matching zeros contribute 0; a zero on one side only yields +Inf.
func (f *TableFactor) Norm1Log(g *TableFactor) (float64, error) {
	return f.alignedFold(g, func(a, b float64) float64 {
		if a == b {
			return 0
		}
		return math.Abs(math.Log(a) - math.Log(b))
	})
}

// NormInfLog returns max |log f - log g| over corresponding cells.
func (f *TableFactor) NormInfLog(g *TableFactor) (float64, error) {
	if g == nil || !f.args.Equal(g.args) {
		return 0, fmt.Errorf("factor%v vs %v: %w", f.args, g.Args(), ErrArgsMismatch)
	}
	worst := 0.0
	f.forEachAligned(g, func(a, b float64) bool {
		if a == b {
			return true
		}
		if d := math.Abs(math.Log(a) - math.Log(b)); d > worst {
			worst = d
		}
		return true
	})

	return worst, nil
}

// updateAligned overwrites every cell of f with cell(f value, g value),
// walking both tables in f's linear order. g must share f's argument
// set though not necessarily its dimension order.
func (f *TableFactor) updateAligned(g *TableFactor, cell func(a, b float64) float64) {
	perm := make([]int, len(f.argSeq))
	for d, v := range f.argSeq {
		perm[d] = g.varIndex[v]
	}
	index := make([]int, len(f.argSeq))
	gIndex := make([]int, len(f.argSeq))
	lin := 0
	for {
		for d, i := range index {
			gIndex[perm[d]] = i
		}
		gOff, _ := g.tab.Offset(gIndex)
		f.tab.SetOffset(lin, cell(f.tab.AtOffset(lin), g.tab.AtOffset(gOff)))
		lin++
		if !f.tab.NextIndex(index) {
			return
		}
	}
}

// Update replaces every cell of f with op(f, g) in place. Both factors
// must share an argument set (ErrArgsMismatch); Combine and CombineIn
// generalize this to differing argument sets.
func (f *TableFactor) Update(g *TableFactor, op Op) error {
	if !op.Valid() {
		return fmt.Errorf("factor%v: update with op %d: %w", f.args, op, ErrBadOp)
	}
	if g == nil || !f.args.Equal(g.args) {
		return fmt.Errorf("factor%v: update from %v: %w", f.args, g.Args(), ErrArgsMismatch)
	}
	f.updateAligned(g, op.Apply)

	return nil
}

// WeightedUpdate replaces f with (1-w)·f + w·g in place; the damped
// update used by loopy propagation schedules. Both factors must share
// an argument set.
func (f *TableFactor) WeightedUpdate(g *TableFactor, w float64) error {
	if g == nil || !f.args.Equal(g.args) {
		return fmt.Errorf("factor%v: weighted update from %v: %w", f.args, g.Args(), ErrArgsMismatch)
	}
	f.updateAligned(g, func(a, b float64) float64 { return (1-w)*a + w*b })

	return nil
}

// Pow raises every cell to the given exponent in place (annealing and
// tempering). 0^0 is 1, following math.Pow.
func (f *TableFactor) Pow(e float64) {
	f.tab.Apply(func(x float64) float64 { return math.Pow(x, e) })
}

// ArgMax returns an assignment attaining the maximum cell value, and
// that value. Ties break toward the earliest linear offset.
func (f *TableFactor) ArgMax() (core.Assignment, float64) {
	return f.argBest(func(x, best float64) bool { return x > best })
}

// ArgMin returns an assignment attaining the minimum cell value, and
// that value.
func (f *TableFactor) ArgMin() (core.Assignment, float64) {
	return f.argBest(func(x, best float64) bool { return x < best })
}

func (f *TableFactor) argBest(better func(x, best float64) bool) (core.Assignment, float64) {
	data := f.tab.Data()
	bestOff, bestVal := 0, data[0]
	for off, x := range data {
		if better(x, bestVal) {
			bestOff, bestVal = off, x
		}
	}
	a, _ := f.Assignment(f.tab.Index(bestOff))

	return a, bestVal
}
