package factor

import (
	"fmt"
	"math"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/table"
)

// CanonicalFactor is the log-domain representation of a table factor:
// every cell stores log f(x), with -Inf encoding a zero probability.
// Products become plain additions and quotients plain subtractions, so
// long chains of small potentials never underflow; only marginalization
// pays for the representation, through pairwise log-add.
type CanonicalFactor struct {
	lp *TableFactor
}

// logAdd returns log(exp(a) + exp(b)) without overflow, anchoring on
// the larger operand. -Inf is the additive identity.
func logAdd(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}

	return a + math.Log1p(math.Exp(b-a))
}

// NewCanonical creates a log-domain factor over the given sequence with
// every cell set to logFill.
func NewCanonical(vars []*core.Variable, logFill float64) (*CanonicalFactor, error) {
	lp, err := New(vars, logFill)
	if err != nil {
		return nil, err
	}

	return &CanonicalFactor{lp: lp}, nil
}

// Canonical converts a probability-domain factor to the log domain.
// Zero cells become -Inf.
func Canonical(f *TableFactor) *CanonicalFactor {
	lp := f.Clone()
	lp.Apply(math.Log)

	return &CanonicalFactor{lp: lp}
}

// Probability converts back to the probability domain by exponentiating
// every cell.
func (c *CanonicalFactor) Probability() *TableFactor {
	f := c.lp.Clone()
	f.Apply(math.Exp)

	return f
}

// Args returns the argument set.
func (c *CanonicalFactor) Args() core.Domain { return c.lp.Args() }

// ArgSeq returns the argument sequence in table dimension order.
func (c *CanonicalFactor) ArgSeq() []*core.Variable { return c.lp.ArgSeq() }

// Size returns the number of table cells.
func (c *CanonicalFactor) Size() int { return c.lp.Size() }

// LogValues exposes the log-domain cells in linear order, aliasing the
// factor's storage.
func (c *CanonicalFactor) LogValues() []float64 { return c.lp.Values() }

// Clone returns a deep copy.
func (c *CanonicalFactor) Clone() *CanonicalFactor {
	return &CanonicalFactor{lp: c.lp.Clone()}
}

// At returns the log value at an assignment covering the arguments.
func (c *CanonicalFactor) At(a core.Assignment) (float64, error) { return c.lp.At(a) }

// Set stores a log value at an assignment covering the arguments.
func (c *CanonicalFactor) Set(a core.Assignment, logValue float64) error {
	return c.lp.Set(a, logValue)
}

// Product returns x ⊗ y in the log domain: cellwise addition over the
// argument union, with the usual broadcasting.
func Product(x, y *CanonicalFactor) (*CanonicalFactor, error) {
	lp, err := combineFn(x.lp, y.lp, func(a, b float64) float64 { return a + b })
	if err != nil {
		return nil, err
	}

	return &CanonicalFactor{lp: lp}, nil
}

// Quotient returns x ⊘ y in the log domain: cellwise subtraction.
// -Inf / -Inf stays -Inf (a zero divided by zero is a zero), mirroring
// the probability-domain safe divide.
func Quotient(x, y *CanonicalFactor) (*CanonicalFactor, error) {
	lp, err := combineFn(x.lp, y.lp, func(a, b float64) float64 {
		if math.IsInf(a, -1) {
			return math.Inf(-1)
		}
		return a - b
	})
	if err != nil {
		return nil, err
	}

	return &CanonicalFactor{lp: lp}, nil
}

// ProductIn multiplies y into c in place (log-domain addition), using
// the no-reallocation path when c's arguments include y's.
func (c *CanonicalFactor) ProductIn(y *CanonicalFactor) error {
	if c.lp.args.Includes(y.lp.args) {
		return table.JoinWith(c.lp.tab, y.lp.tab,
			dimMapInto(y.lp.argSeq, c.lp.varIndex),
			func(a, b float64) float64 { return a + b })
	}
	lp, err := combineFn(c.lp, y.lp, func(a, b float64) float64 { return a + b })
	if err != nil {
		return err
	}
	c.lp = lp

	return nil
}

// Marginal sums out (in the probability sense) every argument not in
// retained, folding cells with pairwise log-add from the -Inf identity.
func (c *CanonicalFactor) Marginal(retained core.Domain) (*CanonicalFactor, error) {
	if retained.Includes(c.lp.args) {
		return c.Clone(), nil
	}
	keep := make([]*core.Variable, 0, len(c.lp.argSeq))
	for _, v := range c.lp.argSeq {
		if retained.Contains(v) {
			keep = append(keep, v)
		}
	}
	out, err := New(keep, math.Inf(-1))
	if err != nil {
		return nil, err
	}
	err = table.Aggregate(out.tab, c.lp.tab, dimMapInto(out.argSeq, c.lp.varIndex), logAdd)
	if err != nil {
		return nil, err
	}

	return &CanonicalFactor{lp: out}, nil
}

// Maximum max-reduces every argument not in retained; in the log domain
// this is the plain max.
func (c *CanonicalFactor) Maximum(retained core.Domain) (*CanonicalFactor, error) {
	lp, err := c.lp.Maximum(retained)
	if err != nil {
		return nil, err
	}

	return &CanonicalFactor{lp: lp}, nil
}

// Restrict fixes every argument assigned in a to its value.
func (c *CanonicalFactor) Restrict(a core.Assignment) (*CanonicalFactor, error) {
	lp, err := c.lp.Restrict(a)
	if err != nil {
		return nil, err
	}

	return &CanonicalFactor{lp: lp}, nil
}

// LogNormConstant returns log Σ exp(cell), the log partition function,
// computed by the same anchored pairwise log-add as Marginal.
func (c *CanonicalFactor) LogNormConstant() float64 {
	return c.lp.tab.Accumulate(math.Inf(-1), logAdd)
}

// Normalize subtracts the log partition function from every cell in
// place; afterwards the exponentiated cells sum to 1. Returns
// ErrNonNormalizable when the log constant is not finite.
func (c *CanonicalFactor) Normalize() error {
	lz := c.LogNormConstant()
	if math.IsInf(lz, 0) || math.IsNaN(lz) {
		return fmt.Errorf("factor%v: log normalization constant %v: %w",
			c.lp.args, lz, ErrNonNormalizable)
	}
	c.lp.Apply(func(x float64) float64 { return x - lz })

	return nil
}

// ArgMax returns an assignment attaining the maximum log value, and
// that value.
func (c *CanonicalFactor) ArgMax() (core.Assignment, float64) { return c.lp.ArgMax() }

// AllClose reports argument-set equality and |a-b| ≤ tol per log cell,
// treating a matching pair of -Inf cells as equal.
func (c *CanonicalFactor) AllClose(other *CanonicalFactor, tol float64) bool {
	if other == nil || !c.lp.args.Equal(other.lp.args) {
		return false
	}

	return c.lp.forEachAligned(other.lp, func(a, b float64) bool {
		if math.IsInf(a, -1) && math.IsInf(b, -1) {
			return true
		}
		return math.Abs(a-b) <= tol
	})
}

// String renders the argument list and log cells for diagnostics.
func (c *CanonicalFactor) String() string { return "log" + c.lp.String() }
