package factor

import (
	"fmt"
	"math/rand"

	"github.com/Matt3164/sill/core"
)

// Sample draws one assignment of the arguments with probability
// proportional to the cell values, by inverse-CDF over the linear cell
// order. The factor need not be normalized but must be normalizable
// (ErrNonNormalizable otherwise). When floating-point round-off leaves
// the accumulated mass just short of the draw, the last cell (every
// argument at arity-1) is returned.
// Complexity: O(table size) per draw.
func (f *TableFactor) Sample(rng *rand.Rand) (core.Assignment, error) {
	z := f.Sum()
	if !f.IsNormalizable() {
		return nil, fmt.Errorf("factor%v: sampling with constant %v: %w", f.args, z, ErrNonNormalizable)
	}

	u := rng.Float64() * z
	data := f.tab.Data()
	cum := 0.0
	off := len(data) - 1
	for i, p := range data {
		cum += p
		if u < cum {
			off = i
			break
		}
	}

	return f.Assignment(f.tab.Index(off))
}

// SampleN draws n independent assignments.
func (f *TableFactor) SampleN(rng *rand.Rand, n int) ([]core.Assignment, error) {
	out := make([]core.Assignment, 0, n)
	for i := 0; i < n; i++ {
		a, err := f.Sample(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

// Random fills every cell with an independent Uniform[0,1) draw,
// producing a random unnormalized potential over the given sequence.
func Random(vars []*core.Variable, rng *rand.Rand) (*TableFactor, error) {
	f, err := New(vars, 0)
	if err != nil {
		return nil, err
	}
	f.Apply(func(float64) float64 { return rng.Float64() })

	return f, nil
}
