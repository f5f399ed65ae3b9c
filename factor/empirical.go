package factor

import (
	"math"

	"github.com/Matt3164/sill/core"
)

// Maximum-likelihood estimation of factors from assignment records.

// FromCounts tallies the records into a count table over vars, seeding
// every cell with the additive smoothing term (0 for raw counts, 1 for
// Laplace). Each record must assign every variable of vars
// (ErrMissingVariable otherwise).
// Complexity: O(table size + len(records)·len(vars)).
func FromCounts(vars []*core.Variable, records []core.Assignment, smoothing float64) (*TableFactor, error) {
	f, err := New(vars, smoothing)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		x, err := f.At(rec)
		if err != nil {
			return nil, err
		}
		if err := f.Set(rec, x+1); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Estimate returns the maximum-likelihood (smoothing = 0) or MAP
// (smoothing > 0) distribution over vars: FromCounts normalized.
// Returns ErrNonNormalizable when there are no records and no
// smoothing mass.
func Estimate(vars []*core.Variable, records []core.Assignment, smoothing float64) (*TableFactor, error) {
	f, err := FromCounts(vars, records, smoothing)
	if err != nil {
		return nil, err
	}
	if err := f.Normalize(); err != nil {
		return nil, err
	}

	return f, nil
}

// LogLikelihood returns Σ log f(record) over the records. A record on
// which f is zero contributes -Inf.
func (f *TableFactor) LogLikelihood(records []core.Assignment) (float64, error) {
	total := 0.0
	for _, rec := range records {
		x, err := f.At(rec)
		if err != nil {
			return 0, err
		}
		total += math.Log(x)
	}

	return total, nil
}
