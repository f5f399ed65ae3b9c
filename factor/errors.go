package factor

import "errors"

// Sentinel errors for the factor algebra. Returned directly or wrapped
// with fmt.Errorf("ctx: %w", Err) carrying the offending factor's
// arguments; callers match with errors.Is.
var (
	// ErrBadOp indicates an operator value outside the closed Op set.
	ErrBadOp = errors.New("factor: unknown operator")

	// ErrMissingVariable indicates an assignment that does not cover all
	// of a factor's arguments where full coverage is required.
	ErrMissingVariable = errors.New("factor: assignment does not cover factor arguments")

	// ErrStrictRestrict indicates a strict restriction whose assignment
	// lacks a variable nominated for restriction.
	ErrStrictRestrict = errors.New("factor: strict restrict variable missing from assignment")

	// ErrNotSubset indicates a domain argument that must be a subset of
	// the factor's arguments but is not.
	ErrNotSubset = errors.New("factor: domain is not a subset of factor arguments")

	// ErrArgsMismatch indicates two factors that must share an argument
	// set (divergences, norms) but do not.
	ErrArgsMismatch = errors.New("factor: factors have different argument sets")

	// ErrNotDisjoint indicates overlapping variable subsets where
	// disjoint ones are required (mutual information).
	ErrNotDisjoint = errors.New("factor: variable subsets are not disjoint")

	// ErrNonNormalizable indicates a normalization constant that is
	// zero, negative, or non-finite.
	ErrNonNormalizable = errors.New("factor: factor is not normalizable")

	// ErrValueCount indicates a value slice whose length does not match
	// the factor's table size.
	ErrValueCount = errors.New("factor: value count does not match table size")

	// ErrBadRollUp indicates a roll-up on a factor that is not a single
	// flattened variable of matching cardinality.
	ErrBadRollUp = errors.New("factor: roll-up shape mismatch")

	// ErrCorruptStream indicates a serialized factor stream that fails
	// validation (bad magic, shape/arity inconsistency, short read).
	ErrCorruptStream = errors.New("factor: corrupt factor stream")
)
