// Package factor implements the discrete factor algebra: functions from
// joint assignments of finite variables to real values, stored in dense
// tables and combined/collapsed under a small closed set of semiring
// operators.
//
// TableFactor — the main type
//
//	A TableFactor owns a Domain of arguments, an explicit argument
//	sequence fixing table dimension order (caller-controlled, never
//	re-sorted), a variable→dimension index, and a table.Dense[float64]
//	whose shape[i] is the arity of argument i. These four stay
//	synchronized through every mutation; the factor with no arguments
//	is a scalar (one-cell) constant.
//
// Operators (Op):
//
//	OpSum, OpDifference, OpProduct, OpDivide, OpMax, OpMin, OpAnd, OpOr
//
//	Combine(x, y, op) produces a factor over union(args(x), args(y))
//	with broadcasting across the arguments unique to either side; when
//	one argument set contains the other, CombineIn updates in place
//	without a union-sized reallocation. Collapse(retained, op)
//	eliminates arguments by reduction: Marginal (sum), Maximum,
//	Minimum are the named forms. OpDivide is the SAFE divide: x/0 = 0,
//	so belief-propagation quotients stay finite.
//
// Beyond the algebra:
//
//   - Restrict / RestrictSubset (strict mode) — fix arguments to values
//   - Normalize, Conditional, Sample (inverse-CDF over linear order)
//   - Entropy, RelativeEntropy (KL, clamped ≥ 0), CrossEntropy,
//     JSDivergence, MutualInformation, L1/L∞ norms (plain and log)
//   - Unroll / RollUp — reinterpret an N-dimensional factor as a factor
//     of one flattened variable and back, using the same linear
//     encoding as the table storage (dimension 0 fastest)
//   - CanonicalFactor — the log-domain variant: product is plain
//     addition of log values, marginalization uses pairwise log-add
//   - Encode / Decode — byte-exact binary round-trip of
//     (argument IDs and arities, order, flat IEEE-754 buffer)
//   - FromCounts / LogLikelihood — maximum-likelihood estimation from
//     assignment records, with optional additive smoothing
//
// Errors:
//
//	ErrBadOp            - operator outside the closed set.
//	ErrMissingVariable  - assignment does not cover required arguments.
//	ErrStrictRestrict   - strict restrict named a variable absent from
//	                      the assignment.
//	ErrNotSubset        - a domain argument is not ⊆ the factor's args.
//	ErrArgsMismatch     - divergence between factors over different args.
//	ErrNotDisjoint      - mutual information over overlapping subsets.
//	ErrNonNormalizable  - normalization constant ≤ 0 or non-finite.
//	ErrValueCount       - value slice length ≠ table size.
//	ErrBadRollUp        - roll-up shape/arity contract violated.
//	ErrCorruptStream    - codec magic/shape/arity inconsistency.
package factor
