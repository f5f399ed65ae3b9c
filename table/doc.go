// Package table provides generic dense N-dimensional tables: the flat
// storage and alignment kernels underneath the factor algebra.
//
// Representation:
//
//	A Dense[T] holds a flat buffer of length = product(shape), a shape
//	vector (one entry per dimension), and precomputed strides. The
//	linear (mixed-radix) encoding puts dimension 0 fastest:
//
//	    lin = i0 + i1·s0 + i2·s0·s1 + …
//
//	This convention is held consistently by every kernel in the package
//	and by factor unroll/roll-up. An empty shape is the scalar table:
//	exactly one cell, zero dimensions.
//
// Kernels (the workhorses of factor combine/collapse):
//
//   - Join(dst, x, y, xMap, yMap, op) — dst over the union shape; each
//     operand's dimension d is aligned to output dimension xMap[d].
//     dst[I] = op(x[I∘xMap], y[I∘yMap]).
//   - JoinWith(dst, y, yMap, op)      — in-place join when dst's
//     dimensions are a superset of y's.
//   - Aggregate(dst, src, dimMap, op) — reduce away the src dimensions
//     absent from dimMap, accumulating into a pre-initialized dst;
//     dimMap[j] names the src dimension behind dst dimension j.
//   - Restrict(dst, src, fixed, dimMap) — copy a sub-table fixing some
//     dimensions to constants (fixed[d] ≥ 0) and remapping survivors.
//   - JoinAggregate(...)              — fused join+aggregate that never
//     materializes the joined table (norms, divergences, inner products).
//
// All kernels run a single odometer walk with per-dimension offset
// increments: O(product(walked shape)) time, O(ndim) extra memory.
//
// Errors:
//
//	ErrBadShape         - a shape dimension < 1 at construction.
//	ErrIndexOutOfRange  - a multi-index coordinate outside its dimension.
//	ErrDimMismatch      - dimension maps/shapes inconsistent between operands.
//	ErrNilTable         - a nil table operand.
package table
