package table

import "fmt"

// This file implements the alignment kernels. Every kernel reduces to
// the same scheme: one odometer walk over a reference shape, with each
// participating table tracked by a per-dimension linear-offset step
// vector, so no multi-index arithmetic happens in the inner loop.

// operandSteps computes, for each dimension j of the walked shape, the
// linear-offset increment of an operand whose dimension d is aligned to
// walk dimension dimMap[d]. A walk dimension absent from dimMap gets
// step 0 (the operand is broadcast across it).
func operandSteps(walkNDim int, dimMap, stride []int) []int {
	steps := make([]int, walkNDim)
	for d, j := range dimMap {
		steps[j] += stride[d]
	}

	return steps
}

// checkAligned validates that dimMap aligns every dimension of operand
// shape opShape into walkShape with matching extents.
func checkAligned(kernel string, walkShape, opShape, dimMap []int) error {
	if len(dimMap) != len(opShape) {
		return fmt.Errorf("table.%s: dim map has %d entries for %d dims: %w",
			kernel, len(dimMap), len(opShape), ErrDimMismatch)
	}
	for d, j := range dimMap {
		if j < 0 || j >= len(walkShape) {
			return fmt.Errorf("table.%s: dim %d mapped to %d of %d: %w",
				kernel, d, j, len(walkShape), ErrDimMismatch)
		}
		if opShape[d] != walkShape[j] {
			return fmt.Errorf("table.%s: dim %d extent %d vs output extent %d: %w",
				kernel, d, opShape[d], walkShape[j], ErrDimMismatch)
		}
	}

	return nil
}

// odometer walks all cells of shape in linear order, maintaining the
// linear offsets of the tracked operands and invoking visit with them.
// offs must carry the starting offsets; steps[k] is operand k's step
// vector. Complexity: O(product(shape)).
func odometer(shape []int, offs []int, steps [][]int, visit func(offs []int)) {
	index := make([]int, len(shape))
	for {
		visit(offs)
		d := 0
		for ; d < len(shape); d++ {
			index[d]++
			for k := range offs {
				offs[k] += steps[k][d]
			}
			if index[d] < shape[d] {
				break
			}
			index[d] = 0
			for k := range offs {
				offs[k] -= steps[k][d] * shape[d]
			}
		}
		if d == len(shape) {
			return
		}
	}
}

// Join fills dst with op(x, y), aligning the operands into dst's
// dimensions: xMap[d] (resp. yMap[d]) is the dst dimension carrying
// x's (resp. y's) dimension d. Dimensions of dst covered by neither
// map broadcast both operands.
//
// Steps:
//  1. Validate operands non-nil and maps consistent with shapes.
//  2. Precompute per-dst-dimension offset steps for x and y.
//  3. Single odometer walk writing each dst cell.
//
// Complexity: O(dst.Size()) time, O(ndim) memory.
func Join[T any](dst, x, y *Dense[T], xMap, yMap []int, op func(T, T) T) error {
	if dst == nil || x == nil || y == nil {
		return ErrNilTable
	}
	if err := checkAligned("Join", dst.shape, x.shape, xMap); err != nil {
		return err
	}
	if err := checkAligned("Join", dst.shape, y.shape, yMap); err != nil {
		return err
	}

	xSteps := operandSteps(dst.NDim(), xMap, x.stride)
	ySteps := operandSteps(dst.NDim(), yMap, y.stride)

	lin := 0
	odometer(dst.shape, []int{0, 0}, [][]int{xSteps, ySteps}, func(offs []int) {
		dst.data[lin] = op(x.data[offs[0]], y.data[offs[1]])
		lin++
	})

	return nil
}

// JoinWith updates dst in place: dst[I] = op(dst[I], y[I∘yMap]). This is
// the fast path for combining a factor whose argument set is a superset
// of the other's, avoiding a union-sized reallocation.
// Complexity: O(dst.Size()).
func JoinWith[T any](dst, y *Dense[T], yMap []int, op func(T, T) T) error {
	if dst == nil || y == nil {
		return ErrNilTable
	}
	if err := checkAligned("JoinWith", dst.shape, y.shape, yMap); err != nil {
		return err
	}

	ySteps := operandSteps(dst.NDim(), yMap, y.stride)

	lin := 0
	odometer(dst.shape, []int{0}, [][]int{ySteps}, func(offs []int) {
		dst.data[lin] = op(dst.data[lin], y.data[offs[0]])
		lin++
	})

	return nil
}

// Aggregate reduces src into dst: every src cell is folded into the dst
// cell addressed by the retained coordinates, where dimMap[j] names the
// src dimension behind dst dimension j. dst must be pre-initialized to
// the aggregation identity; src dimensions not named by dimMap are the
// ones reduced away.
// Complexity: O(src.Size()).
func Aggregate[T any](dst, src *Dense[T], dimMap []int, op func(T, T) T) error {
	if dst == nil || src == nil {
		return ErrNilTable
	}
	// dimMap maps dst dims into src dims here, so validate in reverse.
	if err := checkAligned("Aggregate", src.shape, dst.shape, dimMap); err != nil {
		return err
	}

	// Per-src-dimension steps of the dst offset: src dimension d moves
	// dst by dst.stride[j] when dimMap[j] == d, and by 0 when reduced.
	steps := make([]int, src.NDim())
	for j, d := range dimMap {
		steps[d] += dst.stride[j]
	}

	lin := 0
	odometer(src.shape, []int{0}, [][]int{steps}, func(offs []int) {
		dst.data[offs[0]] = op(dst.data[offs[0]], src.data[lin])
		lin++
	})

	return nil
}

// Restrict copies a sub-table of src into dst, fixing the dimensions
// with fixed[d] >= 0 to that coordinate and remapping the surviving
// dimensions: dimMap[j] is the src dimension behind dst dimension j.
// fixed[d] must be -1 exactly for the dimensions named by dimMap.
// Complexity: O(dst.Size()).
func Restrict[T any](dst, src *Dense[T], fixed, dimMap []int) error {
	if dst == nil || src == nil {
		return ErrNilTable
	}
	if len(fixed) != src.NDim() {
		return fmt.Errorf("table.Restrict: fixed has %d entries for %d dims: %w",
			len(fixed), src.NDim(), ErrDimMismatch)
	}
	if err := checkAligned("Restrict", src.shape, dst.shape, dimMap); err != nil {
		return err
	}

	free := make(map[int]bool, len(dimMap))
	base := 0
	srcSteps := make([]int, dst.NDim())
	for j, d := range dimMap {
		free[d] = true
		srcSteps[j] = src.stride[d]
	}
	for d, v := range fixed {
		if free[d] {
			if v != -1 {
				return fmt.Errorf("table.Restrict: dim %d both fixed and mapped: %w", d, ErrDimMismatch)
			}
			continue
		}
		if v < 0 || v >= src.shape[d] {
			return fmt.Errorf("table.Restrict: fixed value %d for dim %d (extent %d): %w",
				v, d, src.shape[d], ErrIndexOutOfRange)
		}
		base += v * src.stride[d]
	}

	lin := 0
	odometer(dst.shape, []int{base}, [][]int{srcSteps}, func(offs []int) {
		dst.data[lin] = src.data[offs[0]]
		lin++
	})

	return nil
}

// JoinAggregate fuses a join and an aggregation: it walks the virtual
// joined table of shape joinShape (never materialized), combining
// x[I∘xMap] with y[I∘yMap] under joinOp and folding the result into
// dst[I∘dstMap] under aggOp. dst must be pre-initialized to the
// aggregation identity; the scalar dst (empty dstMap) reduces the whole
// join to one value.
// Complexity: O(product(joinShape)) time, O(ndim) memory.
func JoinAggregate[T any](
	dst, x, y *Dense[T],
	dstMap, xMap, yMap, joinShape []int,
	joinOp, aggOp func(T, T) T,
) error {
	if dst == nil || x == nil || y == nil {
		return ErrNilTable
	}
	if err := checkAligned("JoinAggregate", joinShape, x.shape, xMap); err != nil {
		return err
	}
	if err := checkAligned("JoinAggregate", joinShape, y.shape, yMap); err != nil {
		return err
	}
	if err := checkAligned("JoinAggregate", joinShape, dst.shape, dstMap); err != nil {
		return err
	}

	xSteps := operandSteps(len(joinShape), xMap, x.stride)
	ySteps := operandSteps(len(joinShape), yMap, y.stride)
	dstSteps := operandSteps(len(joinShape), dstMap, dst.stride)

	odometer(joinShape, []int{0, 0, 0}, [][]int{xSteps, ySteps, dstSteps}, func(offs []int) {
		dst.data[offs[2]] = aggOp(dst.data[offs[2]], joinOp(x.data[offs[0]], y.data[offs[1]]))
	})

	return nil
}
