package table

import (
	"errors"
	"fmt"
)

// Sentinel errors for dense-table operations.
var (
	// ErrBadShape indicates a non-positive dimension in a requested shape.
	ErrBadShape = errors.New("table: shape dimensions must be >= 1")

	// ErrIndexOutOfRange indicates a multi-index coordinate outside the
	// valid range of its dimension, or a wrong number of coordinates.
	ErrIndexOutOfRange = errors.New("table: index out of range")

	// ErrDimMismatch indicates inconsistent dimension maps or shapes
	// between kernel operands.
	ErrDimMismatch = errors.New("table: dimension mismatch")

	// ErrNilTable indicates a nil table operand.
	ErrNilTable = errors.New("table: nil table")
)

// Dense is an N-dimensional table of T backed by a flat slice.
//
// Invariants: len(data) == product(shape); len(stride) == len(shape);
// stride[0] == 1 and stride[d] == stride[d-1]*shape[d-1] (dimension 0
// varies fastest in linear order). The zero-dimensional table (empty
// shape) is a scalar with exactly one cell.
type Dense[T any] struct {
	shape  []int
	stride []int
	data   []T
}

// NewDense allocates a table of the given shape with every cell set to
// fill. Returns ErrBadShape if any dimension is < 1. An empty (or nil)
// shape yields the one-cell scalar table.
// Complexity: O(product(shape)).
func NewDense[T any](shape []int, fill T) (*Dense[T], error) {
	size := 1
	for d, n := range shape {
		if n < 1 {
			return nil, fmt.Errorf("table.NewDense: dim %d has extent %d: %w", d, n, ErrBadShape)
		}
		size *= n
	}

	t := &Dense[T]{
		shape:  append([]int(nil), shape...),
		stride: make([]int, len(shape)),
		data:   make([]T, size),
	}
	acc := 1
	for d := range t.shape {
		t.stride[d] = acc
		acc *= t.shape[d]
	}
	for i := range t.data {
		t.data[i] = fill
	}

	return t, nil
}

// NDim returns the number of dimensions.
func (t *Dense[T]) NDim() int { return len(t.shape) }

// Size returns the total number of cells (≥ 1).
func (t *Dense[T]) Size() int { return len(t.data) }

// Shape returns a copy of the shape vector.
func (t *Dense[T]) Shape() []int { return append([]int(nil), t.shape...) }

// Data exposes the backing buffer in linear order. Mutating it mutates
// the table; the caller must not change its length.
func (t *Dense[T]) Data() []T { return t.data }

// Clone returns a deep copy.
// Complexity: O(size).
func (t *Dense[T]) Clone() *Dense[T] {
	out := &Dense[T]{
		shape:  append([]int(nil), t.shape...),
		stride: append([]int(nil), t.stride...),
		data:   append([]T(nil), t.data...),
	}

	return out
}

// Offset computes the linear offset of a full multi-index, checking
// bounds. Returns ErrIndexOutOfRange on a bad coordinate or arity.
// Complexity: O(ndim).
func (t *Dense[T]) Offset(index []int) (int, error) {
	if len(index) != len(t.shape) {
		return 0, fmt.Errorf("table.Offset: got %d coordinates for %d dims: %w",
			len(index), len(t.shape), ErrIndexOutOfRange)
	}
	off := 0
	for d, i := range index {
		if i < 0 || i >= t.shape[d] {
			return 0, fmt.Errorf("table.Offset: coordinate %d of dim %d (extent %d): %w",
				i, d, t.shape[d], ErrIndexOutOfRange)
		}
		off += i * t.stride[d]
	}

	return off, nil
}

// Index is the inverse of Offset: it decodes a linear offset into a
// fresh multi-index. Complexity: O(ndim).
func (t *Dense[T]) Index(off int) []int {
	index := make([]int, len(t.shape))
	for d := range t.shape {
		index[d] = off % t.shape[d]
		off /= t.shape[d]
	}

	return index
}

// At returns the cell at the given multi-index, bounds-checked.
func (t *Dense[T]) At(index ...int) (T, error) {
	off, err := t.Offset(index)
	if err != nil {
		var zero T
		return zero, err
	}

	return t.data[off], nil
}

// Set stores value at the given multi-index, bounds-checked.
func (t *Dense[T]) Set(value T, index ...int) error {
	off, err := t.Offset(index)
	if err != nil {
		return err
	}
	t.data[off] = value

	return nil
}

// AtOffset reads a cell by linear offset without bounds checking; the
// caller guarantees 0 <= off < Size().
func (t *Dense[T]) AtOffset(off int) T { return t.data[off] }

// SetOffset writes a cell by linear offset without bounds checking.
func (t *Dense[T]) SetOffset(off int, value T) { t.data[off] = value }

// Fill sets every cell to value.
func (t *Dense[T]) Fill(value T) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Apply replaces every cell x with f(x).
func (t *Dense[T]) Apply(f func(T) T) {
	for i, x := range t.data {
		t.data[i] = f(x)
	}
}

// Transform replaces every cell x with op(x, y) where y is the
// corresponding cell of other. Both tables must have identical shapes.
func (t *Dense[T]) Transform(other *Dense[T], op func(T, T) T) error {
	if other == nil {
		return ErrNilTable
	}
	if !sameShape(t.shape, other.shape) {
		return fmt.Errorf("table.Transform: shapes %v vs %v: %w", t.shape, other.shape, ErrDimMismatch)
	}
	for i := range t.data {
		t.data[i] = op(t.data[i], other.data[i])
	}

	return nil
}

// Accumulate folds op over all cells starting from init, in linear order.
func (t *Dense[T]) Accumulate(init T, op func(T, T) T) T {
	acc := init
	for _, x := range t.data {
		acc = op(acc, x)
	}

	return acc
}

// TransformAccumulate folds op over f(cell) for all cells without
// mutating the table.
func (t *Dense[T]) TransformAccumulate(init T, f func(T) T, op func(T, T) T) T {
	acc := init
	for _, x := range t.data {
		acc = op(acc, f(x))
	}

	return acc
}

// NextIndex advances index one step in linear order (dimension 0
// fastest), returning false after the last cell. A freshly zeroed index
// addresses the first cell; the scalar table yields false immediately.
func (t *Dense[T]) NextIndex(index []int) bool {
	for d := 0; d < len(t.shape); d++ {
		index[d]++
		if index[d] < t.shape[d] {
			return true
		}
		index[d] = 0
	}

	return false
}

// Equal reports whether two tables have identical shapes and cells.
func Equal[T comparable](a, b *Dense[T]) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !sameShape(a.shape, b.shape) {
		return false
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}

	return true
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
