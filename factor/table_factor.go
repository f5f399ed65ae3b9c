package factor

import (
	"fmt"
	"math"
	"strings"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/table"
)

// TableFactor is a function over a set of discrete variables backed by
// a dense table.
//
// Invariants: argSeq is a permutation of args; varIndex is its inverse;
// tab.Shape()[i] == argSeq[i].Arity(). Every mutation of the argument
// set rebuilds all four members together. Because variable identity is
// the Universe pointer handle, a shared variable can never disagree on
// arity between two factors, which is what makes combine alignment safe
// by construction.
//
// TableFactor has value semantics: operations return fresh factors (or
// mutate only the receiver, where documented); no factor ever aliases
// another's table.
type TableFactor struct {
	args     core.Domain
	argSeq   []*core.Variable
	varIndex map[*core.Variable]int
	tab      *table.Dense[float64]
}

// New creates a factor over the given argument sequence, every cell set
// to fill. The sequence fixes table dimension order exactly as given
// (it is NOT re-sorted). Returns core.ErrDuplicateVars on a repeated
// variable and core.ErrNilVariable on a nil entry.
// Complexity: O(table size).
func New(vars []*core.Variable, fill float64) (*TableFactor, error) {
	f := &TableFactor{}
	if err := f.initialize(vars, fill); err != nil {
		return nil, err
	}

	return f, nil
}

// FromValues creates a factor with the cells supplied in linear order
// (first variable fastest): for binary x,y and values [1,2,3,4] the
// cells are x=0,y=0→1; x=1,y=0→2; x=0,y=1→3; x=1,y=1→4. Returns
// ErrValueCount when len(values) does not match the table size.
func FromValues(vars []*core.Variable, values []float64) (*TableFactor, error) {
	f, err := New(vars, 0)
	if err != nil {
		return nil, err
	}
	if len(values) != f.Size() {
		return nil, fmt.Errorf("factor.FromValues%v: %d values for %d cells: %w",
			f.args, len(values), f.Size(), ErrValueCount)
	}
	copy(f.tab.Data(), values)

	return f, nil
}

// Constant creates the zero-argument scalar factor with the given
// value: the base case of the algebra and the combine identity carrier.
func Constant(value float64) *TableFactor {
	f, _ := New(nil, value) // cannot fail: empty sequence
	return f
}

// FromDomain creates a factor over d in canonical (ID-ascending) order.
func FromDomain(d core.Domain, fill float64) (*TableFactor, error) {
	return New(d.Vars(), fill)
}

// initialize rebuilds the argument sequence, index map, and table
// together; the single place the synchronization invariant is enforced.
func (f *TableFactor) initialize(vars []*core.Variable, fill float64) error {
	argSeq := make([]*core.Variable, 0, len(vars))
	varIndex := make(map[*core.Variable]int, len(vars))
	shape := make([]int, 0, len(vars))
	for _, v := range vars {
		if v == nil {
			return core.ErrNilVariable
		}
		if _, dup := varIndex[v]; dup {
			return fmt.Errorf("factor.New: %v repeated: %w", v, core.ErrDuplicateVars)
		}
		varIndex[v] = len(argSeq)
		argSeq = append(argSeq, v)
		shape = append(shape, v.Arity())
	}
	tab, err := table.NewDense(shape, fill)
	if err != nil {
		return err
	}

	f.args = core.NewDomain(argSeq...)
	f.argSeq = argSeq
	f.varIndex = varIndex
	f.tab = tab

	return nil
}

// Args returns the argument set (a copy; mutating it does not affect f).
func (f *TableFactor) Args() core.Domain { return f.args.Clone() }

// ArgSeq returns the argument sequence in table dimension order.
func (f *TableFactor) ArgSeq() []*core.Variable {
	return append([]*core.Variable(nil), f.argSeq...)
}

// HasArg reports whether v is an argument of f.
func (f *TableFactor) HasArg(v *core.Variable) bool { return f.args.Contains(v) }

// NumArgs returns the number of arguments.
func (f *TableFactor) NumArgs() int { return len(f.argSeq) }

// Size returns the number of table cells.
func (f *TableFactor) Size() int { return f.tab.Size() }

// Values exposes the cells in linear order. The slice aliases the
// factor's storage: mutating it mutates f.
func (f *TableFactor) Values() []float64 { return f.tab.Data() }

// Clone returns a deep copy.
func (f *TableFactor) Clone() *TableFactor {
	out := &TableFactor{
		args:     f.args.Clone(),
		argSeq:   append([]*core.Variable(nil), f.argSeq...),
		varIndex: make(map[*core.Variable]int, len(f.varIndex)),
		tab:      f.tab.Clone(),
	}
	for v, i := range f.varIndex {
		out.varIndex[v] = i
	}

	return out
}

// indexOf converts an assignment covering all arguments into table
// coordinates. Returns ErrMissingVariable on a gap.
func (f *TableFactor) indexOf(a core.Assignment) ([]int, error) {
	index := make([]int, len(f.argSeq))
	for i, v := range f.argSeq {
		val, ok := a[v]
		if !ok {
			return nil, fmt.Errorf("factor%v: argument %v unassigned: %w", f.args, v, ErrMissingVariable)
		}
		index[i] = val
	}

	return index, nil
}

// At evaluates the factor at an assignment covering (at least) all of
// its arguments. Returns ErrMissingVariable on a gap and
// table.ErrIndexOutOfRange on a value outside an argument's arity.
// Complexity: O(numArgs).
func (f *TableFactor) At(a core.Assignment) (float64, error) {
	index, err := f.indexOf(a)
	if err != nil {
		return 0, err
	}

	return f.tab.At(index...)
}

// Set stores a value at an assignment covering all arguments.
func (f *TableFactor) Set(a core.Assignment, value float64) error {
	index, err := f.indexOf(a)
	if err != nil {
		return err
	}

	return f.tab.Set(value, index...)
}

// AtIndex evaluates the factor by raw table coordinates (one per
// argument, in dimension order), bounds-checked.
func (f *TableFactor) AtIndex(index ...int) (float64, error) {
	return f.tab.At(index...)
}

// Assignment converts table coordinates back into an assignment.
func (f *TableFactor) Assignment(index []int) (core.Assignment, error) {
	if len(index) != len(f.argSeq) {
		return nil, fmt.Errorf("factor%v: %d coordinates for %d arguments: %w",
			f.args, len(index), len(f.argSeq), table.ErrIndexOutOfRange)
	}
	a := make(core.Assignment, len(index))
	for i, v := range f.argSeq {
		a[v] = index[i]
	}

	return a, nil
}

// Apply replaces every cell x with fn(x) in place.
func (f *TableFactor) Apply(fn func(float64) float64) { f.tab.Apply(fn) }

// dimMapInto maps each variable of seq to its dimension index in
// toIndex; every variable of seq must be present.
func dimMapInto(seq []*core.Variable, toIndex map[*core.Variable]int) []int {
	m := make([]int, len(seq))
	for i, v := range seq {
		m[i] = toIndex[v]
	}

	return m
}

// unionSeq concatenates x's sequence with y's variables absent from x,
// preserving both operand orders.
func unionSeq(x, y *TableFactor) []*core.Variable {
	out := append([]*core.Variable(nil), x.argSeq...)
	for _, v := range y.argSeq {
		if !x.args.Contains(v) {
			out = append(out, v)
		}
	}

	return out
}

// Combine produces op applied elementwise over union(args(x), args(y)),
// broadcasting each operand across the arguments unique to the other.
// Dimension order of the result: x's sequence followed by y's new
// variables. Returns ErrBadOp on an operator outside the closed set.
// Complexity: O(result table size).
func Combine(x, y *TableFactor, op Op) (*TableFactor, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("factor.Combine(%v): %w", op, ErrBadOp)
	}

	return combineFn(x, y, op.fn())
}

// combineFn is the generic combine core shared with the log-domain
// variant and the weighted-update helpers.
func combineFn(x, y *TableFactor, fn func(float64, float64) float64) (*TableFactor, error) {
	out, err := New(unionSeq(x, y), 0)
	if err != nil {
		return nil, err
	}
	err = table.Join(out.tab, x.tab, y.tab,
		dimMapInto(x.argSeq, out.varIndex),
		dimMapInto(y.argSeq, out.varIndex),
		fn)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// CombineIn combines y into f in place. When args(f) ⊇ args(y) this
// runs without reallocating; otherwise f is replaced by the full
// union-sized combination.
func (f *TableFactor) CombineIn(y *TableFactor, op Op) error {
	if !op.Valid() {
		return fmt.Errorf("factor.CombineIn(%v): %w", op, ErrBadOp)
	}
	if f.args.Includes(y.args) {
		return table.JoinWith(f.tab, y.tab, dimMapInto(y.argSeq, f.varIndex), op.fn())
	}
	out, err := combineFn(f, y, op.fn())
	if err != nil {
		return err
	}
	*f = *out

	return nil
}

// CombineConst applies op(cell, c) to every cell in place.
func (f *TableFactor) CombineConst(c float64, op Op) error {
	if !op.Valid() {
		return fmt.Errorf("factor.CombineConst(%v): %w", op, ErrBadOp)
	}
	f.tab.Apply(func(x float64) float64 { return op.Apply(x, c) })

	return nil
}

// Collapse eliminates every argument not in retained by reducing with
// op, starting from op's identity. Retained arguments keep f's
// dimension order. When retained ⊇ args(f) the result is a copy.
// Complexity: O(f table size).
func (f *TableFactor) Collapse(retained core.Domain, op Op) (*TableFactor, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("factor.Collapse(%v): %w", op, ErrBadOp)
	}
	if retained.Includes(f.args) {
		return f.Clone(), nil
	}

	keep := make([]*core.Variable, 0, len(f.argSeq))
	for _, v := range f.argSeq {
		if retained.Contains(v) {
			keep = append(keep, v)
		}
	}
	out, err := New(keep, op.Identity())
	if err != nil {
		return nil, err
	}
	err = table.Aggregate(out.tab, f.tab, dimMapInto(out.argSeq, f.varIndex), op.fn())
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Marginal sums out every argument not in retained.
func (f *TableFactor) Marginal(retained core.Domain) (*TableFactor, error) {
	return f.Collapse(retained, OpSum)
}

// Maximum max-reduces every argument not in retained.
func (f *TableFactor) Maximum(retained core.Domain) (*TableFactor, error) {
	return f.Collapse(retained, OpMax)
}

// Minimum min-reduces every argument not in retained.
func (f *TableFactor) Minimum(retained core.Domain) (*TableFactor, error) {
	return f.Collapse(retained, OpMin)
}

// CollapseAll reduces the whole table to a single value under op.
func (f *TableFactor) CollapseAll(op Op) (float64, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("factor.CollapseAll(%v): %w", op, ErrBadOp)
	}

	return f.tab.Accumulate(op.Identity(), op.fn()), nil
}

// Sum returns the total of all cells (the normalization constant).
func (f *TableFactor) Sum() float64 {
	return f.tab.Accumulate(0, func(a, b float64) float64 { return a + b })
}

// MaxValue returns the largest cell value.
func (f *TableFactor) MaxValue() float64 {
	return f.tab.Accumulate(math.Inf(-1), math.Max)
}

// MinValue returns the smallest cell value.
func (f *TableFactor) MinValue() float64 {
	return f.tab.Accumulate(math.Inf(1), math.Min)
}

// Restrict fixes every argument assigned in a to its value, returning a
// factor over the remaining arguments (in f's order). Arguments absent
// from a are retained; assigning none returns a copy.
// Complexity: O(result table size).
func (f *TableFactor) Restrict(a core.Assignment) (*TableFactor, error) {
	return f.restrict(a, nil, false)
}

// RestrictSubset restricts only the arguments that appear in vars. In
// strict mode every such argument must be assigned in a, else
// ErrStrictRestrict; otherwise unassigned ones are silently retained.
func (f *TableFactor) RestrictSubset(a core.Assignment, vars core.Domain, strict bool) (*TableFactor, error) {
	return f.restrict(a, vars, strict)
}

func (f *TableFactor) restrict(a core.Assignment, vars core.Domain, strict bool) (*TableFactor, error) {
	fixed := make([]int, len(f.argSeq))
	keep := make([]*core.Variable, 0, len(f.argSeq))
	for i, v := range f.argSeq {
		fixed[i] = -1
		if vars != nil && !vars.Contains(v) {
			keep = append(keep, v)
			continue
		}
		val, ok := a[v]
		if !ok {
			if strict {
				return nil, fmt.Errorf("factor%v: restrict of %v: %w", f.args, v, ErrStrictRestrict)
			}
			keep = append(keep, v)
			continue
		}
		fixed[i] = val
	}

	if len(keep) == len(f.argSeq) {
		return f.Clone(), nil
	}
	out, err := New(keep, 0)
	if err != nil {
		return nil, err
	}
	err = table.Restrict(out.tab, f.tab, fixed, dimMapInto(out.argSeq, f.varIndex))
	if err != nil {
		return nil, err
	}

	return out, nil
}

// NormConstant returns the sum of all cells.
func (f *TableFactor) NormConstant() float64 { return f.Sum() }

// IsNormalizable reports whether the normalization constant is positive
// and finite.
func (f *TableFactor) IsNormalizable() bool {
	z := f.Sum()
	return z > 0 && !math.IsInf(z, 1) && !math.IsNaN(z)
}

// Normalize divides every cell by the normalization constant in place.
// Returns ErrNonNormalizable (with the constant in the message) when
// the constant is ≤ 0 or non-finite; the factor is left untouched then.
func (f *TableFactor) Normalize() error {
	z := f.Sum()
	if !(z > 0) || math.IsInf(z, 1) || math.IsNaN(z) {
		return fmt.Errorf("factor%v: normalization constant %v: %w", f.args, z, ErrNonNormalizable)
	}
	f.tab.Apply(func(x float64) float64 { return x / z })

	return nil
}

// Conditional returns P(A|B) = f / f.Marginal(B), where A is the rest
// of f's arguments. B must be a subset of the arguments
// (ErrNotSubset). Division is the safe divide: cells whose B-marginal
// is zero become zero.
func (f *TableFactor) Conditional(b core.Domain) (*TableFactor, error) {
	if !f.args.Includes(b) {
		return nil, fmt.Errorf("factor%v: conditional on %v: %w", f.args, b, ErrNotSubset)
	}
	pb, err := f.Marginal(b)
	if err != nil {
		return nil, err
	}
	cond := f.Clone()
	if err := cond.CombineIn(pb, OpDivide); err != nil {
		return nil, err
	}

	return cond, nil
}

// SubstArgs renames the arguments under a 1:1, arity-preserving
// substitution, leaving cell values untouched. The table is not
// reordered: each renamed variable inherits its dimension.
func (f *TableFactor) SubstArgs(m core.VarMap) error {
	newSeq := make([]*core.Variable, len(f.argSeq))
	newIndex := make(map[*core.Variable]int, len(f.argSeq))
	for i, v := range f.argSeq {
		w, err := m.Apply(v)
		if err != nil {
			return err
		}
		if _, dup := newIndex[w]; dup {
			return fmt.Errorf("factor%v: substitution collapses onto %v: %w", f.args, w, core.ErrDuplicateVars)
		}
		newSeq[i] = w
		newIndex[w] = i
	}

	f.argSeq = newSeq
	f.varIndex = newIndex
	f.args = core.NewDomain(newSeq...)

	return nil
}

// forEachAligned visits every cell of f together with the corresponding
// cell of other (which must have the same argument set), regardless of
// the two dimension orders. Returns false as soon as visit does.
func (f *TableFactor) forEachAligned(other *TableFactor, visit func(a, b float64) bool) bool {
	perm := make([]int, len(f.argSeq)) // f dim -> other dim
	for d, v := range f.argSeq {
		perm[d] = other.varIndex[v]
	}
	index := make([]int, len(f.argSeq))
	oIndex := make([]int, len(f.argSeq))
	lin := 0
	for {
		for d, i := range index {
			oIndex[perm[d]] = i
		}
		oOff, _ := other.tab.Offset(oIndex)
		if !visit(f.tab.AtOffset(lin), other.tab.AtOffset(oOff)) {
			return false
		}
		lin++
		if !f.tab.NextIndex(index) {
			return true
		}
	}
}

// Equal reports exact equality of argument sets and values, independent
// of the two factors' dimension orders.
func (f *TableFactor) Equal(other *TableFactor) bool {
	if other == nil || !f.args.Equal(other.args) {
		return false
	}

	return f.forEachAligned(other, func(a, b float64) bool { return a == b })
}

// AllClose reports argument-set equality and |a-b| ≤ tol per cell.
func (f *TableFactor) AllClose(other *TableFactor, tol float64) bool {
	if other == nil || !f.args.Equal(other.args) {
		return false
	}

	return f.forEachAligned(other, func(a, b float64) bool { return math.Abs(a-b) <= tol })
}

// String renders the argument list and cells for diagnostics.
func (f *TableFactor) String() string {
	var sb strings.Builder
	sb.WriteString(f.args.String())
	sb.WriteString(" [")
	for i, v := range f.tab.Data() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", v)
	}
	sb.WriteByte(']')

	return sb.String()
}
