package factor

import (
	"fmt"
	"strings"

	"github.com/Matt3164/sill/core"
)

// Unroll reinterprets the factor as a factor of one fresh "flattened"
// variable whose arity is the table size, registered in u. The flat
// variable's values enumerate the cells in linear order (first argument
// fastest), so the cell buffer is copied verbatim and
// RollUp(f.ArgSeq()) restores the original factor exactly.
func (f *TableFactor) Unroll(u *core.Universe) (*core.Variable, *TableFactor, error) {
	names := make([]string, len(f.argSeq))
	for i, v := range f.argSeq {
		names[i] = v.Name()
	}
	flat, err := u.NewVariable("unrolled("+strings.Join(names, ",")+")", f.Size())
	if err != nil {
		return nil, nil, err
	}
	out, err := New([]*core.Variable{flat}, 0)
	if err != nil {
		return nil, nil, err
	}
	copy(out.tab.Data(), f.tab.Data())

	return flat, out, nil
}

// RollUp is the inverse of Unroll: the receiver must be a factor of
// exactly one variable whose arity equals the product of the given
// sequence's arities (ErrBadRollUp otherwise). The result is the factor
// over vars sharing the receiver's cell buffer contents, relying on the
// flat variable's values and the linear cell order being the same
// enumeration.
func (f *TableFactor) RollUp(vars []*core.Variable) (*TableFactor, error) {
	if len(f.argSeq) != 1 {
		return nil, fmt.Errorf("factor%v: roll-up of a %d-argument factor: %w",
			f.args, len(f.argSeq), ErrBadRollUp)
	}
	size := 1
	for _, v := range vars {
		if v == nil {
			return nil, core.ErrNilVariable
		}
		size *= v.Arity()
	}
	if size != f.Size() {
		return nil, fmt.Errorf("factor%v: roll-up onto %d cells from %d: %w",
			f.args, size, f.Size(), ErrBadRollUp)
	}
	out, err := New(vars, 0)
	if err != nil {
		return nil, err
	}
	copy(out.tab.Data(), f.tab.Data())

	return out, nil
}
