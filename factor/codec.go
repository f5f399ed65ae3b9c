package factor

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Matt3164/sill/core"
)

// Binary factor codec. The stream layout is:
//
//	magic   uint32  "TFv1"
//	nargs   uint32
//	nargs × (id uint32, arity uint32)   in table dimension order
//	size    uint64                      product of arities, validated
//	size  × float64                     cells in linear order, raw bits
//
// All integers are little-endian; cells are IEEE-754 bit patterns via
// math.Float64bits, so encode→decode round-trips byte-exactly, -0, Inf
// and NaN included. Variables travel by Universe ID: decoding needs the
// same (or a compatible) Universe and cross-checks each arity.

const codecMagic uint32 = 0x54467631 // "TFv1"

// Encode writes the factor to w in the binary stream layout.
func (f *TableFactor) Encode(w io.Writer) error {
	hdr := make([]uint32, 0, 2+2*len(f.argSeq))
	hdr = append(hdr, codecMagic, uint32(len(f.argSeq)))
	for _, v := range f.argSeq {
		hdr = append(hdr, uint32(v.ID()), uint32(v.Arity()))
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("factor.Encode: header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(f.Size())); err != nil {
		return fmt.Errorf("factor.Encode: size: %w", err)
	}
	bits := make([]uint64, f.Size())
	for i, x := range f.tab.Data() {
		bits[i] = math.Float64bits(x)
	}
	if err := binary.Write(w, binary.LittleEndian, bits); err != nil {
		return fmt.Errorf("factor.Encode: cells: %w", err)
	}

	return nil
}

// Decode reads one factor from r, resolving variable IDs through u.
// Returns ErrCorruptStream on a bad magic, an arity that disagrees with
// the resolved variable, or a size inconsistency;
// core.ErrUnknownVariable when an ID is not owned by u.
func Decode(r io.Reader, u *core.Universe) (*TableFactor, error) {
	var magic, nargs uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("factor.Decode: magic: %w", err)
	}
	if magic != codecMagic {
		return nil, fmt.Errorf("factor.Decode: magic %#x: %w", magic, ErrCorruptStream)
	}
	if err := binary.Read(r, binary.LittleEndian, &nargs); err != nil {
		return nil, fmt.Errorf("factor.Decode: arg count: %w", err)
	}

	vars := make([]*core.Variable, 0, nargs)
	size := 1
	for i := uint32(0); i < nargs; i++ {
		var id, arity uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("factor.Decode: arg %d id: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &arity); err != nil {
			return nil, fmt.Errorf("factor.Decode: arg %d arity: %w", i, err)
		}
		v, err := u.Variable(int(id))
		if err != nil {
			return nil, fmt.Errorf("factor.Decode: arg %d: %w", i, err)
		}
		if v.Arity() != int(arity) {
			return nil, fmt.Errorf("factor.Decode: %v has arity %d, stream says %d: %w",
				v, v.Arity(), arity, ErrCorruptStream)
		}
		vars = append(vars, v)
		size *= v.Arity()
	}

	var declared uint64
	if err := binary.Read(r, binary.LittleEndian, &declared); err != nil {
		return nil, fmt.Errorf("factor.Decode: size: %w", err)
	}
	if declared != uint64(size) {
		return nil, fmt.Errorf("factor.Decode: declared %d cells, arities give %d: %w",
			declared, size, ErrCorruptStream)
	}

	f, err := New(vars, 0)
	if err != nil {
		return nil, err
	}
	bits := make([]uint64, size)
	if err := binary.Read(r, binary.LittleEndian, bits); err != nil {
		return nil, fmt.Errorf("factor.Decode: cells: %w", err)
	}
	data := f.tab.Data()
	for i, b := range bits {
		data[i] = math.Float64frombits(b)
	}

	return f, nil
}
