// This file is part of dbg.
//
// dbg is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dbg is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dbg.  If not, see <https://www.gnu.org/licenses/>.

package eval

import (
	"encoding/binary"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
)

// applySuffix advances cur by one `.field` or `[index]` step (spec section
// 4.4 step 3). Out-of-bounds array indices are accepted silently, matching
// the spec's documented leniency.
func (e *Evaluator) applySuffix(cur Located, suf Suffix) (Located, error) {
	if suf.Field != "" {
		if cur.Type.Kind != dwarfx.KindStruct && cur.Type.Kind != dwarfx.KindUnion {
			return Located{}, dbgerr.New(dbgerr.TypeMismatch, "field access on non-struct/union type", cur.Type.Name)
		}
		if !cur.HasAddr {
			return Located{}, dbgerr.New(dbgerr.TypeMismatch, "field access on a value with no address")
		}
		for _, f := range cur.Type.Fields {
			if f.Name != suf.Field {
				continue
			}
			ft, err := f.Type()
			if err != nil {
				return Located{}, err
			}
			return Located{Type: ft, Addr: cur.Addr + uint64(f.Offset), HasAddr: true}, nil
		}
		return Located{}, dbgerr.New(dbgerr.UnknownVariable, suf.Field)
	}

	if cur.Type.Kind != dwarfx.KindArray {
		return Located{}, dbgerr.New(dbgerr.TypeMismatch, "index access on non-array type", cur.Type.Name)
	}
	if !cur.HasAddr {
		return Located{}, dbgerr.New(dbgerr.TypeMismatch, "index access on a value with no address")
	}
	elem, err := cur.Type.Elem()
	if err != nil {
		return Located{}, err
	}
	addr := cur.Addr + uint64(int64(suf.Index)*elem.ByteSize())
	return Located{Type: elem, Addr: addr, HasAddr: true}, nil
}

// applyPrefix applies one `*` or `&` operator (spec section 4.4 step 4),
// processed right-to-left over the written prefix chain by the caller.
func (e *Evaluator) applyPrefix(cur Located, op PrefixOp) (Located, error) {
	switch op {
	case OpDeref:
		return e.deref(cur)
	case OpAddrOf:
		if !cur.HasAddr {
			return Located{}, dbgerr.New(dbgerr.TypeMismatch, "cannot take the address of a register-resident value")
		}
		return Located{Type: dwarfx.SyntheticPointer(cur.Type), Raw: cur.Addr, HasAddr: false}, nil
	default:
		return Located{}, dbgerr.New(dbgerr.ParseError, "unknown prefix operator")
	}
}

func (e *Evaluator) deref(cur Located) (Located, error) {
	var ptrValue uint64

	switch cur.Type.Kind {
	case dwarfx.KindArray:
		// An array "value" is its own address; dereferencing decays it to
		// its element type without a memory read.
		if !cur.HasAddr {
			return Located{}, dbgerr.New(dbgerr.TypeMismatch, "cannot dereference an array with no address")
		}
		ptrValue = cur.Addr
	case dwarfx.KindPointer, dwarfx.KindFuncPointer:
		if cur.HasAddr {
			var buf [8]byte
			if err := e.mem.ReadMem(cur.Addr, buf[:]); err != nil {
				return Located{}, err
			}
			ptrValue = binary.LittleEndian.Uint64(buf[:])
		} else {
			ptrValue = cur.Raw
		}
	default:
		return Located{}, dbgerr.New(dbgerr.TypeMismatch, "dereference of non-pointer, non-array type", cur.Type.Name)
	}

	elem, err := cur.Type.Elem()
	if err != nil {
		return Located{}, err
	}
	return Located{Type: elem, Addr: ptrValue, HasAddr: true}, nil
}
