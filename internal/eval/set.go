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
	"math"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
)

// Set writes lit into loc, honoring the coercion rules of spec section 4.4
// Setting. A non-addressable location (register-resident read, or the
// value yielded by `&`) can never be a set target.
func (e *Evaluator) Set(loc Located, lit Literal) error {
	if !loc.HasAddr {
		return dbgerr.New(dbgerr.TypeMismatch, "cannot assign to a value with no address")
	}

	switch lit.Kind {
	case LiteralInt:
		return e.setInt(loc, lit.Int)
	case LiteralFloat:
		return e.setFloat(loc, lit.Flt)
	case LiteralBool:
		return e.setBool(loc, lit.Bool)
	case LiteralString:
		return e.setString(loc, lit.Str)
	case LiteralIdent:
		return e.setIdent(loc, lit.Ident)
	case LiteralNull:
		return e.setNull(loc)
	default:
		return dbgerr.New(dbgerr.TypeMismatch, "unrecognized literal")
	}
}

func (e *Evaluator) setInt(loc Located, v int64) error {
	size := loc.Type.ByteSize()

	switch loc.Type.Kind {
	case dwarfx.KindSignedInt, dwarfx.KindChar, dwarfx.KindEnum:
		if !fitsSigned(v, size) {
			return dbgerr.New(dbgerr.TypeMismatch, "integer literal out of range for target type", loc.Type.Name)
		}
		return e.writeWidth(loc.Addr, uint64(v), size)
	case dwarfx.KindUnsignedInt:
		if v < 0 || !fitsUnsigned(uint64(v), size) {
			return dbgerr.New(dbgerr.TypeMismatch, "integer literal out of range for target type", loc.Type.Name)
		}
		return e.writeWidth(loc.Addr, uint64(v), size)
	case dwarfx.KindPointer, dwarfx.KindFuncPointer:
		return e.writeWidth(loc.Addr, uint64(v), 8)
	default:
		return dbgerr.New(dbgerr.TypeMismatch, "integer literal assigned to incompatible type", loc.Type.Name)
	}
}

func (e *Evaluator) setFloat(loc Located, v float64) error {
	switch loc.Type.Kind {
	case dwarfx.KindFloat:
		switch loc.Type.ByteSize() {
		case 4:
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
			return e.mem.WriteMem(loc.Addr, buf[:])
		case 8:
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			return e.mem.WriteMem(loc.Addr, buf[:])
		default:
			return dbgerr.New(dbgerr.TypeMismatch, "unsupported float width", loc.Type.ByteSize())
		}
	default:
		return dbgerr.New(dbgerr.TypeMismatch, "float literal assigned to incompatible type", loc.Type.Name)
	}
}

func (e *Evaluator) setBool(loc Located, v bool) error {
	if loc.Type.Kind != dwarfx.KindBool {
		return dbgerr.New(dbgerr.TypeMismatch, "boolean literal assigned to incompatible type", loc.Type.Name)
	}
	var b byte
	if v {
		b = 1
	}
	return e.mem.WriteMem(loc.Addr, []byte{b})
}

// setString implements `set *s = "…"` (spec section 4.4): the target must
// be a char-typed location (reached by dereferencing a char* or char[]
// root), and the string's bytes plus its NUL terminator are written
// in-place with no allocation — if the literal is longer than the target's
// backing storage, the write simply overruns into adjacent memory, which
// is the documented behavior, not a bug here.
func (e *Evaluator) setString(loc Located, s string) error {
	if loc.Type.Kind != dwarfx.KindChar {
		return dbgerr.New(dbgerr.TypeMismatch, "string literal assigned to non-char target", loc.Type.Name)
	}
	buf := append([]byte(s), 0)
	return e.mem.WriteMem(loc.Addr, buf)
}

func (e *Evaluator) setIdent(loc Located, ident string) error {
	switch loc.Type.Kind {
	case dwarfx.KindEnum:
		for _, variant := range loc.Type.EnumVariants {
			if variant.Name == ident {
				return e.writeWidth(loc.Addr, uint64(variant.Value), loc.Type.ByteSize())
			}
		}
		return dbgerr.New(dbgerr.TypeMismatch, "no such enum variant", ident)
	case dwarfx.KindFuncPointer:
		addr, err := e.idx.ResolveFunction(ident)
		if err != nil {
			return dbgerr.New(dbgerr.TypeMismatch, "no such function", ident)
		}
		return e.writeWidth(loc.Addr, uint64(addr), 8)
	default:
		return dbgerr.New(dbgerr.TypeMismatch, "identifier literal assigned to incompatible type", loc.Type.Name)
	}
}

func (e *Evaluator) setNull(loc Located) error {
	switch loc.Type.Kind {
	case dwarfx.KindPointer, dwarfx.KindFuncPointer:
		return e.writeWidth(loc.Addr, 0, 8)
	default:
		return dbgerr.New(dbgerr.TypeMismatch, "null literal assigned to non-pointer type", loc.Type.Name)
	}
}

func (e *Evaluator) writeWidth(addr uint64, v uint64, size int64) error {
	if size <= 0 || size > 8 {
		return dbgerr.New(dbgerr.TypeMismatch, "unsupported target width", size)
	}
	buf := make([]byte, size)
	for i := int64(0); i < size; i++ {
		buf[i] = byte(v >> (uint(i) * 8))
	}
	return e.mem.WriteMem(addr, buf)
}

func fitsSigned(v int64, size int64) bool {
	if size >= 8 {
		return true
	}
	bits := uint(size) * 8
	lo := -(int64(1) << (bits - 1))
	hi := (int64(1) << (bits - 1)) - 1
	return v >= lo && v <= hi
}

func fitsUnsigned(v uint64, size int64) bool {
	if size >= 8 {
		return true
	}
	bits := uint(size) * 8
	return v <= (uint64(1)<<bits)-1
}
