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
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/vajexal/dbg/internal/dwarfx"
)

const maxCStringLen = 4096

// Format renders a resolved value the way the REPL's `p` command prints it
// (spec section 4.4 Printing).
func (e *Evaluator) Format(loc Located) (string, error) {
	raw, err := e.rawBytes(loc)
	if err != nil {
		return "", err
	}
	return e.formatValue(loc.Type, loc.Addr, loc.HasAddr, raw)
}

// rawBytes reads the value's bytes from memory (for an addressable
// location) or returns the already-resolved register/synthetic value.
func (e *Evaluator) rawBytes(loc Located) ([]byte, error) {
	if !loc.HasAddr {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, loc.Raw)
		return buf, nil
	}
	size := loc.Type.ByteSize()
	if size <= 0 || size > 8 {
		return nil, nil // aggregate types format field-by-field instead
	}
	buf := make([]byte, size)
	if err := e.mem.ReadMem(loc.Addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (e *Evaluator) formatValue(t *dwarfx.TypeInfo, addr uint64, hasAddr bool, raw []byte) (string, error) {
	switch t.Kind {
	case dwarfx.KindSignedInt:
		return strconv.FormatInt(signExtend(raw), 10), nil
	case dwarfx.KindUnsignedInt:
		return strconv.FormatUint(zeroExtend(raw), 10), nil
	case dwarfx.KindBool:
		if len(raw) > 0 && raw[0] != 0 {
			return "true", nil
		}
		return "false", nil
	case dwarfx.KindChar:
		if len(raw) > 0 {
			return fmt.Sprintf("'%c'", raw[0]), nil
		}
		return "'\\0'", nil
	case dwarfx.KindFloat:
		return formatFloat(raw), nil
	case dwarfx.KindPointer:
		return e.formatPointer(t, zeroExtend(raw))
	case dwarfx.KindFuncPointer:
		return e.formatFuncPointer(zeroExtend(raw))
	case dwarfx.KindEnum:
		return e.formatEnum(t, raw), nil
	case dwarfx.KindArray:
		return e.formatArray(t, addr, hasAddr)
	case dwarfx.KindStruct, dwarfx.KindUnion:
		return e.formatAggregate(t, addr, hasAddr)
	default:
		return fmt.Sprintf("<%s>", t.Name), nil
	}
}

func (e *Evaluator) formatPointer(t *dwarfx.TypeInfo, ptr uint64) (string, error) {
	elem, err := t.Elem()
	if err == nil && elem.Kind == dwarfx.KindChar && ptr != 0 {
		if s, ok := e.tryReadCString(ptr); ok {
			return s, nil
		}
	}
	return fmt.Sprintf("0x%x", ptr), nil
}

func (e *Evaluator) formatFuncPointer(addr uint64) (string, error) {
	if fn, ok := e.idx.FunctionAt(dwarfx.Address(addr)); ok {
		return fn.Name, nil
	}
	return fmt.Sprintf("0x%x", addr), nil
}

// tryReadCString reads up to maxCStringLen bytes from addr and reports
// whether they form a NUL-terminated, printable byte sequence (spec
// section 4.4: "when the memory at that address is a NUL-terminated
// printable byte sequence").
func (e *Evaluator) tryReadCString(addr uint64) (string, bool) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for i := 0; i < maxCStringLen; i++ {
		if err := e.mem.ReadMem(addr+uint64(i), buf); err != nil {
			return "", false
		}
		if buf[0] == 0 {
			return strconv.Quote(sb.String()), true
		}
		r := rune(buf[0])
		if !unicode.IsPrint(r) && r != '\t' {
			return "", false
		}
		sb.WriteByte(buf[0])
	}
	return "", false
}

func (e *Evaluator) formatEnum(t *dwarfx.TypeInfo, raw []byte) string {
	v := signExtend(raw)
	for _, variant := range t.EnumVariants {
		if variant.Value == v {
			return variant.Name
		}
	}
	return strconv.FormatInt(v, 10)
}

func (e *Evaluator) formatArray(t *dwarfx.TypeInfo, addr uint64, hasAddr bool) (string, error) {
	elem, err := t.Elem()
	if err != nil {
		return "", err
	}

	if elem.Kind == dwarfx.KindChar && hasAddr {
		if s, ok := e.tryReadCString(addr); ok {
			return s, nil
		}
	}

	if !hasAddr {
		return "[]", nil
	}

	elemSize := elem.ByteSize()
	parts := make([]string, 0, t.Count)
	for i := int64(0); i < t.Count; i++ {
		elemAddr := addr + uint64(i*elemSize)
		raw, err := e.readSized(elem, elemAddr)
		if err != nil {
			return "", err
		}
		s, err := e.formatValue(elem, elemAddr, true, raw)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "[ " + strings.Join(parts, ", ") + " ]", nil
}

func (e *Evaluator) formatAggregate(t *dwarfx.TypeInfo, addr uint64, hasAddr bool) (string, error) {
	if !hasAddr {
		return "{}", nil
	}

	parts := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		ft, err := f.Type()
		if err != nil {
			return "", err
		}
		fieldAddr := addr + uint64(f.Offset)
		raw, err := e.readSized(ft, fieldAddr)
		if err != nil {
			return "", err
		}
		s, err := e.formatValue(ft, fieldAddr, true, raw)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s = %s", f.Name, s))
	}
	return "{ " + strings.Join(parts, ", ") + " }", nil
}

// readSized reads t's bytes at addr for scalar types; aggregate/array
// types read nothing here since their formatters recurse field-by-field.
func (e *Evaluator) readSized(t *dwarfx.TypeInfo, addr uint64) ([]byte, error) {
	size := t.ByteSize()
	if size <= 0 || size > 8 {
		return nil, nil
	}
	buf := make([]byte, size)
	if err := e.mem.ReadMem(addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func signExtend(raw []byte) int64 {
	if len(raw) == 0 {
		return 0
	}
	var v int64
	shift := uint(0)
	for _, b := range raw {
		v |= int64(b) << shift
		shift += 8
	}
	bits := uint(len(raw)) * 8
	if bits < 64 && v&(1<<(bits-1)) != 0 {
		v -= 1 << bits
	}
	return v
}

func zeroExtend(raw []byte) uint64 {
	var v uint64
	shift := uint(0)
	for _, b := range raw {
		v |= uint64(b) << shift
		shift += 8
	}
	return v
}

func formatFloat(raw []byte) string {
	switch len(raw) {
	case 4:
		bits := binary.LittleEndian.Uint32(raw)
		return strconv.FormatFloat(float64(math.Float32frombits(bits)), 'g', -1, 32)
	case 8:
		bits := binary.LittleEndian.Uint64(raw)
		return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
	default:
		return "0"
	}
}
