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

package dwarfx

import (
	"debug/dwarf"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/logger"
)

// buildFunctions walks every compile unit collecting subprograms with a
// concrete address range, and the compile-unit-scoped variables that
// VariablesInScope appends after every local scope (spec section 4.1).
func (idx *Index) buildFunctions() error {
	r := idx.data.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return dbgerr.New(dbgerr.MalformedDebugInfo, err)
		}
		if entry == nil {
			break
		}

		switch entry.Tag {
		case dwarf.TagCompileUnit:
			if err := idx.walkCompileUnitChildren(r); err != nil {
				return err
			}
		default:
			if entry.Children {
				r.SkipChildren()
			}
		}
	}
	return nil
}

// walkCompileUnitChildren visits a compile unit's direct children, indexing
// subprograms and collecting top-level (global) variables.
func (idx *Index) walkCompileUnitChildren(r *dwarf.Reader) error {
	for {
		entry, err := r.Next()
		if err != nil {
			return dbgerr.New(dbgerr.MalformedDebugInfo, err)
		}
		if entry == nil {
			return nil // end of this compile unit's children
		}

		switch entry.Tag {
		case dwarf.TagSubprogram:
			fn, err := idx.newFunction(entry)
			if entry.Children {
				r.SkipChildren()
			}
			if err != nil {
				return err
			}
			if fn != nil {
				idx.funcsByName[fn.Name] = fn
				idx.funcsByAddr = append(idx.funcsByAddr, fn)
			}
		case dwarf.TagVariable:
			idx.globals = append(idx.globals, entry)
			if entry.Children {
				r.SkipChildren()
			}
		default:
			if entry.Children {
				r.SkipChildren()
			}
		}
	}
}

func (idx *Index) newFunction(entry *dwarf.Entry) (*Function, error) {
	name, _ := entry.Val(dwarf.AttrName).(string)
	if name == "" {
		return nil, nil // declaration-only / inlined-away subprogram: not addressable
	}

	low, ok := entry.Val(dwarf.AttrLowpc).(uint64)
	if !ok {
		return nil, nil // no code for this subprogram (pure declaration)
	}
	high := highPC(entry, low)

	fb, err := decodeFrameBase(entry)
	if err != nil {
		idx.log.Logf(logger.Allow, "dwarf", "function %s has unsupported frame_base: %v", name, err)
		return nil, err
	}

	return &Function{
		Name:        name,
		Low:         Address(low),
		High:        Address(high),
		FrameBase:   fb,
		entryOffset: entry.Offset,
	}, nil
}

// highPC resolves DW_AT_high_pc, which per DWARF4 may be an absolute
// address (class address) or an offset from low_pc (class constant).
func highPC(entry *dwarf.Entry, low uint64) uint64 {
	for _, f := range entry.Field {
		if f.Attr != dwarf.AttrHighpc {
			continue
		}
		if f.Class == dwarf.ClassAddress {
			if v, ok := f.Val.(uint64); ok {
				return v
			}
		}
		switch v := f.Val.(type) {
		case int64:
			return low + uint64(v)
		case uint64:
			return low + v
		}
	}
	return low
}

// ResolveFunction returns the entry address of the subprogram with the
// given exact name (spec section 4.1).
func (idx *Index) ResolveFunction(name string) (Address, error) {
	fn, ok := idx.funcsByName[name]
	if !ok {
		return 0, dbgerr.New(dbgerr.UnknownLocation, name)
	}
	return fn.Low, nil
}

// FunctionAt returns the subprogram whose entry address is exactly addr,
// used by the Expression Evaluator to print function-pointer values as
// names (spec section 4.4) instead of raw hex.
func (idx *Index) FunctionAt(addr Address) (*Function, bool) {
	funcs := idx.funcsByAddr
	lo, hi := 0, len(funcs)
	for lo < hi {
		mid := (lo + hi) / 2
		if funcs[mid].Low < addr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(funcs) && funcs[lo].Low == addr {
		return funcs[lo], true
	}
	return nil, false
}

// EnclosingFunction returns the subprogram whose [Low, High) range
// contains addr (spec section 4.1).
func (idx *Index) EnclosingFunction(addr Address) (*Function, bool) {
	funcs := idx.funcsByAddr
	// binary search for the last function whose Low <= addr
	lo, hi := 0, len(funcs)
	for lo < hi {
		mid := (lo + hi) / 2
		if funcs[mid].Low <= addr {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return nil, false
	}
	fn := funcs[lo-1]
	if addr >= fn.Low && addr < fn.High {
		return fn, true
	}
	return nil, false
}
