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

// Variable is a single in-scope variable (spec section 3): a name, its
// resolved type, and the (unevaluated) location expression describing
// where to find it.
type Variable struct {
	Name     string
	Type     *TypeInfo
	Location LocationExpr
}

// VariablesInScope returns every variable whose declaring scope contains
// addr, innermost scope first, with global variables last (spec section
// 4.1). Within a scope, variables are returned in source-declaration
// order, which matches the order the compiler emitted their DWARF entries.
func (idx *Index) VariablesInScope(addr Address) ([]Variable, error) {
	fn, ok := idx.EnclosingFunction(addr)
	if !ok {
		return nil, dbgerr.New(dbgerr.UnknownLocation, addr)
	}

	levels, err := idx.scopeChain(fn.entryOffset, uint64(addr))
	if err != nil {
		return nil, err
	}

	var vars []Variable
	for _, level := range levels {
		for _, e := range level {
			v, err := idx.entryToVariable(e)
			if err != nil {
				idx.log.Logf(logger.Allow, "dwarf", "skipping unresolvable variable: %v", err)
				continue
			}
			vars = append(vars, v)
		}
	}
	for _, e := range idx.globals {
		v, err := idx.entryToVariable(e)
		if err != nil {
			idx.log.Logf(logger.Allow, "dwarf", "skipping unresolvable global: %v", err)
			continue
		}
		vars = append(vars, v)
	}

	return vars, nil
}

func (idx *Index) entryToVariable(e *dwarf.Entry) (Variable, error) {
	name, _ := e.Val(dwarf.AttrName).(string)
	if name == "" {
		return Variable{}, dbgerr.New(dbgerr.MalformedDebugInfo, "variable with no name")
	}

	typeOff, ok := e.Val(dwarf.AttrType).(dwarf.Offset)
	if !ok {
		return Variable{}, dbgerr.New(dbgerr.MalformedDebugInfo, "variable with no type")
	}
	t, err := idx.ResolveType(typeOff)
	if err != nil {
		return Variable{}, err
	}

	raw, ok := e.Val(dwarf.AttrLocation).([]byte)
	if !ok {
		return Variable{}, dbgerr.New(dbgerr.MalformedDebugInfo, "variable with no location")
	}
	loc, err := DecodeLocation(raw)
	if err != nil {
		return Variable{}, err
	}

	return Variable{Name: name, Type: t, Location: loc}, nil
}

// scopeChain returns the chain of lexical scopes inside the subprogram at
// entryOffset that contain addr, ordered innermost first. Each element is
// the set of formal_parameter/variable entries declared directly in that
// scope.
func (idx *Index) scopeChain(entryOffset dwarf.Offset, addr uint64) ([][]*dwarf.Entry, error) {
	r := idx.data.Reader()
	r.Seek(entryOffset)
	fn, err := r.Next()
	if err != nil {
		return nil, dbgerr.New(dbgerr.MalformedDebugInfo, err)
	}
	if fn == nil || !fn.Children {
		return nil, nil
	}

	var levels [][]*dwarf.Entry
	var descend func() error
	descend = func() error {
		var level []*dwarf.Entry
		for {
			e, err := r.Next()
			if err != nil {
				return dbgerr.New(dbgerr.MalformedDebugInfo, err)
			}
			if e == nil {
				break // end of this scope's children
			}

			switch e.Tag {
			case dwarf.TagFormalParameter, dwarf.TagVariable:
				level = append(level, e)
				if e.Children {
					r.SkipChildren()
				}
			case dwarf.TagLexDwarfBlock:
				if !blockContainsPC(e, addr) {
					if e.Children {
						r.SkipChildren()
					}
					continue
				}
				if e.Children {
					if err := descend(); err != nil {
						return err
					}
				}
			default:
				if e.Children {
					r.SkipChildren()
				}
			}
		}
		// appended after any nested (deeper) scopes have already appended
		// themselves, so levels ends up innermost-first without a final
		// reverse.
		levels = append(levels, level)
		return nil
	}

	if err := descend(); err != nil {
		return nil, err
	}
	return levels, nil
}

// blockContainsPC reports whether addr falls within a lexical_block's
// address range. A block with no low_pc/high_pc attributes (DWARF allows
// this when the compiler instead emits DW_AT_ranges, which this debugger
// does not interpret) is conservatively treated as always in scope.
func blockContainsPC(e *dwarf.Entry, addr uint64) bool {
	low, ok := e.Val(dwarf.AttrLowpc).(uint64)
	if !ok {
		return true
	}
	high := highPC(e, low)
	return addr >= low && addr < high
}
