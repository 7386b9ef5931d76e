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

// Package dwarfx is the DWARF Index component (spec section 4.1). It loads
// an executable's debug sections once at start-up and exposes file+line,
// function-name, and address lookups, plus the in-scope variable list and
// the type graph, to the rest of the debugger.
//
// Grounded on the teacher's coprocessor/developer package, which builds the
// same kind of index (line table, function table, type cache) from
// debug/dwarf and debug/elf for the ARM coprocessor of a cartridge; this
// package performs the equivalent build for the x86_64 ELF executable being
// debugged.
package dwarfx

import (
	"debug/dwarf"
	"debug/elf"
	"sort"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/logger"
)

type lineRow struct {
	file string
	line int
	addr uint64
}

// Function is a single subprogram identified by the DWARF data.
type Function struct {
	Name      string
	Low, High Address
	FrameBase FrameBaseExpr

	entryOffset dwarf.Offset
	declLine    int
	declFile    string
}

// Index is the immutable, once-built DWARF lookup table for an executable.
type Index struct {
	data *dwarf.Data
	elf  *elf.File
	log  *logger.Logger

	// path -> line rows for that file, for resolve_line's full-path match
	byFullPath map[string][]lineRow
	// basename -> line rows, for resolve_line's suffix match
	byBaseName map[string][]lineRow

	// every row, sorted by address, for addr_to_source's reverse lookup
	allRows []lineRow

	funcsByName map[string]*Function
	funcsByAddr []*Function // sorted by Low, for enclosing_function

	// globals are variables declared at compile-unit scope, collected once
	// up front since variables_in_scope always appends them last.
	globals []*dwarf.Entry
}

// Load parses the ELF and DWARF sections of path and builds the index. It
// fails with MalformedDebugInfo if the file has no usable debug_info, or if
// a subprogram's frame_base uses a form outside the two supported by this
// debugger (register, or DW_OP_call_frame_cfa). Variable location
// expressions are not decoded here; VariablesInScope decodes them on demand.
func Load(path string, log *logger.Logger) (*Index, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, dbgerr.New(dbgerr.SpawnFailure, err)
	}
	if ef.Machine != elf.EM_X86_64 {
		return nil, dbgerr.New(dbgerr.MalformedDebugInfo, "not an x86_64 ELF executable")
	}

	data, err := ef.DWARF()
	if err != nil {
		return nil, dbgerr.New(dbgerr.MalformedDebugInfo, err)
	}

	idx := &Index{
		data:        data,
		elf:         ef,
		log:         log,
		byFullPath:  make(map[string][]lineRow),
		byBaseName:  make(map[string][]lineRow),
		funcsByName: make(map[string]*Function),
	}

	if err := idx.buildLineTables(); err != nil {
		return nil, err
	}
	if err := idx.buildFunctions(); err != nil {
		return nil, err
	}

	sort.Slice(idx.allRows, func(i, j int) bool { return idx.allRows[i].addr < idx.allRows[j].addr })
	sort.Slice(idx.funcsByAddr, func(i, j int) bool { return idx.funcsByAddr[i].Low < idx.funcsByAddr[j].Low })

	return idx, nil
}

// ELF returns the underlying ELF file, used by the Inferior Controller to
// confirm the traced child's own binary mapping when resolving the PIE load
// base.
func (idx *Index) ELF() *elf.File {
	return idx.elf
}
