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
	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
)

// Memory is the Inferior Controller surface the Evaluator reads/writes
// variable contents through.
type Memory interface {
	ReadMem(addr uint64, buf []byte) error
	WriteMem(addr uint64, buf []byte) error
}

// Registers is the Inferior Controller surface the Evaluator uses for
// register-resident variables and frame_base evaluation.
type Registers interface {
	DwarfRegister(n int) (uint64, error)
}

// TypeGraph is the DWARF Index surface the Evaluator needs: enough to
// resolve a root variable's declaring function and location, plus
// function-pointer-to-name lookups. *dwarfx.Index satisfies this
// directly; tests substitute a synthetic graph so the Evaluator's path
// algebra can be exercised without a real ELF/DWARF binary.
type TypeGraph interface {
	VariablesInScope(pc dwarfx.Address) ([]dwarfx.Variable, error)
	EnclosingFunction(pc dwarfx.Address) (*dwarfx.Function, bool)
	FunctionAt(addr dwarfx.Address) (*dwarfx.Function, bool)
	ResolveFunction(name string) (dwarfx.Address, error)
}

// Evaluator is the Expression Evaluator (spec section 4.4).
type Evaluator struct {
	idx TypeGraph
	mem Memory
}

// New builds an Evaluator over idx's type/variable graph and mem's
// inferior memory.
func New(idx TypeGraph, mem Memory) *Evaluator {
	return &Evaluator{idx: idx, mem: mem}
}

// Located is the address-and-type pair a Path resolves to. A
// register-resident variable (or the yield of `&`) has no memory address;
// Raw then holds the resolved value directly.
type Located struct {
	Type    *dwarfx.TypeInfo
	Addr    uint64
	HasAddr bool
	Raw     uint64 // valid when !HasAddr
}

// Resolve walks path starting from the variable in scope at pc (spec
// section 4.4 steps 1-4). loadBase is added to link-time addresses (DWARF
// DW_OP_addr globals) to get the runtime address in a PIE binary; it is a
// no-op (0) for a non-PIE executable.
func (e *Evaluator) Resolve(path Path, pc dwarfx.Address, regs Registers, loadBase uint64) (Located, error) {
	root, err := e.resolveRoot(path.Root, pc, regs, loadBase)
	if err != nil {
		return Located{}, err
	}

	cur := root
	for _, suf := range path.Suffixes {
		cur, err = e.applySuffix(cur, suf)
		if err != nil {
			return Located{}, err
		}
	}

	for i := len(path.PrefixOps) - 1; i >= 0; i-- {
		cur, err = e.applyPrefix(cur, path.PrefixOps[i])
		if err != nil {
			return Located{}, err
		}
	}

	return cur, nil
}

func (e *Evaluator) resolveRoot(name string, pc dwarfx.Address, regs Registers, loadBase uint64) (Located, error) {
	vars, err := e.idx.VariablesInScope(pc)
	if err != nil {
		return Located{}, err
	}

	for _, v := range vars {
		if v.Name != name {
			continue
		}
		return e.locateVariable(v, pc, regs, loadBase)
	}
	return Located{}, dbgerr.New(dbgerr.UnknownVariable, name)
}

func (e *Evaluator) locateVariable(v dwarfx.Variable, pc dwarfx.Address, regs Registers, loadBase uint64) (Located, error) {
	switch v.Location.Kind {
	case dwarfx.LocationRegister:
		raw, err := regs.DwarfRegister(v.Location.Register)
		if err != nil {
			return Located{}, err
		}
		return Located{Type: v.Type, Raw: maskToWidth(raw, v.Type.ByteSize())}, nil

	case dwarfx.LocationFrameOffset:
		fn, ok := e.idx.EnclosingFunction(pc)
		if !ok {
			return Located{}, dbgerr.New(dbgerr.UnknownLocation, pc)
		}
		fb, err := ReadFrameBase(fn.FrameBase, regs)
		if err != nil {
			return Located{}, err
		}
		addr := uint64(int64(fb) + v.Location.Offset)
		return Located{Type: v.Type, Addr: addr, HasAddr: true}, nil

	case dwarfx.LocationStaticAddress:
		return Located{Type: v.Type, Addr: v.Location.Addr + loadBase, HasAddr: true}, nil

	default:
		return Located{}, dbgerr.New(dbgerr.MalformedDebugInfo, "unsupported variable location kind")
	}
}

// ReadFrameBase evaluates a function's frame_base expression against its
// current register file. DW_OP_call_frame_cfa is approximated as rbp+16
// (return-address slot plus the saved frame pointer), matching the
// standard x86_64 System V prologue this debugger targets; full CFI
// unwinding is out of scope (spec section 9 Design Notes).
func ReadFrameBase(fb dwarfx.FrameBaseExpr, regs Registers) (uint64, error) {
	switch fb.Kind {
	case dwarfx.FrameBaseRegister:
		return regs.DwarfRegister(fb.Register)
	case dwarfx.FrameBaseCFA:
		rbp, err := regs.DwarfRegister(6) // DWARF reg 6 = rbp
		if err != nil {
			return 0, err
		}
		return rbp + 16, nil
	default:
		return 0, dbgerr.New(dbgerr.MalformedDebugInfo, "unsupported frame_base kind")
	}
}

func maskToWidth(v uint64, width int64) uint64 {
	if width <= 0 || width >= 8 {
		return v
	}
	return v & ((uint64(1) << (uint(width) * 8)) - 1)
}
