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

package inferior

import (
	"golang.org/x/sys/unix"

	"github.com/vajexal/dbg/internal/dbgerr"
)

// Registers mirrors the subset of the amd64 general-purpose register file
// the rest of the debugger cares about: the instruction pointer for
// location tracking, the frame/stack pointers for frame_base evaluation,
// and the general-purpose registers for DW_OP_regN locations and the
// `info registers` REPL command.
type Registers struct {
	Rip, Rsp, Rbp                      uint64
	Rax, Rbx, Rcx, Rdx, Rsi, Rdi       uint64
	R8, R9, R10, R11, R12, R13, R14, R15 uint64
	Eflags                             uint64
}

// DwarfRegister returns the value of the DWARF register numbered n, for the
// x86_64 System V ABI's register-number assignment. Only the registers a
// DW_OP_regN expression can realistically name in code this debugger
// supports are covered; an out-of-range number yields MalformedDebugInfo.
func (r Registers) DwarfRegister(n int) (uint64, error) {
	switch n {
	case 0:
		return r.Rax, nil
	case 1:
		return r.Rdx, nil
	case 2:
		return r.Rcx, nil
	case 3:
		return r.Rbx, nil
	case 4:
		return r.Rsi, nil
	case 5:
		return r.Rdi, nil
	case 6:
		return r.Rbp, nil
	case 7:
		return r.Rsp, nil
	case 8:
		return r.R8, nil
	case 9:
		return r.R9, nil
	case 10:
		return r.R10, nil
	case 11:
		return r.R11, nil
	case 12:
		return r.R12, nil
	case 13:
		return r.R13, nil
	case 14:
		return r.R14, nil
	case 15:
		return r.R15, nil
	case 16:
		return r.Rip, nil
	default:
		return 0, dbgerr.New(dbgerr.MalformedDebugInfo, "unsupported DWARF register number", n)
	}
}

// ReadRegs fetches the tracee's current register file.
func (inf *Inferior) ReadRegs() (Registers, error) {
	var raw unix.PtraceRegs
	if err := unix.PtraceGetRegs(inf.pid, &raw); err != nil {
		return Registers{}, dbgerr.New(dbgerr.InferiorGone, err)
	}
	return fromPtraceRegs(raw), nil
}

// WriteRegs pushes a modified register file back into the tracee, used
// after rewinding Rip past an executed breakpoint trap byte.
func (inf *Inferior) WriteRegs(r Registers) error {
	raw := toPtraceRegs(r)
	if err := unix.PtraceSetRegs(inf.pid, &raw); err != nil {
		return dbgerr.New(dbgerr.InferiorGone, err)
	}
	return nil
}

func fromPtraceRegs(raw unix.PtraceRegs) Registers {
	return Registers{
		Rip: raw.Rip, Rsp: raw.Rsp, Rbp: raw.Rbp,
		Rax: raw.Rax, Rbx: raw.Rbx, Rcx: raw.Rcx, Rdx: raw.Rdx,
		Rsi: raw.Rsi, Rdi: raw.Rdi,
		R8: raw.R8, R9: raw.R9, R10: raw.R10, R11: raw.R11,
		R12: raw.R12, R13: raw.R13, R14: raw.R14, R15: raw.R15,
		Eflags: raw.Eflags,
	}
}

func toPtraceRegs(r Registers) unix.PtraceRegs {
	return unix.PtraceRegs{
		Rip: r.Rip, Rsp: r.Rsp, Rbp: r.Rbp,
		Rax: r.Rax, Rbx: r.Rbx, Rcx: r.Rcx, Rdx: r.Rdx,
		Rsi: r.Rsi, Rdi: r.Rdi,
		R8: r.R8, R9: r.R9, R10: r.R10, R11: r.R11,
		R12: r.R12, R13: r.R13, R14: r.R14, R15: r.R15,
		Eflags: r.Eflags,
	}
}
