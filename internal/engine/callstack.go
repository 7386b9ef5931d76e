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

package engine

import (
	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
	"github.com/vajexal/dbg/internal/govern"
)

// Frame is a single activation record in a call stack (SPEC_FULL.md
// section 4.5 expansion: `callstack`/`bt`).
type Frame struct {
	PC       dwarfx.Address
	Function string
	Location dwarfx.SourceLocation
}

// CallStack walks the saved frame-pointer chain from the current stop
// location outward, innermost frame first. Unwinding relies on the x86_64
// System V convention that a function's prologue saves the caller's rbp at
// [rbp] and the return address at [rbp+8] (the same convention StepOut
// reads its return address from); a frame lacking a mapped function or
// whose chain pointer looks implausible ends the walk rather than risking
// a wild read.
func (d *Director) CallStack() ([]Frame, error) {
	if d.state != govern.Stopped {
		return nil, dbgerr.New(dbgerr.NotRunning)
	}

	pc, err := d.PC()
	if err != nil {
		return nil, err
	}
	regs, err := d.proc.ReadRegs()
	if err != nil {
		return nil, err
	}

	var frames []Frame
	rbp := regs.Rbp
	cur := pc

	for i := 0; i < 256; i++ {
		fn, ok := d.idx.EnclosingFunction(cur)
		name := "??"
		if ok {
			name = fn.Name
		}
		loc, _ := d.idx.AddrToSource(cur)
		frames = append(frames, Frame{PC: cur, Function: name, Location: loc})

		if !ok || fn.Name == "main" || rbp == 0 {
			break
		}

		var buf [16]byte
		if err := d.proc.ReadMem(rbp, buf[:]); err != nil {
			break
		}
		savedRbp := leUint64(buf[0:8])
		retAddr := leUint64(buf[8:16])
		if retAddr == 0 || retAddr <= d.proc.LoadBase() {
			break
		}

		rbp = savedRbp
		cur = dwarfx.Address(retAddr - 1 - d.proc.LoadBase())
	}

	return frames, nil
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
