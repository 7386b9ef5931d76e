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

// ReadMem copies len(buf) bytes from the tracee's address space starting at
// addr into buf.
func (inf *Inferior) ReadMem(addr uint64, buf []byte) error {
	n, err := unix.PtracePeekData(inf.pid, uintptr(addr), buf)
	if err != nil {
		return dbgerr.New(dbgerr.InferiorGone, err)
	}
	if n != len(buf) {
		return dbgerr.New(dbgerr.InferiorGone, "short read from tracee memory")
	}
	return nil
}

// WriteMem copies buf into the tracee's address space starting at addr,
// used both for `set` (variable mutation) and for installing/removing the
// 0xCC breakpoint trap byte.
func (inf *Inferior) WriteMem(addr uint64, buf []byte) error {
	n, err := unix.PtracePokeData(inf.pid, uintptr(addr), buf)
	if err != nil {
		return dbgerr.New(dbgerr.InferiorGone, err)
	}
	if n != len(buf) {
		return dbgerr.New(dbgerr.InferiorGone, "short write to tracee memory")
	}
	return nil
}

// ReadByte and WriteByte are the single-byte convenience wrappers the
// Breakpoint Manager uses to save/restore the instruction byte a trap
// replaces.
func (inf *Inferior) ReadByte(addr uint64) (byte, error) {
	var b [1]byte
	if err := inf.ReadMem(addr, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (inf *Inferior) WriteByte(addr uint64, b byte) error {
	return inf.WriteMem(addr, []byte{b})
}
