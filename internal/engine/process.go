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

// Package engine is the Execution Director (spec section 4.5): it owns the
// debugger's state machine and composes the Inferior Controller, Breakpoint
// Manager, DWARF Index and Expression Evaluator into the REPL's run/
// continue/step/stop/print/set operations.
package engine

import (
	"github.com/vajexal/dbg/internal/dwarfx"
	"github.com/vajexal/dbg/internal/eval"
	"github.com/vajexal/dbg/internal/inferior"
	"github.com/vajexal/dbg/internal/logger"
)

// DwarfIndex is the DWARF Index surface the Execution Director drives. It
// embeds eval.TypeGraph so the same value can be handed straight to
// eval.New. *dwarfx.Index satisfies it directly; tests substitute a
// synthetic index built from hand-constructed data so stepping and
// call-stack walking are exercised without a real ELF/DWARF binary (spec
// section 2 ambient test tooling).
type DwarfIndex interface {
	eval.TypeGraph
	AddrToSource(addr dwarfx.Address) (dwarfx.SourceLocation, bool)
}

// Process is the Inferior Controller surface the Execution Director drives.
// *inferior.Inferior satisfies it directly; tests substitute a synthetic
// process so stepping algorithms are exercised without tracing a real
// child (spec section 2 ambient test tooling).
type Process interface {
	Continue(sig int) error
	SingleStep() error
	Wait() (inferior.StopResult, error)
	ReadRegs() (inferior.Registers, error)
	WriteRegs(inferior.Registers) error
	ReadByte(addr uint64) (byte, error)
	WriteByte(addr uint64, b byte) error
	ReadMem(addr uint64, buf []byte) error
	WriteMem(addr uint64, buf []byte) error
	Kill() error
	LoadBase() uint64
}

// Spawner starts a new traced inferior. The default, SpawnReal, wraps
// inferior.Spawn; tests inject a fake.
type Spawner func(path string, argv []string, log *logger.Logger) (Process, error)

// SpawnReal is the production Spawner, tracing an actual child process.
func SpawnReal(path string, argv []string, log *logger.Logger) (Process, error) {
	return inferior.Spawn(path, argv, log)
}
