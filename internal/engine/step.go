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
	"github.com/vajexal/dbg/internal/inferior"
)

// Step executes one source line (spec section 4.5 step / "next-line"):
// single-step repeatedly until the instruction pointer maps to a
// different line within the entry function, stepping straight through
// any call made along the way.
func (d *Director) Step() (govern.StopEvent, error) {
	if d.state != govern.Stopped {
		return govern.StopEvent{}, dbgerr.New(dbgerr.NotRunning)
	}

	startLine, startFn, err := d.currentLineAndFunc()
	if err != nil {
		return govern.StopEvent{}, err
	}

	return d.singleStepUntilLineChange(startLine, startFn)
}

// StepIn executes one instruction, then either stops at a newly entered
// function's declared entry address, or continues as Step would (spec
// section 4.5 step-in). Reporting the function's declared entry line
// rather than its first body line is documented current behavior.
func (d *Director) StepIn() (govern.StopEvent, error) {
	if d.state != govern.Stopped {
		return govern.StopEvent{}, dbgerr.New(dbgerr.NotRunning)
	}

	startLine, startFn, err := d.currentLineAndFunc()
	if err != nil {
		return govern.StopEvent{}, err
	}

	ev, ok, err := d.stepOnce()
	if ok || err != nil {
		return ev, err
	}

	pc, err := d.PC()
	if err != nil {
		return govern.StopEvent{}, err
	}
	fn, found := d.idx.EnclosingFunction(pc)
	if found && (startFn == nil || fn.Low != startFn.Low) && pc == fn.Low {
		d.refreshCurrentFile()
		return govern.StopEvent{Kind: govern.SingleStepComplete}, nil
	}

	return d.singleStepUntilLineChange(startLine, startFn)
}

// StepOut runs until the current function returns (spec section 4.5
// step-out): the return address is read from frame-pointer+8 (the x86_64
// System V layout) and a temporary, uncatalogued breakpoint is placed
// there.
func (d *Director) StepOut() (govern.StopEvent, error) {
	if d.state != govern.Stopped {
		return govern.StopEvent{}, dbgerr.New(dbgerr.NotRunning)
	}

	regs, err := d.proc.ReadRegs()
	if err != nil {
		return govern.StopEvent{}, err
	}

	var buf [8]byte
	if err := d.proc.ReadMem(regs.Rbp+8, buf[:]); err != nil {
		return govern.StopEvent{}, err
	}
	retAddr := leUint64(buf[:])

	orig, err := d.proc.ReadByte(retAddr)
	if err != nil {
		return govern.StopEvent{}, err
	}
	if err := d.proc.WriteByte(retAddr, 0xCC); err != nil {
		return govern.StopEvent{}, err
	}

	if err := d.proc.Continue(0); err != nil {
		return govern.StopEvent{}, err
	}
	res, err := d.proc.Wait()
	if err != nil {
		d.state = govern.NoInferior
		d.proc = nil
		d.ev = nil
		d.bpMgr.MarkAllUninstalled()
		return govern.StopEvent{}, err
	}

	if res.Reason != inferior.StopTrap {
		return d.finishNonTrapStop(res)
	}

	regs, err = d.proc.ReadRegs()
	if err != nil {
		return govern.StopEvent{}, err
	}
	regs.Rip -= 1
	if err := d.proc.WriteRegs(regs); err != nil {
		return govern.StopEvent{}, err
	}
	if err := d.proc.WriteByte(retAddr, orig); err != nil {
		return govern.StopEvent{}, err
	}

	d.refreshCurrentFile()
	return govern.StopEvent{Kind: govern.SingleStepComplete}, nil
}

// currentLineAndFunc captures the entry line/function pair a step
// algorithm compares against as it progresses.
func (d *Director) currentLineAndFunc() (int, *dwarfx.Function, error) {
	pc, err := d.PC()
	if err != nil {
		return 0, nil, err
	}
	loc, _ := d.idx.AddrToSource(pc)
	fn, _ := d.idx.EnclosingFunction(pc)
	return loc.Line, fn, nil
}

// stepOnce executes exactly one machine instruction and reports whether
// the inferior stopped for a non-single-step reason (exit/signal), in
// which case the caller should return its StopEvent immediately.
func (d *Director) stepOnce() (govern.StopEvent, bool, error) {
	if err := d.proc.SingleStep(); err != nil {
		return govern.StopEvent{}, true, err
	}
	res, err := d.proc.Wait()
	if err != nil {
		d.state = govern.NoInferior
		d.proc = nil
		d.ev = nil
		d.bpMgr.MarkAllUninstalled()
		return govern.StopEvent{}, true, err
	}
	if res.Reason != inferior.StopTrap {
		ev, err := d.finishNonTrapStop(res)
		return ev, true, err
	}
	return govern.StopEvent{}, false, nil
}

func (d *Director) finishNonTrapStop(res inferior.StopResult) (govern.StopEvent, error) {
	d.state = govern.NoInferior
	d.proc = nil
	d.ev = nil
	d.bpMgr.MarkAllUninstalled()
	switch res.Reason {
	case inferior.StopExited:
		return govern.StopEvent{Kind: govern.Exited, ExitStatus: res.ExitStatus}, nil
	default:
		return govern.StopEvent{Kind: govern.Signalled, Signal: res.Signal}, nil
	}
}

// singleStepUntilLineChange is the shared loop behind Step and the
// fallthrough half of StepIn: keep executing instructions until the
// program counter lands on a different line within the same function the
// step began in, stepping straight through any call made along the way
// (spec section 4.5 step).
func (d *Director) singleStepUntilLineChange(startLine int, startFn *dwarfx.Function) (govern.StopEvent, error) {
	for {
		ev, done, err := d.stepOnce()
		if done || err != nil {
			return ev, err
		}

		pc, err := d.PC()
		if err != nil {
			return govern.StopEvent{}, err
		}
		loc, hasLoc := d.idx.AddrToSource(pc)
		fn, _ := d.idx.EnclosingFunction(pc)

		sameFn := fn != nil && startFn != nil && fn.Low == startFn.Low
		if sameFn && hasLoc && loc.Line != startLine {
			d.refreshCurrentFile()
			return govern.StopEvent{Kind: govern.SingleStepComplete}, nil
		}
	}
}
