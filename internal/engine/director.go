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
	"github.com/vajexal/dbg/internal/breakpoint"
	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
	"github.com/vajexal/dbg/internal/eval"
	"github.com/vajexal/dbg/internal/govern"
	"github.com/vajexal/dbg/internal/inferior"
	"github.com/vajexal/dbg/internal/logger"
)

// Director is the Execution Director (spec section 4.5).
type Director struct {
	idx    DwarfIndex
	bpMgr  *breakpoint.Manager
	log    *logger.Logger
	spawn  Spawner

	state govern.State
	proc  Process
	ev    *eval.Evaluator

	path string
	argv []string

	// currentFile tracks the "current file" a bare-line breakpoint
	// specifier resolves against (spec section 3), updated after every
	// stop.
	currentFile string
}

// NewDirector builds an Execution Director over an already-loaded DWARF
// index and breakpoint catalog. spawn is the Inferior Controller entry
// point; pass SpawnReal in production, a fake in tests.
func NewDirector(idx DwarfIndex, bpMgr *breakpoint.Manager, log *logger.Logger, spawn Spawner) *Director {
	return &Director{
		idx:   idx,
		bpMgr: bpMgr,
		log:   log,
		spawn: spawn,
		state: govern.NoInferior,
	}
}

// State returns the debugger's current state-machine value.
func (d *Director) State() govern.State { return d.state }

// CurrentFile returns the source file of the last reported stop, used to
// resolve bare-line breakpoint specifiers (spec section 3).
func (d *Director) CurrentFile() string { return d.currentFile }

// Path returns the executable path passed to the most recent Run call, so
// that a bare `run` command (spec section 6, which takes no arguments) can
// restart the same program.
func (d *Director) Path() string { return d.path }

// Argv returns the argument vector passed to the most recent Run call.
func (d *Director) Argv() []string { return d.argv }

// Evaluator returns the Expression Evaluator bound to the running
// inferior's memory, or nil if no inferior is running.
func (d *Director) Evaluator() *eval.Evaluator { return d.ev }

// PC returns the inferior's current instruction pointer, translated to
// the file-relative address the DWARF Index understands (runtime address
// minus the PIE load base).
func (d *Director) PC() (dwarfx.Address, error) {
	if d.proc == nil {
		return 0, dbgerr.New(dbgerr.NotRunning)
	}
	regs, err := d.proc.ReadRegs()
	if err != nil {
		return 0, err
	}
	return dwarfx.Address(regs.Rip - d.proc.LoadBase()), nil
}

// Regs exposes the raw register file for the REPL's `info registers`
// command and as the Evaluator's register source.
func (d *Director) Regs() (inferior.Registers, error) {
	if d.proc == nil {
		return inferior.Registers{}, dbgerr.New(dbgerr.NotRunning)
	}
	return d.proc.ReadRegs()
}

// LoadBase returns the running inferior's PIE load base (0 for a non-PIE
// executable), the offset the Evaluator adds to link-time DW_OP_addr
// globals to get a runtime address.
func (d *Director) LoadBase() (uint64, error) {
	if d.proc == nil {
		return 0, dbgerr.New(dbgerr.NotRunning)
	}
	return d.proc.LoadBase(), nil
}

// VariablesInScope returns every variable in scope at the current stop, for
// the REPL's bare `print` command (spec section 4.1).
func (d *Director) VariablesInScope() ([]dwarfx.Variable, error) {
	pc, err := d.PC()
	if err != nil {
		return nil, err
	}
	return d.idx.VariablesInScope(pc)
}

// Run spawns a new inferior and resumes it (spec section 4.5 run). Any
// previously running inferior must have been stopped first.
func (d *Director) Run(path string, argv []string) (govern.StopEvent, error) {
	if d.proc != nil {
		return govern.StopEvent{}, dbgerr.New(dbgerr.AlreadyRunning)
	}

	proc, err := d.spawn(path, argv, d.log)
	if err != nil {
		return govern.StopEvent{}, err
	}

	d.path = path
	d.argv = argv
	d.proc = proc
	d.ev = eval.New(d.idx, proc)
	d.state = govern.Stopped

	if err := d.bpMgr.InstallAll(d.proc); err != nil {
		return govern.StopEvent{}, err
	}

	return d.resumeAndWait()
}

// Continue resumes a stopped inferior (spec section 4.5 continue).
func (d *Director) Continue() (govern.StopEvent, error) {
	if d.state != govern.Stopped {
		return govern.StopEvent{}, dbgerr.New(dbgerr.NotRunning)
	}
	return d.resumeAndWait()
}

// Stop kills the inferior unconditionally and returns to NoInferior (spec
// section 4.5 stop, and section 5 cancellation semantics). uninstall_all
// is deliberately skipped: the address space is being destroyed anyway.
func (d *Director) Stop() error {
	if d.proc == nil {
		return nil
	}
	err := d.proc.Kill()
	d.proc = nil
	d.ev = nil
	d.state = govern.NoInferior
	d.bpMgr.MarkAllUninstalled()
	return err
}

// Location returns the current SourceLocation (spec section 4.5 location).
func (d *Director) Location() (dwarfx.SourceLocation, error) {
	if d.state != govern.Stopped {
		return dwarfx.SourceLocation{}, dbgerr.New(dbgerr.NotRunning)
	}
	pc, err := d.PC()
	if err != nil {
		return dwarfx.SourceLocation{}, err
	}
	loc, ok := d.idx.AddrToSource(pc)
	if !ok {
		return dwarfx.SourceLocation{}, dbgerr.New(dbgerr.UnknownLocation, pc)
	}
	return loc, nil
}

// resumeAndWait implements the "resume-and-wait" composition (spec section
// 4.5): install all enabled breakpoints, continue, wait, and on a
// breakpoint hit run the hit-handling protocol before reporting to the
// caller.
func (d *Director) resumeAndWait() (govern.StopEvent, error) {
	if err := d.bpMgr.InstallAll(d.proc); err != nil {
		return govern.StopEvent{}, err
	}
	if err := d.proc.Continue(0); err != nil {
		return govern.StopEvent{}, err
	}
	return d.waitAndClassify()
}

// waitAndClassify blocks on the inferior's next stop and turns the raw
// wait4 result into a StopEvent, running the breakpoint hit-handling
// protocol (spec section 4.3) when the trap was one of ours.
func (d *Director) waitAndClassify() (govern.StopEvent, error) {
	res, err := d.proc.Wait()
	if err != nil {
		d.state = govern.NoInferior
		d.proc = nil
		d.ev = nil
		d.bpMgr.MarkAllUninstalled()
		return govern.StopEvent{}, err
	}

	switch res.Reason {
	case inferior.StopExited:
		// NoInferior, not Terminal: the inferior ran to completion, but the
		// breakpoint catalog and DWARF index survive so `run` can start a
		// fresh instance (spec section 5 resource ownership).
		d.state = govern.NoInferior
		d.proc = nil
		d.ev = nil
		d.bpMgr.MarkAllUninstalled()
		return govern.StopEvent{Kind: govern.Exited, ExitStatus: res.ExitStatus}, nil

	case inferior.StopSignalled:
		d.state = govern.NoInferior
		d.proc = nil
		d.ev = nil
		d.bpMgr.MarkAllUninstalled()
		return govern.StopEvent{Kind: govern.Signalled, Signal: res.Signal}, nil

	case inferior.StopTrap:
		d.state = govern.Stopped
		ev, err := d.classifyTrap()
		if err != nil {
			return govern.StopEvent{}, err
		}
		d.refreshCurrentFile()
		return ev, nil

	default:
		d.state = govern.Stopped
		d.refreshCurrentFile()
		return govern.StopEvent{Kind: govern.SingleStepComplete}, nil
	}
}

func (d *Director) classifyTrap() (govern.StopEvent, error) {
	regs, err := d.proc.ReadRegs()
	if err != nil {
		return govern.StopEvent{}, err
	}

	addr := dwarfx.Address(regs.Rip - 1 - d.proc.LoadBase())
	bp, ok := d.bpMgr.ByAddr(addr)
	if !ok {
		return govern.StopEvent{Kind: govern.SingleStepComplete}, nil
	}

	regs.Rip -= 1
	if err := d.proc.WriteRegs(regs); err != nil {
		return govern.StopEvent{}, err
	}

	if err := d.bpMgr.StepOverCurrent(d.proc, bp, func() error {
		if err := d.proc.SingleStep(); err != nil {
			return err
		}
		_, err := d.proc.Wait()
		return err
	}); err != nil {
		return govern.StopEvent{}, err
	}

	return govern.StopEvent{Kind: govern.BreakpointHit, BreakpointID: bp.ID}, nil
}

func (d *Director) refreshCurrentFile() {
	pc, err := d.PC()
	if err != nil {
		return
	}
	if loc, ok := d.idx.AddrToSource(pc); ok {
		d.currentFile = loc.File
	}
}
