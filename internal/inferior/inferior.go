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

// Package inferior is the Inferior Controller (spec section 4.2): it owns
// the traced child process, translating ptrace/wait4 into the handful of
// operations the rest of the debugger needs (spawn, resume, single-step,
// read/write registers and memory, kill).
//
// Grounded on the teacher's coprocessor/developer/yield mechanism for the
// "run until event" shape, and on the demo ptrace tracer in the retrieval
// pack (golang-debug/demo, which forks a child with Ptrace: true in
// SysProcAttr and drives it with syscall.Wait4/PtraceGetRegs/PtraceCont) for
// the raw ptrace protocol itself, translated here to golang.org/x/sys/unix.
package inferior

import (
	"os"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/logger"
)

// StopReason is why Wait returned control to the caller.
type StopReason int

const (
	StopUnknown StopReason = iota
	StopTrap               // SIGTRAP: breakpoint or single-step completion
	StopSignalled
	StopExited
)

// StopResult is the raw outcome of a wait4 call, before the Execution
// Director classifies it into a govern.StopEvent.
type StopResult struct {
	Reason     StopReason
	ExitStatus int
	Signal     int
}

// Inferior owns a single traced child process. All ptrace calls for a given
// tracee must be issued from the same OS thread, so every Inferior pins the
// goroutine that created it to its OS thread for the tracee's lifetime.
type Inferior struct {
	pid     int
	running bool // Spawn succeeded and Kill/exit hasn't been observed
	log     *logger.Logger

	pieBase    uint64
	pieBaseSet bool
	path       string
}

// Spawn starts path under ptrace, stopped at the first SIGTRAP following
// exec, before any of the program's own code has run. argv
// is the full argument vector including argv[0].
//
// syscall.ForkExec with Ptrace: true in SysProcAttr is the idiomatic Go
// equivalent of fork + PTRACE_TRACEME + exec; no ecosystem library wraps
// this any better than the standard library already does, so this is one
// of the few places the Inferior Controller reaches for syscall directly
// rather than golang.org/x/sys/unix.
func Spawn(path string, argv []string, log *logger.Logger) (*Inferior, error) {
	runtime.LockOSThread()

	if len(argv) == 0 {
		argv = []string{path}
	}

	pid, err := syscall.ForkExec(path, argv, &syscall.ProcAttr{
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()},
		Sys: &syscall.SysProcAttr{
			Ptrace:    true,
			Pdeathsig: syscall.SIGKILL,
		},
	})
	if err != nil {
		return nil, dbgerr.New(dbgerr.SpawnFailure, err)
	}

	inf := &Inferior{pid: pid, running: true, log: log, path: path}

	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		return nil, dbgerr.New(dbgerr.SpawnFailure, err)
	}
	if !ws.Stopped() || ws.StopSignal() != unix.SIGTRAP {
		return nil, dbgerr.New(dbgerr.SpawnFailure, "unexpected initial status from traced child")
	}

	if err := unix.PtraceSetOptions(pid, unix.PTRACE_O_EXITKILL); err != nil {
		log.Logf(logger.Allow, "inferior", "PtraceSetOptions failed: %v", err)
	}

	pie, err := isPIE(path)
	if err != nil {
		log.Logf(logger.Allow, "inferior", "could not determine executable type: %v", err)
	} else if pie {
		base, err := readPIEBase(pid, path)
		if err != nil {
			log.Logf(logger.Allow, "inferior", "could not determine PIE load base: %v", err)
		} else {
			inf.pieBase = base
			inf.pieBaseSet = true
		}
	}
	// a non-PIE (ET_EXEC) binary has no load-time relocation: pieBaseSet
	// stays false and LoadBase reports 0, matching its already-absolute
	// DWARF addresses.

	return inf, nil
}

// Pid returns the traced process's pid.
func (inf *Inferior) Pid() int { return inf.pid }

// Running reports whether the tracee is still alive (spawned and not yet
// reported exited/killed).
func (inf *Inferior) Running() bool { return inf.running }

// LoadBase returns the load address a position-independent executable was
// mapped at, or 0 for a non-PIE binary (spec section 9 Design Notes).
func (inf *Inferior) LoadBase() uint64 {
	if !inf.pieBaseSet {
		return 0
	}
	return inf.pieBase
}

// Continue resumes execution, delivering sig (0 for none).
func (inf *Inferior) Continue(sig int) error {
	if !inf.running {
		return dbgerr.New(dbgerr.NotRunning)
	}
	if err := unix.PtraceCont(inf.pid, sig); err != nil {
		return dbgerr.New(dbgerr.InferiorGone, err)
	}
	return nil
}

// SingleStep executes exactly one machine instruction.
func (inf *Inferior) SingleStep() error {
	if !inf.running {
		return dbgerr.New(dbgerr.NotRunning)
	}
	if err := unix.PtraceSingleStep(inf.pid); err != nil {
		return dbgerr.New(dbgerr.InferiorGone, err)
	}
	return nil
}

// Wait blocks until the tracee changes state (stop or exit) and reports why.
func (inf *Inferior) Wait() (StopResult, error) {
	var ws unix.WaitStatus
	_, err := unix.Wait4(inf.pid, &ws, 0, nil)
	if err != nil {
		inf.running = false
		return StopResult{}, dbgerr.New(dbgerr.InferiorGone, err)
	}

	switch {
	case ws.Exited():
		inf.running = false
		return StopResult{Reason: StopExited, ExitStatus: ws.ExitStatus()}, nil
	case ws.Signaled():
		inf.running = false
		return StopResult{Reason: StopSignalled, Signal: int(ws.Signal())}, nil
	case ws.Stopped() && ws.StopSignal() == unix.SIGTRAP:
		return StopResult{Reason: StopTrap}, nil
	case ws.Stopped():
		return StopResult{Reason: StopSignalled, Signal: int(ws.StopSignal())}, nil
	default:
		return StopResult{Reason: StopUnknown}, nil
	}
}

// Kill terminates the tracee unconditionally.
func (inf *Inferior) Kill() error {
	if !inf.running {
		return nil
	}
	if err := unix.Kill(inf.pid, unix.SIGKILL); err != nil {
		return dbgerr.New(dbgerr.InferiorGone, err)
	}
	var ws unix.WaitStatus
	unix.Wait4(inf.pid, &ws, 0, nil)
	inf.running = false
	return nil
}
