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

package repl

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/vajexal/dbg/internal/breakpoint"
	"github.com/vajexal/dbg/internal/engine"
	"github.com/vajexal/dbg/internal/eval"
	"github.com/vajexal/dbg/internal/govern"
	"github.com/vajexal/dbg/internal/terminal"
)

const helpText = `commands:
  breakpoint|break|b <file:line>|<line>|<function>   set a breakpoint
  remove|rm <file:line>|<line>|<function>            remove a breakpoint
  list|l                                             list breakpoints
  enable|disable <file:line>|<line>|<function>       toggle a breakpoint
  clear                                               remove every breakpoint
  run|r                                               start the inferior
  stop                                                kill the inferior
  continue|cont|c                                     resume a stopped inferior
  step                                                 execute one source line
  step-in                                              step into a call
  step-out                                             run until the caller resumes
  print|p [path]                                       print a value, or every in-scope variable
  set <path> [=] <value>                               assign a value
  location|loc                                         print the current source location
  callstack|bt                                         print the call stack
  info registers|regs                                  print the register file
  help|h                                                print this text
  quit|q                                               leave the debugger
`

// Run drives the REPL loop: read a line, parse it, dispatch it against dir,
// print the result, repeat until `quit` or end of input (spec section 6).
// path and argv are the executable and arguments given on the command line,
// used the first time (and every time) the user types `run`.
func Run(term terminal.Terminal, dir *engine.Director, path string, argv []string) error {
	for {
		line, err := term.ReadLine("(dbg) ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		cmd, err := ParseCommand(line, dir.CurrentFile())
		if err != nil {
			term.Print(terminal.StyleError, err.Error())
			continue
		}

		if cmd.Kind == CmdQuit {
			return nil
		}
		if cmd.Kind == CmdEmpty {
			continue
		}

		if err := dispatch(term, dir, cmd, path, argv); err != nil {
			term.Print(terminal.StyleError, err.Error())
		}
	}
}

func dispatch(term terminal.Terminal, dir *engine.Director, cmd Command, path string, argv []string) error {
	switch cmd.Kind {
	case CmdBreakpoint:
		bp, err := dir.AddBreakpoint(cmd.Spec)
		if err != nil {
			return err
		}
		term.Printf(terminal.StyleFeedback, "breakpoint %d at %s", bp.ID, bp.Addr)
		return nil

	case CmdRemove:
		if err := dir.RemoveBreakpoint(cmd.Spec); err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, "removed")
		return nil

	case CmdList:
		printBreakpoints(term, dir.ListBreakpoints())
		return nil

	case CmdEnable:
		if err := dir.EnableBreakpoint(cmd.Spec); err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, "enabled")
		return nil

	case CmdDisable:
		if err := dir.DisableBreakpoint(cmd.Spec); err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, "disabled")
		return nil

	case CmdClear:
		if err := dir.ClearBreakpoints(); err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, "cleared")
		return nil

	case CmdRun:
		runPath, runArgv := path, argv
		if dir.Path() != "" {
			runPath, runArgv = dir.Path(), dir.Argv()
		}
		ev, err := dir.Run(runPath, runArgv)
		if err != nil {
			return err
		}
		return printStop(term, dir, ev)

	case CmdStop:
		if err := dir.Stop(); err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, "stopped")
		return nil

	case CmdContinue:
		ev, err := dir.Continue()
		if err != nil {
			return err
		}
		return printStop(term, dir, ev)

	case CmdStep:
		ev, err := dir.Step()
		if err != nil {
			return err
		}
		return printStop(term, dir, ev)

	case CmdStepIn:
		ev, err := dir.StepIn()
		if err != nil {
			return err
		}
		return printStop(term, dir, ev)

	case CmdStepOut:
		ev, err := dir.StepOut()
		if err != nil {
			return err
		}
		return printStop(term, dir, ev)

	case CmdPrint:
		return printValue(term, dir, cmd)

	case CmdSet:
		return setValue(dir, cmd)

	case CmdLocation:
		loc, err := dir.Location()
		if err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, loc.String())
		return nil

	case CmdCallStack:
		return printCallStack(term, dir)

	case CmdRegisters:
		return printRegisters(term, dir)

	case CmdHelp:
		term.Print(terminal.StyleHelp, helpText)
		return nil

	default:
		return nil
	}
}

func printStop(term terminal.Terminal, dir *engine.Director, ev govern.StopEvent) error {
	switch ev.Kind {
	case govern.BreakpointHit:
		loc, err := dir.Location()
		if err == nil {
			term.Printf(terminal.StyleFeedback, "breakpoint %d hit at %s", ev.BreakpointID, loc)
			return nil
		}
		term.Printf(terminal.StyleFeedback, "breakpoint %d hit", ev.BreakpointID)
		return nil

	case govern.SingleStepComplete:
		loc, err := dir.Location()
		if err != nil {
			return err
		}
		term.Print(terminal.StyleFeedback, loc.String())
		return nil

	case govern.Exited:
		term.Printf(terminal.StyleFeedback, "inferior exited with status %d", ev.ExitStatus)
		return nil

	case govern.Signalled:
		term.Printf(terminal.StyleFeedback, "inferior terminated by signal %d", ev.Signal)
		return nil

	default:
		return nil
	}
}

func printBreakpoints(term terminal.Terminal, bps []*breakpoint.Breakpoint) {
	if len(bps) == 0 {
		term.Print(terminal.StyleFeedback, "no breakpoints")
		return
	}
	for _, bp := range bps {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		term.Printf(terminal.StyleFeedback, "%d: %s (%s, %d hits)", bp.ID, bp.Addr, status, bp.HitCount())
	}
}

func printValue(term terminal.Terminal, dir *engine.Director, cmd Command) error {
	pc, err := dir.PC()
	if err != nil {
		return err
	}
	regs, err := dir.Regs()
	if err != nil {
		return err
	}
	loadBase, err := dir.LoadBase()
	if err != nil {
		return err
	}

	if !cmd.HasPath {
		vars, err := dir.VariablesInScope()
		if err != nil {
			return err
		}
		for _, v := range vars {
			loc, err := dir.Evaluator().Resolve(eval.Path{Root: v.Name}, pc, regs, loadBase)
			if err != nil {
				term.Printf(terminal.StyleError, "%s: %v", v.Name, err)
				continue
			}
			val, err := dir.Evaluator().Format(loc)
			if err != nil {
				term.Printf(terminal.StyleError, "%s: %v", v.Name, err)
				continue
			}
			term.Printf(terminal.StyleFeedback, "%s %s = %s", v.Type.Name, v.Name, val)
		}
		return nil
	}

	loc, err := dir.Evaluator().Resolve(cmd.Path, pc, regs, loadBase)
	if err != nil {
		return err
	}
	val, err := dir.Evaluator().Format(loc)
	if err != nil {
		return err
	}
	term.Printf(terminal.StyleFeedback, "%s %s = %s", loc.Type.Name, pathText(cmd.Path), val)
	return nil
}

func setValue(dir *engine.Director, cmd Command) error {
	pc, err := dir.PC()
	if err != nil {
		return err
	}
	regs, err := dir.Regs()
	if err != nil {
		return err
	}
	loadBase, err := dir.LoadBase()
	if err != nil {
		return err
	}

	loc, err := dir.Evaluator().Resolve(cmd.Path, pc, regs, loadBase)
	if err != nil {
		return err
	}
	return dir.Evaluator().Set(loc, cmd.Literal)
}

func printCallStack(term terminal.Terminal, dir *engine.Director) error {
	frames, err := dir.CallStack()
	if err != nil {
		return err
	}
	for i, f := range frames {
		style := terminal.StyleFeedback
		if i > 0 {
			style = terminal.StyleFeedbackSecondary
		}
		term.Printf(style, "#%d %s (%s)", i, f.Function, f.Location)
	}
	return nil
}

func printRegisters(term terminal.Terminal, dir *engine.Director) error {
	regs, err := dir.Regs()
	if err != nil {
		return err
	}
	term.Printf(terminal.StyleFeedback, "rip=0x%x rsp=0x%x rbp=0x%x", regs.Rip, regs.Rsp, regs.Rbp)
	term.Printf(terminal.StyleFeedbackSecondary, "rax=0x%x rbx=0x%x rcx=0x%x rdx=0x%x", regs.Rax, regs.Rbx, regs.Rcx, regs.Rdx)
	term.Printf(terminal.StyleFeedbackSecondary, "rsi=0x%x rdi=0x%x", regs.Rsi, regs.Rdi)
	term.Printf(terminal.StyleFeedbackSecondary, "r8=0x%x r9=0x%x r10=0x%x r11=0x%x r12=0x%x r13=0x%x r14=0x%x r15=0x%x",
		regs.R8, regs.R9, regs.R10, regs.R11, regs.R12, regs.R13, regs.R14, regs.R15)
	term.Printf(terminal.StyleFeedbackSecondary, "eflags=0x%x", regs.Eflags)
	return nil
}

// pathText reconstructs the textual form of a parsed path for display next
// to a printed value, since the REPL discards the original command text.
func pathText(p eval.Path) string {
	var sb strings.Builder
	for _, op := range p.PrefixOps {
		sb.WriteByte(byte(op))
	}
	sb.WriteString(p.Root)
	for _, suf := range p.Suffixes {
		if suf.HasIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(suf.Index))
			sb.WriteByte(']')
		} else {
			sb.WriteByte('.')
			sb.WriteString(suf.Field)
		}
	}
	return sb.String()
}
