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
	"strconv"
	"strings"

	"github.com/vajexal/dbg/internal/breakpoint"
	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/eval"
)

// CommandKind tags which REPL command a line names (spec section 6, plus
// SPEC_FULL.md section 6 expansion: callstack/bt and info registers/regs).
type CommandKind int

const (
	CmdEmpty CommandKind = iota
	CmdBreakpoint
	CmdRemove
	CmdList
	CmdEnable
	CmdDisable
	CmdClear
	CmdRun
	CmdStop
	CmdContinue
	CmdStep
	CmdStepIn
	CmdStepOut
	CmdPrint
	CmdSet
	CmdLocation
	CmdHelp
	CmdQuit
	CmdCallStack
	CmdRegisters
)

// Command is the parsed form of one REPL input line.
type Command struct {
	Kind CommandKind

	Spec breakpoint.Specifier // CmdBreakpoint, CmdRemove, CmdEnable, CmdDisable

	HasPath bool // CmdPrint: false means "print every in-scope variable"
	Path    eval.Path
	Literal eval.Literal // CmdSet
}

// ParseCommand tokenises one line of REPL input into a Command. currentFile
// is used to resolve a bare-line breakpoint specifier (spec section 3); the
// caller supplies Director.CurrentFile().
func ParseCommand(line string, currentFile string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: CmdEmpty}, nil
	}

	fields := strings.SplitN(line, " ", 2)
	verb := fields[0]
	var rest string
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}

	switch verb {
	case "breakpoint", "break", "b":
		spec, err := parseSpecifier(rest, currentFile)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdBreakpoint, Spec: spec}, nil

	case "remove", "rm":
		spec, err := parseSpecifier(rest, currentFile)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdRemove, Spec: spec}, nil

	case "enable":
		spec, err := parseSpecifier(rest, currentFile)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdEnable, Spec: spec}, nil

	case "disable":
		spec, err := parseSpecifier(rest, currentFile)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdDisable, Spec: spec}, nil

	case "list", "l":
		return Command{Kind: CmdList}, nil

	case "clear":
		return Command{Kind: CmdClear}, nil

	case "run", "r":
		return Command{Kind: CmdRun}, nil

	case "stop":
		return Command{Kind: CmdStop}, nil

	case "continue", "cont", "c":
		return Command{Kind: CmdContinue}, nil

	case "step":
		return Command{Kind: CmdStep}, nil

	case "step-in":
		return Command{Kind: CmdStepIn}, nil

	case "step-out":
		return Command{Kind: CmdStepOut}, nil

	case "print", "p":
		if rest == "" {
			return Command{Kind: CmdPrint, HasPath: false}, nil
		}
		path, err := parsePath(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdPrint, HasPath: true, Path: path}, nil

	case "set":
		pathText, valueText, err := splitPathAndValue(rest)
		if err != nil {
			return Command{}, err
		}
		path, err := parsePath(pathText)
		if err != nil {
			return Command{}, err
		}
		lit, err := parseLiteral(valueText)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdSet, Path: path, Literal: lit}, nil

	case "location", "loc":
		return Command{Kind: CmdLocation}, nil

	case "callstack", "bt":
		return Command{Kind: CmdCallStack}, nil

	case "info":
		if rest == "registers" {
			return Command{Kind: CmdRegisters}, nil
		}
		return Command{}, dbgerr.New(dbgerr.ParseError, "unknown info subcommand: "+rest)

	case "regs":
		return Command{Kind: CmdRegisters}, nil

	case "help", "h":
		return Command{Kind: CmdHelp}, nil

	case "quit", "q":
		return Command{Kind: CmdQuit}, nil

	default:
		return Command{}, dbgerr.New(dbgerr.ParseError, "unknown command: "+verb)
	}
}

// parseSpecifier parses a breakpoint target: `<file>:<line>`, a bare
// `<line>` (resolved against currentFile), or a `<function>` name (spec
// section 3).
func parseSpecifier(s string, currentFile string) (breakpoint.Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return breakpoint.Specifier{}, dbgerr.New(dbgerr.ParseError, "expected a breakpoint location")
	}

	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		file := s[:idx]
		lineText := s[idx+1:]
		line, err := strconv.Atoi(lineText)
		if err != nil {
			return breakpoint.Specifier{}, dbgerr.New(dbgerr.ParseError, "non-integer line number: "+s)
		}
		return breakpoint.Specifier{Kind: breakpoint.SpecifierFileLine, File: file, Line: line}, nil
	}

	if line, err := strconv.Atoi(s); err == nil {
		return breakpoint.Specifier{Kind: breakpoint.SpecifierLine, File: currentFile, Line: line}, nil
	}

	return breakpoint.Specifier{Kind: breakpoint.SpecifierFunction, Function: s}, nil
}
