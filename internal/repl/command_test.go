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
	"testing"

	"github.com/vajexal/dbg/internal/breakpoint"
)

func TestParseCommandBreakpointForms(t *testing.T) {
	cmd, err := ParseCommand("b hello.c:10", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdBreakpoint || cmd.Spec.Kind != breakpoint.SpecifierFileLine || cmd.Spec.File != "hello.c" || cmd.Spec.Line != 10 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = ParseCommand("break 10", "hello.c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdBreakpoint || cmd.Spec.Kind != breakpoint.SpecifierLine || cmd.Spec.File != "hello.c" || cmd.Spec.Line != 10 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = ParseCommand("breakpoint foo", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdBreakpoint || cmd.Spec.Kind != breakpoint.SpecifierFunction || cmd.Spec.Function != "foo" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandAliases(t *testing.T) {
	cases := map[string]CommandKind{
		"l":        CmdList,
		"list":     CmdList,
		"r":        CmdRun,
		"run":      CmdRun,
		"c":        CmdContinue,
		"cont":     CmdContinue,
		"continue": CmdContinue,
		"step":     CmdStep,
		"step-in":  CmdStepIn,
		"step-out": CmdStepOut,
		"loc":      CmdLocation,
		"location": CmdLocation,
		"bt":       CmdCallStack,
		"callstack": CmdCallStack,
		"regs":     CmdRegisters,
		"h":        CmdHelp,
		"help":     CmdHelp,
		"q":        CmdQuit,
		"quit":     CmdQuit,
		"clear":    CmdClear,
		"stop":     CmdStop,
	}
	for line, want := range cases {
		cmd, err := ParseCommand(line, "")
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", line, err)
		}
		if cmd.Kind != want {
			t.Fatalf("%q: got kind %v, want %v", line, cmd.Kind, want)
		}
	}
}

func TestParseCommandInfoRegisters(t *testing.T) {
	cmd, err := ParseCommand("info registers", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdRegisters {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if _, err := ParseCommand("info nonsense", ""); err == nil {
		t.Fatalf("expected an error for an unknown info subcommand")
	}
}

func TestParseCommandEmptyLine(t *testing.T) {
	cmd, err := ParseCommand("   ", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdEmpty {
		t.Fatalf("expected CmdEmpty, got %+v", cmd)
	}
}

func TestParseCommandUnknownVerb(t *testing.T) {
	if _, err := ParseCommand("frobnicate", ""); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestParseCommandPrint(t *testing.T) {
	cmd, err := ParseCommand("p", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdPrint || cmd.HasPath {
		t.Fatalf("expected a path-less print, got %+v", cmd)
	}

	cmd, err = ParseCommand("print foo.bar[2]", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdPrint || !cmd.HasPath || cmd.Path.Root != "foo" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseCommandSet(t *testing.T) {
	cmd, err := ParseCommand("set x = 5", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdSet || cmd.Path.Root != "x" || cmd.Literal.Int != 5 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = ParseCommand("set *y 20", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != CmdSet || cmd.Path.Root != "y" || len(cmd.Path.PrefixOps) != 1 || cmd.Literal.Int != 20 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}
