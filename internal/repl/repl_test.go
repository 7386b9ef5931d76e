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
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/vajexal/dbg/internal/breakpoint"
	"github.com/vajexal/dbg/internal/dwarfx"
	"github.com/vajexal/dbg/internal/engine"
	"github.com/vajexal/dbg/internal/logger"
	"github.com/vajexal/dbg/internal/terminal"
)

// fakeTerminal feeds a scripted sequence of input lines to the REPL loop
// and records every printed line for inspection.
type fakeTerminal struct {
	lines  []string
	pos    int
	output []string
}

func (ft *fakeTerminal) ReadLine(prompt string) (string, error) {
	if ft.pos >= len(ft.lines) {
		return "", io.EOF
	}
	line := ft.lines[ft.pos]
	ft.pos++
	return line, nil
}

func (ft *fakeTerminal) Print(style terminal.Style, s string) {
	ft.output = append(ft.output, s)
}

func (ft *fakeTerminal) Printf(style terminal.Style, format string, args ...interface{}) {
	ft.output = append(ft.output, fmt.Sprintf(format, args...))
}

func (ft *fakeTerminal) Close() {}

// fakeIndex is a minimal engine.DwarfIndex with nothing registered; every
// lookup reports "not found", which is sufficient for tests that never let
// the Director reach a running, stopped state.
type fakeIndex struct{}

func (fakeIndex) VariablesInScope(dwarfx.Address) ([]dwarfx.Variable, error) { return nil, nil }
func (fakeIndex) EnclosingFunction(dwarfx.Address) (*dwarfx.Function, bool)  { return nil, false }
func (fakeIndex) FunctionAt(dwarfx.Address) (*dwarfx.Function, bool)        { return nil, false }
func (fakeIndex) ResolveFunction(string) (dwarfx.Address, error) {
	return 0, io.EOF
}
func (fakeIndex) AddrToSource(dwarfx.Address) (dwarfx.SourceLocation, bool) {
	return dwarfx.SourceLocation{}, false
}

func newTestDirector() *engine.Director {
	bpMgr := breakpoint.NewManager(nil)
	return engine.NewDirector(fakeIndex{}, bpMgr, logger.NewLogger(100), func(string, []string, *logger.Logger) (engine.Process, error) {
		return nil, io.EOF
	})
}

func TestRunPrintsHelpAndQuits(t *testing.T) {
	term := &fakeTerminal{lines: []string{"help", "quit"}}
	dir := newTestDirector()

	if err := Run(term, dir, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, line := range term.output {
		if strings.Contains(line, "breakpoint|break|b") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected help text in output, got %v", term.output)
	}
}

func TestRunReportsNotRunningError(t *testing.T) {
	term := &fakeTerminal{lines: []string{"step", "quit"}}
	dir := newTestDirector()

	if err := Run(term, dir, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(term.output) == 0 || !strings.Contains(term.output[0], "not running") {
		t.Fatalf("expected a not-running diagnostic, got %v", term.output)
	}
}

func TestRunExitsCleanlyOnEOF(t *testing.T) {
	term := &fakeTerminal{}
	dir := newTestDirector()

	if err := Run(term, dir, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunReportsParseError(t *testing.T) {
	term := &fakeTerminal{lines: []string{"frobnicate", "quit"}}
	dir := newTestDirector()

	if err := Run(term, dir, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(term.output) == 0 || !strings.Contains(term.output[0], "parse error") {
		t.Fatalf("expected a parse-error diagnostic, got %v", term.output)
	}
}
