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

// Command dbg is an interactive source-level debugger for x86_64 Linux
// ELF/DWARF executables (spec section 1). It wires the DWARF Index,
// Inferior Controller, Breakpoint Manager, Expression Evaluator and
// Execution Director together behind a REPL front end, in the style of the
// teacher's gopher2600.go entry point: flag parsing via the standard
// library's flag package, a ring-buffer Logger shared across components,
// and a dedicated goroutine turning SIGINT into a single, well-defined
// debugger action.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/vajexal/dbg/internal/breakpoint"
	"github.com/vajexal/dbg/internal/dwarfx"
	"github.com/vajexal/dbg/internal/engine"
	"github.com/vajexal/dbg/internal/logger"
	"github.com/vajexal/dbg/internal/repl"
	"github.com/vajexal/dbg/internal/terminal"
	"github.com/vajexal/dbg/internal/terminal/colorterm"
	"github.com/vajexal/dbg/internal/terminal/plainterm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dbg", flag.ContinueOnError)
	argsFlag := fs.String("args", "", "space-separated arguments forwarded to the inferior")
	plainFlag := fs.Bool("plain", false, "force a non-colour terminal")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: dbg [-args \"...\"] [-plain] <executable-path>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	path := fs.Arg(0)

	var argv []string
	if *argsFlag != "" {
		argv = strings.Fields(*argsFlag)
	}

	log := logger.NewLogger(1000)

	idx, err := dwarfx.Load(path, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbg: %v\n", err)
		return 1
	}

	bpMgr := breakpoint.NewManager(idx)
	dir := engine.NewDirector(idx, bpMgr, log, engine.SpawnReal)

	term := buildTerminal(*plainFlag)
	defer term.Close()

	stopSigs := make(chan os.Signal, 1)
	signal.Notify(stopSigs, os.Interrupt)
	go func() {
		for range stopSigs {
			dir.Stop()
		}
	}()

	if err := repl.Run(term, dir, path, argv); err != nil {
		fmt.Fprintf(os.Stderr, "dbg: %v\n", err)
		return 1
	}
	return 0
}

// buildTerminal picks colorterm or plainterm the way the teacher's main
// picks its terminal implementation: an explicit -plain flag always wins;
// otherwise colour output is used only when stdout is a real tty.
func buildTerminal(plain bool) terminal.Terminal {
	if !plain && colorterm.IsRealTerminal(colorterm.StdoutFd) {
		return colorterm.New(os.Stdin, os.Stdout, colorterm.StdoutFd)
	}
	return plainterm.New(os.Stdin, os.Stdout)
}
