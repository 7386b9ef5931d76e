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

// Package colorterm implements terminal.Terminal with coloured output,
// grounded on the teacher's debugger/terminal/colorterm package. Where the
// teacher hand-rolls ANSI escapes via its easyterm/ansi helper, this
// package uses github.com/fatih/color; where the teacher queries terminal
// geometry via raw termios ioctls, this package uses golang.org/x/term.
package colorterm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/vajexal/dbg/internal/terminal"
)

var (
	promptColor   = color.New(color.FgCyan, color.Bold)
	helpColor     = color.New(color.FgWhite)
	feedbackColor = color.New(color.FgWhite)
	secondaryColor = color.New(color.FgHiBlack)
	errorColor    = color.New(color.FgRed, color.Bold)
)

// ColorTerminal is the coloured terminal.Terminal implementation. It reads
// whole lines via bufio, matching the teacher's plainterm line discipline,
// but styles every printed line the way the teacher's colorterm does.
type ColorTerminal struct {
	in  *bufio.Reader
	out io.Writer

	// width is the terminal's column count at startup, queried once via
	// term.GetSize; used only to decide how aggressively to truncate long
	// aggregate values in `print` output. A lookup failure (output is not
	// a real tty) leaves width at 0, meaning "don't truncate".
	width int
}

// New builds a ColorTerminal reading from in and writing to out. fd is the
// file descriptor backing out, used for the one-time geometry query.
func New(in io.Reader, out io.Writer, fd int) *ColorTerminal {
	ct := &ColorTerminal{in: bufio.NewReader(in), out: out}
	if w, _, err := term.GetSize(fd); err == nil {
		ct.width = w
	}
	return ct
}

// IsRealTerminal reports whether fd refers to an interactive terminal,
// used by cmd/dbg to decide between ColorTerminal and plainterm's
// PlainTerminal absent an explicit -plain flag.
func IsRealTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// ReadLine implements terminal.Input.
func (ct *ColorTerminal) ReadLine(prompt string) (string, error) {
	promptColor.Fprint(ct.out, prompt)
	line, err := ct.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), trimEOF(err, line)
}

func trimEOF(err error, line string) error {
	if err == io.EOF && line != "" {
		return nil
	}
	return err
}

// Print implements terminal.Output.
func (ct *ColorTerminal) Print(style terminal.Style, s string) {
	ct.pen(style).Fprintln(ct.out, ct.clip(s))
}

// Printf implements terminal.Output.
func (ct *ColorTerminal) Printf(style terminal.Style, format string, args ...interface{}) {
	ct.Print(style, fmt.Sprintf(format, args...))
}

func (ct *ColorTerminal) pen(style terminal.Style) *color.Color {
	switch style {
	case terminal.StyleHelp:
		return helpColor
	case terminal.StyleFeedback:
		return feedbackColor
	case terminal.StyleFeedbackSecondary:
		return secondaryColor
	case terminal.StyleError:
		return errorColor
	default:
		return feedbackColor
	}
}

// clip truncates s to the terminal width, leaving an ellipsis marker, so a
// long struct or array value doesn't wrap unreadably across lines. A zero
// width (no tty detected) disables clipping.
func (ct *ColorTerminal) clip(s string) string {
	if ct.width <= 0 || len(s) <= ct.width {
		return s
	}
	if ct.width <= 1 {
		return s[:ct.width]
	}
	return s[:ct.width-1] + "…"
}

// Close implements terminal.Terminal. ColorTerminal never puts the tty
// into a non-canonical mode, so there is no state to restore.
func (ct *ColorTerminal) Close() {}

// Stdin/Stdout conveniences so cmd/dbg doesn't need its own fd plumbing.
var (
	StdinFd  = int(os.Stdin.Fd())
	StdoutFd = int(os.Stdout.Fd())
)
