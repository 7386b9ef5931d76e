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

// Package plainterm implements terminal.Terminal with no colour and no
// geometry queries, grounded on the teacher's debugger/terminal/plainterm
// package: "as simple as simple can be". Selected by the -plain flag, or
// automatically when stdout is not a real terminal (a pipe or redirect).
package plainterm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vajexal/dbg/internal/terminal"
)

// PlainTerminal is the uncoloured terminal.Terminal implementation.
type PlainTerminal struct {
	in  *bufio.Reader
	out io.Writer
}

// New builds a PlainTerminal reading from in and writing to out.
func New(in io.Reader, out io.Writer) *PlainTerminal {
	return &PlainTerminal{in: bufio.NewReader(in), out: out}
}

// ReadLine implements terminal.Input.
func (pt *PlainTerminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(pt.out, prompt)
	line, err := pt.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	trimmed := strings.TrimRight(line, "\r\n")
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	return trimmed, nil
}

// Print implements terminal.Output, prefixing StyleError lines with "*"
// the way the teacher's plainterm does.
func (pt *PlainTerminal) Print(style terminal.Style, s string) {
	if style == terminal.StyleError {
		s = "* " + s
	}
	fmt.Fprintln(pt.out, s)
}

// Printf implements terminal.Output.
func (pt *PlainTerminal) Printf(style terminal.Style, format string, args ...interface{}) {
	pt.Print(style, fmt.Sprintf(format, args...))
}

// Close implements terminal.Terminal; PlainTerminal never touches tty
// mode, so there is nothing to restore.
func (pt *PlainTerminal) Close() {}
