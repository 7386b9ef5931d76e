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

// Package terminal is the REPL's display and input surface (SPEC_FULL.md
// section 2 ambient stack). It is deliberately thin: the command grammar
// and its interpretation live in internal/repl, leaving this package only
// the concerns of reading a line and printing a styled one.
package terminal

// Style identifies the category of a line of REPL output, grounded on the
// teacher's debugger/terminal/style.go. A terminal implementation decides
// how to render each style; colorterm maps them to colours, plainterm
// ignores them beyond a leading marker for StyleError.
type Style int

// The styles the REPL prints with.
const (
	// StyleEcho is the user's own command text, echoed back in non-
	// interactive or piped sessions.
	StyleEcho Style = iota

	// StyleHelp is output from the `help` command.
	StyleHelp

	// StyleFeedback is the primary result of a command: a print value, a
	// location, a breakpoint listing row.
	StyleFeedback

	// StyleFeedbackSecondary is auxiliary detail alongside StyleFeedback,
	// such as a call-stack frame under the innermost one.
	StyleFeedbackSecondary

	// StyleError reports a command failure. Unlike every other style,
	// StyleError is never suppressed.
	StyleError
)
