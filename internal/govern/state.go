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

// Package govern defines the debugger's top-level state machine (spec
// section 3): NoInferior, Running, Stopped, and the terminal state reached
// by quit.
package govern

// State is the condition of the debugger with respect to its inferior.
type State int

// The states of the debugger state machine.
const (
	NoInferior State = iota
	Running
	Stopped
	Terminal
)

func (s State) String() string {
	switch s {
	case NoInferior:
		return "NoInferior"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Terminal:
		return "Terminal"
	}
	return ""
}
