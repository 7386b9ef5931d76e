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

package govern

import "fmt"

// EventKind tags the variant of a StopEvent.
type EventKind int

const (
	BreakpointHit EventKind = iota
	SingleStepComplete
	Exited
	Signalled
	NoInferiorEvent
)

// StopEvent is the classified result of waiting for the inferior to stop,
// as described by spec section 3.
type StopEvent struct {
	Kind EventKind

	// BreakpointID is valid when Kind == BreakpointHit.
	BreakpointID int

	// ExitStatus is valid when Kind == Exited.
	ExitStatus int

	// Signal is valid when Kind == Signalled.
	Signal int
}

func (e StopEvent) String() string {
	switch e.Kind {
	case BreakpointHit:
		return fmt.Sprintf("breakpoint-hit(%d)", e.BreakpointID)
	case SingleStepComplete:
		return "single-step-complete"
	case Exited:
		return fmt.Sprintf("exited(%d)", e.ExitStatus)
	case Signalled:
		return fmt.Sprintf("signalled(%d)", e.Signal)
	case NoInferiorEvent:
		return "no-inferior"
	}
	return "unknown-event"
}
