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

// Package dbgerr enumerates the error kinds a user command can fail with
// (spec section 7) and wraps them through curated so that a causal chain
// printed to the REPL is never duplicated.
package dbgerr

import (
	"strings"

	"github.com/vajexal/dbg/internal/curated"
)

// Kind identifies the category of a debugger error.
type Kind int

// The error kinds a user-facing command can report.
const (
	ParseError Kind = iota
	NotRunning
	AlreadyRunning
	UnknownLocation
	UnknownBreakpoint
	UnknownVariable
	TypeMismatch
	InferiorGone
	SpawnFailure
	MalformedDebugInfo
)

// message templates, one per Kind, in the style of the teacher's
// errors/messages.go.
var messages = map[Kind]string{
	ParseError:          "parse error: %v",
	NotRunning:          "not running: %v",
	AlreadyRunning:       "already running",
	UnknownLocation:     "unknown location: %v",
	UnknownBreakpoint:   "unknown breakpoint: %v",
	UnknownVariable:     "unknown variable: %v",
	TypeMismatch:        "type mismatch: %v",
	InferiorGone:        "inferior gone: %v",
	SpawnFailure:        "spawn failure: %v",
	MalformedDebugInfo:  "malformed debug info: %v",
}

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case NotRunning:
		return "NotRunning"
	case AlreadyRunning:
		return "AlreadyRunning"
	case UnknownLocation:
		return "UnknownLocation"
	case UnknownBreakpoint:
		return "UnknownBreakpoint"
	case UnknownVariable:
		return "UnknownVariable"
	case TypeMismatch:
		return "TypeMismatch"
	case InferiorGone:
		return "InferiorGone"
	case SpawnFailure:
		return "SpawnFailure"
	case MalformedDebugInfo:
		return "MalformedDebugInfo"
	}
	return "UnknownKind"
}

// New creates a curated error of the given kind. detail, if present, fills
// the kind's %v placeholder; kinds with no placeholder (AlreadyRunning)
// ignore it.
func New(k Kind, detail ...interface{}) error {
	msg := messages[k]
	if len(detail) == 0 || !strings.Contains(msg, "%v") {
		return curated.Errorf(msg)
	}
	return curated.Errorf(msg, detail[0])
}

// Is reports whether err was created by New with the given Kind. Because
// Kind values share a single message template per kind, this is equivalent
// to curated.Is against that template.
func Is(err error, k Kind) bool {
	return curated.Is(err, messages[k])
}
