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

package curated

import (
	"fmt"
	"strings"
)

// Values is the type used to specify arguments to Errorf.
type Values []interface{}

// curated is the concrete error type returned by Errorf. It is never
// exported; external code only ever sees the error interface.
type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error from a format string and arguments, in
// the manner of fmt.Errorf.
func Errorf(message string, values ...interface{}) error {
	return curated{
		message: message,
		values:  values,
	}
}

// Error returns the normalised error message: the removal of duplicate
// adjacent message parts produced by repeated wrapping.
//
// Implements the Go language error interface.
func (er curated) Error() string {
	s := fmt.Errorf(er.message, er.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}

	return strings.Join(p, ": ")
}

// Unwrap supports errors.Is/errors.As against any curated value nested in
// the Values list.
func (er curated) Unwrap() error {
	for _, v := range er.values {
		if e, ok := v.(error); ok {
			return e
		}
	}
	return nil
}

// head returns the leading part of the message, ie. the format string the
// error was created with.
func (er curated) head() string {
	return er.message
}

// Head returns the leading message of err, whether or not it is curated.
func Head(err error) string {
	if er, ok := err.(curated); ok {
		return er.head()
	}
	return err.Error()
}

// IsAny returns true if err was created by this package.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is returns true if err is a curated error whose leading message matches
// head exactly.
func Is(err error, head string) bool {
	if err == nil {
		return false
	}
	if er, ok := err.(curated); ok {
		return er.message == head
	}
	return false
}

// Has returns true if msg appears anywhere in the causal chain of err,
// including nested curated values passed as Errorf arguments.
func Has(err error, msg string) bool {
	if err == nil || !IsAny(err) {
		return false
	}
	if Is(err, msg) {
		return true
	}
	for _, v := range err.(curated).values {
		if e, ok := v.(error); ok {
			if Has(e, msg) {
				return true
			}
		}
	}
	return false
}
