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

// Package curated is a helper package for the plain Go language error type.
// Externally, curated errors are referenced as plain errors (they implement
// the error interface). Internally an error is thought of as a chain of
// causes, and Error() normalises that chain so that wrapping a curated error
// again with the same leading message doesn't duplicate it in the output.
//
// For example:
//
//	func A() error {
//		if err := B(); err != nil {
//			return curated.Errorf("inferior: %v", err)
//		}
//		return nil
//	}
//
//	func B() error {
//		return curated.Errorf("inferior: process exited")
//	}
//
// Without de-duplication, A() would print "inferior: inferior: process
// exited". With it, the leading "inferior:" only appears once.
package curated
