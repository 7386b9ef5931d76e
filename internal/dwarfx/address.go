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

package dwarfx

import (
	"fmt"
	"path/filepath"
)

// Address is a 64-bit virtual address, DWARF-relative until a load base has
// been added by the caller (spec section 3, Position Independent
// Executables).
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// SourceLocation is a (file, 1-based line) pair. Two locations compare
// equal only when their file paths resolve to the same canonical identity,
// which canonicalPath enforces by cleaning and absolutising both paths
// before comparison.
type SourceLocation struct {
	File string
	Line int
}

func (s SourceLocation) String() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// Equal reports whether s and o name the same file and line.
func (s SourceLocation) Equal(o SourceLocation) bool {
	return s.Line == o.Line && canonicalPath(s.File) == canonicalPath(o.File)
}

func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
