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

package inferior

import (
	"bufio"
	"debug/elf"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// isPIE reports whether path's ELF header declares a shared-object/PIE
// type (ET_DYN), the case the spec's PIE load-base handling applies to
// (spec section 9 Design Notes); an ET_EXEC binary's DWARF addresses are
// already absolute and there is no load-time relocation to detect. Grounded on
// the teacher's own `relocatedAddress := le.Address + executableOrigin`
// gate in coprocessor/developer/dwarf.go, which only applies an origin
// offset for a relocatable executable.
func isPIE(path string) (bool, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return false, err
	}
	defer ef.Close()
	return ef.Type == elf.ET_DYN, nil
}

// readPIEBase finds the load address a position-independent executable was
// mapped at by scanning /proc/<pid>/maps for the first mapping whose path
// matches the tracee's own binary (spec section 9 Design Notes). Callers
// must only invoke this once isPIE has confirmed the binary is ET_DYN; a
// non-PIE executable has no such relocation and its load base is always 0.
func readPIEBase(pid int, path string) (uint64, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return parseMapsForBase(f, path)
}

// parseMapsForBase is the testable core of readPIEBase: given the contents
// of a /proc/<pid>/maps file, find the load address of path's first mapping.
func parseMapsForBase(r io.Reader, path string) (uint64, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	base := filepath.Base(path)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		mappedPath := fields[len(fields)-1]
		if mappedPath != abs && filepath.Base(mappedPath) != base {
			continue
		}

		addrRange := fields[0]
		lowStr, _, ok := strings.Cut(addrRange, "-")
		if !ok {
			continue
		}
		low, err := strconv.ParseUint(lowStr, 16, 64)
		if err != nil {
			continue
		}
		return low, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("no mapping found for %s", path)
}
