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
	"debug/dwarf"
	"io"
	"path/filepath"
	"sort"

	"github.com/vajexal/dbg/internal/dbgerr"
)

// buildLineTables walks every compile unit's line-number program once and
// indexes each row by both its full path and its basename, so
// ResolveLine's "suffix-or-full path" match (spec section 4.1) is O(1)
// after the build.
func (idx *Index) buildLineTables() error {
	r := idx.data.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return dbgerr.New(dbgerr.MalformedDebugInfo, err)
		}
		if entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			if entry.Children {
				r.SkipChildren()
			}
			continue
		}

		lr, err := idx.data.LineReader(entry)
		if err != nil {
			return dbgerr.New(dbgerr.MalformedDebugInfo, err)
		}
		if lr != nil {
			var le dwarf.LineEntry
			for {
				if err := lr.Next(&le); err != nil {
					if err == io.EOF {
						break
					}
					return dbgerr.New(dbgerr.MalformedDebugInfo, err)
				}
				if le.EndSequence {
					continue
				}
				row := lineRow{file: le.File.Name, line: le.Line, addr: le.Address}
				idx.allRows = append(idx.allRows, row)
				idx.byFullPath[row.file] = append(idx.byFullPath[row.file], row)
				base := filepath.Base(row.file)
				idx.byBaseName[base] = append(idx.byBaseName[base], row)
			}
		}

		if entry.Children {
			r.SkipChildren()
		}
	}

	for k := range idx.byFullPath {
		sortRows(idx.byFullPath[k])
	}
	for k := range idx.byBaseName {
		sortRows(idx.byBaseName[k])
	}

	return nil
}

func sortRows(rows []lineRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].line != rows[j].line {
			return rows[i].line < rows[j].line
		}
		return rows[i].addr < rows[j].addr
	})
}

// ResolveLine finds the first instruction address at file:line. file may
// be a full path or a bare basename; a basename is matched against every
// compiled path sharing that basename (spec section 4.1). Ties - multiple
// rows at the same file:line - are broken by lowest address.
func (idx *Index) ResolveLine(file string, line int) (Address, error) {
	rows, ok := idx.byFullPath[file]
	if !ok {
		rows, ok = idx.byBaseName[filepath.Base(file)]
	}
	if !ok {
		return 0, dbgerr.New(dbgerr.UnknownLocation, file)
	}

	i := sort.Search(len(rows), func(i int) bool { return rows[i].line >= line })
	if i == len(rows) || rows[i].line != line {
		return 0, dbgerr.New(dbgerr.UnknownLocation, SourceLocation{File: file, Line: line})
	}

	return Address(rows[i].addr), nil
}

// AddrToSource reverse-maps an instruction address to the source location
// that contains it, via the line-number program (spec section 4.1).
func (idx *Index) AddrToSource(addr Address) (SourceLocation, bool) {
	rows := idx.allRows
	i := sort.Search(len(rows), func(i int) bool { return rows[i].addr > uint64(addr) })
	if i == 0 {
		return SourceLocation{}, false
	}
	row := rows[i-1]
	return SourceLocation{File: row.file, Line: row.line}, true
}
