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
	"strings"
	"testing"
)

func TestParseMapsForBasePIE(t *testing.T) {
	maps := strings.Join([]string{
		"55a1b2c3d000-55a1b2c3e000 r--p 00000000 08:01 123 /home/user/hello",
		"55a1b2c3e000-55a1b2c3f000 r-xp 00001000 08:01 123 /home/user/hello",
		"7f0a00000000-7f0a00020000 r--p 00000000 08:01 456 /usr/lib/libc.so.6",
		"",
	}, "\n")

	base, err := parseMapsForBase(strings.NewReader(maps), "/home/user/hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != 0x55a1b2c3d000 {
		t.Fatalf("unexpected base: %#x", base)
	}
}

func TestParseMapsForBaseByBasename(t *testing.T) {
	maps := "400000-401000 r-xp 00000000 08:01 123 ./hello\n"

	base, err := parseMapsForBase(strings.NewReader(maps), "/some/other/path/hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != 0x400000 {
		t.Fatalf("unexpected base: %#x", base)
	}
}

func TestParseMapsForBaseNotFound(t *testing.T) {
	maps := "400000-401000 r-xp 00000000 08:01 123 /bin/other\n"

	if _, err := parseMapsForBase(strings.NewReader(maps), "hello"); err == nil {
		t.Fatalf("expected an error when no mapping matches")
	}
}
