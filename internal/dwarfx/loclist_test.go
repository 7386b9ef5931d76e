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
	"testing"

	"github.com/vajexal/dbg/internal/dbgerr"
)

func TestDecodeLocationRegister(t *testing.T) {
	loc, err := DecodeLocation([]byte{opRegBase + 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Kind != LocationRegister || loc.Register != 3 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestDecodeLocationFrameOffsetPositive(t *testing.T) {
	// DW_OP_fbreg, sleb128(16) = 0x10
	loc, err := DecodeLocation([]byte{opFbreg, 0x10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Kind != LocationFrameOffset || loc.Offset != 16 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestDecodeLocationFrameOffsetNegative(t *testing.T) {
	// DW_OP_fbreg, sleb128(-8): 0x78
	loc, err := DecodeLocation([]byte{opFbreg, 0x78})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Kind != LocationFrameOffset || loc.Offset != -8 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestDecodeLocationUnsupported(t *testing.T) {
	_, err := DecodeLocation([]byte{0x9f})
	if !dbgerr.Is(err, dbgerr.MalformedDebugInfo) {
		t.Fatalf("expected MalformedDebugInfo, got %v", err)
	}
}

func TestDecodeLocationStaticAddress(t *testing.T) {
	raw := []byte{opAddr, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	loc, err := DecodeLocation(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Kind != LocationStaticAddress || loc.Addr != 0x1000 {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestDecodeSleb128(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  int64
	}{
		{[]byte{0x02}, 2},
		{[]byte{0x7e}, -2},
		{[]byte{0xff, 0x00}, 127},
		{[]byte{0x80, 0x7f}, -128},
	}
	for _, c := range cases {
		got, _, err := decodeSleb128(c.bytes)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", c.bytes, err)
		}
		if got != c.want {
			t.Fatalf("decodeSleb128(%v) = %d, want %d", c.bytes, got, c.want)
		}
	}
}
