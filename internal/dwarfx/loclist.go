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

	"github.com/vajexal/dbg/internal/dbgerr"
)

// DWARF location-expression opcodes this debugger understands. Anything
// else is MalformedDebugInfo (spec section 9, Design Notes).
const (
	opRegBase  = 0x50 // DW_OP_reg0 .. DW_OP_reg31
	opRegLast  = 0x6f
	opFbreg    = 0x91 // DW_OP_fbreg <sleb128 offset>
	opCallCFA  = 0x9c // DW_OP_call_frame_cfa
	opAddr     = 0x03 // DW_OP_addr <address>, used for globals
)

// FrameBaseKind tags how a subprogram's frame base is computed.
type FrameBaseKind int

const (
	// FrameBaseRegister: the frame base is the current value of a specific
	// register (commonly DW_OP_reg6, ie. rbp).
	FrameBaseRegister FrameBaseKind = iota
	// FrameBaseCFA: the frame base is the Canonical Frame Address. This
	// debugger does not implement full call-frame-information unwinding;
	// it approximates CFA as rbp+16 (saved rbp + return address, the
	// standard x86-64 System V layout for a function compiled with a frame
	// pointer), per spec section 9.
	FrameBaseCFA
)

// FrameBaseExpr is a subprogram's DW_AT_frame_base expression, restricted
// to the two forms this debugger supports.
type FrameBaseExpr struct {
	Kind     FrameBaseKind
	Register int
}

// decodeFrameBase extracts a subprogram's frame_base attribute. Only a bare
// register expression or DW_OP_call_frame_cfa are supported; anything else
// (a full location list, an unsupported opcode) fails with
// MalformedDebugInfo (spec section 9).
func decodeFrameBase(entry *dwarf.Entry) (FrameBaseExpr, error) {
	raw, ok := entry.Val(dwarf.AttrFrameBase).([]byte)
	if !ok || len(raw) == 0 {
		return FrameBaseExpr{}, dbgerr.New(dbgerr.MalformedDebugInfo, "missing frame_base")
	}

	op := raw[0]
	switch {
	case op >= opRegBase && op <= opRegLast:
		return FrameBaseExpr{Kind: FrameBaseRegister, Register: int(op - opRegBase)}, nil
	case op == opCallCFA:
		return FrameBaseExpr{Kind: FrameBaseCFA}, nil
	}

	return FrameBaseExpr{}, dbgerr.New(dbgerr.MalformedDebugInfo, "unsupported frame_base expression")
}

// LocationKind tags how a variable's address (or, for register-resident
// variables, its value) is computed.
type LocationKind int

const (
	// LocationFrameOffset: address = frame base + Offset.
	LocationFrameOffset LocationKind = iota
	// LocationRegister: the variable's value (not address) is held
	// directly in register Register.
	LocationRegister
	// LocationStaticAddress: address is an absolute, link-time constant
	// (DW_OP_addr), used for global variables.
	LocationStaticAddress
)

// LocationExpr is a variable's DW_AT_location expression, restricted to
// the two dynamic forms spec section 3 requires plus the static-address
// form used by every global (spec section 4.4 step 2).
type LocationExpr struct {
	Kind     LocationKind
	Register int
	Offset   int64
	Addr     uint64
}

// DecodeLocation parses a single DWARF location expression (not a location
// list) into a LocationExpr.
func DecodeLocation(raw []byte) (LocationExpr, error) {
	if len(raw) == 0 {
		return LocationExpr{}, dbgerr.New(dbgerr.MalformedDebugInfo, "empty location expression")
	}

	op := raw[0]
	switch {
	case op >= opRegBase && op <= opRegLast:
		return LocationExpr{Kind: LocationRegister, Register: int(op - opRegBase)}, nil
	case op == opFbreg:
		off, _, err := decodeSleb128(raw[1:])
		if err != nil {
			return LocationExpr{}, dbgerr.New(dbgerr.MalformedDebugInfo, err)
		}
		return LocationExpr{Kind: LocationFrameOffset, Offset: off}, nil
	case op == opAddr:
		if len(raw) < 9 {
			return LocationExpr{}, dbgerr.New(dbgerr.MalformedDebugInfo, "truncated DW_OP_addr")
		}
		addr := uint64(0)
		for i := 0; i < 8; i++ {
			addr |= uint64(raw[1+i]) << (8 * i)
		}
		return LocationExpr{Kind: LocationStaticAddress, Addr: addr}, nil
	}

	return LocationExpr{}, dbgerr.New(dbgerr.MalformedDebugInfo, "unsupported location expression")
}

// decodeSleb128 decodes a signed LEB128 value, returning the value, the
// number of bytes consumed, and an error if the buffer is truncated.
func decodeSleb128(b []byte) (int64, int, error) {
	var result int64
	var shift uint
	var i int
	for {
		if i >= len(b) {
			return 0, i, dbgerr.New(dbgerr.MalformedDebugInfo, "truncated sleb128")
		}
		byt := b[i]
		result |= int64(byt&0x7f) << shift
		shift += 7
		i++
		if byt&0x80 == 0 {
			if shift < 64 && byt&0x40 != 0 {
				result |= -1 << shift
			}
			break
		}
	}
	return result, i, nil
}
