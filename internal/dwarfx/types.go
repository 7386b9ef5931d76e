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

// Kind tags the variant of a TypeInfo (spec section 3).
type Kind int

const (
	KindSignedInt Kind = iota
	KindUnsignedInt
	KindFloat
	KindBool
	KindChar
	KindPointer
	KindArray
	KindStruct
	KindUnion
	KindEnum
	KindFuncPointer
)

// Field describes one member of a struct or union type.
type Field struct {
	Name   string
	Offset int64
	typ    dwarf.Type
	idx    *Index
}

// Type lazily resolves the field's type.
func (f Field) Type() (*TypeInfo, error) {
	return f.idx.convertType(f.typ)
}

// EnumVariant maps an enum member's name to its integer value.
type EnumVariant struct {
	Name  string
	Value int64
}

// TypeInfo is the debugger's own representation of a resolved DWARF type
// (spec section 3): a tagged value, with qualifiers (const/volatile) and
// typedefs already stripped away.
type TypeInfo struct {
	Name string
	Kind Kind
	Size int64

	// pointer / array element type, resolved lazily on first access so that
	// self-referential structs (eg. a linked-list node) never cause
	// unbounded recursion while building the type.
	elemOffset dwarf.Offset
	elemType   dwarf.Type
	elem       *TypeInfo
	idx        *Index

	// array
	Count int64

	// struct / union
	Fields []Field

	// enum
	EnumBase     *TypeInfo
	EnumVariants []EnumVariant

	// function-pointer: the entry address, when the pointer's current value
	// is later resolved to a known subprogram, is reported by the caller;
	// TypeInfo itself carries no function identity.
}

// ByteSize returns the size in bytes of a value of this type.
func (t *TypeInfo) ByteSize() int64 {
	return t.Size
}

// Elem returns the pointee (for KindPointer/KindFuncPointer) or element
// type (for KindArray), resolving it on first access.
func (t *TypeInfo) Elem() (*TypeInfo, error) {
	if t.elem != nil {
		return t.elem, nil
	}
	if t.elemType == nil {
		return nil, dbgerr.New(dbgerr.MalformedDebugInfo, "type has no element type")
	}
	resolved, err := t.idx.convertType(t.elemType)
	if err != nil {
		return nil, err
	}
	t.elem = resolved
	return resolved, nil
}

// convertType turns a debug/dwarf type into our TypeInfo, transparently
// stripping typedef/const/volatile qualifiers (spec section 4.1). The
// standard library's debug/dwarf already memoizes types by offset, so
// recursive structures (eg. `struct node { struct node *next; }`) are safe
// to pass in; we still defer resolution of pointer/array elements to Elem()
// so that printing or walking a type never force-expands a pointee that
// nothing asked for.
func (idx *Index) convertType(t dwarf.Type) (*TypeInfo, error) {
	for {
		switch tt := t.(type) {
		case *dwarf.TypedefType:
			t = tt.Type
			continue
		case *dwarf.QualType:
			t = tt.Type
			continue
		}
		break
	}

	switch tt := t.(type) {
	case *dwarf.IntType:
		return &TypeInfo{Name: tt.Name, Kind: KindSignedInt, Size: tt.ByteSize, idx: idx}, nil
	case *dwarf.UintType:
		return &TypeInfo{Name: tt.Name, Kind: KindUnsignedInt, Size: tt.ByteSize, idx: idx}, nil
	case *dwarf.FloatType:
		return &TypeInfo{Name: tt.Name, Kind: KindFloat, Size: tt.ByteSize, idx: idx}, nil
	case *dwarf.BoolType:
		return &TypeInfo{Name: tt.Name, Kind: KindBool, Size: tt.ByteSize, idx: idx}, nil
	case *dwarf.CharType:
		return &TypeInfo{Name: tt.Name, Kind: KindChar, Size: tt.ByteSize, idx: idx}, nil
	case *dwarf.UcharType:
		return &TypeInfo{Name: tt.Name, Kind: KindChar, Size: tt.ByteSize, idx: idx}, nil
	case *dwarf.PtrType:
		if _, isFunc := underlying(tt.Type).(*dwarf.FuncType); isFunc {
			return &TypeInfo{Name: tt.CommonType.Name, Kind: KindFuncPointer, Size: 8, elemType: tt.Type, idx: idx}, nil
		}
		return &TypeInfo{Name: tt.CommonType.Name, Kind: KindPointer, Size: 8, elemType: tt.Type, idx: idx}, nil
	case *dwarf.ArrayType:
		return &TypeInfo{Name: tt.CommonType.Name, Kind: KindArray, Size: tt.ByteSize, elemType: tt.Type, Count: tt.Count, idx: idx}, nil
	case *dwarf.StructType:
		fields := make([]Field, len(tt.Field))
		for i, f := range tt.Field {
			fields[i] = Field{Name: f.Name, Offset: f.ByteOffset, typ: f.Type, idx: idx}
		}
		kind := KindStruct
		if tt.Kind == "union" {
			kind = KindUnion
		}
		return &TypeInfo{Name: tt.StructName, Kind: kind, Size: tt.ByteSize, Fields: fields, idx: idx}, nil
	case *dwarf.EnumType:
		variants := make([]EnumVariant, len(tt.Val))
		for i, v := range tt.Val {
			variants[i] = EnumVariant{Name: v.Name, Value: v.Val}
		}
		base := &TypeInfo{Name: "int", Kind: KindSignedInt, Size: tt.ByteSize, idx: idx}
		return &TypeInfo{Name: tt.EnumName, Kind: KindEnum, Size: tt.ByteSize, EnumBase: base, EnumVariants: variants, idx: idx}, nil
	case *dwarf.FuncType:
		return &TypeInfo{Name: tt.CommonType.Name, Kind: KindFuncPointer, Size: 8, idx: idx}, nil
	}

	return nil, dbgerr.New(dbgerr.MalformedDebugInfo, "unsupported DWARF type")
}

func underlying(t dwarf.Type) dwarf.Type {
	for {
		switch tt := t.(type) {
		case *dwarf.TypedefType:
			t = tt.Type
		case *dwarf.QualType:
			t = tt.Type
		default:
			return t
		}
	}
}

// SyntheticPointer builds a TypeInfo for "pointer to to", with its pointee
// already resolved. Used by the Expression Evaluator's `&` operator (spec
// section 4.4), which yields a pointer type that never existed in the
// executable's own DWARF data.
func SyntheticPointer(to *TypeInfo) *TypeInfo {
	return &TypeInfo{Name: "*" + to.Name, Kind: KindPointer, Size: 8, elem: to}
}

// ResolveType looks up and converts the type at the given DWARF offset.
func (idx *Index) ResolveType(off dwarf.Offset) (*TypeInfo, error) {
	t, err := idx.data.Type(off)
	if err != nil {
		return nil, dbgerr.New(dbgerr.MalformedDebugInfo, err)
	}
	return idx.convertType(t)
}
