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
	"testing"
)

func TestConvertTypePrimitive(t *testing.T) {
	idx := &Index{}

	it := &dwarf.IntType{BasicType: dwarf.BasicType{
		CommonType: dwarf.CommonType{Name: "int", ByteSize: 4},
	}}

	ti, err := idx.convertType(it)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ti.Kind != KindSignedInt || ti.ByteSize() != 4 {
		t.Fatalf("unexpected type: %+v", ti)
	}
}

func TestConvertTypeStripsQualifiersAndTypedefs(t *testing.T) {
	idx := &Index{}

	base := &dwarf.UintType{BasicType: dwarf.BasicType{
		CommonType: dwarf.CommonType{Name: "unsigned int", ByteSize: 4},
	}}
	qual := &dwarf.QualType{CommonType: dwarf.CommonType{Name: "const"}, Qual: "const", Type: base}
	typedef := &dwarf.TypedefType{CommonType: dwarf.CommonType{Name: "myuint"}, Type: qual}

	ti, err := idx.convertType(typedef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ti.Kind != KindUnsignedInt || ti.Name != "unsigned int" {
		t.Fatalf("expected qualifiers/typedefs stripped transparently, got %+v", ti)
	}
}

func TestConvertTypePointerIsLazy(t *testing.T) {
	idx := &Index{}

	pointee := &dwarf.IntType{BasicType: dwarf.BasicType{
		CommonType: dwarf.CommonType{Name: "int", ByteSize: 4},
	}}
	ptr := &dwarf.PtrType{CommonType: dwarf.CommonType{Name: "*int"}, Type: pointee}

	ti, err := idx.convertType(ptr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ti.Kind != KindPointer {
		t.Fatalf("expected KindPointer, got %v", ti.Kind)
	}
	if ti.elem != nil {
		t.Fatalf("expected pointee to be unresolved until Elem() is called")
	}

	elem, err := ti.Elem()
	if err != nil {
		t.Fatalf("unexpected error resolving pointee: %v", err)
	}
	if elem.Kind != KindSignedInt {
		t.Fatalf("unexpected pointee type: %+v", elem)
	}
}

func TestConvertTypeFuncPointer(t *testing.T) {
	idx := &Index{}

	fn := &dwarf.FuncType{CommonType: dwarf.CommonType{Name: "func(int) int"}}
	ptr := &dwarf.PtrType{CommonType: dwarf.CommonType{Name: "*func"}, Type: fn}

	ti, err := idx.convertType(ptr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ti.Kind != KindFuncPointer {
		t.Fatalf("expected KindFuncPointer, got %v", ti.Kind)
	}
}

func TestConvertTypeStructFields(t *testing.T) {
	idx := &Index{}

	intType := &dwarf.IntType{BasicType: dwarf.BasicType{
		CommonType: dwarf.CommonType{Name: "int", ByteSize: 4},
	}}
	st := &dwarf.StructType{
		CommonType: dwarf.CommonType{ByteSize: 8},
		StructName: "point",
		Kind:       "struct",
		Field: []*dwarf.StructField{
			{Name: "x", Type: intType, ByteOffset: 0},
			{Name: "y", Type: intType, ByteOffset: 4},
		},
	}

	ti, err := idx.convertType(st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ti.Kind != KindStruct || len(ti.Fields) != 2 {
		t.Fatalf("unexpected struct type: %+v", ti)
	}
	if ti.Fields[1].Name != "y" || ti.Fields[1].Offset != 4 {
		t.Fatalf("unexpected field: %+v", ti.Fields[1])
	}
}

func TestConvertTypeEnum(t *testing.T) {
	idx := &Index{}

	en := &dwarf.EnumType{
		CommonType: dwarf.CommonType{ByteSize: 4},
		EnumName:   "color",
		Val: []*dwarf.EnumValue{
			{Name: "RED", Val: 0},
			{Name: "GREEN", Val: 1},
		},
	}

	ti, err := idx.convertType(en)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ti.Kind != KindEnum || len(ti.EnumVariants) != 2 {
		t.Fatalf("unexpected enum type: %+v", ti)
	}
	if ti.EnumVariants[1].Name != "GREEN" || ti.EnumVariants[1].Value != 1 {
		t.Fatalf("unexpected variant: %+v", ti.EnumVariants[1])
	}
}
