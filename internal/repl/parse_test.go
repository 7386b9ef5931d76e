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

package repl

import (
	"testing"

	"github.com/vajexal/dbg/internal/eval"
)

func TestParsePathPlainName(t *testing.T) {
	p, err := parsePath("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Root != "x" || len(p.PrefixOps) != 0 || len(p.Suffixes) != 0 {
		t.Fatalf("unexpected path: %+v", p)
	}
}

func TestParsePathPrefixOpsAndSuffixes(t *testing.T) {
	p, err := parsePath("*&node.next[3].value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Root != "node" {
		t.Fatalf("unexpected root: %q", p.Root)
	}
	if len(p.PrefixOps) != 2 || p.PrefixOps[0] != eval.OpDeref || p.PrefixOps[1] != eval.OpAddrOf {
		t.Fatalf("unexpected prefix ops: %+v", p.PrefixOps)
	}
	want := []eval.Suffix{{Field: "next"}, {HasIndex: true, Index: 3}, {Field: "value"}}
	if len(p.Suffixes) != len(want) {
		t.Fatalf("unexpected suffixes: %+v", p.Suffixes)
	}
	for i, s := range want {
		if p.Suffixes[i] != s {
			t.Fatalf("suffix %d: got %+v, want %+v", i, p.Suffixes[i], s)
		}
	}
}

func TestParsePathRejectsEmpty(t *testing.T) {
	if _, err := parsePath(""); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
	if _, err := parsePath("*"); err == nil {
		t.Fatalf("expected an error for a path with no name")
	}
}

func TestParseLiteralKinds(t *testing.T) {
	lit, err := parseLiteral("42")
	if err != nil || lit.Kind != eval.LiteralInt || lit.Int != 42 {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral("0x1F")
	if err != nil || lit.Kind != eval.LiteralInt || lit.Int != 31 {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral("-0x10")
	if err != nil || lit.Kind != eval.LiteralInt || lit.Int != -16 {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral("3.5")
	if err != nil || lit.Kind != eval.LiteralFloat || lit.Flt != 3.5 {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral("true")
	if err != nil || lit.Kind != eval.LiteralBool || !lit.Bool {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral(`"hi\n"`)
	if err != nil || lit.Kind != eval.LiteralString || lit.Str != "hi\n" {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral("null")
	if err != nil || lit.Kind != eval.LiteralNull {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}

	lit, err = parseLiteral("RED")
	if err != nil || lit.Kind != eval.LiteralIdent || lit.Ident != "RED" {
		t.Fatalf("unexpected literal: %+v, err=%v", lit, err)
	}
}

func TestParseLiteralRejectsGarbage(t *testing.T) {
	if _, err := parseLiteral("1 + 1"); err == nil {
		t.Fatalf("expected an error for a malformed literal")
	}
	if _, err := parseLiteral(`"unterminated`); err == nil {
		t.Fatalf("expected an error for an unterminated string literal")
	}
}

func TestSplitPathAndValue(t *testing.T) {
	path, value, err := splitPathAndValue("x = 5")
	if err != nil || path != "x" || value != "5" {
		t.Fatalf("unexpected split: path=%q value=%q err=%v", path, value, err)
	}

	path, value, err = splitPathAndValue("*y 20")
	if err != nil || path != "*y" || value != "20" {
		t.Fatalf("unexpected split: path=%q value=%q err=%v", path, value, err)
	}
}

func TestSplitPathAndValueRejectsMissingValue(t *testing.T) {
	if _, _, err := splitPathAndValue("x ="); err == nil {
		t.Fatalf("expected an error when the value half is missing")
	}
}
