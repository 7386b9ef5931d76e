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

// Package eval is the Expression Evaluator (spec section 4.4): given an
// already-parsed variable path, it walks the DWARF type graph from the
// innermost in-scope variable to resolve an address and type, then reads
// or writes inferior memory honoring the target type's semantics.
//
// The path and literal grammars themselves are parsed by internal/repl
// (the spec's "external parser"); this package only ever consumes the
// already-distinguished Path and Literal values.
package eval

// PrefixOp is one of the two pointer operators a path may be prefixed
// with, applied right-to-left in written order (spec section 4.4).
type PrefixOp byte

const (
	OpDeref  PrefixOp = '*'
	OpAddrOf PrefixOp = '&'
)

// Suffix is a single `.field` or `[index]` step applied left-to-right
// after the root variable is resolved.
type Suffix struct {
	Field    string // non-empty for a .field suffix
	HasIndex bool
	Index    int // valid when HasIndex
}

// Path is the parsed form of a `p`/`set` target: `op* name (suffix)*`.
type Path struct {
	PrefixOps []PrefixOp
	Root      string
	Suffixes  []Suffix
}

// LiteralKind distinguishes the forms a `set` right-hand side may take.
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralString
	LiteralIdent
	LiteralNull
)

// Literal is the parsed form of a `set` right-hand side (spec section
// 4.4): an already-typed value whose coercion against the target type is
// this package's job, not the parser's.
type Literal struct {
	Kind LiteralKind
	Int  int64
	Flt  float64
	Bool bool
	Str  string
	Ident string
}
