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

// Package repl is the "external parser" and command-line front end spec.md
// section 1 calls out of scope for the core: it turns one line of command
// text into a parsed Path/Literal/Specifier/Command, then drives
// internal/engine and internal/terminal. Grounded on the teacher's
// debugger/terminal/commandline package for the tokenise-then-validate
// shape, generalized to this system's much smaller, fixed grammar (spec.md
// section 6).
package repl

import (
	"strconv"
	"strings"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/eval"
)

// parsePath parses the `p`/`set` path grammar: `op* name (suffix)*` where
// op is `*` or `&` and suffix is `.field` or `[index]` (spec section 6).
func parsePath(s string) (eval.Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return eval.Path{}, dbgerr.New(dbgerr.ParseError, "empty path")
	}

	var p eval.Path
	i := 0
	for i < len(s) && (s[i] == '*' || s[i] == '&') {
		p.PrefixOps = append(p.PrefixOps, eval.PrefixOp(s[i]))
		i++
	}

	start := i
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	if i == start {
		return eval.Path{}, dbgerr.New(dbgerr.ParseError, "expected a variable name: "+s)
	}
	p.Root = s[start:i]

	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			start := i
			for i < len(s) && isIdentByte(s[i]) {
				i++
			}
			if i == start {
				return eval.Path{}, dbgerr.New(dbgerr.ParseError, "expected a field name after '.': "+s)
			}
			p.Suffixes = append(p.Suffixes, eval.Suffix{Field: s[start:i]})

		case '[':
			i++
			start := i
			for i < len(s) && s[i] != ']' {
				i++
			}
			if i >= len(s) {
				return eval.Path{}, dbgerr.New(dbgerr.ParseError, "unterminated '[' in path: "+s)
			}
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return eval.Path{}, dbgerr.New(dbgerr.ParseError, "non-integer array index: "+s)
			}
			i++ // consume ']'
			p.Suffixes = append(p.Suffixes, eval.Suffix{HasIndex: true, Index: n})

		default:
			return eval.Path{}, dbgerr.New(dbgerr.ParseError, "unexpected character in path: "+s[i:])
		}
	}

	return p, nil
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// parseLiteral parses a `set` right-hand side: integer (decimal or `0x`
// hex), float, boolean, double-quoted C-escaped string, bare identifier,
// or `null` (spec section 6).
func parseLiteral(s string) (eval.Literal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return eval.Literal{}, dbgerr.New(dbgerr.ParseError, "expected a value")
	}

	switch s {
	case "null":
		return eval.Literal{Kind: eval.LiteralNull}, nil
	case "true":
		return eval.Literal{Kind: eval.LiteralBool, Bool: true}, nil
	case "false":
		return eval.Literal{Kind: eval.LiteralBool, Bool: false}, nil
	}

	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return eval.Literal{}, dbgerr.New(dbgerr.ParseError, "malformed string literal: "+s)
		}
		return eval.Literal{Kind: eval.LiteralString, Str: unq}, nil
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || strings.HasPrefix(s, "-0x") {
		neg := strings.HasPrefix(s, "-")
		hexPart := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "0x")
		hexPart = strings.TrimPrefix(hexPart, "0X")
		n, err := strconv.ParseInt(hexPart, 16, 64)
		if err == nil {
			if neg {
				n = -n
			}
			return eval.Literal{Kind: eval.LiteralInt, Int: n}, nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return eval.Literal{Kind: eval.LiteralInt, Int: n}, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return eval.Literal{Kind: eval.LiteralFloat, Flt: f}, nil
	}

	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return eval.Literal{}, dbgerr.New(dbgerr.ParseError, "unrecognised value: "+s)
		}
	}
	return eval.Literal{Kind: eval.LiteralIdent, Ident: s}, nil
}

// splitPathAndValue separates a `set` argument string into its path and
// value halves, accepting an optional `=` between them.
func splitPathAndValue(s string) (pathText, valueText string, err error) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && (s[i] == '*' || s[i] == '&' || isIdentByte(s[i]) || s[i] == '.' || s[i] == '[' || s[i] == ']') {
		i++
	}
	pathText = s[:i]
	rest := strings.TrimSpace(s[i:])
	rest = strings.TrimPrefix(rest, "=")
	rest = strings.TrimSpace(rest)
	if pathText == "" || rest == "" {
		return "", "", dbgerr.New(dbgerr.ParseError, "expected '<path> [=] <value>': "+s)
	}
	return pathText, rest, nil
}
