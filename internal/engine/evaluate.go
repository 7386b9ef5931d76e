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

package engine

import (
	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/eval"
	"github.com/vajexal/dbg/internal/govern"
	"github.com/vajexal/dbg/internal/logger"
)

// Resolve evaluates path against the current stop location, bridging the
// Expression Evaluator to the Inferior Controller's live register file and
// PIE load base (spec section 4.4).
func (d *Director) Resolve(path eval.Path) (eval.Located, error) {
	if d.state != govern.Stopped {
		return eval.Located{}, dbgerr.New(dbgerr.NotRunning)
	}
	pc, err := d.PC()
	if err != nil {
		return eval.Located{}, err
	}
	regs, err := d.proc.ReadRegs()
	if err != nil {
		return eval.Located{}, err
	}
	return d.ev.Resolve(path, pc, regs, d.proc.LoadBase())
}

// Print formats path's current value, or every in-scope variable when path
// is nil (spec section 6: `print`/`p` with no argument).
func (d *Director) Print(path *eval.Path) ([]string, error) {
	if d.state != govern.Stopped {
		return nil, dbgerr.New(dbgerr.NotRunning)
	}

	if path != nil {
		loc, err := d.Resolve(*path)
		if err != nil {
			return nil, err
		}
		s, err := d.ev.Format(loc)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	pc, err := d.PC()
	if err != nil {
		return nil, err
	}
	vars, err := d.idx.VariablesInScope(pc)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(vars))
	for _, v := range vars {
		loc, err := d.Resolve(eval.Path{Root: v.Name})
		if err != nil {
			d.log.Logf(logger.Allow, "engine", "skipping %s: %v", v.Name, err)
			continue
		}
		s, err := d.ev.Format(loc)
		if err != nil {
			d.log.Logf(logger.Allow, "engine", "skipping %s: %v", v.Name, err)
			continue
		}
		out = append(out, v.Name+" = "+s)
	}
	return out, nil
}

// Set assigns lit to path's target (spec section 4.4 Setting).
func (d *Director) Set(path eval.Path, lit eval.Literal) error {
	loc, err := d.Resolve(path)
	if err != nil {
		return err
	}
	return d.ev.Set(loc, lit)
}
