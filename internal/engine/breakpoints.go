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
	"github.com/vajexal/dbg/internal/breakpoint"
)

// AddBreakpoint registers a new breakpoint against spec and, if an inferior
// is currently running, installs its trap byte immediately (spec section
// 4.3/4.5).
func (d *Director) AddBreakpoint(spec breakpoint.Specifier) (*breakpoint.Breakpoint, error) {
	bp, err := d.bpMgr.Add(spec)
	if err != nil {
		return nil, err
	}
	if d.proc != nil {
		if err := d.bpMgr.InstallAll(d.proc); err != nil {
			return nil, err
		}
	}
	return bp, nil
}

// RemoveBreakpoint resolves spec to an existing breakpoint and removes it
// (spec section 6 remove/rm).
func (d *Director) RemoveBreakpoint(spec breakpoint.Specifier) error {
	bp, err := d.bpMgr.FindByLocation(spec)
	if err != nil {
		return err
	}
	return d.bpMgr.Remove(d.memoryOrNil(), bp.ID)
}

// ListBreakpoints returns every registered breakpoint, ordered by id (spec
// section 6 list/l).
func (d *Director) ListBreakpoints() []*breakpoint.Breakpoint {
	return d.bpMgr.List()
}

// EnableBreakpoint marks the breakpoint named by spec active and, if an
// inferior is running, installs its trap byte (spec section 6 enable).
func (d *Director) EnableBreakpoint(spec breakpoint.Specifier) error {
	bp, err := d.bpMgr.FindByLocation(spec)
	if err != nil {
		return err
	}
	if err := d.bpMgr.Enable(bp.ID); err != nil {
		return err
	}
	if d.proc != nil {
		return d.bpMgr.InstallAll(d.proc)
	}
	return nil
}

// DisableBreakpoint marks the breakpoint named by spec inactive and, if it
// is currently installed, uninstalls just that one (spec section 6 disable).
func (d *Director) DisableBreakpoint(spec breakpoint.Specifier) error {
	bp, err := d.bpMgr.FindByLocation(spec)
	if err != nil {
		return err
	}
	if err := d.bpMgr.Disable(bp.ID); err != nil {
		return err
	}
	if d.proc != nil {
		return d.bpMgr.Uninstall(d.proc, bp.ID)
	}
	return nil
}

// ClearBreakpoints removes every breakpoint, uninstalling trap bytes still
// resident in a running inferior (spec section 6 clear).
func (d *Director) ClearBreakpoints() error {
	return d.bpMgr.Clear(d.memoryOrNil())
}

// memoryOrNil returns the running inferior as a breakpoint.Memory, or nil
// when no inferior is running — safe because the Manager only dereferences
// it for breakpoints it still believes are installed, and MarkAllUninstalled
// clears that flag the moment the inferior dies.
func (d *Director) memoryOrNil() breakpoint.Memory {
	if d.proc == nil {
		return nil
	}
	return d.proc
}
