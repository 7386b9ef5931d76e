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

// Package breakpoint is the Breakpoint Manager (spec section 4.3): it owns
// the set of user-requested breakpoints, their resolved addresses, and the
// 0xCC trap-byte install/uninstall protocol used to actually stop the
// inferior there.
//
// Grounded on the teacher's coprocessor/developer/breakpoints.go (which
// keeps a similar id -> resolved-address table for the ARM coprocessor) and
// on the trap-byte save/restore/single-step/reinstall protocol demonstrated
// in the retrieval pack's golang-debug/demo tracer.
package breakpoint

import (
	"sync"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
)

const trapByte = 0xCC

// Memory is the minimal surface the Breakpoint Manager needs from the
// Inferior Controller: read/write a single byte at an address, plus the
// running inferior's PIE load base. The catalog keeps every Breakpoint's
// Addr DWARF-relative (spec section 9); LoadBase is added at the point the
// trap byte actually touches inferior memory, the same translation
// classifyTrap (internal/engine) applies in the other direction when it
// matches a trap back to a catalog entry.
type Memory interface {
	ReadByte(addr uint64) (byte, error)
	WriteByte(addr uint64, b byte) error
	LoadBase() uint64
}

// SpecifierKind distinguishes the three ways a breakpoint location can be
// requested (spec section 3).
type SpecifierKind int

const (
	SpecifierFileLine SpecifierKind = iota
	SpecifierLine
	SpecifierFunction
)

// Specifier is the tagged union the REPL parses a breakpoint request into.
type Specifier struct {
	Kind     SpecifierKind
	File     string
	Line     int
	Function string
}

// Breakpoint is a single user-requested stop location.
type Breakpoint struct {
	ID         int
	Spec       Specifier
	Addr       dwarfx.Address
	Enabled    bool
	installed  bool
	origByte   byte
	hitCount   int
}

// HitCount returns the number of times this breakpoint's trap has been hit
// and handled (spec section 3 expansion).
func (b *Breakpoint) HitCount() int { return b.hitCount }

// Installed reports whether the trap byte currently sits in the inferior's
// memory at this breakpoint's address.
func (b *Breakpoint) Installed() bool { return b.installed }

// Manager owns every breakpoint for the current debug session.
type Manager struct {
	mu     sync.Mutex
	idx    *dwarfx.Index
	nextID int
	byID   map[int]*Breakpoint
	byAddr map[dwarfx.Address]*Breakpoint
}

// NewManager creates an empty breakpoint set resolved against idx.
func NewManager(idx *dwarfx.Index) *Manager {
	return &Manager{
		idx:    idx,
		nextID: 1,
		byID:   make(map[int]*Breakpoint),
		byAddr: make(map[dwarfx.Address]*Breakpoint),
	}
}

// Add resolves spec to an address and registers a new, initially disabled-
// from-memory (not yet installed) breakpoint. The caller installs it once
// an inferior exists by calling InstallAll or Install.
func (m *Manager) Add(spec Specifier) (*Breakpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr, err := m.resolve(spec)
	if err != nil {
		return nil, err
	}

	if existing, ok := m.byAddr[addr]; ok {
		return existing, nil
	}

	bp := &Breakpoint{ID: m.nextID, Spec: spec, Addr: addr, Enabled: true}
	m.nextID++
	m.byID[bp.ID] = bp
	m.byAddr[addr] = bp
	return bp, nil
}

// resolve turns a specifier into an address. For SpecifierLine (a bare
// line number with no file part), spec.File must already have been filled
// in by the caller with the "current file" at creation time (spec section
// 3) — the REPL/Execution Director know that context, the Breakpoint
// Manager does not.
func (m *Manager) resolve(spec Specifier) (dwarfx.Address, error) {
	switch spec.Kind {
	case SpecifierFileLine, SpecifierLine:
		return m.idx.ResolveLine(spec.File, spec.Line)
	case SpecifierFunction:
		return m.idx.ResolveFunction(spec.Function)
	default:
		return 0, dbgerr.New(dbgerr.ParseError, "unknown breakpoint specifier")
	}
}

// Remove unregisters a breakpoint, uninstalling its trap byte first if it
// is currently installed.
func (m *Manager) Remove(mem Memory, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bp, ok := m.byID[id]
	if !ok {
		return dbgerr.New(dbgerr.UnknownBreakpoint, id)
	}
	if bp.installed {
		if err := m.uninstall(mem, bp); err != nil {
			return err
		}
	}
	delete(m.byID, id)
	delete(m.byAddr, bp.Addr)
	return nil
}

// List returns every breakpoint, ordered by id.
func (m *Manager) List() []*Breakpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Breakpoint, 0, len(m.byID))
	for id := 1; id < m.nextID; id++ {
		if bp, ok := m.byID[id]; ok {
			out = append(out, bp)
		}
	}
	return out
}

// Get looks up a breakpoint by id.
func (m *Manager) Get(id int) (*Breakpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bp, ok := m.byID[id]
	if !ok {
		return nil, dbgerr.New(dbgerr.UnknownBreakpoint, id)
	}
	return bp, nil
}

// FindByLocation resolves spec exactly as Add would and returns the
// breakpoint already registered at that address, used by the REPL's
// remove/enable/disable commands, which (spec section 6) identify a
// breakpoint by its original file:line/function text rather than its id.
func (m *Manager) FindByLocation(spec Specifier) (*Breakpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr, err := m.resolve(spec)
	if err != nil {
		return nil, err
	}
	bp, ok := m.byAddr[addr]
	if !ok {
		return nil, dbgerr.New(dbgerr.UnknownBreakpoint, addr)
	}
	return bp, nil
}

// ByAddr looks up the breakpoint installed at addr, used by the Execution
// Director's stop classification to decide whether a SIGTRAP was this
// breakpoint's trap byte.
func (m *Manager) ByAddr(addr dwarfx.Address) (*Breakpoint, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bp, ok := m.byAddr[addr]
	return bp, ok
}

// Uninstall removes a single breakpoint's trap byte, leaving every other
// breakpoint's installed state untouched. Used by Disable, which must not
// perturb breakpoints other than the one the user named.
func (m *Manager) Uninstall(mem Memory, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bp, ok := m.byID[id]
	if !ok {
		return dbgerr.New(dbgerr.UnknownBreakpoint, id)
	}
	if bp.installed {
		return m.uninstall(mem, bp)
	}
	return nil
}

// MarkAllUninstalled clears every installed flag without touching memory.
// The inferior's address space is gone by the time this is called (on
// exit, signal, or explicit stop), so there is nothing left to write to;
// the catalog itself survives for the next run (spec section 5).
func (m *Manager) MarkAllUninstalled() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bp := range m.byID {
		bp.installed = false
	}
}

// Enable marks a breakpoint active without touching inferior memory; the
// caller re-installs it via InstallAll on the next run/continue.
func (m *Manager) Enable(id int) error {
	return m.setEnabled(id, true)
}

// Disable marks a breakpoint inactive; if it is currently installed, the
// caller must also Uninstall it to actually stop it from trapping.
func (m *Manager) Disable(id int) error {
	return m.setEnabled(id, false)
}

func (m *Manager) setEnabled(id int, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bp, ok := m.byID[id]
	if !ok {
		return dbgerr.New(dbgerr.UnknownBreakpoint, id)
	}
	bp.Enabled = enabled
	return nil
}

// Clear removes every breakpoint, uninstalling trap bytes still resident in
// the inferior's memory.
func (m *Manager) Clear(mem Memory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bp := range m.byID {
		if bp.installed {
			if err := m.uninstall(mem, bp); err != nil {
				return err
			}
		}
	}
	m.byID = make(map[int]*Breakpoint)
	m.byAddr = make(map[dwarfx.Address]*Breakpoint)
	return nil
}

// InstallAll writes the trap byte for every enabled, not-yet-installed
// breakpoint. Called once an inferior is running (spec section 4.5 run).
func (m *Manager) InstallAll(mem Memory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bp := range m.byID {
		if bp.Enabled && !bp.installed {
			if err := m.install(mem, bp); err != nil {
				return err
			}
		}
	}
	return nil
}

// UninstallAll removes every installed trap byte, restoring the original
// instruction bytes.
func (m *Manager) UninstallAll(mem Memory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bp := range m.byID {
		if bp.installed {
			if err := m.uninstall(mem, bp); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) install(mem Memory, bp *Breakpoint) error {
	addr := uint64(bp.Addr) + mem.LoadBase()
	orig, err := mem.ReadByte(addr)
	if err != nil {
		return err
	}
	if err := mem.WriteByte(addr, trapByte); err != nil {
		return err
	}
	bp.origByte = orig
	bp.installed = true
	return nil
}

func (m *Manager) uninstall(mem Memory, bp *Breakpoint) error {
	if err := mem.WriteByte(uint64(bp.Addr)+mem.LoadBase(), bp.origByte); err != nil {
		return err
	}
	bp.installed = false
	return nil
}

// StepOverCurrent implements the hit-handling protocol (spec section 4.3):
// given the breakpoint the inferior is currently stopped on, it temporarily
// removes the trap byte, has the caller single-step the original
// instruction via step, reinstalls the trap byte, and records the hit.
func (m *Manager) StepOverCurrent(mem Memory, bp *Breakpoint, step func() error) error {
	m.mu.Lock()
	if !bp.installed {
		m.mu.Unlock()
		return dbgerr.New(dbgerr.UnknownBreakpoint, bp.ID)
	}
	if err := m.uninstall(mem, bp); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	if err := step(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	bp.hitCount++
	if bp.Enabled {
		return m.install(mem, bp)
	}
	return nil
}
