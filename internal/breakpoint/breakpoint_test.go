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

package breakpoint

import (
	"testing"

	"github.com/vajexal/dbg/internal/dbgerr"
	"github.com/vajexal/dbg/internal/dwarfx"
)

// fakeMemory is a synthetic Inferior Controller: plain bytes, no real
// process, letting the Breakpoint Manager's install/uninstall/hit protocol
// be tested without tracing a child (spec section 2 ambient test tooling).
// loadBase defaults to 0 (a non-PIE tracee); TestInstallAllRelocatesForPIE
// sets it to exercise the DWARF-relative-to-runtime translation.
type fakeMemory struct {
	bytes    map[uint64]byte
	loadBase uint64
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{bytes: map[uint64]byte{0x1000: 0x55, 0x2000: 0x90}}
}

func (f *fakeMemory) ReadByte(addr uint64) (byte, error) {
	return f.bytes[addr], nil
}

func (f *fakeMemory) WriteByte(addr uint64, b byte) error {
	f.bytes[addr] = b
	return nil
}

func (f *fakeMemory) LoadBase() uint64 { return f.loadBase }

// newTestManager builds a Manager with breakpoints injected directly,
// bypassing Add/resolve (which needs a real DWARF index) since these tests
// exercise the install/hit protocol, not address resolution.
func newTestManager(bps ...*Breakpoint) *Manager {
	m := &Manager{
		nextID: 1,
		byID:   make(map[int]*Breakpoint),
		byAddr: make(map[dwarfx.Address]*Breakpoint),
	}
	for _, bp := range bps {
		m.byID[bp.ID] = bp
		m.byAddr[bp.Addr] = bp
		if bp.ID >= m.nextID {
			m.nextID = bp.ID + 1
		}
	}
	return m
}

func TestInstallAllAndUninstallAll(t *testing.T) {
	mem := newFakeMemory()
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	if err := m.InstallAll(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bp.Installed() {
		t.Fatalf("expected breakpoint to be installed")
	}
	if mem.bytes[0x1000] != trapByte {
		t.Fatalf("expected trap byte in memory, got %#x", mem.bytes[0x1000])
	}
	if bp.origByte != 0x55 {
		t.Fatalf("expected original byte saved, got %#x", bp.origByte)
	}

	if err := m.UninstallAll(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp.Installed() {
		t.Fatalf("expected breakpoint to be uninstalled")
	}
	if mem.bytes[0x1000] != 0x55 {
		t.Fatalf("expected original byte restored, got %#x", mem.bytes[0x1000])
	}
}

func TestInstallAllRelocatesForPIE(t *testing.T) {
	mem := newFakeMemory()
	mem.loadBase = 0x555000000000
	mem.bytes[0x555000000000+0x1000] = 0x55
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	if err := m.InstallAll(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.bytes[0x1000] == trapByte {
		t.Fatalf("trap byte written at DWARF-relative address instead of runtime address")
	}
	if mem.bytes[0x555000000000+0x1000] != trapByte {
		t.Fatalf("expected trap byte at the load-base-relocated address")
	}

	if err := m.UninstallAll(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.bytes[0x555000000000+0x1000] != 0x55 {
		t.Fatalf("expected original byte restored at the relocated address, got %#x", mem.bytes[0x555000000000+0x1000])
	}
}

func TestInstallAllSkipsDisabled(t *testing.T) {
	mem := newFakeMemory()
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: false}
	m := newTestManager(bp)

	if err := m.InstallAll(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp.Installed() {
		t.Fatalf("disabled breakpoint should not be installed")
	}
}

func TestStepOverCurrent(t *testing.T) {
	mem := newFakeMemory()
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	if err := m.InstallAll(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var steppedWithOrigByte byte
	stepped := false
	err := m.StepOverCurrent(mem, bp, func() error {
		stepped = true
		steppedWithOrigByte = mem.bytes[0x1000]
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stepped {
		t.Fatalf("expected the step callback to run")
	}
	if steppedWithOrigByte != 0x55 {
		t.Fatalf("expected the original instruction byte during the step, got %#x", steppedWithOrigByte)
	}
	if !bp.Installed() {
		t.Fatalf("expected the trap byte reinstalled after stepping")
	}
	if bp.HitCount() != 1 {
		t.Fatalf("expected hit count 1, got %d", bp.HitCount())
	}
}

func TestStepOverCurrentNotInstalled(t *testing.T) {
	mem := newFakeMemory()
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	err := m.StepOverCurrent(mem, bp, func() error { return nil })
	if !dbgerr.Is(err, dbgerr.UnknownBreakpoint) {
		t.Fatalf("expected UnknownBreakpoint, got %v", err)
	}
}

func TestRemoveUninstalls(t *testing.T) {
	mem := newFakeMemory()
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)
	m.InstallAll(mem)

	if err := m.Remove(mem, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.bytes[0x1000] != 0x55 {
		t.Fatalf("expected original byte restored on remove")
	}
	if _, err := m.Get(1); !dbgerr.Is(err, dbgerr.UnknownBreakpoint) {
		t.Fatalf("expected removed breakpoint to be gone, got %v", err)
	}
}

func TestRemoveUnknown(t *testing.T) {
	m := newTestManager()
	if err := m.Remove(newFakeMemory(), 99); !dbgerr.Is(err, dbgerr.UnknownBreakpoint) {
		t.Fatalf("expected UnknownBreakpoint, got %v", err)
	}
}

func TestEnableDisable(t *testing.T) {
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	if err := m.Disable(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp.Enabled {
		t.Fatalf("expected breakpoint disabled")
	}
	if err := m.Enable(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bp.Enabled {
		t.Fatalf("expected breakpoint enabled")
	}
}

func TestListOrderedByID(t *testing.T) {
	bp2 := &Breakpoint{ID: 2, Addr: 0x2000, Enabled: true}
	bp1 := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp2, bp1)

	list := m.List()
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("expected breakpoints ordered by id, got %+v", list)
	}
}

func TestClearUninstallsEverything(t *testing.T) {
	mem := newFakeMemory()
	bp1 := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	bp2 := &Breakpoint{ID: 2, Addr: 0x2000, Enabled: true}
	m := newTestManager(bp1, bp2)
	m.InstallAll(mem)

	if err := m.Clear(mem); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.bytes[0x1000] != 0x55 || mem.bytes[0x2000] != 0x90 {
		t.Fatalf("expected all original bytes restored, got %+v", mem.bytes)
	}
	if len(m.List()) != 0 {
		t.Fatalf("expected no breakpoints left after clear")
	}
}

func TestByAddr(t *testing.T) {
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	got, ok := m.ByAddr(0x1000)
	if !ok || got.ID != 1 {
		t.Fatalf("expected to find breakpoint at 0x1000, got %+v (ok=%v)", got, ok)
	}

	_, ok = m.ByAddr(0x9999)
	if ok {
		t.Fatalf("did not expect a breakpoint at an unused address")
	}
}

func TestUninstallLeavesOthersAlone(t *testing.T) {
	mem := newFakeMemory()
	bp1 := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	bp2 := &Breakpoint{ID: 2, Addr: 0x2000, Enabled: true}
	m := newTestManager(bp1, bp2)
	m.InstallAll(mem)

	if err := m.Uninstall(mem, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp1.Installed() {
		t.Fatalf("expected breakpoint 1 to be uninstalled")
	}
	if !bp2.Installed() {
		t.Fatalf("expected breakpoint 2 to remain installed")
	}
	if mem.bytes[0x1000] != 0x55 {
		t.Fatalf("expected breakpoint 1's original byte restored")
	}
	if mem.bytes[0x2000] != trapByte {
		t.Fatalf("expected breakpoint 2's trap byte to remain in memory")
	}
}

func TestUninstallNotInstalledIsANoOp(t *testing.T) {
	bp := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	m := newTestManager(bp)

	if err := m.Uninstall(newFakeMemory(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUninstallUnknown(t *testing.T) {
	m := newTestManager()
	if err := m.Uninstall(newFakeMemory(), 99); !dbgerr.Is(err, dbgerr.UnknownBreakpoint) {
		t.Fatalf("expected UnknownBreakpoint, got %v", err)
	}
}

func TestMarkAllUninstalledClearsFlagsWithoutTouchingMemory(t *testing.T) {
	mem := newFakeMemory()
	bp1 := &Breakpoint{ID: 1, Addr: 0x1000, Enabled: true}
	bp2 := &Breakpoint{ID: 2, Addr: 0x2000, Enabled: true}
	m := newTestManager(bp1, bp2)
	m.InstallAll(mem)

	m.MarkAllUninstalled()

	if bp1.Installed() || bp2.Installed() {
		t.Fatalf("expected every breakpoint to report uninstalled")
	}
	if mem.bytes[0x1000] != trapByte || mem.bytes[0x2000] != trapByte {
		t.Fatalf("expected memory to be left untouched, got %+v", mem.bytes)
	}
}
