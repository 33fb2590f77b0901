// Package trampoline holds the function map (C8): the dense, append-only
// table of translated guest functions indexed by guest address, and the
// Call/CallIndirect entry points emitted code uses for direct and indirect
// guest calls. No interface, no virtual dispatch — lookup is a slice index.
package trampoline

import (
	"sync"

	"ppcrecomp/internal/ppc"
	"ppcrecomp/internal/ppcerr"
	"ppcrecomp/internal/shims"
)

// Map is the function table for one translated image: a dense slice of
// ppc.Func indexed by (addr-CodeBase)/4, guarded by a single mutex for the
// append-only build phase (the InstallFuncMap function the driver generates
// fills it at program start).
type Map struct {
	mu    sync.Mutex
	env   ppc.Environment
	funcs []ppc.Func
}

// NewMap allocates a function table sized to env's code region.
func NewMap(env ppc.Environment) *Map {
	return &Map{env: env, funcs: make([]ppc.Func, env.CodeSize/4)}
}

// Set installs fn as the translation of the guest function at addr. Set is
// safe for concurrent use: every write takes the single map mutex, matching
// the single-lock append-only contract of spec.md §5.
func (m *Map) Set(addr uint32, fn ppc.Func) error {
	idx, ok := m.env.FuncSlot(addr)
	if !ok {
		return ppcerr.New(ppcerr.BadImage, addr, "function address outside code region")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs[idx] = fn
	return nil
}

// Lookup returns the translated function at addr, if one has been set.
func (m *Map) Lookup(addr uint32) (ppc.Func, bool) {
	idx, ok := m.env.FuncSlot(addr)
	if !ok {
		return nil, false
	}
	m.mu.Lock()
	fn := m.funcs[idx]
	m.mu.Unlock()
	return fn, fn != nil
}

// active is the function table emitted code resolves Call/CallIndirect
// against. Emitted functions never see a Map value directly — they call
// the package-level helpers below, matching the calling convention
// original_source/XenonUtils/ppc_context.h fixes via PPC_LOOKUP_FUNC.
var active *Map

// SetActive installs m as the table used by Call/CallIndirect. The
// InstallFuncMap function the driver generates in PPCFuncMappings.go calls
// this once, before any emitted function runs.
func SetActive(m *Map) { active = m }

// Call invokes the guest function at a statically known target address,
// falling back to shims.Trap if flow recovery could not resolve it to a
// translated function at emission time (spec.md §7, UnresolvedBranch).
func Call(ctx *ppc.Context, base []byte, addr uint32) {
	fn, ok := active.Lookup(addr)
	if !ok {
		shims.Trap(ctx, addr, ppcerr.New(ppcerr.UnresolvedBranch, addr, "call target has no translation"))
		return
	}
	fn(ctx, base)
}

// CallIndirect invokes the guest function whose address is only known at
// run time (a computed bctr/bclr target). A miss is always fatal: it traps
// with an UnresolvedIndirect error, since static recompilation cannot
// discover a target that isn't in the function table.
func CallIndirect(ctx *ppc.Context, base []byte, addr uint32) {
	fn, ok := active.Lookup(addr)
	if !ok {
		shims.Trap(ctx, addr, ppcerr.New(ppcerr.UnresolvedIndirect, addr, "indirect call target has no translation"))
		return
	}
	fn(ctx, base)
}
