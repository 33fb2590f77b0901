// Package emitter turns a decoded instruction stream into Go source text: one
// host function body per guest function, specialized at translation time by
// an ElisionProfile that decides which registers live as *ppc.Context
// fields versus host-function-local variables. The specialization is a
// compile-time choice of the emitter, never a run-time branch in emitted
// code, matching spec.md §3's register elision design.
package emitter

// ElisionProfile mirrors the `[options]` table of the TOML config (§6):
// each flag controls whether a register class is promoted to a local
// variable in the emitted Go function instead of living in *ppc.Context.
type ElisionProfile struct {
	NonArgumentAsLocal bool
	NonVolatileAsLocal bool
	SkipLR             bool
	SkipMSR            bool
	CtrAsLocal         bool
	XerAsLocal         bool
	ReservedAsLocal    bool
	CrAsLocal          bool
}

// DefaultProfile elides nothing: every register lives in *ppc.Context. This
// is always correct (cross-function call sites agree on Context layout
// regardless of profile) and is the safe fallback when config omits
// `[options]` entirely.
func DefaultProfile() ElisionProfile { return ElisionProfile{} }

// isArgumentReg reports whether GPR n is in the PPC64 ABI's argument range
// (r3-r10); non_argument_as_local only promotes registers outside this
// range, since argument registers must still be readable at function entry
// exactly as the caller left them in Context.
func isArgumentReg(n int) bool { return n >= 3 && n <= 10 }

// isVolatileReg reports whether GPR n stays in Context under
// non_volatile_as_local: the caller-saved registers of the PPC64 ELF ABI
// (r0, r3-r12) and the dedicated r1 (stack pointer), r2 (TOC) and r13
// (thread pointer), which callees read directly. non_volatile_as_local only
// promotes the callee-saved set r14-r31, which a function must preserve
// across calls and so is safe to keep as a local the emitter spills back to
// Context only at function exit.
func isVolatileReg(n int) bool {
	return n < 14
}
