package ppc

// InitialMSR is the machine-state register value a freshly created Context
// carries, matching PPCContext::msr in original_source/XenonUtils/ppc_context.h.
const InitialMSR uint32 = 0x0200_A000

// Context is the canonical, unelided guest register file: every
// architectural PPC register a guest thread owns. It is what the translator
// and its tests reason about; the code the emitter actually writes for a
// given function may promote any subset of these fields to stack locals per
// the active elision Profile (see internal/emitter), in which case the
// emitted function copies them out of this type at entry and writes them
// back at exit.
type Context struct {
	GPR [32]PPCRegister
	FPR [32]PPCRegister
	VR  [128]PPCVRegister

	LR       uint64
	CTR      PPCRegister
	Reserved PPCRegister
	MSR      uint32
	XER      PPCXERRegister
	CR       [8]PPCCRRegister
	FPSCR    uint32 // host FP control/status word, see internal/fpscr
}

// NewContext returns a Context with architectural reset state applied.
func NewContext() *Context {
	return &Context{MSR: InitialMSR}
}

// Func is the calling convention every translated guest function and every
// host shim share: void fn(Context&, uint8_t* base) in the original, ctx
// plus the guest memory slice here. No interface, no virtual dispatch — see
// internal/trampoline for how indirect calls reach one of these through a
// dense function-pointer table instead.
type Func func(ctx *Context, base []byte)
