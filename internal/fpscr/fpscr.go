// Package fpscr bridges the PPC floating-point status/control register to
// the host FP control word (the MXCSR on an SSE host). It mirrors
// PPCFPSCRRegister from original_source/XenonUtils/ppc_context.h: load and
// store translate between the four PPC rounding codes and the host's
// rounding-control encoding, and flush-to-zero / denormals-are-zero toggle
// as one paired mask.
//
// Go has no portable way to read or write a real host MXCSR, so this
// package models the control word as plain data (a *ppc.Context's FPSCR
// field) and the emitter consults it in software wherever PPC semantics
// depend on rounding or flush mode, rather than issuing an actual LDMXCSR.
package fpscr

// PPC rounding-mode codes, matching spec.md §3.
const (
	RoundNearest    = 0
	RoundTowardZero = 1
	RoundUp         = 2
	RoundDown       = 3
	roundMask       = 0x3
)

// Host rounding-control encoding, matching SIMDE_MM_ROUND_* / the x86 MXCSR
// RC field layout (bits 13:14).
const (
	HostRoundNearest    = 0x0000
	HostRoundDown       = 0x2000
	HostRoundUp         = 0x4000
	HostRoundTowardZero = 0x6000
	hostRoundMask       = 0x6000
	hostRoundShift      = 13
)

// HostFlushMask is flush-to-zero OR'd with denormals-are-zero, the single
// mask the original toggles together as "flush mode".
const HostFlushMask = 0x8000 | 0x0040

var guestToHost = [4]uint32{HostRoundNearest, HostRoundTowardZero, HostRoundUp, HostRoundDown}
var hostToGuest = [4]uint32{RoundNearest, RoundDown, RoundUp, RoundTowardZero}

// LoadFromHost returns the PPC rounding code implied by the current host
// control word csr.
func LoadFromHost(csr uint32) (rounding uint32) {
	return hostToGuest[(csr&hostRoundMask)>>hostRoundShift]
}

// StoreFromGuest returns csr with its rounding-control bits replaced by the
// host encoding of the PPC rounding code value.
func StoreFromGuest(csr uint32, value uint32) uint32 {
	csr &^= hostRoundMask
	csr |= guestToHost[value&roundMask]
	return csr
}

// EnableFlushMode sets flush-to-zero and denormals-are-zero, short
// circuiting when both bits are already set: the common case for
// back-to-back FP blocks that share a mode, where re-issuing the write
// would be wasted work on a real host.
func EnableFlushMode(csr uint32) uint32 {
	if csr&HostFlushMask != HostFlushMask {
		csr |= HostFlushMask
	}
	return csr
}

// DisableFlushMode clears flush-to-zero and denormals-are-zero, with the
// same short-circuit as EnableFlushMode.
func DisableFlushMode(csr uint32) uint32 {
	if csr&HostFlushMask != 0 {
		csr &^= HostFlushMask
	}
	return csr
}

// EnableFlushModeUnconditional always writes, for call sites that cannot
// assume anything about the prior state (e.g. after a host shim call that
// may have perturbed it).
func EnableFlushModeUnconditional(csr uint32) uint32 { return csr | HostFlushMask }

// DisableFlushModeUnconditional always clears the flush mask.
func DisableFlushModeUnconditional(csr uint32) uint32 { return csr &^ HostFlushMask }
