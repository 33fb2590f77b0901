package ppc

// MemorySize is the fixed size of the guest address space: a full 32-bit
// range. PPC_MEMORY_SIZE in the original.
const MemorySize uint64 = 0x1_0000_0000

// ReservationGranule is the width, in bytes, of the lwarx/stwcx. reservation
// granule (PPC standard: 128 bytes). A guest write anywhere inside another
// thread's reservation granule clears that thread's reservation.
const ReservationGranule = 128

// Environment carries the per-image constants the original treats as
// compile-time parameters of the emitted program (PPC_IMAGE_BASE,
// PPC_IMAGE_SIZE, PPC_CODE_BASE). They are runtime values here because this
// translator is itself a Go program consuming one image per run; the
// emitted program receives them as the Environment argument of the
// generated InstallFuncMap.
type Environment struct {
	ImageBase uint64
	ImageSize uint64
	CodeBase  uint32
	CodeSize  uint32
}

// FuncSlot returns the dense function-table index for guest address p,
// mirroring PPC_LOOKUP_FUNC's (p - PPC_CODE_BASE) * 2 slot arithmetic. The
// "* 2" in the original counts 8-byte pointer slots laid out after a
// uint32-addressed base; here the function table is a plain Go slice
// indexed one guest instruction (4 bytes) per slot, so the factor folds
// into a division instead of a pointer-width multiply.
func (e Environment) FuncSlot(p uint32) (idx int, ok bool) {
	if p < e.CodeBase || p >= e.CodeBase+e.CodeSize {
		return 0, false
	}
	return int((p - e.CodeBase) / 4), true
}
