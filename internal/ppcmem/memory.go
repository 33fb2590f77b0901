// Package ppcmem implements the guest memory interface: a single
// byte-addressed 4 GiB buffer with enforced big-endian load/store
// primitives. The guest is big-endian PPC; the host is little-endian, so
// every multi-byte access swaps on transfer.
package ppcmem

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"ppcrecomp/internal/ppc"
)

// Memory is the flat guest address space. Guest pointers are plain uint32
// offsets into Bytes; unlike the C++ original this Go port never folds a
// guest offset into a host pointer by assuming the backing allocation's low
// 32 bits are zero (see DESIGN.md, Open Question "base alignment") — every
// access instead indexes the slice directly, which the Go runtime bounds
// checks; only ConditionalStoreU32 reinterprets a slice element through
// unsafe for its atomic compare-and-swap.
type Memory struct {
	Bytes []byte
}

// New allocates a full 4 GiB guest address space. Callers on platforms
// without an mmap-backed allocator (see internal/ppcmem/mmap_*.go) fall
// back to a plain make([]byte, ...), which still satisfies every load/store
// invariant; it simply forgoes the reservation-without-commit trick mmap
// gives the POSIX build.
func New() *Memory {
	return &Memory{Bytes: newBacking(ppc.MemorySize)}
}

// The load/store primitives below are free functions over a plain base
// []byte rather than methods on Memory. Emitted guest functions only ever
// carry a base []byte (see ppc.Func); giving them a direct, exported entry
// point into this package lets translated code call the real C2 memory
// primitive instead of a hand-rolled encoding/binary call, while Memory's
// own methods (used by a runtime harness that owns the backing allocation)
// delegate to the same code path.

// LoadU8 and StoreU8 do not swap: a single byte has no byte order.
func LoadU8(base []byte, addr uint32) uint8     { return base[addr] }
func StoreU8(base []byte, addr uint32, v uint8) { base[addr] = v }

// LoadU16 reads a big-endian 16-bit value at addr, unaligned-safe.
func LoadU16(base []byte, addr uint32) uint16 {
	return binary.BigEndian.Uint16(base[addr : addr+2])
}

// StoreU16 writes v as big-endian at addr.
func StoreU16(base []byte, addr uint32, v uint16) {
	binary.BigEndian.PutUint16(base[addr:addr+2], v)
}

// LoadU32 reads a big-endian 32-bit value at addr.
func LoadU32(base []byte, addr uint32) uint32 {
	return binary.BigEndian.Uint32(base[addr : addr+4])
}

// StoreU32 writes v as big-endian at addr.
func StoreU32(base []byte, addr uint32, v uint32) {
	binary.BigEndian.PutUint32(base[addr:addr+4], v)
}

// LoadU64 reads a big-endian 64-bit value at addr.
func LoadU64(base []byte, addr uint32) uint64 {
	return binary.BigEndian.Uint64(base[addr : addr+8])
}

// StoreU64 writes v as big-endian at addr.
func StoreU64(base []byte, addr uint32, v uint64) {
	binary.BigEndian.PutUint64(base[addr:addr+8], v)
}

// MMIO-variant operations: identical semantics to the plain load/store
// today, reserved for a future profile-guided static substitution (spec
// Open Question). eieio is expected to precede MMIO stores; that ordering
// is not yet enforced here, matching the original's own caveat.
func LoadMMIOU8(base []byte, addr uint32) uint8      { return LoadU8(base, addr) }
func StoreMMIOU8(base []byte, addr uint32, v uint8)  { StoreU8(base, addr, v) }
func LoadMMIOU16(base []byte, addr uint32) uint16     { return LoadU16(base, addr) }
func StoreMMIOU16(base []byte, addr uint32, v uint16) { StoreU16(base, addr, v) }
func LoadMMIOU32(base []byte, addr uint32) uint32     { return LoadU32(base, addr) }
func StoreMMIOU32(base []byte, addr uint32, v uint32) { StoreU32(base, addr, v) }
func LoadMMIOU64(base []byte, addr uint32) uint64     { return LoadU64(base, addr) }
func StoreMMIOU64(base []byte, addr uint32, v uint64) { StoreU64(base, addr, v) }

// Reserve records addr's 128-byte reservation granule for the lwarx half of
// a lwarx/stwcx. pair.
func Reserve(ctx *ppc.Context, base []byte, addr uint32) uint32 {
	granule := addr &^ (ppc.ReservationGranule - 1)
	ctx.Reserved.SetU32(granule)
	return LoadU32(base, addr)
}

// ConditionalStoreU32 performs the stwcx. half: a compare-and-swap against
// the current memory value, succeeding only if addr still falls in the
// granule last reserved by this context. Guest atomics must use a real host
// atomic instruction here rather than a plain read-modify-write, per the
// concurrency model — sync/atomic.CompareAndSwapUint32 over the guest byte
// slice reinterpreted as a *uint32.
func ConditionalStoreU32(ctx *ppc.Context, base []byte, addr uint32, oldVal, newVal uint32) bool {
	granule := addr &^ (ppc.ReservationGranule - 1)
	if ctx.Reserved.U32() != granule {
		return false
	}
	p := (*uint32)(unsafe.Pointer(&base[addr]))
	// The guest value is big-endian in memory; the atomic operand must be
	// byte-order-matched, so compare/swap using the swapped host word.
	hostOld := swap32(oldVal)
	hostNew := swap32(newVal)
	ok := atomic.CompareAndSwapUint32(p, hostOld, hostNew)
	if ok {
		ctx.Reserved.SetU32(0)
	}
	return ok
}

func swap32(v uint32) uint32 {
	return v<<24 | (v<<8)&0x00FF0000 | (v>>8)&0x0000FF00 | v>>24
}

// LoadU8 etc. on Memory delegate to the free functions above so a runtime
// harness holding a *Memory and emitted code holding only a base []byte
// exercise the identical code path.
func (m *Memory) LoadU8(addr uint32) uint8      { return LoadU8(m.Bytes, addr) }
func (m *Memory) StoreU8(addr uint32, v uint8)  { StoreU8(m.Bytes, addr, v) }
func (m *Memory) LoadU16(addr uint32) uint16    { return LoadU16(m.Bytes, addr) }
func (m *Memory) StoreU16(addr uint32, v uint16) { StoreU16(m.Bytes, addr, v) }
func (m *Memory) LoadU32(addr uint32) uint32    { return LoadU32(m.Bytes, addr) }
func (m *Memory) StoreU32(addr uint32, v uint32) { StoreU32(m.Bytes, addr, v) }
func (m *Memory) LoadU64(addr uint32) uint64    { return LoadU64(m.Bytes, addr) }
func (m *Memory) StoreU64(addr uint32, v uint64) { StoreU64(m.Bytes, addr, v) }

func (m *Memory) LoadMMIOU8(addr uint32) uint8       { return LoadMMIOU8(m.Bytes, addr) }
func (m *Memory) StoreMMIOU8(addr uint32, v uint8)   { StoreMMIOU8(m.Bytes, addr, v) }
func (m *Memory) LoadMMIOU16(addr uint32) uint16     { return LoadMMIOU16(m.Bytes, addr) }
func (m *Memory) StoreMMIOU16(addr uint32, v uint16) { StoreMMIOU16(m.Bytes, addr, v) }
func (m *Memory) LoadMMIOU32(addr uint32) uint32     { return LoadMMIOU32(m.Bytes, addr) }
func (m *Memory) StoreMMIOU32(addr uint32, v uint32) { StoreMMIOU32(m.Bytes, addr, v) }
func (m *Memory) LoadMMIOU64(addr uint32) uint64     { return LoadMMIOU64(m.Bytes, addr) }
func (m *Memory) StoreMMIOU64(addr uint32, v uint64) { StoreMMIOU64(m.Bytes, addr, v) }

// Reserve records addr's 128-byte reservation granule for the lwarx half of
// a lwarx/stwcx. pair, against this Memory's own backing slice.
func (m *Memory) Reserve(ctx *ppc.Context, addr uint32) uint32 {
	return Reserve(ctx, m.Bytes, addr)
}

// ConditionalStoreU32 performs the stwcx. half against this Memory's own
// backing slice. See the free function of the same name for the contract.
func (m *Memory) ConditionalStoreU32(ctx *ppc.Context, addr uint32, oldVal, newVal uint32) bool {
	return ConditionalStoreU32(ctx, m.Bytes, addr, oldVal, newVal)
}
