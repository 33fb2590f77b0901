// Package ppc holds the guest register file: the typed record of every
// architectural PowerPC register a translated guest thread observes.
//
// A PPCRegister backs an 8-byte cell reinterpreted per opcode as a signed or
// unsigned 8/16/32/64-bit integer or a 32/64-bit float, matching the union
// PPCRegister of original_source/XenonUtils/ppc_context.h. Go has no native
// union; the cell is a [8]byte array and the accessors below reinterpret it
// in place via unsafe.Pointer so no conversion cost is paid on the hot path.
package ppc

import (
	"math"
	"unsafe"
)

// PPCRegister is one 64-bit general-purpose or floating-point register
// cell, reinterpretable as any of its architectural views.
type PPCRegister struct {
	bits [8]byte
}

func (r *PPCRegister) U64() uint64 { return *(*uint64)(unsafe.Pointer(&r.bits)) }
func (r *PPCRegister) S64() int64  { return *(*int64)(unsafe.Pointer(&r.bits)) }
func (r *PPCRegister) U32() uint32 { return *(*uint32)(unsafe.Pointer(&r.bits)) }
func (r *PPCRegister) S32() int32  { return *(*int32)(unsafe.Pointer(&r.bits)) }
func (r *PPCRegister) U16() uint16 { return *(*uint16)(unsafe.Pointer(&r.bits)) }
func (r *PPCRegister) S16() int16  { return *(*int16)(unsafe.Pointer(&r.bits)) }
func (r *PPCRegister) U8() uint8   { return r.bits[0] }
func (r *PPCRegister) S8() int8    { return int8(r.bits[0]) }
func (r *PPCRegister) F32() float32 {
	return math.Float32frombits(*(*uint32)(unsafe.Pointer(&r.bits)))
}
func (r *PPCRegister) F64() float64 {
	return math.Float64frombits(*(*uint64)(unsafe.Pointer(&r.bits)))
}

func (r *PPCRegister) SetU64(v uint64) { *(*uint64)(unsafe.Pointer(&r.bits)) = v }
func (r *PPCRegister) SetS64(v int64)  { *(*int64)(unsafe.Pointer(&r.bits)) = v }

// SetU32 zeroes the upper 32 bits of the cell rather than leaving them
// union-aliased to whatever the last 64-bit write left behind. The real
// PPC GPRs this models are 64-bit; a 32-bit-opcode write is always meant to
// produce a defined 64-bit value, so zeroing beats leaving stale bits.
func (r *PPCRegister) SetU32(v uint32)  { *(*uint64)(unsafe.Pointer(&r.bits)) = uint64(v) }
func (r *PPCRegister) SetS32(v int32)   { r.SetU32(uint32(v)) }
func (r *PPCRegister) SetF32(v float32) { r.SetU32(math.Float32bits(v)) }
func (r *PPCRegister) SetF64(v float64) { r.SetU64(math.Float64bits(v)) }

// PPCXERRegister holds the three fixed-point exception flags.
type PPCXERRegister struct {
	SO, OV, CA bool
}

// PPCCRRegister is one of the eight 4-bit condition-register fields.
// SO and UN share a slot: integer compare writes SO (summary overflow),
// floating-point compare writes UN (unordered). Both readings are valid
// depending on which compare produced the field — see internal/cr.
type PPCCRRegister struct {
	LT, GT, EQ, SOUN bool
}

// PPCVRegister is a 128-bit AltiVec vector register. It is 8-byte aligned,
// which is enough for every lane view below; it is not guaranteed to be
// 16-byte aligned.
type PPCVRegister struct {
	_  [0]uint64 // forces 8-byte alignment so the unsafe views below are valid
	Lo uint64
	Hi uint64
}

func (v *PPCVRegister) Bytes() *[16]byte     { return (*[16]byte)(unsafe.Pointer(v)) }
func (v *PPCVRegister) U8s() *[16]uint8      { return (*[16]uint8)(unsafe.Pointer(v)) }
func (v *PPCVRegister) S8s() *[16]int8       { return (*[16]int8)(unsafe.Pointer(v)) }
func (v *PPCVRegister) U16s() *[8]uint16     { return (*[8]uint16)(unsafe.Pointer(v)) }
func (v *PPCVRegister) S16s() *[8]int16      { return (*[8]int16)(unsafe.Pointer(v)) }
func (v *PPCVRegister) U32s() *[4]uint32     { return (*[4]uint32)(unsafe.Pointer(v)) }
func (v *PPCVRegister) S32s() *[4]int32      { return (*[4]int32)(unsafe.Pointer(v)) }
func (v *PPCVRegister) U64s() *[2]uint64     { return (*[2]uint64)(unsafe.Pointer(v)) }
func (v *PPCVRegister) F32s() *[4]float32    { return (*[4]float32)(unsafe.Pointer(v)) }
func (v *PPCVRegister) F64s() *[2]float64    { return (*[2]float64)(unsafe.Pointer(v)) }
