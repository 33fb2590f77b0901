// Package vector implements the AltiVec intrinsic layer: the handful of
// lane-wise operations PowerPC vector instructions need that have no single
// Go or host-SSE equivalent. Each function here is grounded on the named
// simde/SSE helper in original_source/XenonUtils/ppc_context.h, re-expressed
// as a plain per-lane Go loop instead of the original's XOR-bias tricks
// (those tricks exist only to route an unsigned op through a signed SSE
// instruction; a scalar Go loop has no such restriction).
package vector

import "math"

// VectorMaskL and VectorMaskR are lddl/lddr alignment masks: VectorMaskL[n]
// selects which of 16 source bytes pass through a left load of unaligned
// shift n, VectorMaskR[n] the mirror for a right load. Transcribed verbatim
// from ppc_context.h; each row is one alignment (0-15).
var VectorMaskL = [16][16]byte{
	{0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00},
	{0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
	{0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02},
	{0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03},
	{0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D, 0x0C},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E, 0x0D},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F, 0x0E},
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x0F},
}

var VectorMaskR = [16][16]byte{
	{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF},
	{0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF, 0xFF},
	{0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF, 0xFF},
	{0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0xFF},
}

// VectorShiftTableL and VectorShiftTableR feed the byte-granule shuffle a
// lvsl/lvsr-driven vector shift performs: row n is the permutation that
// shifts a 16-byte vector left (resp. right) by n bytes, shifting in bytes
// from the adjoining (conceptually: next-loaded) 16 bytes.
var VectorShiftTableL = [16][16]byte{
	{0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00},
	{0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
	{0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02},
	{0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03},
	{0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04},
	{0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05},
	{0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06},
	{0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07},
	{0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08},
	{0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09},
	{0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A},
	{0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B},
	{0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C},
	{0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D},
	{0x1D, 0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E},
	{0x1E, 0x1D, 0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F},
}

var VectorShiftTableR = [16][16]byte{
	{0x1F, 0x1E, 0x1D, 0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10},
	{0x1E, 0x1D, 0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F},
	{0x1D, 0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E},
	{0x1C, 0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D},
	{0x1B, 0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C},
	{0x1A, 0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B},
	{0x19, 0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A},
	{0x18, 0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09},
	{0x17, 0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08},
	{0x16, 0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07},
	{0x15, 0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06},
	{0x14, 0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05},
	{0x13, 0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04},
	{0x12, 0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03},
	{0x11, 0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02},
	{0x10, 0x0F, 0x0E, 0x0D, 0x0C, 0x0B, 0x0A, 0x09, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
}

// AddSaturateU32 is vaddcuw/vadduwm's saturating cousin: _mm_adds_epu32 in
// the original. Scalar saturation is a plain clamped-add, no XOR bias
// needed.
func AddSaturateU32(a, b [4]uint32) [4]uint32 {
	var out [4]uint32
	for i := range a {
		sum := uint64(a[i]) + uint64(b[i])
		if sum > math.MaxUint32 {
			sum = math.MaxUint32
		}
		out[i] = uint32(sum)
	}
	return out
}

// AvgS8 implements vavgsb: _mm_avg_epi8 is a rounding signed average,
// (a+b+1)>>1 evaluated at twice the lane width so it never overflows.
func AvgS8(a, b [16]int8) [16]int8 {
	var out [16]int8
	for i := range a {
		out[i] = int8((int16(a[i]) + int16(b[i]) + 1) >> 1)
	}
	return out
}

// AvgS16 implements vavgsh, the halfword-lane counterpart of AvgS8.
func AvgS16(a, b [8]int16) [8]int16 {
	var out [8]int16
	for i := range a {
		out[i] = int16((int32(a[i]) + int32(b[i]) + 1) >> 1)
	}
	return out
}

// ConvertU32ToF32 implements vcfux: an exact unsigned-to-float conversion.
// The original routes this through a signed-conversion trick because SSE2
// has no native unsigned int32-to-float instruction; Go's uint32-to-float32
// conversion is already correctly rounded, so no trick is needed here.
func ConvertU32ToF32(v [4]uint32) [4]float32 {
	var out [4]float32
	for i := range v {
		out[i] = float32(v[i])
	}
	return out
}

// Permute implements vperm (_mm_perm_epi8_): for each output byte i, the low
// 5 bits of sel[i] select a source byte from the 32-byte concatenation of a
// followed by b (0-15 from a, 16-31 from b).
func Permute(a, b [16]byte, sel [16]byte) [16]byte {
	var out [16]byte
	for i, s := range sel {
		idx := s & 0x1F
		if idx < 16 {
			out[i] = a[idx]
		} else {
			out[i] = b[idx-16]
		}
	}
	return out
}

// AllLanesMask8 and AllLanesMask16 are the movemask values MaskBits8/16
// produce when every lane of a 16-byte vector register matched, for the
// "all" predicate form cr.CompareVectorMask checks against.
const (
	AllLanesMask8  = 0xFFFF
	AllLanesMask16 = 0xFF
)

// MaskBits8 reduces a 16-lane byte mask (as CompareGreaterU8 produces) to a
// single movemask-style integer, one set bit per lane whose mask byte is
// non-zero. vcmpgtub.'s CR6 predicate summary (cr.CompareVectorMask) is
// defined over this reduced form rather than the raw per-lane mask.
func MaskBits8(mask [16]uint8) int {
	bits := 0
	for i, m := range mask {
		if m != 0 {
			bits |= 1 << i
		}
	}
	return bits
}

// MaskBits16 is MaskBits8's halfword-lane counterpart, for vcmpgtuh..
func MaskBits16(mask [8]uint16) int {
	bits := 0
	for i, m := range mask {
		if m != 0 {
			bits |= 1 << i
		}
	}
	return bits
}

// CompareGreaterU8 implements vcmpgtub: per-lane unsigned greater-than,
// returning an all-ones/all-zeros mask byte per lane as AltiVec compares do.
func CompareGreaterU8(a, b [16]uint8) [16]uint8 {
	var out [16]uint8
	for i := range a {
		if a[i] > b[i] {
			out[i] = 0xFF
		}
	}
	return out
}

// CompareGreaterU16 implements vcmpgtuh, the halfword-lane counterpart.
func CompareGreaterU16(a, b [8]uint16) [8]uint16 {
	var out [8]uint16
	for i := range a {
		if a[i] > b[i] {
			out[i] = 0xFFFF
		}
	}
	return out
}

// ConvertToSignedSaturate implements vctsxs: truncating float-to-int32
// conversion that saturates on overflow and maps NaN to zero, matching
// _mm_vctsxs's unordered-masking behavior.
func ConvertToSignedSaturate(src [4]float32) [4]int32 {
	var out [4]int32
	for i, f := range src {
		if math.IsNaN(float64(f)) {
			out[i] = 0
			continue
		}
		switch {
		case f >= math.MaxInt32:
			out[i] = math.MaxInt32
		case f <= math.MinInt32:
			out[i] = math.MinInt32
		default:
			out[i] = int32(f)
		}
	}
	return out
}

// ShiftRight128 implements vsr: the 128-bit operand a, treated as one
// big-endian integer, shifted right by the low 3 bits of b's last byte
// (the architectural field width for this form), zero-filled from the top.
// bytes[0] is the most significant byte, matching AltiVec's lane-0-is-first
// convention; PPCVRegister.Bytes() already holds the guest bytes in memory
// order (lvx/stvx copy them unchanged), so the emitter passes it directly.
func ShiftRight128(a [16]byte, b [16]byte) [16]byte {
	shift := uint(b[15] & 0x7)
	if shift == 0 {
		return a
	}

	var out [16]byte
	var carry byte
	for i := 0; i < 16; i++ {
		cur := a[i]
		out[i] = (cur >> shift) | carry
		carry = cur << (8 - shift)
	}
	return out
}
