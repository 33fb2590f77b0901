// Package cr computes condition-register field results from integer,
// floating-point, and vector-mask compares, mirroring PPCCRRegister's three
// compare() overloads in original_source/XenonUtils/ppc_context.h.
//
// The fourth CR bit is shared between two unrelated meanings depending on
// which compare produced it: integer compare writes it as SO (summary
// overflow, copied from XER), floating-point compare writes it as UN
// (unordered); the vector-mask form always leaves it false.
// ppc.PPCCRRegister names the field SOUN for that
// reason; callers read it through whichever accessor matches the compare
// that produced it.
package cr

import (
	"ppcrecomp/internal/ppc"
)

// Ordered is satisfied by any PPC integer width this package compares,
// signed or unsigned, so one generic implements both opcode variants.
type Ordered interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CompareInt sets LT/GT/EQ from an ordered compare of left and right, and
// copies XER.SO into the shared slot as CR integer-compare semantics
// require. Signed vs. unsigned selection is the caller's responsibility,
// fixed at emission time by the opcode variant (cmp vs. cmpl).
func CompareInt[T Ordered](left, right T, xer ppc.PPCXERRegister) ppc.PPCCRRegister {
	return ppc.PPCCRRegister{
		LT:   left < right,
		GT:   left > right,
		EQ:   left == right,
		SOUN: xer.SO,
	}
}

// CompareFloat sets UN when either operand is NaN, per IEEE ordered
// comparison rules; LT/GT/EQ are false whenever UN is set.
func CompareFloat(left, right float64) ppc.PPCCRRegister {
	un := isNaN(left) || isNaN(right)
	if un {
		return ppc.PPCCRRegister{SOUN: true}
	}
	return ppc.PPCCRRegister{LT: left < right, GT: left > right, EQ: left == right}
}

func isNaN(f float64) bool { return f != f }

// VectorMaskResult is the per-lane boolean mask a vector compare produces,
// already reduced to a movemask-style popcount bit pattern by the caller
// (internal/vector).
type VectorMaskResult struct {
	Bits int // movemask-equivalent: one set bit per lane where the compare held
	All  int // the all-lanes-set bit pattern for the lane width in play
}

// CompareVectorMask encodes AltiVec's "all" / "none" predicate forms: LT
// means every lane matched, EQ means no lane matched, GT and SO are always
// false for this form.
func CompareVectorMask(m VectorMaskResult) ppc.PPCCRRegister {
	return ppc.PPCCRRegister{
		LT: m.Bits == m.All,
		EQ: m.Bits == 0,
	}
}
