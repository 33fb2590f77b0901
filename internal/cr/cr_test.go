package cr

import (
	"testing"

	"ppcrecomp/internal/ppc"
)

func TestCompareIntFieldsAreExclusiveAndCopySO(t *testing.T) {
	cases := []struct {
		left, right int32
		so          bool
	}{
		{1, 2, false},
		{2, 1, true},
		{5, 5, false},
		{-1, 1, true},
	}

	for _, c := range cases {
		xer := ppc.PPCXERRegister{SO: c.so}
		field := CompareInt(c.left, c.right, xer)

		count := 0
		if field.LT {
			count++
		}
		if field.GT {
			count++
		}
		if field.EQ {
			count++
		}
		if count != 1 {
			t.Errorf("compare(%d,%d): expected exactly one of LT/GT/EQ, got LT=%v GT=%v EQ=%v",
				c.left, c.right, field.LT, field.GT, field.EQ)
		}
		if field.SOUN != c.so {
			t.Errorf("compare(%d,%d): SO = %v, want %v", c.left, c.right, field.SOUN, c.so)
		}
	}
}

func TestCompareIntUnsignedVariant(t *testing.T) {
	// -1 as uint32 is the largest value, so it must compare greater than 1.
	field := CompareInt(uint32(0xFFFFFFFF), uint32(1), ppc.PPCXERRegister{})
	if !field.GT || field.LT || field.EQ {
		t.Fatalf("unsigned compare of 0xFFFFFFFF vs 1: got LT=%v GT=%v EQ=%v", field.LT, field.GT, field.EQ)
	}
}

// TestCompareFloatNaNSetsUN implements scenario S4: CR FP compare of NaN,
// 1.0 must yield UN=1 with LT=GT=EQ=0.
func TestCompareFloatNaNSetsUN(t *testing.T) {
	nan := nan64()
	field := CompareFloat(nan, 1.0)
	if !field.SOUN {
		t.Fatalf("NaN compare did not set UN")
	}
	if field.LT || field.GT || field.EQ {
		t.Fatalf("NaN compare set an ordered field: LT=%v GT=%v EQ=%v", field.LT, field.GT, field.EQ)
	}
}

func TestCompareFloatOrdered(t *testing.T) {
	field := CompareFloat(1.0, 2.0)
	if !field.LT || field.GT || field.EQ || field.SOUN {
		t.Fatalf("1.0 < 2.0: got LT=%v GT=%v EQ=%v UN=%v", field.LT, field.GT, field.EQ, field.SOUN)
	}
}

func TestCompareVectorMaskAllAndNone(t *testing.T) {
	all := CompareVectorMask(VectorMaskResult{Bits: 0xF, All: 0xF})
	if !all.LT || all.EQ {
		t.Fatalf("all-lanes-matched: got LT=%v EQ=%v", all.LT, all.EQ)
	}

	none := CompareVectorMask(VectorMaskResult{Bits: 0, All: 0xF})
	if none.LT || !none.EQ {
		t.Fatalf("no-lanes-matched: got LT=%v EQ=%v", none.LT, none.EQ)
	}

	partial := CompareVectorMask(VectorMaskResult{Bits: 0x3, All: 0xF})
	if partial.LT || partial.EQ {
		t.Fatalf("partial match must set neither LT nor EQ: got LT=%v EQ=%v", partial.LT, partial.EQ)
	}
}

func nan64() float64 {
	var zero float64
	return zero / zero
}
