package flow

import (
	"encoding/binary"

	"testing"

	"ppcrecomp/internal/disasm/fixture"
	"ppcrecomp/internal/ppc"
)

func word(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func addiWord(rD, rA int, simm uint32) uint32 {
	return uint32(14)<<26 | uint32(rD)<<21 | uint32(rA)<<16 | (simm & 0xFFFF)
}

func blWord(li int32, aa, lk uint32) uint32 {
	return uint32(18)<<26 | uint32(li)&0x03FFFFFC | aa<<1 | lk
}

func blrWord() uint32 {
	return uint32(19)<<26 | uint32(20)<<21 | uint32(0)<<16 | uint32(16)<<1
}

func TestRecoverDiscoversCalleeAndReturnsToCaller(t *testing.T) {
	// Function A @ 0x1000: addi r3,r0,5 ; bl 0x1010 ; blr
	// Function B @ 0x1010: addi r4,r0,9 ; blr
	code := word(
		addiWord(3, 0, 5),
		blWord(0xC, 0, 1), // bl +0xC from 0x1004 -> 0x1010 (function B's entry)
		blrWord(),
		0, // padding at 0x100C, unused (function A ends at the blr above)
		addiWord(4, 0, 9),
		blrWord(),
	)

	env := ppc.Environment{CodeBase: 0x1000, CodeSize: uint32(len(code))}

	report, err := Recover(code, env, fixture.Decoder{}, []uint32{0x1000})
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(report.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(report.Functions))
	}

	a, ok := report.ByEntry(0x1000)
	if !ok {
		t.Fatal("function at 0x1000 not found")
	}
	if len(a.Instrs) != 3 {
		t.Fatalf("function A: expected 3 instructions (addi, bl, blr), got %d", len(a.Instrs))
	}
}

func TestRecoverUnconditionalBranchEndsFunction(t *testing.T) {
	// A tail branch (b, unlinked) to another address ends the current
	// function and seeds the target as a new one.
	code := word(
		addiWord(3, 0, 1),
		uint32(18)<<26|uint32(0x8)&0x03FFFFFC, // b +8 (unconditional, unlinked) from 0x1004 -> target 0x100C
		0,
		blrWord(),
	)
	env := ppc.Environment{CodeBase: 0x1000, CodeSize: uint32(len(code))}

	report, err := Recover(code, env, fixture.Decoder{}, []uint32{0x1000})
	if err != nil {
		t.Fatalf("Recover: %v", err)
	}
	if len(report.Functions) != 2 {
		t.Fatalf("expected 2 functions (tail branch target becomes its own entry), got %d", len(report.Functions))
	}
	first, _ := report.ByEntry(0x1000)
	if len(first.Instrs) != 2 {
		t.Fatalf("expected the first function to stop at the tail branch, got %d instructions", len(first.Instrs))
	}
}

func TestRecoverDecodeFailureIsTranslationGap(t *testing.T) {
	code := word(uint32(1) << 26) // unhandled primary opcode
	env := ppc.Environment{CodeBase: 0x1000, CodeSize: uint32(len(code))}

	_, err := Recover(code, env, fixture.Decoder{}, []uint32{0x1000})
	if err == nil {
		t.Fatal("expected a TranslationGap error for an undecodable instruction")
	}
}
