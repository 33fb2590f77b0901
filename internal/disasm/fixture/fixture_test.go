package fixture

import (
	"encoding/binary"
	"testing"
)

func encode(word uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, word)
	return b
}

func TestDecodeAddi(t *testing.T) {
	// addi r3, r0, 100
	word := uint32(14)<<26 | uint32(3)<<21 | uint32(0)<<16 | uint32(100)
	instr, ok := Decoder{}.Decode(encode(word), 0)
	if !ok || instr.Mnemonic != "addi" {
		t.Fatalf("decode addi: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
	if v, _ := instr.Operand("rD"); v != 3 {
		t.Errorf("rD = %d, want 3", v)
	}
	if v, _ := instr.Operand("SIMM"); v != 100 {
		t.Errorf("SIMM = %d, want 100", v)
	}
}

func TestDecodeAddNegativeSimm(t *testing.T) {
	word := uint32(14)<<26 | uint32(3)<<21 | uint32(0)<<16 | uint32(0xFFFF) // -1
	instr, ok := Decoder{}.Decode(encode(word), 0)
	if !ok {
		t.Fatal("decode failed")
	}
	if v, _ := instr.Operand("SIMM"); v != -1 {
		t.Errorf("SIMM = %d, want -1", v)
	}
}

func TestDecodeBranchLinked(t *testing.T) {
	// bl target at LI=0x100, AA=0, LK=1
	word := uint32(18)<<26 | uint32(0x100) | 1
	instr, ok := Decoder{}.Decode(encode(word), 0)
	if !ok || instr.Mnemonic != "bl" {
		t.Fatalf("decode bl: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
	if v, _ := instr.Operand("LI"); v != 0x100 {
		t.Errorf("LI = 0x%X, want 0x100", v)
	}
}

func TestDecodeBlr(t *testing.T) {
	// bclr with BO=20, BI=0 is the canonical "blr"
	word := uint32(19)<<26 | uint32(20)<<21 | uint32(0)<<16 | uint32(16)<<1
	instr, ok := Decoder{}.Decode(encode(word), 0)
	if !ok || instr.Mnemonic != "blr" {
		t.Fatalf("decode blr: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
}

func TestDecodeUnknownOpcodeFails(t *testing.T) {
	word := uint32(1) << 26 // unhandled primary opcode
	_, ok := Decoder{}.Decode(encode(word), 0)
	if ok {
		t.Fatal("expected decode failure for unhandled opcode")
	}
}

func TestDecodeAddOverflowVariant(t *testing.T) {
	// addo. rD=3, rA=4, rB=5: op=31, XO=778 (OE:1++XO:266), Rc=1
	word := uint32(31)<<26 | uint32(3)<<21 | uint32(4)<<16 | uint32(5)<<11 | uint32(778)<<1 | 1
	instr, ok := Decoder{}.Decode(encode(word), 0)
	if !ok || instr.Mnemonic != "addo." {
		t.Fatalf("decode addo.: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
}

func TestDecodeLwarxAndStwcx(t *testing.T) {
	lwarx := uint32(31)<<26 | uint32(3)<<21 | uint32(0)<<16 | uint32(4)<<11 | uint32(20)<<1
	instr, ok := Decoder{}.Decode(encode(lwarx), 0)
	if !ok || instr.Mnemonic != "lwarx" {
		t.Fatalf("decode lwarx: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}

	stwcx := uint32(31)<<26 | uint32(5)<<21 | uint32(0)<<16 | uint32(4)<<11 | uint32(150)<<1
	instr, ok = Decoder{}.Decode(encode(stwcx), 0)
	if !ok || instr.Mnemonic != "stwcx." {
		t.Fatalf("decode stwcx.: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
}

func TestDecodeBctrl(t *testing.T) {
	// bcctrl with BO=20 is the canonical "bctrl"
	word := uint32(19)<<26 | uint32(20)<<21 | uint32(528)<<1 | 1
	instr, ok := Decoder{}.Decode(encode(word), 0)
	if !ok || instr.Mnemonic != "bctrl" {
		t.Fatalf("decode bctrl: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
}

func TestDecodeFaddAndFcmpu(t *testing.T) {
	fadd := uint32(63)<<26 | uint32(1)<<21 | uint32(2)<<16 | uint32(3)<<11 | uint32(21)<<1
	instr, ok := Decoder{}.Decode(encode(fadd), 0)
	if !ok || instr.Mnemonic != "fadd" {
		t.Fatalf("decode fadd: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}

	fcmpu := uint32(63)<<26 | uint32(1)<<23 | uint32(2)<<16 | uint32(3)<<11
	instr, ok = Decoder{}.Decode(encode(fcmpu), 0)
	if !ok || instr.Mnemonic != "fcmpu" {
		t.Fatalf("decode fcmpu: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
}

func TestDecodeVpermAndVcmpgtubRc(t *testing.T) {
	// vperm vD=0, vA=1, vB=2, vC=3: VA-form, low 6 bits = 43, vC in bits 6-10
	vperm := uint32(4)<<26 | uint32(0)<<21 | uint32(1)<<16 | uint32(2)<<11 | uint32(3)<<6 | uint32(43)
	instr, ok := Decoder{}.Decode(encode(vperm), 0)
	if !ok || instr.Mnemonic != "vperm" {
		t.Fatalf("decode vperm: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}

	// vcmpgtub. vD=4, vA=5, vB=6, Rc=1: xo11 = 774 | 1<<10
	vcmpgtubRc := uint32(4)<<26 | uint32(4)<<21 | uint32(5)<<16 | uint32(6)<<11 | uint32(774|1<<10)
	instr, ok = Decoder{}.Decode(encode(vcmpgtubRc), 0)
	if !ok || instr.Mnemonic != "vcmpgtub." {
		t.Fatalf("decode vcmpgtub.: ok=%v mnemonic=%q", ok, instr.Mnemonic)
	}
}

func TestDecodeTruncatedBufferFails(t *testing.T) {
	_, ok := Decoder{}.Decode([]byte{0, 0}, 0)
	if ok {
		t.Fatal("expected decode failure for truncated buffer")
	}
}
