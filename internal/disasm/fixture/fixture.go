// Package fixture is a minimal PPC decoder covering the instruction subset
// the emitter, flow recovery, and driver tests exercise: integer
// add/add-immediate (with the overflow "o" variant), word compare
// (signed/unsigned), word load/store, the lwarx/stwcx. reservation pair,
// branch (absolute/relative, linked), branch-to-LR/CTR (plain and linked),
// mtspr/mfspr for LR and CTR, mtmsr/mfmsr, the FPSCR bridge (mtfsf/mffs), a floating-point
// add and compare, single-precision float load/store, and a representative
// slice of the AltiVec vector facility (lvx/stvx, vperm, vadduws, vavgsb/sh,
// vcfux, vctsxs, vsr, vcmpgtub/uh). It decodes real PPC bit layouts
// (big-endian 32-bit words, primary/extended opcode fields per the Power ISA
// instruction formats) rather than an invented test encoding, so
// fixture-decoded programs look like genuine PPC object code; it is not a
// substitute for a full disassembler (see internal/disasm's package doc).
package fixture

import (
	"encoding/binary"

	"ppcrecomp/internal/disasm"
)

const (
	sprLR  = 8
	sprCTR = 9
)

// Decoder implements disasm.Decoder over the fixed instruction subset.
type Decoder struct{}

func (Decoder) Decode(code []byte, addr uint32) (disasm.Instruction, bool) {
	if addr+4 > uint32(len(code)) {
		return disasm.Instruction{}, false
	}
	word := binary.BigEndian.Uint32(code[addr : addr+4])
	op := word >> 26

	switch op {
	case 14: // addi rD, rA, SIMM
		return disasm.Instruction{
			Addr: addr, Length: 4, Mnemonic: "addi",
			Operands: map[string]int64{
				"rD": field(word, 21, 5), "rA": field(word, 16, 5), "SIMM": simm16(word),
			},
		}, true

	case 31:
		xo := (word >> 1) & 0x3FF
		switch xo {
		case 266, 778: // add[.] / addo[.] (778 = OE:1 ++ XO:266 packed into the same 10-bit field)
			mnem := "add"
			if xo == 778 {
				mnem = "addo"
			}
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: mnemonicRc(mnem, word),
				Operands: map[string]int64{
					"rD": field(word, 21, 5), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 0: // cmp (word form only: L must be 0)
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "cmpw",
				Operands: map[string]int64{
					"crfD": field(word, 23, 3), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 32: // cmpl
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "cmplw",
				Operands: map[string]int64{
					"crfD": field(word, 23, 3), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 20: // lwarx rD, rA, rB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "lwarx",
				Operands: map[string]int64{
					"rD": field(word, 21, 5), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 150: // stwcx. (Rc is architecturally fixed at 1 for this opcode)
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "stwcx.",
				Operands: map[string]int64{
					"rS": field(word, 21, 5), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 103: // lvx vD, rA, rB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "lvx",
				Operands: map[string]int64{
					"vD": field(word, 21, 5), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 231: // stvx vS, rA, rB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "stvx",
				Operands: map[string]int64{
					"vS": field(word, 21, 5), "rA": field(word, 16, 5), "rB": field(word, 11, 5),
				},
			}, true
		case 467, 339: // mtspr / mfspr
			spr := field(word, 16, 5) | (field(word, 11, 5) << 5)
			mnem := "mfspr"
			if xo == 467 {
				mnem = "mtspr"
			}
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: mnem,
				Operands: map[string]int64{"r": field(word, 21, 5), "spr": spr},
			}, true
		case 146: // mtmsr rS
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "mtmsr",
				Operands: map[string]int64{"r": field(word, 21, 5)},
			}, true
		case 83: // mfmsr rD
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "mfmsr",
				Operands: map[string]int64{"r": field(word, 21, 5)},
			}, true
		}

	case 32: // lwz rD, d(rA)
		return disasm.Instruction{
			Addr: addr, Length: 4, Mnemonic: "lwz",
			Operands: map[string]int64{
				"rD": field(word, 21, 5), "rA": field(word, 16, 5), "d": simm16(word),
			},
		}, true

	case 36: // stw rS, d(rA)
		return disasm.Instruction{
			Addr: addr, Length: 4, Mnemonic: "stw",
			Operands: map[string]int64{
				"rS": field(word, 21, 5), "rA": field(word, 16, 5), "d": simm16(word),
			},
		}, true

	case 48: // lfs frD, d(rA)
		return disasm.Instruction{
			Addr: addr, Length: 4, Mnemonic: "lfs",
			Operands: map[string]int64{
				"frD": field(word, 21, 5), "rA": field(word, 16, 5), "d": simm16(word),
			},
		}, true

	case 52: // stfs frS, d(rA)
		return disasm.Instruction{
			Addr: addr, Length: 4, Mnemonic: "stfs",
			Operands: map[string]int64{
				"frS": field(word, 21, 5), "rA": field(word, 16, 5), "d": simm16(word),
			},
		}, true

	case 18: // b / bl (AA/LK in the low two bits)
		li := int64(int32(word&0x03FFFFFC<<6) >> 6) // sign-extend 26-bit field, low 2 bits already 0
		mnem := "b"
		if word&1 == 1 {
			mnem = "bl"
		}
		return disasm.Instruction{
			Addr: addr, Length: 4, Mnemonic: mnem,
			Operands: map[string]int64{"LI": li, "AA": int64(word>>1) & 1, "LK": int64(word) & 1},
		}, true

	case 19:
		xo := (word >> 1) & 0x3FF
		switch xo {
		case 16: // bclr / blr / blrl
			bo := field(word, 21, 5)
			bi := field(word, 16, 5)
			lk := int64(word) & 1
			mnem := "bclr"
			if bo == 20 {
				mnem = "blr"
				if lk == 1 {
					mnem = "blrl"
				}
			}
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: mnem,
				Operands: map[string]int64{"BO": bo, "BI": bi, "LK": lk},
			}, true
		case 528: // bcctr / bctr / bctrl
			bo := field(word, 21, 5)
			lk := int64(word) & 1
			mnem := "bcctr"
			if bo == 20 {
				mnem = "bctr"
				if lk == 1 {
					mnem = "bctrl"
				}
			}
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: mnem,
				Operands: map[string]int64{"BO": bo, "LK": lk},
			}, true
		}

	case 63: // floating-point (A-form and X-form share primary opcode 63)
		xo := (word >> 1) & 0x3FF
		switch xo {
		case 21: // fadd frD, frA, frB (frC field is 0 for this opcode)
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "fadd",
				Operands: map[string]int64{
					"frD": field(word, 21, 5), "frA": field(word, 16, 5), "frB": field(word, 11, 5),
				},
			}, true
		case 0: // fcmpu crfD, frA, frB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "fcmpu",
				Operands: map[string]int64{
					"crfD": field(word, 23, 3), "frA": field(word, 16, 5), "frB": field(word, 11, 5),
				},
			}, true
		case 711: // mtfsf FM, frB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "mtfsf",
				Operands: map[string]int64{"FM": field(word, 17, 8), "frB": field(word, 11, 5)},
			}, true
		case 583: // mffs frD
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "mffs",
				Operands: map[string]int64{"frD": field(word, 21, 5)},
			}, true
		}

	case 4: // AltiVec vector facility
		if word&0x3F == 43 { // vperm vD, vA, vB, vC (VA-form)
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vperm",
				Operands: map[string]int64{
					"vD": field(word, 21, 5), "vA": field(word, 16, 5),
					"vB": field(word, 11, 5), "vC": field(word, 6, 5),
				},
			}, true
		}
		xo11 := word & 0x7FF
		vD := field(word, 21, 5)
		vAorUIMM := field(word, 16, 5)
		vB := field(word, 11, 5)
		switch xo11 {
		case 640: // vadduws vD, vA, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vadduws",
				Operands: map[string]int64{"vD": vD, "vA": vAorUIMM, "vB": vB},
			}, true
		case 708: // vsr vD, vA, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vsr",
				Operands: map[string]int64{"vD": vD, "vA": vAorUIMM, "vB": vB},
			}, true
		case 774, 774 | 1<<10: // vcmpgtub[.] vD, vA, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: mnemonicRcBit("vcmpgtub", xo11&(1<<10) != 0),
				Operands: map[string]int64{"vD": vD, "vA": vAorUIMM, "vB": vB},
			}, true
		case 838, 838 | 1<<10: // vcmpgtuh[.] vD, vA, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: mnemonicRcBit("vcmpgtuh", xo11&(1<<10) != 0),
				Operands: map[string]int64{"vD": vD, "vA": vAorUIMM, "vB": vB},
			}, true
		case 842: // vcfux vD, UIMM, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vcfux",
				Operands: map[string]int64{"vD": vD, "UIMM": vAorUIMM, "vB": vB},
			}, true
		case 970: // vctsxs vD, UIMM, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vctsxs",
				Operands: map[string]int64{"vD": vD, "UIMM": vAorUIMM, "vB": vB},
			}, true
		case 1282: // vavgsb vD, vA, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vavgsb",
				Operands: map[string]int64{"vD": vD, "vA": vAorUIMM, "vB": vB},
			}, true
		case 1346: // vavgsh vD, vA, vB
			return disasm.Instruction{
				Addr: addr, Length: 4, Mnemonic: "vavgsh",
				Operands: map[string]int64{"vD": vD, "vA": vAorUIMM, "vB": vB},
			}, true
		}
	}

	return disasm.Instruction{}, false
}

func field(word uint32, shiftFromLSB, width uint) int64 {
	mask := uint32(1)<<width - 1
	return int64((word >> shiftFromLSB) & mask)
}

func simm16(word uint32) int64 { return int64(int16(word & 0xFFFF)) }

func mnemonicRc(base string, word uint32) string {
	if word&1 == 1 {
		return base + "."
	}
	return base
}

func mnemonicRcBit(base string, rc bool) string {
	if rc {
		return base + "."
	}
	return base
}
