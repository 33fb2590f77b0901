package emitter

import (
	"fmt"
	"sort"
	"strings"

	"ppcrecomp/internal/disasm"
	"ppcrecomp/internal/ppcerr"
)

// Emitter renders a guest function's decoded instruction stream as Go
// source text, specialized by Profile.
type Emitter struct {
	Profile ElisionProfile
}

// New returns an Emitter using profile for every function it renders.
// Profile is fixed per translation run, not per function: the emitted
// program's Context layout must be identical across every translated
// function so cross-function calls agree on field offsets.
func New(profile ElisionProfile) *Emitter { return &Emitter{Profile: profile} }

func (e *Emitter) localGPR(n int) bool {
	if e.Profile.NonArgumentAsLocal && !isArgumentReg(n) {
		return true
	}
	if e.Profile.NonVolatileAsLocal && !isVolatileReg(n) {
		return true
	}
	return false
}

// EmitFunction renders one translated function named funcName starting at
// addr, from its already-recovered linear instruction stream. It returns
// ppcerr.TranslationGap if instrs contains a mnemonic this emitter does not
// know how to lower.
func (e *Emitter) EmitFunction(funcName string, addr uint32, instrs []disasm.Instruction) (string, error) {
	var locals []int
	for n := 0; n < 32; n++ {
		if e.localGPR(n) {
			locals = append(locals, n)
		}
	}
	sort.Ints(locals)

	var b strings.Builder
	fmt.Fprintf(&b, "// %s translates the guest function at 0x%08X.\n", funcName, addr)
	fmt.Fprintf(&b, "func %s(ctx *ppc.Context, base []byte) {\n", funcName)

	for _, n := range locals {
		fmt.Fprintf(&b, "\tr%d := ctx.GPR[%d].U32()\n", n, n)
	}
	if e.Profile.CtrAsLocal {
		b.WriteString("\tctr := ctx.CTR.U32()\n")
	}
	if e.Profile.XerAsLocal {
		b.WriteString("\txer := ctx.XER\n")
	}
	if e.Profile.ReservedAsLocal {
		b.WriteString("\treserved := ctx.Reserved.U32()\n")
	}
	if e.Profile.CrAsLocal {
		b.WriteString("\tcrRegs := ctx.CR\n")
	}

	if len(locals) > 0 || e.anyNonGPRLocal() {
		b.WriteString("\tdefer func() {\n")
		for _, n := range locals {
			fmt.Fprintf(&b, "\t\tctx.GPR[%d].SetU32(r%d)\n", n, n)
		}
		if e.Profile.CtrAsLocal {
			b.WriteString("\t\tctx.CTR.SetU32(ctr)\n")
		}
		if e.Profile.XerAsLocal {
			b.WriteString("\t\tctx.XER = xer\n")
		}
		if e.Profile.ReservedAsLocal {
			b.WriteString("\t\tctx.Reserved.SetU32(reserved)\n")
		}
		if e.Profile.CrAsLocal {
			b.WriteString("\t\tctx.CR = crRegs\n")
		}
		b.WriteString("\t}()\n")
	}

	for _, instr := range instrs {
		stmt, err := e.emitInstruction(instr)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\t// 0x%08X: %s\n", instr.Addr, instr.Mnemonic)
		b.WriteString(indent(stmt))
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func (e *Emitter) anyNonGPRLocal() bool {
	return e.Profile.CtrAsLocal || e.Profile.XerAsLocal || e.Profile.ReservedAsLocal || e.Profile.CrAsLocal
}

func indent(stmt string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(stmt, "\n"), "\n") {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// gpr renders a read expression for GPR n under the active elision profile.
func (e *Emitter) gpr(n int) string {
	if e.localGPR(n) {
		return fmt.Sprintf("r%d", n)
	}
	return fmt.Sprintf("ctx.GPR[%d].U32()", n)
}

// setGPR renders an assignment statement storing expr into GPR n.
func (e *Emitter) setGPR(n int, expr string) string {
	if e.localGPR(n) {
		return fmt.Sprintf("r%d = %s\n", n, expr)
	}
	return fmt.Sprintf("ctx.GPR[%d].SetU32(%s)\n", n, expr)
}

// ctr renders a read expression for CTR under the active elision profile.
func (e *Emitter) ctr() string {
	if e.Profile.CtrAsLocal {
		return "ctr"
	}
	return "ctx.CTR.U32()"
}

// setCTR renders an assignment statement storing expr into CTR.
func (e *Emitter) setCTR(expr string) string {
	if e.Profile.CtrAsLocal {
		return fmt.Sprintf("ctr = %s\n", expr)
	}
	return fmt.Sprintf("ctx.CTR.SetU32(%s)\n", expr)
}

// xer renders the expression through which XER fields are read and written.
func (e *Emitter) xer() string {
	if e.Profile.XerAsLocal {
		return "xer"
	}
	return "ctx.XER"
}

// setCRField renders an assignment statement storing expr into CR field n.
func (e *Emitter) setCRField(n int, expr string) string {
	if e.Profile.CrAsLocal {
		return fmt.Sprintf("crRegs[%d] = %s\n", n, expr)
	}
	return fmt.Sprintf("ctx.CR[%d] = %s\n", n, expr)
}

// reserved renders a read expression for the reservation address under the
// active elision profile.
func (e *Emitter) reserved() string {
	if e.Profile.ReservedAsLocal {
		return "reserved"
	}
	return "ctx.Reserved.U32()"
}

// syncReservedToContext and syncReservedFromContext bracket a lwarx/stwcx.
// call: ppcmem's reservation primitives always read and write ctx.Reserved
// directly, so when reserved_as_local elides the field to a local for the
// rest of the function body, the two sides are synchronized immediately
// around the one place that needs the canonical Context value.
func (e *Emitter) syncReservedToContext() string {
	if !e.Profile.ReservedAsLocal {
		return ""
	}
	return "ctx.Reserved.SetU32(reserved)\n"
}

func (e *Emitter) syncReservedFromContext() string {
	if !e.Profile.ReservedAsLocal {
		return ""
	}
	return "reserved = ctx.Reserved.U32()\n"
}

func (e *Emitter) emitInstruction(instr disasm.Instruction) (string, error) {
	switch instr.Mnemonic {
	case "addi":
		rD := int(instr.MustOperand("rD"))
		rA := int(instr.MustOperand("rA"))
		simm := instr.MustOperand("SIMM")
		var rhs string
		if rA == 0 {
			rhs = fmt.Sprintf("uint32(int32(%d))", simm)
		} else {
			rhs = fmt.Sprintf("%s + uint32(int32(%d))", e.gpr(rA), simm)
		}
		return e.setGPR(rD, rhs), nil

	case "add", "add.":
		rD := int(instr.MustOperand("rD"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		stmt := e.setGPR(rD, fmt.Sprintf("%s + %s", e.gpr(rA), e.gpr(rB)))
		if instr.Mnemonic == "add." {
			stmt += e.setCRField(0, fmt.Sprintf("cr.CompareInt(int32(%s), int32(0), %s)", e.gpr(rD), e.xer()))
		}
		return stmt, nil

	case "addo", "addo.":
		rD := int(instr.MustOperand("rD"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		var b strings.Builder
		fmt.Fprintf(&b, "{\n")
		fmt.Fprintf(&b, "\ta := %s\n", e.gpr(rA))
		fmt.Fprintf(&b, "\tb := %s\n", e.gpr(rB))
		fmt.Fprintf(&b, "\tsum := a + b\n")
		fmt.Fprintf(&b, "\tov := (a^sum)&(b^sum)&0x80000000 != 0\n")
		b.WriteString(indent(e.setGPR(rD, "sum")))
		fmt.Fprintf(&b, "\t%s.OV = ov\n", e.xer())
		b.WriteString("\tif ov {\n")
		fmt.Fprintf(&b, "\t\t%s.SO = true\n", e.xer())
		b.WriteString("\t}\n")
		if instr.Mnemonic == "addo." {
			b.WriteString(indent(e.setCRField(0, fmt.Sprintf("cr.CompareInt(int32(sum), int32(0), %s)", e.xer()))))
		}
		b.WriteString("}\n")
		return b.String(), nil

	case "cmpw":
		crfD := int(instr.MustOperand("crfD"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		return e.setCRField(crfD, fmt.Sprintf("cr.CompareInt(int32(%s), int32(%s), %s)", e.gpr(rA), e.gpr(rB), e.xer())), nil

	case "cmplw":
		crfD := int(instr.MustOperand("crfD"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		return e.setCRField(crfD, fmt.Sprintf("cr.CompareInt(%s, %s, %s)", e.gpr(rA), e.gpr(rB), e.xer())), nil

	case "lwz":
		rD := int(instr.MustOperand("rD"))
		rA := int(instr.MustOperand("rA"))
		d := instr.MustOperand("d")
		addr := e.effectiveAddress(rA, d)
		return e.setGPR(rD, fmt.Sprintf("ppcmem.LoadU32(base, %s)", addr)), nil

	case "stw":
		rS := int(instr.MustOperand("rS"))
		rA := int(instr.MustOperand("rA"))
		d := instr.MustOperand("d")
		addr := e.effectiveAddress(rA, d)
		return fmt.Sprintf("ppcmem.StoreU32(base, %s, %s)\n", addr, e.gpr(rS)), nil

	case "lwarx":
		rD := int(instr.MustOperand("rD"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		addr := e.effectiveAddressIndexed(rA, rB)
		var b strings.Builder
		b.WriteString(e.syncReservedToContext())
		b.WriteString(e.setGPR(rD, fmt.Sprintf("ppcmem.Reserve(ctx, base, %s)", addr)))
		b.WriteString(e.syncReservedFromContext())
		return b.String(), nil

	case "stwcx.":
		rS := int(instr.MustOperand("rS"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		addr := e.effectiveAddressIndexed(rA, rB)
		var b strings.Builder
		b.WriteString(e.syncReservedToContext())
		fmt.Fprintf(&b, "ok := ppcmem.ConditionalStoreU32(ctx, base, %s, ppcmem.LoadU32(base, %s), %s)\n", addr, addr, e.gpr(rS))
		b.WriteString(e.syncReservedFromContext())
		b.WriteString(e.setCRField(0, fmt.Sprintf("ppc.PPCCRRegister{EQ: ok, SOUN: %s.SO}", e.xer())))
		return b.String(), nil

	case "lvx":
		vD := int(instr.MustOperand("vD"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		addr := e.effectiveAddressIndexed(rA, rB)
		return fmt.Sprintf("copy(ctx.VR[%d].Bytes()[:], base[(%s)&^0xF:])\n", vD, addr), nil

	case "stvx":
		vS := int(instr.MustOperand("vS"))
		rA := int(instr.MustOperand("rA"))
		rB := int(instr.MustOperand("rB"))
		addr := e.effectiveAddressIndexed(rA, rB)
		return fmt.Sprintf("copy(base[(%s)&^0xF:], ctx.VR[%d].Bytes()[:])\n", addr, vS), nil

	case "vperm":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		vC := int(instr.MustOperand("vC"))
		return fmt.Sprintf("*ctx.VR[%d].Bytes() = vector.Permute(*ctx.VR[%d].Bytes(), *ctx.VR[%d].Bytes(), *ctx.VR[%d].Bytes())\n",
			vD, vA, vB, vC), nil

	case "vadduws":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		return fmt.Sprintf("*ctx.VR[%d].U32s() = vector.AddSaturateU32(*ctx.VR[%d].U32s(), *ctx.VR[%d].U32s())\n", vD, vA, vB), nil

	case "vavgsb":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		return fmt.Sprintf("*ctx.VR[%d].S8s() = vector.AvgS8(*ctx.VR[%d].S8s(), *ctx.VR[%d].S8s())\n", vD, vA, vB), nil

	case "vavgsh":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		return fmt.Sprintf("*ctx.VR[%d].S16s() = vector.AvgS16(*ctx.VR[%d].S16s(), *ctx.VR[%d].S16s())\n", vD, vA, vB), nil

	case "vsr":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		return fmt.Sprintf("*ctx.VR[%d].Bytes() = vector.ShiftRight128(*ctx.VR[%d].Bytes(), *ctx.VR[%d].Bytes())\n", vD, vA, vB), nil

	case "vcfux":
		vD := int(instr.MustOperand("vD"))
		uimm := instr.MustOperand("UIMM")
		vB := int(instr.MustOperand("vB"))
		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "\tconv := vector.ConvertU32ToF32(*ctx.VR[%d].U32s())\n", vB)
		if uimm != 0 {
			fmt.Fprintf(&b, "\tfor i := range conv {\n\t\tconv[i] /= %d\n\t}\n", int64(1)<<uint(uimm))
		}
		fmt.Fprintf(&b, "\t*ctx.VR[%d].F32s() = conv\n", vD)
		b.WriteString("}\n")
		return b.String(), nil

	case "vctsxs":
		vD := int(instr.MustOperand("vD"))
		uimm := instr.MustOperand("UIMM")
		vB := int(instr.MustOperand("vB"))
		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "\tsrc := *ctx.VR[%d].F32s()\n", vB)
		if uimm != 0 {
			fmt.Fprintf(&b, "\tfor i := range src {\n\t\tsrc[i] *= %d\n\t}\n", int64(1)<<uint(uimm))
		}
		fmt.Fprintf(&b, "\t*ctx.VR[%d].S32s() = vector.ConvertToSignedSaturate(src)\n", vD)
		b.WriteString("}\n")
		return b.String(), nil

	case "vcmpgtub", "vcmpgtub.":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "\tmask := vector.CompareGreaterU8(*ctx.VR[%d].U8s(), *ctx.VR[%d].U8s())\n", vA, vB)
		fmt.Fprintf(&b, "\t*ctx.VR[%d].U8s() = mask\n", vD)
		if instr.Mnemonic == "vcmpgtub." {
			b.WriteString(indent(e.setCRField(6, "cr.CompareVectorMask(cr.VectorMaskResult{Bits: vector.MaskBits8(mask), All: vector.AllLanesMask8})")))
		}
		b.WriteString("}\n")
		return b.String(), nil

	case "vcmpgtuh", "vcmpgtuh.":
		vD := int(instr.MustOperand("vD"))
		vA := int(instr.MustOperand("vA"))
		vB := int(instr.MustOperand("vB"))
		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "\tmask := vector.CompareGreaterU16(*ctx.VR[%d].U16s(), *ctx.VR[%d].U16s())\n", vA, vB)
		fmt.Fprintf(&b, "\t*ctx.VR[%d].U16s() = mask\n", vD)
		if instr.Mnemonic == "vcmpgtuh." {
			b.WriteString(indent(e.setCRField(6, "cr.CompareVectorMask(cr.VectorMaskResult{Bits: vector.MaskBits16(mask), All: vector.AllLanesMask16})")))
		}
		b.WriteString("}\n")
		return b.String(), nil

	case "fadd":
		frD := int(instr.MustOperand("frD"))
		frA := int(instr.MustOperand("frA"))
		frB := int(instr.MustOperand("frB"))
		return fmt.Sprintf("ctx.FPR[%d].SetF64(ctx.FPR[%d].F64() + ctx.FPR[%d].F64())\n", frD, frA, frB), nil

	case "fcmpu":
		crfD := int(instr.MustOperand("crfD"))
		frA := int(instr.MustOperand("frA"))
		frB := int(instr.MustOperand("frB"))
		return e.setCRField(crfD, fmt.Sprintf("cr.CompareFloat(ctx.FPR[%d].F64(), ctx.FPR[%d].F64())", frA, frB)), nil

	case "lfs":
		frD := int(instr.MustOperand("frD"))
		rA := int(instr.MustOperand("rA"))
		d := instr.MustOperand("d")
		addr := e.effectiveAddress(rA, d)
		return fmt.Sprintf("ctx.FPR[%d].SetF64(float64(math.Float32frombits(ppcmem.LoadU32(base, %s))))\n", frD, addr), nil

	case "stfs":
		frS := int(instr.MustOperand("frS"))
		rA := int(instr.MustOperand("rA"))
		d := instr.MustOperand("d")
		addr := e.effectiveAddress(rA, d)
		return fmt.Sprintf("ppcmem.StoreU32(base, %s, math.Float32bits(float32(ctx.FPR[%d].F64())))\n", addr, frS), nil

	case "mtfsf":
		frB := int(instr.MustOperand("frB"))
		return fmt.Sprintf("ctx.FPSCR = fpscr.StoreFromGuest(ctx.FPSCR, ctx.FPR[%d].U32()&0x3)\n", frB), nil

	case "mffs":
		frD := int(instr.MustOperand("frD"))
		return fmt.Sprintf("ctx.FPR[%d].SetU32(fpscr.LoadFromHost(ctx.FPSCR))\n", frD), nil

	case "b", "bl":
		li := instr.MustOperand("LI")
		aa := instr.MustOperand("AA")
		lk := instr.MustOperand("LK")
		target := li
		if aa == 0 {
			target += int64(instr.Addr)
		}
		var b strings.Builder
		if lk == 1 && !e.Profile.SkipLR {
			fmt.Fprintf(&b, "ctx.LR = uint64(0x%08X)\n", instr.Addr+instr.Length)
		}
		fmt.Fprintf(&b, "trampoline.Call(ctx, base, 0x%08X)\n", uint32(target))
		return b.String(), nil

	case "blr":
		return "return\n", nil

	case "blrl":
		var b strings.Builder
		if !e.Profile.SkipLR {
			fmt.Fprintf(&b, "ctx.LR = uint64(0x%08X)\n", instr.Addr+instr.Length)
		}
		b.WriteString("return\n")
		return b.String(), nil

	case "bctr":
		return fmt.Sprintf("trampoline.CallIndirect(ctx, base, %s)\nreturn\n", e.ctr()), nil

	case "bctrl":
		var b strings.Builder
		if !e.Profile.SkipLR {
			fmt.Fprintf(&b, "ctx.LR = uint64(0x%08X)\n", instr.Addr+instr.Length)
		}
		fmt.Fprintf(&b, "trampoline.CallIndirect(ctx, base, %s)\n", e.ctr())
		return b.String(), nil

	case "mtmsr":
		r := int(instr.MustOperand("r"))
		if e.Profile.SkipMSR {
			return fmt.Sprintf("// mtmsr r%d elided: skip_msr\n", r), nil
		}
		return fmt.Sprintf("ctx.MSR = %s\n", e.gpr(r)), nil

	case "mfmsr":
		r := int(instr.MustOperand("r"))
		if e.Profile.SkipMSR {
			return fmt.Sprintf("// mfmsr r%d elided: skip_msr\n", r), nil
		}
		return e.setGPR(r, "ctx.MSR"), nil

	case "mtspr":
		r := int(instr.MustOperand("r"))
		spr := instr.MustOperand("spr")
		switch spr {
		case 8:
			return fmt.Sprintf("ctx.LR = uint64(%s)\n", e.gpr(r)), nil
		case 9:
			return e.setCTR(e.gpr(r)), nil
		}

	case "mfspr":
		r := int(instr.MustOperand("r"))
		spr := instr.MustOperand("spr")
		switch spr {
		case 8:
			return e.setGPR(r, "uint32(ctx.LR)"), nil
		case 9:
			return e.setGPR(r, e.ctr()), nil
		}
	}

	return "", ppcerr.New(ppcerr.TranslationGap, instr.Addr, "no lowering for mnemonic "+instr.Mnemonic)
}

func (e *Emitter) effectiveAddress(rA int, d int64) string {
	if rA == 0 {
		return fmt.Sprintf("uint32(int32(%d))", d)
	}
	return fmt.Sprintf("%s + uint32(int32(%d))", e.gpr(rA), d)
}

// effectiveAddressIndexed renders the rA+rB effective address the
// indexed-form loads/stores use (lwarx, stwcx., lvx, stvx): no displacement
// immediate, and rA==0 means "just rB" per the architecture's usual
// convention for register zero in an address operand.
func (e *Emitter) effectiveAddressIndexed(rA, rB int) string {
	if rA == 0 {
		return e.gpr(rB)
	}
	return fmt.Sprintf("%s + %s", e.gpr(rA), e.gpr(rB))
}
