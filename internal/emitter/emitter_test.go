package emitter

import (
	"strings"
	"testing"

	"ppcrecomp/internal/disasm"
)

func TestEmitFunctionDefaultProfileUsesContextFields(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_00001000", 0x1000, []disasm.Instruction{
		{Addr: 0x1000, Length: 4, Mnemonic: "addi", Operands: map[string]int64{"rD": 3, "rA": 0, "SIMM": 5}},
		{Addr: 0x1004, Length: 4, Mnemonic: "blr"},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if strings.Contains(src, "r3 :=") {
		t.Errorf("default profile must not promote r3 to a local:\n%s", src)
	}
	if !strings.Contains(src, "ctx.GPR[3].SetU32(uint32(int32(5)))") {
		t.Errorf("expected a Context-field write for r3, got:\n%s", src)
	}
}

func TestEmitFunctionNonVolatileAsLocalPromotesCalleeSaved(t *testing.T) {
	e := New(ElisionProfile{NonVolatileAsLocal: true})
	src, err := e.EmitFunction("Func_00002000", 0x2000, []disasm.Instruction{
		{Addr: 0x2000, Length: 4, Mnemonic: "add", Operands: map[string]int64{"rD": 14, "rA": 14, "rB": 15}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "r14 := ctx.GPR[14].U32()") {
		t.Errorf("expected r14 promoted to local:\n%s", src)
	}
	if !strings.Contains(src, "ctx.GPR[14].SetU32(r14)") {
		t.Errorf("expected spill-back of r14 in deferred writeback:\n%s", src)
	}
	if strings.Contains(src, "r3 :=") {
		t.Errorf("r3 is volatile and must not be promoted:\n%s", src)
	}
}

func TestEmitFunctionUnknownMnemonicIsTranslationGap(t *testing.T) {
	e := New(DefaultProfile())
	_, err := e.EmitFunction("Func_X", 0x3000, []disasm.Instruction{
		{Addr: 0x3000, Length: 4, Mnemonic: "dcbz"},
	})
	if err == nil {
		t.Fatal("expected an error for an unhandled mnemonic")
	}
}

func TestEmitVectorPermuteCallsVectorPackage(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Vperm", 0x6000, []disasm.Instruction{
		{Addr: 0x6000, Length: 4, Mnemonic: "vperm", Operands: map[string]int64{"vD": 0, "vA": 1, "vB": 2, "vC": 3}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "vector.Permute(*ctx.VR[1].Bytes(), *ctx.VR[2].Bytes(), *ctx.VR[3].Bytes())") {
		t.Errorf("expected a vector.Permute call, got:\n%s", src)
	}
}

func TestEmitVectorCompareRcFormSetsCR6(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Vcmp", 0x6100, []disasm.Instruction{
		{Addr: 0x6100, Length: 4, Mnemonic: "vcmpgtub.", Operands: map[string]int64{"vD": 4, "vA": 5, "vB": 6}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "vector.CompareGreaterU8(") {
		t.Errorf("expected a vector.CompareGreaterU8 call, got:\n%s", src)
	}
	if !strings.Contains(src, "ctx.CR[6] = cr.CompareVectorMask(") {
		t.Errorf("expected the Rc form to set CR6 from the reduced mask, got:\n%s", src)
	}
}

func TestEmitLoadReserveAndStoreConditional(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Atomic", 0x6200, []disasm.Instruction{
		{Addr: 0x6200, Length: 4, Mnemonic: "lwarx", Operands: map[string]int64{"rD": 3, "rA": 0, "rB": 4}},
		{Addr: 0x6204, Length: 4, Mnemonic: "stwcx.", Operands: map[string]int64{"rS": 5, "rA": 0, "rB": 4}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "ppcmem.Reserve(ctx, base,") {
		t.Errorf("expected lwarx to call ppcmem.Reserve, got:\n%s", src)
	}
	if !strings.Contains(src, "ppcmem.ConditionalStoreU32(ctx, base,") {
		t.Errorf("expected stwcx. to call ppcmem.ConditionalStoreU32, got:\n%s", src)
	}
}

func TestEmitAddOverflowSetsXER(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Addo", 0x6300, []disasm.Instruction{
		{Addr: 0x6300, Length: 4, Mnemonic: "addo", Operands: map[string]int64{"rD": 3, "rA": 4, "rB": 5}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "ctx.XER.OV = ov") {
		t.Errorf("expected addo to compute and store XER.OV, got:\n%s", src)
	}
	if !strings.Contains(src, "ctx.XER.SO = true") {
		t.Errorf("expected addo to accumulate into XER.SO on overflow, got:\n%s", src)
	}
}

func TestEmitFloatAddAndCompare(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Fp", 0x6400, []disasm.Instruction{
		{Addr: 0x6400, Length: 4, Mnemonic: "fadd", Operands: map[string]int64{"frD": 1, "frA": 2, "frB": 3}},
		{Addr: 0x6404, Length: 4, Mnemonic: "fcmpu", Operands: map[string]int64{"crfD": 1, "frA": 2, "frB": 3}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "ctx.FPR[1].SetF64(ctx.FPR[2].F64() + ctx.FPR[3].F64())") {
		t.Errorf("expected fadd to add two FPR F64 views, got:\n%s", src)
	}
	if !strings.Contains(src, "ctx.CR[1] = cr.CompareFloat(ctx.FPR[2].F64(), ctx.FPR[3].F64())") {
		t.Errorf("expected fcmpu to call cr.CompareFloat, got:\n%s", src)
	}
}

func TestEmitBctrlSetsLRAndCallsIndirect(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Bctrl", 0x6500, []disasm.Instruction{
		{Addr: 0x6500, Length: 4, Mnemonic: "bctrl"},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "ctx.LR = uint64(0x00006504)") {
		t.Errorf("expected bctrl to set LR to the return address, got:\n%s", src)
	}
	if !strings.Contains(src, "trampoline.CallIndirect(ctx, base, ctx.CTR.U32())") {
		t.Errorf("expected bctrl to call trampoline.CallIndirect through CTR, got:\n%s", src)
	}
}

func TestEmitReservedAsLocalSyncsAroundAtomics(t *testing.T) {
	e := New(ElisionProfile{ReservedAsLocal: true})
	src, err := e.EmitFunction("Func_ReservedLocal", 0x6600, []disasm.Instruction{
		{Addr: 0x6600, Length: 4, Mnemonic: "lwarx", Operands: map[string]int64{"rD": 3, "rA": 0, "rB": 4}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "reserved := ctx.Reserved.U32()") {
		t.Errorf("expected reserved_as_local to promote Reserved to a function-entry local:\n%s", src)
	}
	if !strings.Contains(src, "ctx.Reserved.SetU32(reserved)") {
		t.Errorf("expected the local to sync back to Context immediately before ppcmem.Reserve:\n%s", src)
	}
}

func TestEmitCrAsLocalPromotesConditionFields(t *testing.T) {
	e := New(ElisionProfile{CrAsLocal: true})
	src, err := e.EmitFunction("Func_CrLocal", 0x6700, []disasm.Instruction{
		{Addr: 0x6700, Length: 4, Mnemonic: "cmpw", Operands: map[string]int64{"crfD": 0, "rA": 3, "rB": 4}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "crRegs := ctx.CR") {
		t.Errorf("expected cr_as_local to promote CR to a function-entry local:\n%s", src)
	}
	if !strings.Contains(src, "crRegs[0] = cr.CompareInt(") {
		t.Errorf("expected cmpw to write the promoted local, got:\n%s", src)
	}
	if !strings.Contains(src, "ctx.CR = crRegs") {
		t.Errorf("expected the deferred writeback to spill CR back to Context:\n%s", src)
	}
}

func TestEmitBranchAndLinkSetsLR(t *testing.T) {
	e := New(DefaultProfile())
	src, err := e.EmitFunction("Func_Y", 0x4000, []disasm.Instruction{
		{Addr: 0x4000, Length: 4, Mnemonic: "bl", Operands: map[string]int64{"LI": 0x100, "AA": 0, "LK": 1}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if !strings.Contains(src, "ctx.LR = uint64(0x00004004)") {
		t.Errorf("expected LR set to the return address, got:\n%s", src)
	}
	if !strings.Contains(src, "trampoline.Call(ctx, base, 0x00004100)") {
		t.Errorf("expected a trampoline call to the resolved target, got:\n%s", src)
	}
}

func TestEmitBranchSkipLRHonored(t *testing.T) {
	e := New(ElisionProfile{SkipLR: true})
	src, err := e.EmitFunction("Func_Z", 0x5000, []disasm.Instruction{
		{Addr: 0x5000, Length: 4, Mnemonic: "bl", Operands: map[string]int64{"LI": 0x10, "AA": 0, "LK": 1}},
	})
	if err != nil {
		t.Fatalf("EmitFunction: %v", err)
	}
	if strings.Contains(src, "ctx.LR =") {
		t.Errorf("skip_lr profile must not emit an LR write:\n%s", src)
	}
}
