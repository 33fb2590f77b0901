// Package flow recovers function boundaries and the call/branch graph from
// a linear guest code stream: component C7, control-flow recovery. It
// starts from the image entry point and any exported symbols, walks each
// function's instructions until a terminator, and follows every direct
// branch and call it finds, same as spec.md §4.6's worklist algorithm.
package flow

import (
	"ppcrecomp/internal/disasm"
	"ppcrecomp/internal/ppc"
	"ppcrecomp/internal/ppcerr"
)

// Function is one discovered guest function: its canonical entry, any
// alias entries branched to mid-body, and its linear instruction stream.
type Function struct {
	Entry   uint32
	Aliases []uint32
	Instrs  []disasm.Instruction
	End     uint32 // one past the last instruction's address
}

// Report is the persisted result of one recovery pass (SPEC_FULL.md
// §4.6a), independent of emission so the driver can summarize it and tests
// can assert on specific functions without re-running emission.
type Report struct {
	Functions []Function
}

// ByEntry returns the discovered function whose canonical entry or one of
// whose aliases equals addr, and whether one was found. Any other address,
// including one inside a function's body, yields nil and false.
func (r *Report) ByEntry(addr uint32) (*Function, bool) {
	for i := range r.Functions {
		f := &r.Functions[i]
		if addr == f.Entry {
			return f, true
		}
		for _, a := range f.Aliases {
			if addr == a {
				return f, true
			}
		}
	}
	return nil, false
}

// containingFunction finds the already-discovered function (if any) whose
// [Entry, End) range contains addr, for alias detection when a worklist
// entry turns out to land inside a function found earlier.
func containingFunction(functions []Function, addr uint32) *Function {
	for i := range functions {
		f := &functions[i]
		if addr >= f.Entry && addr < f.End {
			return f
		}
	}
	return nil
}

// isUnconditionalBO reports whether a decoded bclr/bcctr's BO field encodes
// an always-taken branch (BO bit pattern 1z1zz, canonically 20 for blr/bctr
// with no condition test).
func isUnconditionalBO(bo int64) bool { return bo&0x14 == 0x14 }

// Recover walks code starting from every address in entryPoints, decoding
// with decoder, and returns every function it can reach. It returns
// ppcerr.TranslationGap wrapping the first address that fails to decode.
func Recover(code []byte, env ppc.Environment, decoder disasm.Decoder, entryPoints []uint32) (*Report, error) {
	report := &Report{}
	visited := make(map[uint32]bool)
	worklist := append([]uint32(nil), entryPoints...)

	for len(worklist) > 0 {
		addr := worklist[0]
		worklist = worklist[1:]

		if visited[addr] {
			continue
		}
		if fn := containingFunction(report.Functions, addr); fn != nil {
			if fn.Entry != addr {
				fn.Aliases = append(fn.Aliases, addr)
			}
			visited[addr] = true
			continue
		}

		fn, next, err := walkFunction(code, env, decoder, addr)
		if err != nil {
			return nil, err
		}
		visited[addr] = true
		report.Functions = append(report.Functions, fn)
		for _, target := range next {
			if !visited[target] {
				worklist = append(worklist, target)
			}
		}
	}

	return report, nil
}

// walkFunction linearly decodes one function starting at entry until a
// terminator instruction, returning the function body and the addresses
// of every branch/call target it should seed onto the recovery worklist.
func walkFunction(code []byte, env ppc.Environment, decoder disasm.Decoder, entry uint32) (Function, []uint32, error) {
	fn := Function{Entry: entry}
	var worklistAdds []uint32

	addr := entry
	for {
		offset := addr - env.CodeBase
		instr, ok := decoder.Decode(code, offset)
		if !ok {
			return Function{}, nil, ppcerr.New(ppcerr.TranslationGap, addr, "instruction decode failed during flow recovery")
		}
		instr.Addr = addr
		fn.Instrs = append(fn.Instrs, instr)
		fn.End = addr + instr.Length

		switch instr.Mnemonic {
		case "b", "bl":
			li, _ := instr.Operand("LI")
			aa, _ := instr.Operand("AA")
			lk, _ := instr.Operand("LK")
			target := li
			if aa == 0 {
				target += int64(addr)
			}
			worklistAdds = append(worklistAdds, uint32(target))
			if lk == 0 {
				// unconditional, unlinked: a tail branch ends this function.
				return fn, worklistAdds, nil
			}
			// bl: the callee is a separate function; this function continues.

		case "blr":
			return fn, worklistAdds, nil

		case "bclr":
			bo, _ := instr.Operand("BO")
			if isUnconditionalBO(bo) {
				return fn, worklistAdds, nil
			}

		case "bctr":
			return fn, worklistAdds, nil

		case "bcctr":
			bo, _ := instr.Operand("BO")
			if isUnconditionalBO(bo) {
				return fn, worklistAdds, nil
			}
		}

		addr += instr.Length
	}
}
