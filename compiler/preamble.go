package compiler

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/swi"
	"github.com/markryan/subtilis-armback/errs"
)

// errorOffset and eflagOffset are the program-wide, fixed byte offsets from
// GLB of the runtime error-code word and escape-flag word. heapNextOffset
// and heapLimitOffset are the bump-pointer heap's own pair, one word
// further along. Every hand-emitted built-in (arm/emit/builtins.go) already
// hardcodes these four values; buildPreamble lays the globals region out to
// match them exactly instead of threading them through as parameters, so
// there is exactly one place (this comment, and the built-ins' own) that
// has to agree (spec.md §6, "error channel").
const (
	errorOffset     = 0
	eflagOffset     = 4
	heapNextOffset  = 8
	heapLimitOffset = 12
)

// buildPreamble emits the fixed, once-per-image startup sequence: the
// entry `MOV pc,pc` trick, the link-patched heap-start word it skips over,
// OS_GetEnv and the memory-limit check, globals-base computation, the
// optional escape-handler installation, heap initialisation and the FP
// coprocessor's own one-time setup (spec.md §6, "runtime preamble").
//
// heapWordIndex returns the word index, within this section's own encoded
// output, of the link-patched heap-start placeholder, so the driver can
// overwrite it once the final image size is known.
func buildPreamble(prog *arm.Program, settings Settings, entrySection int) (*arm.Section, int, *errs.Error) {
	sec := prog.NewSection("__preamble")

	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.PC, 0, arm.RegOp2(arm.PC)))
	sec.Append(arm.Word(0)) // heap-start, patched by Compile once linked
	heapWordIndex := 1

	sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.PC, Rd: arm.R11, OffsetImm: 12, Subtract: true,
	}))

	getEnv, ok := swi.Lookup("OS_GetEnv")
	if !ok {
		return nil, 0, errs.Errorf(errs.KindUnknownSWI, "unknown SWI %q", "OS_GetEnv")
	}
	sec.Append(arm.Swi(arm.SWI{Cond: arm.CondAL, Number: getEnv.Number, OutMask: getEnv.OutMask}))

	lowMem := sec.NewLabelID()
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, arm.R1, arm.RegOp2(arm.R11)))
	sec.Append(arm.Br(arm.CondHI, false, arm.LinkVoid, lowMem))

	sec.Append(arm.DP(arm.DPSub, arm.CondAL, false, arm.GLB, arm.R1, arm.Imm2(settings.GlobalsSize)))

	if settings.IR.HandleEscapes {
		sec.Append(arm.DP(arm.DPSub, arm.CondAL, false, arm.GLB, arm.GLB, arm.Imm2(12)))
		changeEnv, ok := swi.Lookup("OS_ChangeEnvironment")
		if !ok {
			return nil, 0, errs.Errorf(errs.KindUnknownSWI, "unknown SWI %q", "OS_ChangeEnvironment")
		}
		sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.Imm2(17))) // EnvNumber_ErrorHandler-ish escape vector, matches riscos_swi's escape slot
		sec.Append(arm.DP(arm.DPAdd, arm.CondAL, false, arm.R1, arm.GLB, arm.Imm2(eflagOffset)))
		sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R2, 0, arm.RegOp2(arm.GLB)))
		sec.Append(arm.Swi(arm.SWI{Cond: arm.CondAL, Number: changeEnv.Number, InMask: 0x7, OutMask: changeEnv.OutMask}))
	}

	sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.GLB, Rd: arm.R11, OffsetImm: heapNextOffset,
	}))
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, false, arm.R0, arm.R1, arm.Imm2(settings.HeapGuardSize)))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.GLB, Rd: arm.R0, OffsetImm: heapLimitOffset,
	}))

	sec.AppendLabel(lowMem)

	for _, instr := range prog.FP.Preamble() {
		sec.Append(instr)
	}

	sec.Append(arm.BrSection(arm.CondAL, false, arm.LinkVoid, entrySection))

	return sec, heapWordIndex, nil
}

// buildCoda emits the post-section-0 cleanup sequence: restore the previous
// escape handler if one was installed, then exit via OS_Exit with the
// registers RISC OS expects a BASIC-family program to leave set (spec.md
// §6, "cleanup coda").
func buildCoda(prog *arm.Program, settings Settings) (*arm.Section, *errs.Error) {
	sec := prog.NewSection("__coda")

	if settings.IR.HandleEscapes {
		changeEnv, ok := swi.Lookup("OS_ChangeEnvironment")
		if !ok {
			return nil, errs.Errorf(errs.KindUnknownSWI, "unknown SWI %q", "OS_ChangeEnvironment")
		}
		sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.Imm2(17)))
		sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R1, 0, arm.Imm2(0)))
		sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R2, 0, arm.Imm2(0)))
		sec.Append(arm.Swi(arm.SWI{Cond: arm.CondAL, Number: changeEnv.Number, InMask: 0x7, OutMask: changeEnv.OutMask}))
	}

	exit, ok := swi.Lookup("OS_Exit")
	if !ok {
		return nil, errs.Errorf(errs.KindUnknownSWI, "unknown SWI %q", "OS_Exit")
	}
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.Imm2(0)))
	sec.Append(arm.Instr{Kind: arm.KindLDRC, LDRC: &arm.LDRC{Cond: arm.CondAL, Rd: arm.R1, ConstantID: prog.Constants.AddInt32(0x58454241)}}) // "ABEX" as little-endian bytes
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R2, 0, arm.Imm2(0)))
	sec.Append(arm.Swi(arm.SWI{Cond: arm.CondAL, Number: exit.Number, InMask: 0x7}))

	return sec, nil
}
