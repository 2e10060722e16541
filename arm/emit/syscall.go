package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/arm/swi"
	"github.com/markryan/subtilis-armback/errs"
	"github.com/markryan/subtilis-armback/ir"
)

// syscall lowers a named RISC OS SWI call: move the in-registers into
// place, emit the SWI instruction with the number and masks arm/swi
// resolves from the symbolic name, then move the out-registers to their IR
// destinations (spec.md §6, "SWI escape hatch").
func syscall(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	call := op.Syscall

	desc, ok := swi.Lookup(call.Name)
	if !ok {
		em.fail(errs.KindUnknownSWI, "unknown SWI %q", call.Name)
		return
	}

	argRegs := []arm.Reg{arm.R0, arm.R1, arm.R2, arm.R3, arm.R4, arm.R5, arm.R6, arm.R7, arm.R8, arm.R9}
	var inMask uint16
	for i, a := range call.InRegs {
		if i >= len(argRegs) {
			break
		}
		src := em.IntOperand(a)
		em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, argRegs[i], 0, arm.RegOp2(src)))
		inMask |= 1 << uint(i)
	}

	number := desc.Number
	if call.ErrorGenerating {
		number |= 0x20000
	}
	em.Sec.Append(arm.Swi(arm.SWI{
		Cond: arm.CondAL, Number: number, InMask: inMask, OutMask: desc.OutMask,
		ErrorGenerating: call.ErrorGenerating,
	}))

	for i, o := range call.OutRegs {
		if i >= len(argRegs) || o.Kind != ir.OperandIntReg {
			continue
		}
		dest := em.IntReg(o.Reg)
		em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, dest, 0, arm.RegOp2(argRegs[i])))
	}
}

// testEsc branches to the section's epilogue (the -1 placeholder, recorded
// in RetSites for the driver to patch), so the section returns, if the
// process-wide error flag (at GLB+EflagOffset) is set (spec.md §7,
// "Escape checkpoints").
func testEsc(e any, ops []ir.Op) {
	em := self(e)
	flag := em.Sec.NewIntVReg()
	em.Sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.GLB, Rd: flag, OffsetImm: uint32(em.IRSec.EflagOffset),
	}))
	em.Sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, flag, arm.Imm2(0)))
	branchIdx := em.Sec.Append(arm.Br(arm.CondNE, false, arm.LinkVoid, -1))
	em.Sec.RetSites = append(em.Sec.RetSites, branchIdx)
}

var syscallRules = []rules.Rule{
	{Name: "syscall", Pattern: []rules.OpPattern{rules.Op(ir.OpSyscall)}, Handler: syscall},
	{Name: "test_esc", Pattern: []rules.OpPattern{rules.Op(ir.OpTestEsc)}, Handler: testEsc},
}
