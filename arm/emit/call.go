package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/ir"
)

// emitCall lowers OpCall/OpCallBuiltin into a full call sequence: a
// placeholder STM of caller-saved integer registers, one FP preserve slot
// per physical FP register (emitted under CondNV so it costs nothing until
// arm/fixup decides which ones are actually live across this call and
// rewrites their condition to AL), the argument moves, the branch-and-link
// itself, and the mirrored restore sequence (spec.md §4.5, "Call-site
// emission"). The STM/LDM masks and FP slot conditions are finalised later,
// once register allocation has run; this handler only reserves the shape
// and records a *arm.CallSite so arm/fixup can find it again.
func emitCall(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	call := op.Call

	stmIdx := em.Sec.Append(arm.BlockXfer(arm.BlockTransfer{
		Cond: arm.CondAL, Load: false, Base: arm.SP, Mask: 0,
		Mode: arm.LDMStackAlias(false), WriteBack: true,
	}))

	cs := &arm.CallSite{StmOp: stmIdx, IntArgs: len(call.IntArgs), RealArgs: len(call.RealArgs)}

	numFP := em.Prog.FP.NumPhysRegs()
	for i := 0; i < numFP; i++ {
		idx := em.Sec.Append(em.Prog.FP.PreserveSlot(arm.Reg(i), arm.SP, 0))
		cs.FPPreserve = append(cs.FPPreserve, idx)
	}

	intArgRegs := []arm.Reg{arm.R0, arm.R1, arm.R2, arm.R3}
	for i, a := range call.IntArgs {
		src := em.IntOperand(a)
		if i < len(intArgRegs) {
			em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, intArgRegs[i], 0, arm.RegOp2(src)))
		} else {
			idx := em.Sec.Append(arm.SingleXfer(arm.SingleTransfer{
				Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
				Base: arm.SP, Rd: src, OffsetImm: uint32((i - len(intArgRegs)) * 4),
			}))
			cs.StackArgStores = append(cs.StackArgStores, idx)
		}
	}
	fpArgRegs := em.Prog.FP.ArgRegs()
	for i, a := range call.RealArgs {
		src := em.RealOperand(a)
		if i < len(fpArgRegs) {
			em.Sec.Append(em.Prog.FP.MovReg(fpArgRegs[i], src))
		}
	}

	branchIdx := em.Sec.Append(branchFor(call))
	cs.BranchOp = branchIdx

	for i := numFP - 1; i >= 0; i-- {
		idx := em.Sec.Append(em.Prog.FP.RestoreSlot(arm.Reg(i), arm.SP, 0))
		cs.FPRestore = append(cs.FPRestore, idx)
	}

	ldmIdx := em.Sec.Append(arm.BlockXfer(arm.BlockTransfer{
		Cond: arm.CondAL, Load: true, Base: arm.SP, Mask: 0,
		Mode: arm.LDMStackAlias(true), WriteBack: true,
	}))
	cs.LdmOp = ldmIdx

	if call.Result != nil {
		switch call.Result.Kind {
		case ir.OperandIntReg:
			dest := em.IntReg(call.Result.Reg)
			em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, dest, 0, arm.RegOp2(arm.R0)))
		case ir.OperandRealReg:
			dest := em.RealReg(call.Result.Reg)
			em.Sec.Append(em.Prog.FP.MovReg(dest, em.Prog.FP.ArgRegs()[0]))
		}
	}

	em.Sec.CallSites = append(em.Sec.CallSites, cs)
}

// branchFor picks the branch form for a call: a direct BL to a section by
// index for user calls, or a BL to the builtin's well-known label for
// built-ins (resolved by the linker stage inside arm/encode, which knows
// every section's final name).
func branchFor(call *ir.CallOp) arm.Instr {
	if call.Builtin != ir.NotBuiltin {
		return arm.BrBuiltin(arm.CondAL, true, linkTypeFor(call), call.Builtin)
	}
	return arm.BrSection(arm.CondAL, true, linkTypeFor(call), call.Target)
}

func linkTypeFor(call *ir.CallOp) arm.LinkType {
	if call.Result == nil {
		return arm.LinkVoid
	}
	if call.Result.Kind == ir.OperandRealReg {
		return arm.LinkReal
	}
	return arm.LinkInt
}

func ret(e any, ops []ir.Op) {
	em := self(e)
	em.Sec.RetSites = append(em.Sec.RetSites, em.Sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1)))
}

func retI32(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	src := em.IntOperand(op.Dest)
	em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.RegOp2(src)))
	em.Sec.RetSites = append(em.Sec.RetSites, em.Sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1)))
}

func retReal(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	src := em.RealOperand(op.Dest)
	em.Sec.Append(em.Prog.FP.MovReg(em.Prog.FP.ArgRegs()[0], src))
	em.Sec.RetSites = append(em.Sec.RetSites, em.Sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1)))
}

var callRules = []rules.Rule{
	{Name: "call", Pattern: []rules.OpPattern{rules.Op(ir.OpCall)}, Handler: emitCall},
	{Name: "call_builtin", Pattern: []rules.OpPattern{rules.Op(ir.OpCallBuiltin)}, Handler: emitCall},
	{Name: "ret", Pattern: []rules.OpPattern{rules.Op(ir.OpRet)}, Handler: ret},
	{Name: "ret_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpRetI32)}, Handler: retI32},
	{Name: "ret_real", Pattern: []rules.OpPattern{rules.Op(ir.OpRetReal)}, Handler: retReal},
}
