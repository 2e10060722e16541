package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/ir"
)

// relCond maps a relational opcode to the ARM condition that should branch
// when it holds, per the signed ordering ARM's CMP flags give directly.
var relCond = map[ir.Opcode]arm.Cond{
	ir.OpIfLtI32: arm.CondLT, ir.OpIfLteI32: arm.CondLE, ir.OpIfGtI32: arm.CondGT,
	ir.OpIfGteI32: arm.CondGE, ir.OpIfEqI32: arm.CondEQ, ir.OpIfNeqI32: arm.CondNE,
	ir.OpIfLtII32: arm.CondLT, ir.OpIfLteII32: arm.CondLE, ir.OpIfGtII32: arm.CondGT,
	ir.OpIfGteII32: arm.CondGE, ir.OpIfEqII32: arm.CondEQ, ir.OpIfNeqII32: arm.CondNE,
	ir.OpIfLtReal: arm.CondLT, ir.OpIfLteReal: arm.CondLE, ir.OpIfGtReal: arm.CondGT,
	ir.OpIfGteReal: arm.CondGE, ir.OpIfEqReal: arm.CondEQ, ir.OpIfNeqReal: arm.CondNE,
}

var immOpcodes = map[ir.Opcode]bool{
	ir.OpIfLtII32: true, ir.OpIfLteII32: true, ir.OpIfGtII32: true,
	ir.OpIfGteII32: true, ir.OpIfEqII32: true, ir.OpIfNeqII32: true,
}

var realOpcodes = map[ir.Opcode]bool{
	ir.OpIfLtReal: true, ir.OpIfLteReal: true, ir.OpIfGtReal: true,
	ir.OpIfGteReal: true, ir.OpIfEqReal: true, ir.OpIfNeqReal: true,
}

// fusedCompareJump handles the compound [If*, JumpC] pattern: a single CMP
// (or FPA CMF / VFP FCMP) immediately followed by a conditional branch. This
// is the common case the IR comment on OpIfLtI32 et al. documents; a bare
// If* with no following JumpC falls back to condJumpless below, which
// materialises the comparison's boolean result into a register instead.
func fusedCompareJump(e any, ops []ir.Op) {
	em := self(e)
	cmpOp := ops[0]
	jumpOp := ops[1]
	cond := relCond[cmpOp.Opcode]
	target := em.Label(jumpOp.Dest.Label)

	switch {
	case realOpcodes[cmpOp.Opcode]:
		rn := em.RealOperand(cmpOp.Src1)
		rm := em.RealOperand(cmpOp.Src2)
		emitRealCompare(em, rn, rm)
	case immOpcodes[cmpOp.Opcode]:
		rn := em.IntOperand(cmpOp.Src1)
		em.Sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, rn, arm.Imm2(uint32(cmpOp.Src2.Int))))
	default:
		rn := em.IntOperand(cmpOp.Src1)
		rm := em.IntOperand(cmpOp.Src2)
		em.Sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, rn, arm.RegOp2(rm)))
	}
	em.Sec.Append(arm.Br(cond, false, arm.LinkVoid, target))
}

func emitRealCompare(em *Emitter, rn, rm arm.Reg) {
	switch em.Prog.FP.(type) {
	case arm.FPA:
		em.Sec.Append(arm.Instr{Kind: arm.KindFPACompare, FPACmp: &arm.FPACompare{
			Cond: arm.CondAL, Rn: rn, Op2: arm.FPAOperand2{Reg: rm},
		}})
	default:
		em.Sec.Append(arm.Instr{Kind: arm.KindVFPCompare, VFPCmp: &arm.VFPCompare{Cond: arm.CondAL, Dd: rn, Dm: rm}})
		em.Sec.Append(arm.Instr{Kind: arm.KindVFPSysReg, VFPSys: &arm.VFPSysReg{Cond: arm.CondAL, ToVFP: false, Rd: arm.PC}})
	}
}

// condJumpless handles an If* op with no following JumpC by synthesising
// the boolean result into a fresh int register (spec.md §3): an unconditional
// default of 0, then a fused CMP+MOVcond (arm.CondMove) so the peephole pass
// sees the comparison and its conditional move as a single atomic unit rather
// than two instructions it might separate.
//
// Real (FPA/VFP) comparisons set CPSR flags through a coprocessor transfer
// rather than a plain CMP, so arm.CondMove - whose Compare field is a
// DataProcessing - cannot represent them; that path keeps the two
// conditional MOVs it has always used.
func condJumpless(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	cond := relCond[op.Opcode]
	dest := em.IntReg(op.Dest.Reg)

	if realOpcodes[op.Opcode] {
		rn := em.RealOperand(op.Src1)
		rm := em.RealOperand(op.Src2)
		emitRealCompare(em, rn, rm)
		em.Sec.Append(arm.DP(arm.DPMov, cond, false, dest, 0, arm.Imm2(1)))
		em.Sec.Append(arm.DP(arm.DPMov, cond.Invert(), false, dest, 0, arm.Imm2(0)))
		return
	}

	var cmp arm.DataProcessing
	if immOpcodes[op.Opcode] {
		rn := em.IntOperand(op.Src1)
		cmp = arm.DataProcessing{Op: arm.DPCmp, Cond: arm.CondAL, S: true, Rn: rn, Op2: arm.Imm2(uint32(op.Src2.Int))}
	} else {
		rn := em.IntOperand(op.Src1)
		rm := em.IntOperand(op.Src2)
		cmp = arm.DataProcessing{Op: arm.DPCmp, Cond: arm.CondAL, S: true, Rn: rn, Op2: arm.RegOp2(rm)}
	}

	em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, dest, 0, arm.Imm2(0)))
	em.Sec.Append(arm.Instr{Kind: arm.KindCondMove, CondMove: &arm.CondMove{
		Cond:    cond,
		Compare: cmp,
		Move:    arm.DataProcessing{Op: arm.DPMov, Cond: cond, Rd: dest, Op2: arm.Imm2(1)},
	}})
}

func jump(e any, ops []ir.Op) {
	em := self(e)
	target := em.Label(ops[0].Dest.Label)
	em.Sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, target))
}

func label(e any, ops []ir.Op) {
	em := self(e)
	em.Sec.AppendLabel(em.Label(ops[0].LabelID))
}

func relPatterns(opcodes ...ir.Opcode) []rules.Rule {
	var out []rules.Rule
	for _, oc := range opcodes {
		out = append(out, rules.Rule{
			Name:    "if_jumpc_fused",
			Pattern: []rules.OpPattern{rules.Op(oc), rules.Op(ir.OpJumpC)},
			Handler: fusedCompareJump,
		})
	}
	for _, oc := range opcodes {
		out = append(out, rules.Rule{
			Name:    "if_standalone",
			Pattern: []rules.OpPattern{rules.Op(oc)},
			Handler: condJumpless,
		})
	}
	return out
}

var allRelOpcodes = []ir.Opcode{
	ir.OpIfLtI32, ir.OpIfLteI32, ir.OpIfGtI32, ir.OpIfGteI32, ir.OpIfEqI32, ir.OpIfNeqI32,
	ir.OpIfLtII32, ir.OpIfLteII32, ir.OpIfGtII32, ir.OpIfGteII32, ir.OpIfEqII32, ir.OpIfNeqII32,
	ir.OpIfLtReal, ir.OpIfLteReal, ir.OpIfGtReal, ir.OpIfGteReal, ir.OpIfEqReal, ir.OpIfNeqReal,
}

var controlRules = append([]rules.Rule{
	{Name: "jump", Pattern: []rules.OpPattern{rules.Op(ir.OpJump)}, Handler: jump},
	{Name: "label", Pattern: []rules.OpPattern{rules.Op(ir.OpLabel)}, Handler: label},
}, relPatterns(allRelOpcodes...)...)
