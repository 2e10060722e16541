package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/encode"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/ir"
)

func self(e any) *Emitter { return e.(*Emitter) }

// dp2 lowers a register-register data processing opcode op.Dest = op.Src1 <DPOp> op.Src2.
func dp2(dpop arm.DPOp) rules.Handler {
	return func(e any, ops []ir.Op) {
		em := self(e)
		op := ops[0]
		dest := em.IntReg(op.Dest.Reg)
		rn := em.IntOperand(op.Src1)
		rm := em.IntOperand(op.Src2)
		em.Sec.Append(arm.DP(dpop, arm.CondAL, false, dest, rn, arm.RegOp2(rm)))
	}
}

// dpImm lowers Dest = Src1 <DPOp> imm(Src2), folding the immediate into
// Operand2 when it has an 8-bit rotated encoding, and otherwise loading it
// from the constant pool (LDRC) into a scratch register first.
func dpImm(dpop arm.DPOp) rules.Handler {
	return func(e any, ops []ir.Op) {
		em := self(e)
		op := ops[0]
		dest := em.IntReg(op.Dest.Reg)
		rn := em.IntOperand(op.Src1)
		imm := uint32(op.Src2.Int)
		if _, ok := encode.EncodeImmediate(imm); !ok {
			tmp := em.Sec.NewIntVReg()
			id := em.Prog.Constants.AddInt32(int64(op.Src2.Int))
			em.Sec.Append(arm.Instr{Kind: arm.KindLDRC, LDRC: &arm.LDRC{Cond: arm.CondAL, Rd: tmp, ConstantID: id}})
			em.Sec.Append(arm.DP(dpop, arm.CondAL, false, dest, rn, arm.RegOp2(tmp)))
			return
		}
		em.Sec.Append(arm.DP(dpop, arm.CondAL, false, dest, rn, arm.Imm2(imm)))
	}
}

func rsubImm(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	rn := em.IntOperand(op.Src1)
	em.Sec.Append(arm.DP(arm.DPRsb, arm.CondAL, false, dest, rn, arm.Imm2(uint32(op.Src2.Int))))
}

func mulReg(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	rm := em.IntOperand(op.Src1)
	rs := em.IntOperand(op.Src2)
	em.Sec.Append(arm.Mul(false, false, arm.CondAL, dest, rm, rs, 0))
}

func mulImm(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	rm := em.IntOperand(op.Src1)
	rs := em.IntOperand(op.Src2) // IntOperand materialises the immediate into a scratch vreg: MUL has no immediate form
	em.Sec.Append(arm.Mul(false, false, arm.CondAL, dest, rm, rs, 0))
}

func movReg(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	src := em.IntOperand(op.Src1)
	em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, dest, 0, arm.RegOp2(src)))
}

func movImm(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	em.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, dest, 0, arm.Imm2(uint32(op.Src1.Int))))
}

func notReg(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	src := em.IntOperand(op.Src1)
	em.Sec.Append(arm.DP(arm.DPMvn, arm.CondAL, false, dest, 0, arm.RegOp2(src)))
}

// fpDyadic builds a real-arithmetic handler that dispatches to the
// program's FP coprocessor variant by emitting the variant-neutral FADD-
// style shape; because FPA and VFP instructions are encoded differently at
// the bit level but share the same three-operand shape here, the handler
// only needs to pick the right Kind/struct for Prog.FP.
func fpDyadic(fpaOp arm.FPAOp, vfpOp arm.VFPOp) rules.Handler {
	return func(e any, ops []ir.Op) {
		em := self(e)
		op := ops[0]
		dest := em.RealReg(op.Dest.Reg)
		rn := em.RealOperand(op.Src1)
		rm := em.RealOperand(op.Src2)
		switch em.Prog.FP.(type) {
		case arm.FPA:
			em.Sec.Append(arm.Instr{Kind: arm.KindFPADyadic, FPADy: &arm.FPADyadic{
				Op: fpaOp, Cond: arm.CondAL, Precision: arm.FPADouble, Rd: dest, Rn: rn,
				Op2: arm.FPAOperand2{Reg: rm},
			}})
		default:
			em.Sec.Append(arm.Instr{Kind: arm.KindVFPDyadic, VFPDy: &arm.VFPDyadic{
				Op: vfpOp, Cond: arm.CondAL, Dd: dest, Dn: rn, Dm: rm,
			}})
		}
	}
}

func fpRSub(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.RealReg(op.Dest.Reg)
	rn := em.RealOperand(op.Src1)
	rm := em.RealOperand(op.Src2)
	switch em.Prog.FP.(type) {
	case arm.FPA:
		em.Sec.Append(arm.Instr{Kind: arm.KindFPADyadic, FPADy: &arm.FPADyadic{
			Op: arm.FPARdf, Cond: arm.CondAL, Precision: arm.FPADouble, Rd: dest, Rn: rn,
			Op2: arm.FPAOperand2{Reg: rm},
		}})
	default:
		// VFP has no reverse-subtract form: subtract with the operands
		// swapped (Dest = Src2 - Src1).
		em.Sec.Append(arm.Instr{Kind: arm.KindVFPDyadic, VFPDy: &arm.VFPDyadic{
			Op: arm.VFPSub, Cond: arm.CondAL, Dd: dest, Dn: rm, Dm: rn,
		}})
	}
}

func movRealReg(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.RealReg(op.Dest.Reg)
	src := em.RealOperand(op.Src1)
	em.Sec.Append(em.Prog.FP.MovReg(dest, src))
}

func movIReal(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.RealReg(op.Dest.Reg)
	id := em.Prog.Constants.AddReal64(op.Src1.Real)
	em.Sec.Append(arm.Instr{Kind: arm.KindFPConstLoad, FPConst: &arm.FPConstLoad{Cond: arm.CondAL, Rd: dest, ConstantID: id}})
}

func intToReal(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.RealReg(op.Dest.Reg)
	src := em.IntOperand(op.Src1)
	switch em.Prog.FP.(type) {
	case arm.FPA:
		em.Sec.Append(arm.Instr{Kind: arm.KindFPAIntTransfer, FPAIntTr: &arm.FPAIntTransfer{
			ToFloat: true, Cond: arm.CondAL, Precision: arm.FPADouble, FReg: dest, IntReg: src,
		}})
	default:
		em.Sec.Append(arm.Instr{Kind: arm.KindVFPConvert, VFPConv: &arm.VFPConvert{ToFloat: true, Cond: arm.CondAL, Dd: dest, Rd: src}})
	}
}

func realToInt(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	src := em.RealOperand(op.Src1)
	switch em.Prog.FP.(type) {
	case arm.FPA:
		em.Sec.Append(arm.Instr{Kind: arm.KindFPAIntTransfer, FPAIntTr: &arm.FPAIntTransfer{
			ToFloat: false, Cond: arm.CondAL, Rounding: arm.FPARoundZero, Precision: arm.FPADouble, FReg: src, IntReg: dest,
		}})
	default:
		em.Sec.Append(arm.Instr{Kind: arm.KindVFPConvert, VFPConv: &arm.VFPConvert{ToFloat: false, Cond: arm.CondAL, Dd: src, Rd: dest}})
	}
}

var arithRules = []rules.Rule{
	{Name: "add_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpAddI32)}, Handler: dp2(arm.DPAdd)},
	{Name: "add_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpAddII32)}, Handler: dpImm(arm.DPAdd)},
	{Name: "sub_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpSubI32)}, Handler: dp2(arm.DPSub)},
	{Name: "sub_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpSubII32)}, Handler: dpImm(arm.DPSub)},
	{Name: "rsub_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpRSubII32)}, Handler: rsubImm},
	{Name: "mul_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpMulI32)}, Handler: mulReg},
	{Name: "mul_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpMulII32)}, Handler: mulImm},
	{Name: "and_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpAndI32)}, Handler: dp2(arm.DPAnd)},
	{Name: "and_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpAndII32)}, Handler: dpImm(arm.DPAnd)},
	{Name: "or_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpOrI32)}, Handler: dp2(arm.DPOrr)},
	{Name: "or_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpOrII32)}, Handler: dpImm(arm.DPOrr)},
	{Name: "eor_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpEorI32)}, Handler: dp2(arm.DPEor)},
	{Name: "eor_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpEorII32)}, Handler: dpImm(arm.DPEor)},
	{Name: "mov_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpMovI32)}, Handler: movReg},
	{Name: "mov_ii32", Pattern: []rules.OpPattern{rules.Op(ir.OpMovII32)}, Handler: movImm},
	{Name: "not_i32", Pattern: []rules.OpPattern{rules.Op(ir.OpNotI32)}, Handler: notReg},

	{Name: "add_real", Pattern: []rules.OpPattern{rules.Op(ir.OpAddReal)}, Handler: fpDyadic(arm.FPAAdf, arm.VFPAdd)},
	{Name: "sub_real", Pattern: []rules.OpPattern{rules.Op(ir.OpSubReal)}, Handler: fpDyadic(arm.FPASuf, arm.VFPSub)},
	{Name: "rsub_real", Pattern: []rules.OpPattern{rules.Op(ir.OpRSubReal)}, Handler: fpRSub},
	{Name: "mul_real", Pattern: []rules.OpPattern{rules.Op(ir.OpMulReal)}, Handler: fpDyadic(arm.FPAMuf, arm.VFPMul)},
	{Name: "div_real", Pattern: []rules.OpPattern{rules.Op(ir.OpDivReal)}, Handler: fpDyadic(arm.FPADvf, arm.VFPDiv)},
	{Name: "mov_real", Pattern: []rules.OpPattern{rules.Op(ir.OpMovReal)}, Handler: movRealReg},
	{Name: "mov_ireal", Pattern: []rules.OpPattern{rules.Op(ir.OpMovIReal)}, Handler: movIReal},

	{Name: "int_to_real", Pattern: []rules.OpPattern{rules.Op(ir.OpIntToReal)}, Handler: intToReal},
	{Name: "real_to_int", Pattern: []rules.OpPattern{rules.Op(ir.OpRealToInt)}, Handler: realToInt},
}
