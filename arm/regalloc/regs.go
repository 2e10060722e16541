package regalloc

import "github.com/markryan/subtilis-armback/arm"

// regsIn returns every virtual or physical register of the requested class
// (real or integer) that instr reads or writes, used/def order irrelevant
// here since the allocator only needs to know v is referenced at this point.
func regsIn(instr arm.Instr, real bool) []arm.Reg {
	var out []arm.Reg
	add := func(isReal bool, r arm.Reg) {
		if isReal == real {
			out = append(out, r)
		}
	}
	switch instr.Kind {
	case arm.KindDataProcessing:
		add(false, instr.DP.Rd)
		add(false, instr.DP.Rn)
		if !instr.DP.Op2.IsImm {
			add(false, instr.DP.Op2.Reg)
			if instr.DP.Op2.ShiftIsReg {
				add(false, instr.DP.Op2.ShiftReg)
			}
		}
	case arm.KindMultiply:
		add(false, instr.Mul.Rd)
		add(false, instr.Mul.Rm)
		add(false, instr.Mul.Rs)
		if instr.Mul.Accumulate {
			add(false, instr.Mul.Rn)
		}
	case arm.KindSingleTransfer:
		add(false, instr.ST.Base)
		add(false, instr.ST.Rd)
		if instr.ST.OffsetIsReg {
			add(false, instr.ST.OffsetReg)
		}
	case arm.KindBlockTransfer:
		add(false, instr.BT.Base)
	case arm.KindBranch:
		// branch targets carry no register operands
	case arm.KindSWI:
		// SWI register masks are fixed physical regs, already allocated
	case arm.KindLDRC:
		add(false, instr.LDRC.Rd)
	case arm.KindADR:
		add(false, instr.ADR.Rd)
	case arm.KindFPADyadic:
		add(true, instr.FPADy.Rd)
		add(true, instr.FPADy.Rn)
		if !instr.FPADy.Op2.IsConstant {
			add(true, instr.FPADy.Op2.Reg)
		}
	case arm.KindFPATransfer:
		add(false, instr.FPATr.Base)
		add(true, instr.FPATr.Rd)
	case arm.KindFPAIntTransfer:
		add(false, instr.FPAIntTr.IntReg)
		add(true, instr.FPAIntTr.FReg)
	case arm.KindFPACompare:
		add(true, instr.FPACmp.Rn)
		if !instr.FPACmp.Op2.IsConstant {
			add(true, instr.FPACmp.Op2.Reg)
		}
	case arm.KindFPALoadConst:
		add(true, instr.FPALdc.Rd)
	case arm.KindFPASysReg:
		add(false, instr.FPASys.Rd)
	case arm.KindVFPDyadic:
		add(true, instr.VFPDy.Dd)
		add(true, instr.VFPDy.Dn)
		add(true, instr.VFPDy.Dm)
	case arm.KindVFPCompare:
		add(true, instr.VFPCmp.Dd)
		add(true, instr.VFPCmp.Dm)
	case arm.KindVFPTransfer:
		add(false, instr.VFPTr.Base)
		add(true, instr.VFPTr.Dd)
	case arm.KindVFPConvert:
		add(true, instr.VFPConv.Dd)
		add(false, instr.VFPConv.Rd)
	case arm.KindVFPSysReg:
		add(false, instr.VFPSys.Rd)
	case arm.KindFPConstLoad:
		add(true, instr.FPConst.Rd)
	case arm.KindCondMove:
		cm := instr.CondMove
		add(false, cm.Compare.Rn)
		if !cm.Compare.Op2.IsImm {
			add(false, cm.Compare.Op2.Reg)
			if cm.Compare.Op2.ShiftIsReg {
				add(false, cm.Compare.Op2.ShiftReg)
			}
		}
		add(false, cm.Move.Rd)
		if cm.Move.Op != arm.DPMov && cm.Move.Op != arm.DPMvn {
			add(false, cm.Move.Rn)
		}
		if !cm.Move.Op2.IsImm {
			add(false, cm.Move.Op2.Reg)
			if cm.Move.Op2.ShiftIsReg {
				add(false, cm.Move.Op2.ShiftReg)
			}
		}
	}
	return dedup(out)
}

func dedup(regs []arm.Reg) []arm.Reg {
	seen := map[arm.Reg]bool{}
	out := regs[:0]
	for _, r := range regs {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// rewrite replaces every virtual register of the given class appearing in
// op's instruction with its assigned physical register.
func rewrite(op *arm.Op, assignment map[arm.Reg]arm.Reg, real bool) {
	mapReg := func(isReal bool, r *arm.Reg) {
		if isReal != real || r.IsPhysical() {
			return
		}
		if p, ok := assignment[*r]; ok {
			*r = p
		}
	}
	instr := &op.Instr
	switch instr.Kind {
	case arm.KindDataProcessing:
		mapReg(false, &instr.DP.Rd)
		mapReg(false, &instr.DP.Rn)
		if !instr.DP.Op2.IsImm {
			mapReg(false, &instr.DP.Op2.Reg)
			if instr.DP.Op2.ShiftIsReg {
				mapReg(false, &instr.DP.Op2.ShiftReg)
			}
		}
	case arm.KindMultiply:
		mapReg(false, &instr.Mul.Rd)
		mapReg(false, &instr.Mul.Rm)
		mapReg(false, &instr.Mul.Rs)
		if instr.Mul.Accumulate {
			mapReg(false, &instr.Mul.Rn)
		}
	case arm.KindSingleTransfer:
		mapReg(false, &instr.ST.Base)
		mapReg(false, &instr.ST.Rd)
		if instr.ST.OffsetIsReg {
			mapReg(false, &instr.ST.OffsetReg)
		}
	case arm.KindBlockTransfer:
		mapReg(false, &instr.BT.Base)
	case arm.KindLDRC:
		mapReg(false, &instr.LDRC.Rd)
	case arm.KindADR:
		mapReg(false, &instr.ADR.Rd)
	case arm.KindFPADyadic:
		mapReg(true, &instr.FPADy.Rd)
		mapReg(true, &instr.FPADy.Rn)
		if !instr.FPADy.Op2.IsConstant {
			mapReg(true, &instr.FPADy.Op2.Reg)
		}
	case arm.KindFPATransfer:
		mapReg(false, &instr.FPATr.Base)
		mapReg(true, &instr.FPATr.Rd)
	case arm.KindFPAIntTransfer:
		mapReg(false, &instr.FPAIntTr.IntReg)
		mapReg(true, &instr.FPAIntTr.FReg)
	case arm.KindFPACompare:
		mapReg(true, &instr.FPACmp.Rn)
		if !instr.FPACmp.Op2.IsConstant {
			mapReg(true, &instr.FPACmp.Op2.Reg)
		}
	case arm.KindFPALoadConst:
		mapReg(true, &instr.FPALdc.Rd)
	case arm.KindFPASysReg:
		mapReg(false, &instr.FPASys.Rd)
	case arm.KindVFPDyadic:
		mapReg(true, &instr.VFPDy.Dd)
		mapReg(true, &instr.VFPDy.Dn)
		mapReg(true, &instr.VFPDy.Dm)
	case arm.KindVFPCompare:
		mapReg(true, &instr.VFPCmp.Dd)
		mapReg(true, &instr.VFPCmp.Dm)
	case arm.KindVFPTransfer:
		mapReg(false, &instr.VFPTr.Base)
		mapReg(true, &instr.VFPTr.Dd)
	case arm.KindVFPConvert:
		mapReg(true, &instr.VFPConv.Dd)
		mapReg(false, &instr.VFPConv.Rd)
	case arm.KindVFPSysReg:
		mapReg(false, &instr.VFPSys.Rd)
	case arm.KindFPConstLoad:
		mapReg(true, &instr.FPConst.Rd)
	case arm.KindCondMove:
		cm := instr.CondMove
		mapReg(false, &cm.Compare.Rn)
		if !cm.Compare.Op2.IsImm {
			mapReg(false, &cm.Compare.Op2.Reg)
			if cm.Compare.Op2.ShiftIsReg {
				mapReg(false, &cm.Compare.Op2.ShiftReg)
			}
		}
		mapReg(false, &cm.Move.Rd)
		if cm.Move.Op != arm.DPMov && cm.Move.Op != arm.DPMvn {
			mapReg(false, &cm.Move.Rn)
		}
		if !cm.Move.Op2.IsImm {
			mapReg(false, &cm.Move.Op2.Reg)
			if cm.Move.Op2.ShiftIsReg {
				mapReg(false, &cm.Move.Op2.ShiftReg)
			}
		}
	}
}
