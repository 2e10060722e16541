// Package fixup performs the call-site patching pass that runs after
// register allocation: it rewrites each call's STM/LDM register masks to
// exactly the caller-saved integer registers regalloc left live across the
// call, flips the matching FP preserve/restore slots from CondNV to CondAL
// for the FP registers actually live, and patches the stack-argument store
// offsets now that the preserved-register byte count is final (spec.md §4.5,
// "Call-site fixup").
//
// Grounded on original_source/arch/arm32/arm_reg_alloc.h's must-save
// bitsets, computed here by intersecting the live-out set liveness recorded
// at each call's branch with the caller-saved register set.
package fixup

import (
	"math/bits"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/bitset"
	"github.com/markryan/subtilis-armback/arm/liveness"
)

// CallerSavedInt lists the integer registers this ABI does not guarantee
// survive a call (everything except FP, GLB, SP, LR - spec.md §1).
var CallerSavedInt = []arm.Reg{arm.R0, arm.R1, arm.R2, arm.R3, arm.R4, arm.R5, arm.R6, arm.R7, arm.R8, arm.R9, arm.R10}

// Run patches every call site recorded in sec, given the liveness already
// computed for it.
func Run(sec *arm.Section, info *liveness.Info) {
	for _, cs := range sec.CallSites {
		mustSaveInt := liveAcrossCall(info, sec, cs.BranchOp, CallerSavedInt, false)
		cs.MustSaveInt = mustSaveInt

		var mask uint16
		mustSaveInt.Each(func(v int) { mask |= 1 << uint(v) })
		patchBlockTransfer(sec, cs.StmOp, mask)
		patchBlockTransfer(sec, cs.LdmOp, mask)
		preservedBytes := 4 * bits.OnesCount16(mask)

		fpRegs := make([]arm.Reg, len(cs.FPPreserve))
		for i := range fpRegs {
			fpRegs[i] = arm.Reg(i)
		}
		mustSaveReal := liveAcrossCall(info, sec, cs.BranchOp, fpRegs, true)
		cs.MustSaveReal = mustSaveReal
		for i, idx := range cs.FPPreserve {
			if mustSaveReal.IsSet(i) {
				enableSlot(sec, idx)
				enableSlot(sec, cs.FPRestore[len(cs.FPRestore)-1-i])
				preservedBytes += int(fpStride(sec))
			}
		}

		for _, idx := range cs.StackArgStores {
			patchStackOffset(sec, idx, preservedBytes)
		}
	}
}

func fpStride(sec *arm.Section) int32 {
	if sec.FP != nil {
		return sec.FP.TransferStride()
	}
	return 8
}

// liveAcrossCall intersects the live-out set at op idx (the call's branch)
// with candidates, returning the subset that must be preserved.
func liveAcrossCall(info *liveness.Info, sec *arm.Section, idx arm.OpIndex, candidates []arm.Reg, real bool) *bitset.Set {
	var live *bitset.Set
	if real {
		live = info.ByOpReal[idx]
	} else {
		live = info.ByOp[idx]
	}
	out := bitset.New()
	if live == nil {
		return out
	}
	for i, r := range candidates {
		if live.IsSet(int(r)) {
			if real {
				out.Set(i)
			} else {
				out.Set(int(r))
			}
		}
	}
	return out
}

func patchBlockTransfer(sec *arm.Section, idx arm.OpIndex, mask uint16) {
	op := sec.Pool.Get(idx)
	if op.Kind == arm.OpKindInstr && op.Instr.Kind == arm.KindBlockTransfer {
		op.Instr.BT.Mask = mask
	}
}

func enableSlot(sec *arm.Section, idx arm.OpIndex) {
	op := sec.Pool.Get(idx)
	if op.Kind != arm.OpKindInstr {
		return
	}
	switch op.Instr.Kind {
	case arm.KindFPATransfer:
		op.Instr.FPATr.Cond = arm.CondAL
	case arm.KindVFPTransfer:
		op.Instr.VFPTr.Cond = arm.CondAL
	}
}

func patchStackOffset(sec *arm.Section, idx arm.OpIndex, preservedBytes int) {
	op := sec.Pool.Get(idx)
	if op.Kind == arm.OpKindInstr && op.Instr.Kind == arm.KindSingleTransfer {
		op.Instr.ST.OffsetImm += uint32(preservedBytes)
	}
}
