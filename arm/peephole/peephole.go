// Package peephole runs a small set of local rewrites over a finished ARM
// section: removing the reload of a register from the offset it was stored
// to by the op immediately before (the store itself stays), and dropping a MOV
// whose source and destination registers are identical (a common
// by-product of the simple distance-based allocator coalescing nothing on
// its own). Grounded on the teacher's general preference for small,
// targeted passes over the instruction stream rather than a full
// optimiser.
package peephole

import "github.com/markryan/subtilis-armback/arm"

// Run mutates sec in place, iterating until a pass makes no further change
// (coalescing two adjacent rewrites can expose a third).
func Run(sec *arm.Section) {
	for {
		if !runOnce(sec) {
			return
		}
	}
}

func runOnce(sec *arm.Section) bool {
	changed := false
	var prevIdx arm.OpIndex = arm.NoOp
	sec.Each(func(idx arm.OpIndex, op *arm.Op) {
		if op.Kind != arm.OpKindInstr {
			prevIdx = arm.NoOp
			return
		}
		if isNoopMov(op.Instr) {
			sec.Remove(idx)
			changed = true
			return
		}
		if prevIdx != arm.NoOp {
			prevOp := sec.Pool.Get(prevIdx)
			if isRedundantReload(prevOp.Instr, op.Instr) {
				sec.Remove(idx)
				changed = true
				prevIdx = idx
				return
			}
		}
		prevIdx = idx
	})
	return changed
}

// isNoopMov reports whether instr is an unconditional, non-status-setting
// MOV Rd, Rd (register form) - a pure identity that regalloc sometimes
// leaves behind when a virtual register's assigned physical register
// happens to match its operand's.
func isNoopMov(instr arm.Instr) bool {
	if instr.Kind != arm.KindDataProcessing {
		return false
	}
	dp := instr.DP
	return dp.Op == arm.DPMov && dp.Cond == arm.CondAL && !dp.S &&
		!dp.Op2.IsImm && !dp.Op2.ShiftIsReg && dp.Op2.ShiftAmount == 0 && dp.Op2.Reg == dp.Rd
}

// isRedundantReload reports whether cur reloads, from the exact frame slot
// prev just stored to, the same value that is already sitting in a register
// - in which case the reload is a pure waste (the store's source register
// is still live, since nothing sits between the two).
func isRedundantReload(prev, cur arm.Instr) bool {
	if prev.Kind != arm.KindSingleTransfer || cur.Kind != arm.KindSingleTransfer {
		return false
	}
	ps, cs := prev.ST, cur.ST
	return !ps.Load && cs.Load && ps.Base == cs.Base && ps.OffsetImm == cs.OffsetImm &&
		ps.Subtract == cs.Subtract && ps.Rd == cs.Rd
}
