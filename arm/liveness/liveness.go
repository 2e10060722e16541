// Package liveness computes, for each ARM section, the live-in/live-out
// integer and real register sets at every op, plus the must-save bitsets
// arm/regalloc and arm/fixup need to decide which caller-saved registers a
// given call site actually has to preserve (spec.md §4.3, "Liveness and
// subsection analysis").
//
// Grounded on original_source/arch/arm32/arm_sub_section.h's subsection
// model: a section is partitioned at every label and every branch into
// subsections, and liveness is propagated backwards over the subsection
// graph rather than over the raw instruction stream, repeating the pass
// until no subsection's live sets change.
package liveness

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/bitset"
)

// Subsection is a maximal straight-line run of ops: it starts at a label or
// at the op after a branch, and ends at the next branch (inclusive) or the
// end of the section.
type Subsection struct {
	Ops []arm.OpIndex

	// Succ lists the subsections control can fall into from this one's end:
	// the branch target(s) plus, for a conditional or absent branch, the
	// textually next subsection.
	Succ []int

	LiveIn, LiveOut         *bitset.Set // integer class
	LiveInReal, LiveOutReal *bitset.Set // real class
}

// Info is the liveness result for one section.
type Info struct {
	Subsections []*Subsection
	// ByOp maps an op index to the live-out set immediately after it,
	// populated for every instruction op (not labels/directives), so
	// arm/regalloc can query a single op without re-deriving it from the
	// enclosing subsection.
	ByOp map[arm.OpIndex]*bitset.Set
	ByOpReal map[arm.OpIndex]*bitset.Set
}

// Analyze partitions sec into subsections and computes liveness for both
// register classes. intCount/realCount are not used: the bitsets grow on
// demand as register bits are set.
func Analyze(sec *arm.Section, intCount, realCount int) *Info {
	subs := partition(sec)
	linkSuccessors(sec, subs)

	info := &Info{Subsections: subs, ByOp: map[arm.OpIndex]*bitset.Set{}, ByOpReal: map[arm.OpIndex]*bitset.Set{}}
	for _, s := range subs {
		s.LiveIn, s.LiveOut = bitset.New(), bitset.New()
		s.LiveInReal, s.LiveOutReal = bitset.New(), bitset.New()
	}

	// Backward fixed-point iteration over the subsection graph.
	changed := true
	for changed {
		changed = false
		for i := len(subs) - 1; i >= 0; i-- {
			s := subs[i]
			newOut := bitset.New()
			newOutReal := bitset.New()
			for _, succIdx := range s.Succ {
				newOut.Or(subs[succIdx].LiveIn)
				newOutReal.Or(subs[succIdx].LiveInReal)
			}
			in, inReal := computeIn(sec, s, newOut, newOutReal, info)
			if !setEqual(newOut, s.LiveOut) || !setEqual(in, s.LiveIn) ||
				!setEqual(newOutReal, s.LiveOutReal) || !setEqual(inReal, s.LiveInReal) {
				changed = true
			}
			s.LiveOut, s.LiveIn = newOut, in
			s.LiveOutReal, s.LiveInReal = newOutReal, inReal
		}
	}
	return info
}

func setEqual(a, b *bitset.Set) bool {
	if a.Empty() != b.Empty() {
		return false
	}
	as, bs := a.Slice(), b.Slice()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// partition splits sec into maximal straight-line runs, breaking before
// every label and after every branch.
func partition(sec *arm.Section) []*Subsection {
	var subs []*Subsection
	cur := &Subsection{}
	flush := func() {
		if len(cur.Ops) > 0 {
			subs = append(subs, cur)
			cur = &Subsection{}
		}
	}
	sec.Each(func(idx arm.OpIndex, op *arm.Op) {
		if op.Kind == arm.OpKindLabel {
			flush()
		}
		cur.Ops = append(cur.Ops, idx)
		if op.Kind == arm.OpKindInstr && op.Instr.Kind == arm.KindBranch {
			flush()
		}
	})
	flush()
	return subs
}

// linkSuccessors resolves each subsection's fall-through and branch-target
// successors by label id, now that every subsection's first op is known.
func linkSuccessors(sec *arm.Section, subs []*Subsection) {
	firstByLabel := map[int]int{}
	for i, s := range subs {
		if len(s.Ops) == 0 {
			continue
		}
		op := sec.Pool.Get(s.Ops[0])
		if op.Kind == arm.OpKindLabel {
			firstByLabel[op.LabelID] = i
		}
	}
	for i, s := range subs {
		last := sec.Pool.Get(s.Ops[len(s.Ops)-1])
		if last.Kind == arm.OpKindInstr && last.Instr.Kind == arm.KindBranch {
			br := last.Instr.Br
			if br.Target == arm.TargetLabel {
				if target, ok := firstByLabel[br.Label]; ok {
					s.Succ = append(s.Succ, target)
				}
			}
			if br.Cond != arm.CondAL && i+1 < len(subs) {
				s.Succ = append(s.Succ, i+1)
			}
			if br.Link && i+1 < len(subs) {
				// A call always falls through to the next subsection
				// afterwards.
				s.Succ = append(s.Succ, i+1)
			}
		} else if i+1 < len(subs) {
			s.Succ = append(s.Succ, i+1)
		}
	}
}

// computeIn walks s's ops backwards from liveOut, building the live-in set
// and recording the live-out-after-this-op for each instruction.
func computeIn(sec *arm.Section, s *Subsection, liveOut, liveOutReal *bitset.Set, info *Info) (*bitset.Set, *bitset.Set) {
	live := liveOut.Clone()
	liveReal := liveOutReal.Clone()
	for i := len(s.Ops) - 1; i >= 0; i-- {
		idx := s.Ops[i]
		op := sec.Pool.Get(idx)
		if op.Kind != arm.OpKindInstr {
			continue
		}
		info.ByOp[idx] = live.Clone()
		info.ByOpReal[idx] = liveReal.Clone()
		killInstr(op.Instr, live, liveReal)
		useInstr(op.Instr, live, liveReal)
	}
	return live, liveReal
}

func killInstr(instr arm.Instr, live, liveReal *bitset.Set) {
	if d, ok := destReg(instr); ok {
		live.Clear(int(d))
	}
	if d, ok := destRealReg(instr); ok {
		liveReal.Clear(int(d))
	}
}

func useInstr(instr arm.Instr, live, liveReal *bitset.Set) {
	for _, r := range useRegs(instr) {
		live.Set(int(r))
	}
	for _, r := range useRealRegs(instr) {
		liveReal.Set(int(r))
	}
}

func destReg(instr arm.Instr) (arm.Reg, bool) {
	switch instr.Kind {
	case arm.KindDataProcessing:
		if instr.DP.Op != arm.DPCmp && instr.DP.Op != arm.DPCmn && instr.DP.Op != arm.DPTst && instr.DP.Op != arm.DPTeq {
			return instr.DP.Rd, true
		}
	case arm.KindMultiply:
		return instr.Mul.Rd, true
	case arm.KindSingleTransfer:
		if instr.ST.Load {
			return instr.ST.Rd, true
		}
	case arm.KindFPAIntTransfer:
		if !instr.FPAIntTr.ToFloat {
			return instr.FPAIntTr.IntReg, true
		}
	case arm.KindVFPConvert:
		if !instr.VFPConv.ToFloat {
			return instr.VFPConv.Rd, true
		}
	case arm.KindCondMove:
		return instr.CondMove.Move.Rd, true
	}
	return 0, false
}

func destRealReg(instr arm.Instr) (arm.Reg, bool) {
	switch instr.Kind {
	case arm.KindFPADyadic:
		return instr.FPADy.Rd, true
	case arm.KindFPATransfer:
		if instr.FPATr.Load {
			return instr.FPATr.Rd, true
		}
	case arm.KindFPAIntTransfer:
		if instr.FPAIntTr.ToFloat {
			return instr.FPAIntTr.FReg, true
		}
	case arm.KindVFPDyadic:
		return instr.VFPDy.Dd, true
	case arm.KindVFPTransfer:
		if instr.VFPTr.Load {
			return instr.VFPTr.Dd, true
		}
	case arm.KindVFPConvert:
		if instr.VFPConv.ToFloat {
			return instr.VFPConv.Dd, true
		}
	case arm.KindFPConstLoad:
		return instr.FPConst.Rd, true
	}
	return 0, false
}

func useRegs(instr arm.Instr) []arm.Reg {
	var out []arm.Reg
	switch instr.Kind {
	case arm.KindDataProcessing:
		if instr.DP.Op != arm.DPMov && instr.DP.Op != arm.DPMvn {
			out = append(out, instr.DP.Rn)
		}
		if !instr.DP.Op2.IsImm {
			out = append(out, instr.DP.Op2.Reg)
			if instr.DP.Op2.ShiftIsReg {
				out = append(out, instr.DP.Op2.ShiftReg)
			}
		}
	case arm.KindMultiply:
		out = append(out, instr.Mul.Rm, instr.Mul.Rs)
		if instr.Mul.Accumulate {
			out = append(out, instr.Mul.Rn)
		}
	case arm.KindSingleTransfer:
		out = append(out, instr.ST.Base)
		if !instr.ST.Load {
			out = append(out, instr.ST.Rd)
		}
		if instr.ST.OffsetIsReg {
			out = append(out, instr.ST.OffsetReg)
		}
	case arm.KindBlockTransfer:
		out = append(out, instr.BT.Base)
	case arm.KindFPAIntTransfer:
		if instr.FPAIntTr.ToFloat {
			out = append(out, instr.FPAIntTr.IntReg)
		}
	case arm.KindVFPConvert:
		if instr.VFPConv.ToFloat {
			out = append(out, instr.VFPConv.Rd)
		}
	case arm.KindCondMove:
		cm := instr.CondMove
		out = append(out, cm.Compare.Rn)
		if !cm.Compare.Op2.IsImm {
			out = append(out, cm.Compare.Op2.Reg)
			if cm.Compare.Op2.ShiftIsReg {
				out = append(out, cm.Compare.Op2.ShiftReg)
			}
		}
		if cm.Move.Op != arm.DPMov && cm.Move.Op != arm.DPMvn {
			out = append(out, cm.Move.Rn)
		}
		if !cm.Move.Op2.IsImm {
			out = append(out, cm.Move.Op2.Reg)
			if cm.Move.Op2.ShiftIsReg {
				out = append(out, cm.Move.Op2.ShiftReg)
			}
		}
	}
	return out
}

func useRealRegs(instr arm.Instr) []arm.Reg {
	var out []arm.Reg
	switch instr.Kind {
	case arm.KindFPADyadic:
		out = append(out, instr.FPADy.Rn)
		if !instr.FPADy.Op2.IsConstant {
			out = append(out, instr.FPADy.Op2.Reg)
		}
	case arm.KindFPATransfer:
		if !instr.FPATr.Load {
			out = append(out, instr.FPATr.Rd)
		}
	case arm.KindFPAIntTransfer:
		if !instr.FPAIntTr.ToFloat {
			out = append(out, instr.FPAIntTr.FReg)
		}
	case arm.KindFPACompare:
		out = append(out, instr.FPACmp.Rn)
		if !instr.FPACmp.Op2.IsConstant {
			out = append(out, instr.FPACmp.Op2.Reg)
		}
	case arm.KindVFPDyadic:
		out = append(out, instr.VFPDy.Dn, instr.VFPDy.Dm)
	case arm.KindVFPCompare:
		out = append(out, instr.VFPCmp.Dd, instr.VFPCmp.Dm)
	case arm.KindVFPTransfer:
		if !instr.VFPTr.Load {
			out = append(out, instr.VFPTr.Dd)
		}
	case arm.KindVFPConvert:
		if !instr.VFPConv.ToFloat {
			out = append(out, instr.VFPConv.Dd)
		}
	}
	return out
}
