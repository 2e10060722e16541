// Package regalloc assigns physical registers to the virtual registers
// arm/emit introduced, using a distance-to-next-use linear scan: at each
// instruction that needs a free physical register, the allocator either
// reuses one already free or evicts whichever currently-held virtual
// register has the furthest next use (spec.md §4.4, "Distance-based
// allocation").
//
// Grounded on original_source/arch/arm32/arm_reg_alloc.h's
// subtilis_dist_data_t/subtilis_arm_reg_class_t shape: one allocator
// instance per register class (integer, real), parameterised by a
// spill/restore emitter pair so the same core loop serves both classes.
package regalloc

import (
	"sort"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/liveness"
	"github.com/markryan/subtilis-armback/errs"
)

// SpillEmitter lets the allocator materialise a spill-store / reload-load
// for a class without knowing whether it is the integer or FP encoding.
type SpillEmitter interface {
	// Store appends a store of reg to the spill slot at frame offset off,
	// immediately before at, and returns its op index.
	Store(sec *arm.Section, at arm.OpIndex, reg arm.Reg, off int32) arm.OpIndex
	// Load is Store's mirror.
	Load(sec *arm.Section, at arm.OpIndex, reg arm.Reg, off int32) arm.OpIndex
}

type intSpill struct{}

func (intSpill) Store(sec *arm.Section, at arm.OpIndex, reg arm.Reg, off int32) arm.OpIndex {
	return sec.InsertBefore(at, arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.FP, Rd: reg, OffsetImm: uint32(off), Subtract: off < 0,
	}))
}

func (intSpill) Load(sec *arm.Section, at arm.OpIndex, reg arm.Reg, off int32) arm.OpIndex {
	return sec.InsertBefore(at, arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.FP, Rd: reg, OffsetImm: uint32(off), Subtract: off < 0,
	}))
}

type realSpill struct{ fp arm.FPVariant }

func (r realSpill) Store(sec *arm.Section, at arm.OpIndex, reg arm.Reg, off int32) arm.OpIndex {
	return sec.InsertBefore(at, r.fp.StoreReg(arm.FP, reg, off, true))
}

func (r realSpill) Load(sec *arm.Section, at arm.OpIndex, reg arm.Reg, off int32) arm.OpIndex {
	return sec.InsertBefore(at, r.fp.LoadReg(arm.FP, reg, off, true))
}

// Result is what one class's allocation run produced.
type Result struct {
	// Assignment maps every virtual register seen to the physical register
	// it was last given.
	Assignment map[arm.Reg]arm.Reg
	// SpillBytes is the total frame-relative stack space this class's
	// spills consumed, rounded up to the class's natural alignment.
	SpillBytes int
}

// Allocate runs the allocator for one register class over sec, given the
// class's physical register pool (allocation-preference order) and a
// liveness.Info already computed for sec.
func Allocate(sec *arm.Section, physRegs []arm.Reg, info *liveness.Info, real bool, fp arm.FPVariant) (*Result, *errs.Error) {
	var spiller SpillEmitter
	var stride int32
	if real {
		spiller = realSpill{fp: fp}
		stride = fp.TransferStride()
	} else {
		spiller = intSpill{}
		stride = 4
	}

	a := &allocator{
		sec: sec, physRegs: physRegs, info: info, real: real, spiller: spiller, stride: stride,
		assignment: map[arm.Reg]arm.Reg{}, holder: map[arm.Reg]arm.Reg{}, spillSlot: map[arm.Reg]int32{},
		final: map[arm.Reg]arm.Reg{},
	}
	a.run()
	return &Result{Assignment: a.final, SpillBytes: int(a.nextSpillOff)}, nil
}

type allocator struct {
	sec      *arm.Section
	physRegs []arm.Reg
	info     *liveness.Info
	real     bool
	spiller  SpillEmitter
	stride   int32

	assignment map[arm.Reg]arm.Reg // virtual -> physical, for the lifetime it currently holds
	holder     map[arm.Reg]arm.Reg // physical -> virtual currently resident, if any
	spillSlot  map[arm.Reg]int32   // virtual -> assigned frame offset, once spilled at least once
	final      map[arm.Reg]arm.Reg // virtual -> last physical register bound, kept after eviction

	nextSpillOff int32
}

// run walks every instruction in emission order, ensuring each virtual
// register it reads or writes holds a physical register at that point,
// evicting the resident virtual register with the furthest next use when
// every physical register is occupied.
func (a *allocator) run() {
	order := sec2order(a.sec)
	for i, idx := range order {
		op := a.sec.Pool.Get(idx)
		if op.Kind != arm.OpKindInstr {
			continue
		}
		for _, v := range regsIn(op.Instr, a.real) {
			if v.IsPhysical() {
				continue
			}
			if _, ok := a.assignment[v]; ok {
				continue
			}
			a.ensure(v, idx, order[i:])
		}
		rewrite(op, a.assignment, a.real)
	}
}

func sec2order(sec *arm.Section) []arm.OpIndex { return sec.Slice() }

// ensure gives virtual register v a physical register, spilling its
// previous holder if necessary, at the point it is about to be used at idx.
// remaining is the suffix of ops from idx onward, used to compute next-use
// distances for eviction.
func (a *allocator) ensure(v arm.Reg, idx arm.OpIndex, remaining []arm.OpIndex) {
	for _, p := range a.physRegs {
		if _, occupied := a.holder[p]; !occupied {
			a.bind(v, p)
			a.maybeReload(v, p, idx)
			return
		}
	}
	// Every physical register is occupied: evict whichever holds the
	// virtual register with the furthest next use (or no further use at
	// all within this section).
	victim := a.furthestHolder(remaining)
	p := a.assignment[victim]
	a.spill(victim, p, idx)
	delete(a.holder, p)
	delete(a.assignment, victim)
	a.bind(v, p)
	a.maybeReload(v, p, idx)
}

func (a *allocator) bind(v, p arm.Reg) {
	a.assignment[v] = p
	a.holder[p] = v
	a.final[v] = p
}

func (a *allocator) maybeReload(v, p arm.Reg, idx arm.OpIndex) {
	if off, ok := a.spillSlot[v]; ok {
		a.spiller.Load(a.sec, idx, p, off)
	}
}

func (a *allocator) spill(v, p arm.Reg, idx arm.OpIndex) {
	off, ok := a.spillSlot[v]
	if !ok {
		off = a.nextSpillOff
		a.nextSpillOff += a.stride
		a.spillSlot[v] = off
	}
	a.spiller.Store(a.sec, idx, p, off)
}

// furthestHolder returns the currently resident virtual register that is
// not used again for the longest stretch of remaining (or never again).
func (a *allocator) furthestHolder(remaining []arm.OpIndex) arm.Reg {
	type cand struct {
		v        arm.Reg
		distance int
	}
	var cands []cand
	for p, v := range a.holder {
		_ = p
		cands = append(cands, cand{v: v, distance: nextUseDistance(a.sec, v, remaining, a.real)})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].distance > cands[j].distance })
	return cands[0].v
}

func nextUseDistance(sec *arm.Section, v arm.Reg, remaining []arm.OpIndex, real bool) int {
	for i, idx := range remaining {
		if i == 0 {
			continue // the current instruction itself, already accounted for
		}
		op := sec.Pool.Get(idx)
		if op.Kind != arm.OpKindInstr {
			continue
		}
		for _, r := range regsIn(op.Instr, real) {
			if r == v {
				return i
			}
		}
	}
	return len(remaining) + 1 // no further use: maximal distance, evict first
}
