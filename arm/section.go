package arm

import "github.com/markryan/subtilis-armback/arm/bitset"

// CallSite records everything the call-site fixup pass (arm/fixup) needs to
// rewrite after register allocation has decided which caller-saved
// registers are actually live across a call (spec.md §3, "Call-site
// record").
type CallSite struct {
	StmOp   OpIndex // the STM pushing caller-saved integer registers
	LdmOp   OpIndex // the matching LDM
	FPPreserve []OpIndex // FP preserve slots, in emission order
	FPRestore  []OpIndex // matching FP restore slots, in emission order
	BranchOp   OpIndex   // the BL itself

	IntArgs  int
	RealArgs int

	// StackArgStores are the op indices of stores for arguments beyond the
	// four register-passable slots; their offsets are patched once the
	// final preserved-register byte count is known.
	StackArgStores []OpIndex

	MustSaveInt  *bitset.Set
	MustSaveReal *bitset.Set
}

// Section is an ordered, intrusively linked list of ops drawn from a shared
// OpPool (spec.md §3, "ARM section").
type Section struct {
	Pool *OpPool

	Head, Tail OpIndex

	NextIntVReg  Reg
	NextRealVReg Reg
	NextLabel    int

	LocalsSize int

	RetSites  []OpIndex
	CallSites []*CallSite

	FP FPVariant

	Name string
}

func NewSection(name string, pool *OpPool, fp FPVariant) *Section {
	return &Section{
		Pool:         pool,
		Head:         NoOp,
		Tail:         NoOp,
		NextIntVReg:  FirstVirtualReg,
		NextRealVReg: FirstVirtualReg,
		FP:           fp,
		Name:         name,
	}
}

func (s *Section) NewIntVReg() Reg {
	r := s.NextIntVReg
	s.NextIntVReg++
	return r
}

func (s *Section) NewRealVReg() Reg {
	r := s.NextRealVReg
	s.NextRealVReg++
	return r
}

func (s *Section) NewLabelID() int {
	l := s.NextLabel
	s.NextLabel++
	return l
}

// Append adds a new op holding instr to the end of the section and returns
// its handle.
func (s *Section) Append(instr Instr) OpIndex {
	return s.appendOp(Op{Kind: OpKindInstr, Instr: instr})
}

// AppendLabel defines label id at the current end of the section.
func (s *Section) AppendLabel(id int) OpIndex {
	return s.appendOp(Op{Kind: OpKindLabel, LabelID: id})
}

// AppendDirective appends an assembler pragma.
func (s *Section) AppendDirective(text string) OpIndex {
	return s.appendOp(Op{Kind: OpKindDirective, Directive: text})
}

func (s *Section) appendOp(op Op) OpIndex {
	idx := s.Pool.Alloc()
	slot := s.Pool.Get(idx)
	*slot = op
	slot.Prev = s.Tail
	slot.Next = NoOp
	slot.inUse = true
	if s.Tail != NoOp {
		s.Pool.Get(s.Tail).Next = idx
	} else {
		s.Head = idx
	}
	s.Tail = idx
	return idx
}

// InsertBefore splices a new op holding instr immediately before at, and
// returns its handle. at must belong to this section.
func (s *Section) InsertBefore(at OpIndex, instr Instr) OpIndex {
	return s.insertOpBefore(at, Op{Kind: OpKindInstr, Instr: instr})
}

func (s *Section) insertOpBefore(at OpIndex, op Op) OpIndex {
	idx := s.Pool.Alloc()
	slot := s.Pool.Get(idx)
	*slot = op
	slot.inUse = true

	atOp := s.Pool.Get(at)
	prev := atOp.Prev
	slot.Prev = prev
	slot.Next = at
	atOp.Prev = idx
	if prev != NoOp {
		s.Pool.Get(prev).Next = idx
	} else {
		s.Head = idx
	}
	return idx
}

// Remove unlinks idx from the section and returns it to the pool.
func (s *Section) Remove(idx OpIndex) {
	op := s.Pool.Get(idx)
	prev, next := op.Prev, op.Next
	if prev != NoOp {
		s.Pool.Get(prev).Next = next
	} else {
		s.Head = next
	}
	if next != NoOp {
		s.Pool.Get(next).Prev = prev
	} else {
		s.Tail = prev
	}
	s.Pool.Free(idx)
}

// Each walks the section head to tail, calling fn with each op's index.
func (s *Section) Each(fn func(idx OpIndex, op *Op)) {
	for idx := s.Head; idx != NoOp; {
		op := s.Pool.Get(idx)
		next := op.Next
		fn(idx, op)
		idx = next
	}
}

// Len returns the number of ops currently in the section.
func (s *Section) Len() int {
	n := 0
	s.Each(func(OpIndex, *Op) { n++ })
	return n
}

// Slice materialises the section's ops, head to tail, as a plain slice of
// indices - useful for passes that want random access or a second pass over
// a fixed snapshot (e.g. the encoder's two-pass address assignment).
func (s *Section) Slice() []OpIndex {
	out := make([]OpIndex, 0, 64)
	s.Each(func(idx OpIndex, _ *Op) { out = append(out, idx) })
	return out
}
