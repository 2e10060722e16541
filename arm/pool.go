package arm

// OpKind discriminates what an arena-allocated Op represents.
type OpKind uint8

const (
	OpKindLabel OpKind = iota
	OpKindDirective
	OpKindInstr
)

// OpIndex is a stable handle into an OpPool. Unlike a pointer, it survives
// pool growth (spec.md §9: "replace pointer-into-vector idioms with arena +
// indices").
type OpIndex int32

// NoOp is the null OpIndex.
const NoOp OpIndex = -1

// Op is one element of an ARM section's intrusively doubly linked op list:
// a label definition, an assembler directive, or an instruction.
type Op struct {
	Kind  OpKind
	Instr Instr

	LabelID int

	Directive string

	Prev, Next OpIndex

	inUse bool
}

// OpPool is a growable arena of Ops addressed by stable OpIndex handles,
// backed by a free list so that released ops are recycled (spec.md §3,
// "Op-pool").
type OpPool struct {
	ops      []Op
	freeList []OpIndex
}

func NewOpPool() *OpPool { return &OpPool{} }

// Alloc reserves a fresh Op slot and returns its handle. The slot's Prev/
// Next are initialised to NoOp; callers are responsible for linking it into
// a section.
func (p *OpPool) Alloc() OpIndex {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.ops[idx] = Op{Prev: NoOp, Next: NoOp, inUse: true}
		return idx
	}
	p.ops = append(p.ops, Op{Prev: NoOp, Next: NoOp, inUse: true})
	return OpIndex(len(p.ops) - 1)
}

// Free releases idx back to the pool. The caller must have already unlinked
// it from any section list.
func (p *OpPool) Free(idx OpIndex) {
	p.ops[idx] = Op{inUse: false}
	p.freeList = append(p.freeList, idx)
}

// Get returns a mutable pointer to the op at idx.
func (p *OpPool) Get(idx OpIndex) *Op { return &p.ops[idx] }

// Release discards the entire pool in one step, matching the "op-pool and
// its ops live from emission through encoding; freed in bulk" lifecycle
// from spec.md §3.
func (p *OpPool) Release() {
	p.ops = nil
	p.freeList = nil
}
