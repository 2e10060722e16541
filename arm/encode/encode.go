package encode

import (
	"math"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/errs"
	"github.com/markryan/subtilis-armback/ir"
)

// ExternalBranch records one branch left unresolved by Section because its
// target lives in another section (a user call) or a builtin routine: the
// word index into Words where the branch sits, and enough of the original
// arm.Branch to let the linker recompute its offset once every section has
// a final base address.
type ExternalBranch struct {
	WordIndex int
	Br        *arm.Branch
}

// Result is one section's encoded output: its instruction words, the words
// of the constant-pool island placed immediately after them, its label
// offsets, and the branches left for the linker.
type Result struct {
	Words       []uint32
	PoolWords   []uint32
	LabelOffset map[int]uint32 // label id -> byte offset from the section's start, for linking
	External    []ExternalBranch
}

// Section encodes sec to its final word stream in two passes: the first
// assigns every op a byte address (labels and directives take no space),
// the second resolves every branch/LDRC/ADR/FPConstLoad against those
// addresses and emits the final words, appending a constant-pool island
// built from every distinct constant an LDRC/FPConstLoad in this section
// referenced.
func Section(sec *arm.Section, constants *ir.ConstantPool) (*Result, *errs.Error) {
	order := sec.Slice()

	addr := map[arm.OpIndex]uint32{}
	labelOffset := map[int]uint32{}
	var pc uint32
	for _, idx := range order {
		op := sec.Pool.Get(idx)
		switch op.Kind {
		case arm.OpKindLabel:
			labelOffset[op.LabelID] = pc
		case arm.OpKindInstr:
			addr[idx] = pc
			if op.Instr.Kind == arm.KindCondMove {
				pc += 8
			} else {
				pc += 4
			}
		}
	}
	codeLen := pc

	// Second pass: resolve references and collect pool entries, keyed by
	// constant id so repeated references to the same constant share one
	// slot.
	poolSlot := map[int]int{}
	var poolWords []uint32

	// slotFor reserves this constant's words in the pool the first time it
	// is referenced and returns the word index of its first word. Int32 and
	// single-precision reals are one word; double-precision reals take the
	// low word followed by the high word, matching how FPConstLoad's
	// generic PC-relative load reads them back a word at a time (arm/encode's
	// single-word LDR stands in for the real LDFD/VLDR doubleword form,
	// documented in encodeFPConstLoad).
	slotFor := func(constID int) int {
		if s, ok := poolSlot[constID]; ok {
			return s
		}
		c := constants.Get(constID)
		s := len(poolWords)
		switch c.Kind {
		case ir.ConstInt32:
			poolWords = append(poolWords, uint32(c.Int))
		case ir.ConstReal32:
			poolWords = append(poolWords, math.Float32bits(float32(c.Real)))
		default:
			bits := math.Float64bits(c.Real)
			poolWords = append(poolWords, uint32(bits), uint32(bits>>32))
		}
		poolSlot[constID] = s
		return s
	}

	var words []uint32
	var external []ExternalBranch
	var failure *errs.Error
	for _, idx := range order {
		op := sec.Pool.Get(idx)
		if op.Kind != arm.OpKindInstr {
			continue
		}
		instr := op.Instr
		pc := addr[idx]

		switch instr.Kind {
		case arm.KindBranch:
			br := instr.Br
			switch br.Target {
			case arm.TargetLabel:
				target, ok := labelOffset[br.Label]
				if !ok {
					// The placeholder -1 ("this section's epilogue") must
					// already have been patched to a real label id by the
					// compiler driver before encoding.
					if failure == nil {
						failure = errs.Errorf(errs.KindAssertion, "unresolved branch target label %d", br.Label)
					}
					target = pc
				}
				offset := int32(target) - int32(pc+8)
				if offset < -(1<<25) || offset > (1<<25)-1 {
					if failure == nil {
						failure = errs.Errorf(errs.KindBranchRange, "branch offset %d out of 24-bit word range", offset)
					}
				}
				br.Offset = offset / 4
			case arm.TargetSection, arm.TargetName:
				// Resolved later by the linker once every section's base
				// address is known; record where this word lands so it can
				// patch it in place.
				external = append(external, ExternalBranch{WordIndex: len(words), Br: br})
			}
		case arm.KindLDRC:
			s := slotFor(instr.LDRC.ConstantID)
			poolAddr := codeLen + uint32(s*4)
			instr.LDRC.Offset = int32(poolAddr) - int32(pc+8)
		case arm.KindFPConstLoad:
			s := slotFor(instr.FPConst.ConstantID)
			poolAddr := codeLen + uint32(s*4)
			instr.FPConst.Offset = int32(poolAddr) - int32(pc+8)
		case arm.KindADR:
			target, ok := labelOffset[instr.ADR.Label]
			if !ok {
				target = pc
			}
			instr.ADR.Label = int(int32(target) - int32(pc+8))
		case arm.KindCondMove:
			cmpWord, moveWord := condMoveWords(instr.CondMove)
			words = append(words, cmpWord, moveWord)
			continue
		}
		words = append(words, word(instr))
	}

	if failure != nil {
		return nil, failure
	}
	return &Result{Words: words, PoolWords: poolWords, LabelOffset: labelOffset, External: external}, nil
}
