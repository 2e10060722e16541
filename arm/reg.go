// Package arm models ARM2/ARM250/ARM3 (with optional FPA or VFP coprocessor)
// machine instructions as a tagged union, plus the intrusively linked,
// arena-backed section list that instruction selection, register
// allocation, the peephole pass, and the encoder all operate on.
//
// Grounded on the teacher's encoder package for bit-level conventions
// (condition codes, shift encodings, immediate rotation) and on
// arch/arm32/arm_core.h / arm_gen.h in original_source for the instruction
// family shapes.
package arm

// Reg is a register number within one of the two disjoint register
// classes (integer, floating point). Values 0-15 denote a physical
// register; values >= FirstVirtualReg denote a virtual register awaiting
// allocation. Mixing classes is a bug the type system does not prevent -
// by design, per spec.md's data model, class is tracked by which field of
// an instruction the Reg appears in, not by a tag on Reg itself.
type Reg uint32

// FirstVirtualReg is the first register number reserved for virtual
// registers; it lets physical register numbers 0-15 coexist with virtual
// ids in the same operand field (spec.md §3, "Virtual registers").
const FirstVirtualReg Reg = 16

func (r Reg) IsPhysical() bool { return r < FirstVirtualReg }
func (r Reg) IsVirtual() bool  { return r >= FirstVirtualReg }

// Physical integer register assignments fixed by the calling convention
// (spec.md §1, §6).
const (
	R0  Reg = 0
	R1  Reg = 1
	R2  Reg = 2
	R3  Reg = 3
	R4  Reg = 4
	R5  Reg = 5
	R6  Reg = 6
	R7  Reg = 7
	R8  Reg = 8
	R9  Reg = 9
	R10 Reg = 10
	R11 Reg = 11 // frame pointer
	R12 Reg = 12 // globals base
	R13 Reg = 13 // stack pointer
	R14 Reg = 14 // link register
	R15 Reg = 15 // program counter
)

const (
	FP  = R11
	GLB = R12
	SP  = R13
	LR  = R14
	PC  = R15
)

// Physical FP register assignments: f0-f3 are argument/return slots under
// both FPA and VFP-D (FirstVirtualReg applies independently within the FP
// class's own field).
const (
	F0 Reg = 0
	F1 Reg = 1
	F2 Reg = 2
	F3 Reg = 3
)

// IsFixedInt reports whether r names a physical integer register that must
// never be reassigned by the allocator.
func IsFixedInt(r Reg) bool {
	return r == SP || r == LR || r == PC || r == FP || r == GLB
}

// MaxIntPhysRegs is the number of physical integer registers including the
// fixed ones (spec.md §4.6: "16 physical regs").
const MaxIntPhysRegs = 16

// AllocatableIntRegs lists physical integer registers available to the
// allocator, in allocation-preference order: caller-saved scratch registers
// first, then the argument registers, which tend to free up quickly after
// the arguments they carry are consumed.
var AllocatableIntRegs = []Reg{R4, R5, R6, R7, R8, R9, R10, R0, R1, R2, R3}
