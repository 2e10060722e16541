package arm

// FPVariant abstracts over the FPA and VFP floating-point coprocessors
// (spec.md §4.5, §9: "FP variant as interface"). An ARM section picks one
// variant at construction and uses it for every FP register move, spill,
// and call-preserve sequence it emits, so the register allocator and the
// call-site emitter never need to know which coprocessor is targeted.
//
// In the original C source this is a struct of function pointers
// (arch/arm32/fpa_gen.h); Go expresses the same idea as an interface with
// two concrete implementations (FPA, VFP) selected once at program
// construction, rather than a vtable consulted on every call.
type FPVariant interface {
	Name() string

	// NumPhysRegs is 8 for FPA (f0-f7), 16 for VFP-D (d0-d15).
	NumPhysRegs() int

	// MaxTransferOffset is the largest byte offset this variant's single
	// transfer instruction can encode directly; spills beyond it need the
	// two-instruction scratch-register sequence.
	MaxTransferOffset() int32

	// TransferStride is the number of bytes a single spill slot occupies
	// (8 for a double under both variants in this backend).
	TransferStride() int32

	// MovReg returns an instruction that copies src into dest within this
	// FP register class.
	MovReg(dest, src Reg) Instr

	// StoreReg/LoadReg return a direct spill/reload instruction; offset
	// must be within MaxTransferOffset.
	StoreReg(base, src Reg, offset int32, preIndexWriteback bool) Instr
	LoadReg(base, dst Reg, offset int32, preIndexWriteback bool) Instr

	// PreserveSlot/RestoreSlot return a call-prologue placeholder
	// instruction predicated CondNV (spec.md §4.3 step 3): a reserved
	// store/load of reg that the call-site fixup pass (arm/fixup) later
	// either activates (predicate -> AL) or leaves dead.
	PreserveSlot(reg Reg, base Reg, offset int32) Instr
	RestoreSlot(reg Reg, base Reg, offset int32) Instr

	// SetCond rewrites the predicate of an instruction produced by
	// PreserveSlot/RestoreSlot in place.
	SetCond(instr *Instr, cond Cond)

	// Cond returns the current predicate of any instruction this variant
	// produces.
	Cond(instr *Instr) Cond

	// Preamble returns the one-time FP coprocessor setup sequence
	// (spec.md §6): FPA writes zero to its status register with WFS (it
	// does not read it first with RFS), VFP writes FPSCR.
	Preamble() []Instr

	// ArgRegs lists the physical FP registers used to pass the first four
	// real arguments, matching the integer r0-r3 convention.
	ArgRegs() []Reg
}
