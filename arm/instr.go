package arm

import "github.com/markryan/subtilis-armback/ir"

// Operand2 is the second, possibly shifted, operand of a data-processing
// instruction: an 8-bit-rotatable immediate, a plain register, or a
// register shifted by an immediate or by another register (spec.md §3).
type Operand2 struct {
	IsImm bool
	Imm   uint32 // unrotated 32-bit value; the encoder finds the rotation

	Reg         Reg
	Shift       ShiftType
	ShiftIsReg  bool
	ShiftAmount uint32 // 0-31, meaningful when !ShiftIsReg
	ShiftReg    Reg    // meaningful when ShiftIsReg
}

func Imm2(v uint32) Operand2   { return Operand2{IsImm: true, Imm: v} }
func RegOp2(r Reg) Operand2    { return Operand2{Reg: r} }
func ShiftImm2(r Reg, st ShiftType, amount uint32) Operand2 {
	return Operand2{Reg: r, Shift: st, ShiftAmount: amount}
}
func ShiftReg2(r Reg, st ShiftType, by Reg) Operand2 {
	return Operand2{Reg: r, Shift: st, ShiftIsReg: true, ShiftReg: by}
}

// DPOp is a data-processing opcode (spec.md §3).
type DPOp uint8

const (
	DPAnd DPOp = iota
	DPEor
	DPSub
	DPRsb
	DPAdd
	DPAdc
	DPSbc
	DPRsc
	DPTst
	DPTeq
	DPCmp
	DPCmn
	DPOrr
	DPMov
	DPBic
	DPMvn
)

// DataProcessing covers ADD/SUB/RSB/AND/ORR/EOR/MOV/MVN/CMP/TST/TEQ/ADC/
// SBC/BIC.
type DataProcessing struct {
	Op   DPOp
	Cond Cond
	S    bool // status-setting
	Rd   Reg
	Rn   Reg // first operand; unused by MOV/MVN
	Op2  Operand2
}

// Multiply covers MUL and MLA.
type Multiply struct {
	Cond       Cond
	Accumulate bool // true => MLA, false => MUL
	S          bool
	Rd, Rm, Rs Reg
	Rn         Reg // accumulate operand, meaningful iff Accumulate
}

// TransferSize distinguishes word vs byte single-data transfers.
type TransferSize uint8

const (
	TransferWord TransferSize = iota
	TransferByte
)

// SingleTransfer covers LDR/STR (word or byte).
type SingleTransfer struct {
	Cond       Cond
	Load       bool
	Size       TransferSize
	PreIndexed bool
	WriteBack  bool
	Subtract   bool
	Base       Reg
	Rd         Reg
	OffsetIsReg bool
	OffsetImm   uint32
	OffsetReg   Reg
	OffsetShift       ShiftType
	OffsetShiftAmount uint32
}

// BlockMode is the raw addressing direction of a block transfer; the
// FD/ED/FA/EA aliases are resolved to one of these plus Load by the caller
// (spec.md §3).
type BlockMode uint8

const (
	BlockIA BlockMode = iota
	BlockIB
	BlockDA
	BlockDB
)

// BlockTransfer covers LDM/STM.
type BlockTransfer struct {
	Cond      Cond
	Load      bool
	Base      Reg
	Mask      uint16 // bit i set => physical register i is in the list
	Mode      BlockMode
	WriteBack bool
}

// LDMStackAlias resolves the FD/ED/FA/EA mnemonic aliases used by the call
// prologue/epilogue emitters to a raw BlockMode, given whether this is a
// load or a store (stacks grow down in this ABI, so FD on a push is STMDB
// and FD on a pop is LDMIA).
func LDMStackAlias(load bool) BlockMode {
	if load {
		return BlockIA // LDMFD
	}
	return BlockDB // STMFD
}

// LinkType distinguishes the calling convention a BL target expects: void,
// integer-returning, or real-returning (spec.md §3).
type LinkType uint8

const (
	LinkVoid LinkType = iota
	LinkInt
	LinkReal
)

// BranchTarget distinguishes what a Branch's target field actually names,
// since a local label id, a section index and a builtin kind are all small
// ints that would otherwise collide in the same namespace once a call
// crosses a section boundary (spec.md §4.8, "Linking").
type BranchTarget uint8

const (
	// TargetLabel: Label holds a label id scoped to this section, resolved
	// by arm/encode against this section's own label table. -1 is a
	// standing placeholder for "this section's epilogue", patched to a
	// real label id by the compiler driver before encoding.
	TargetLabel BranchTarget = iota
	// TargetSection: Section holds an index into the program's section
	// list, resolved by the linker once every section has an address.
	TargetSection
	// TargetName: Name holds the name of another arm.Section (a built-in
	// routine, or a fixed image section like the cleanup coda) resolved by
	// the linker by name rather than by frontend-assigned index, since
	// neither built-ins nor the coda are sections the frontend knows about.
	TargetName
)

// Branch covers B and BL. Target says which of Label, Section or Name is
// live; the encoder and linker resolve whichever it is to Offset
// (spec.md §4.8).
type Branch struct {
	Cond     Cond
	Link     bool
	LinkType LinkType
	Target   BranchTarget
	Label    int
	Section  int
	Name     string
	Offset   int32 // signed word offset from PC+8; valid once resolved
}

// SWI covers the SWI/SVC instruction.
type SWI struct {
	Cond    Cond
	Number  uint32 // 24-bit SWI number
	InMask  uint16
	OutMask uint16
	// ErrorGenerating mirrors bit 0x20000 of Number (spec.md §6); kept
	// alongside Number for readability at call sites.
	ErrorGenerating bool
}

// LDRC loads a word from the constant pool via a PC-relative LDR, resolved
// to a constant-island offset by the encoder.
type LDRC struct {
	Cond       Cond
	Rd         Reg
	ConstantID int
	Offset     int32 // PC-relative byte offset to the pool slot, resolved by arm/encode
}

// ADR computes the address of a label via a PC-relative ADD/SUB, resolved
// by the encoder.
type ADR struct {
	Cond  Cond
	Rd    Reg
	Label int
}

// FPConstLoad loads a floating point register from the program's constant
// pool. Its instruction family is not fixed at emission time: the encoder
// picks LDFC for FPA and a PC-relative VLDR for VFP (spec.md §4.7, "FP
// constants route through the shared constant pool regardless of
// coprocessor"), which keeps arm/emit free of a per-variant branch here.
type FPConstLoad struct {
	Cond       Cond
	Rd         Reg
	ConstantID int
	Offset     int32 // PC-relative byte offset to the pool slot, resolved by arm/encode
}

// CondMove is a synthesized fused compare+move: two back-to-back
// data-processing instructions (a CMP followed by a conditional MOV) that
// the rule matcher emits as one handler so the peephole pass can see them
// as a unit. It always decomposes to two real ARM instructions at encode
// time; it is never itself encoded.
type CondMove struct {
	Cond    Cond // the condition under which Move executes
	Compare DataProcessing
	Move    DataProcessing
}

// FPAOp enumerates FPA dyadic/monadic data opcodes.
type FPAOp uint8

const (
	FPAAdf FPAOp = iota
	FPASuf
	FPARsf
	FPAMuf
	FPADvf
	FPARdf
	FPASin
	FPACos
	FPATan
	FPAAsn
	FPAAcs
	FPAAtn
	FPASqt
	FPALog
	FPALgn
	FPAAbs
	FPAExp
	FPAPow
	FPAMvf // FPA move, used for register-to-register moves and negation via MNF
	FPAMnf
	FPACmf
	FPACnf
)

// FPAPrecision is the FPA operand size in bytes.
type FPAPrecision uint8

const (
	FPASingle   FPAPrecision = 4
	FPADouble   FPAPrecision = 8
	FPAExtended FPAPrecision = 12
)

// FPARounding is the FPA rounding mode.
type FPARounding uint8

const (
	FPARoundNearest FPARounding = iota
	FPARoundPlus
	FPARoundMinus
	FPARoundZero
)

// FPAOperand2 is an FPA dyadic/compare instruction's second operand: either
// a constant-pool index (FPA has its own small constant ROM for 0/1/2/..,
// but large constants still route through LDFC) or an FPA register.
type FPAOperand2 struct {
	IsConstant bool
	ConstIndex int // index into the FPA immediate constant table (0-7)
	Reg        Reg
}

// FPADyadic covers ADF/SUF/RSF/MUF/DVF/RDF and the monadic functions
// (SIN/COS/... /ABS/MVF/MNF), which share the same encoding shape with Rn
// unused.
type FPADyadic struct {
	Op        FPAOp
	Cond      Cond
	Precision FPAPrecision
	Rounding  FPARounding
	Rd        Reg
	Rn        Reg // unused (zero) for monadic ops
	Op2       FPAOperand2
}

// FPATransfer covers LDF/STF.
type FPATransfer struct {
	Cond        Cond
	Load        bool
	Precision   FPAPrecision
	Rd          Reg
	Base        Reg
	PreIndexed  bool
	WriteBack   bool
	Subtract    bool
	OffsetWords uint32 // 0-255, scaled by 4 at encode time
}

// FPAIntTransfer covers FLT (int->float) and FIX (float->int).
type FPAIntTransfer struct {
	ToFloat   bool
	Cond      Cond
	Rounding  FPARounding
	Precision FPAPrecision
	FReg      Reg
	IntReg    Reg
}

// FPACompare covers CMF/CNF.
type FPACompare struct {
	Negate bool // CNF vs CMF
	Cond   Cond
	Rn     Reg
	Op2    FPAOperand2
}

// FPALoadConst covers LDFC: load an FPA register from the constant pool.
type FPALoadConst struct {
	Cond       Cond
	Precision  FPAPrecision
	Rd         Reg
	ConstantID int
}

// FPASysReg covers RFS (read FP status) and WFS (write FP status).
type FPASysReg struct {
	Cond  Cond
	ToFPA bool // true => WFS, false => RFS
	Rd    Reg  // integer register
}

// VFPOp enumerates double-precision VFP data opcodes.
type VFPOp uint8

const (
	VFPAdd VFPOp = iota
	VFPSub
	VFPMul
	VFPDiv
	VFPNeg
	VFPAbs
	VFPSqrt
	VFPMov
)

// VFPDyadic covers FADD/FSUB/FMUL/FDIV and the monadic FNEG/FABS/FSQRT/FCPY
// (Dn unused for monadic ops).
type VFPDyadic struct {
	Op   VFPOp
	Cond Cond
	Dd   Reg
	Dn   Reg
	Dm   Reg
}

// VFPCompare covers FCMP (and FCMPE, treated identically here).
type VFPCompare struct {
	Cond Cond
	Dd   Reg
	Dm   Reg
}

// VFPTransfer covers double-precision VFP loads/stores (VLDR/VSTR).
type VFPTransfer struct {
	Cond        Cond
	Load        bool
	Dd          Reg
	Base        Reg
	Subtract    bool
	OffsetWords uint32
}

// VFPConvert covers int<->double conversions (FSITOD/FTOSID-style).
type VFPConvert struct {
	ToFloat bool
	Cond    Cond
	Dd      Reg
	Rd      Reg
}

// VFPSysReg covers FMRX/FMXR moves to/from FPSCR.
type VFPSysReg struct {
	Cond  Cond
	ToVFP bool
	Rd    Reg
}

// Kind discriminates the Instr tagged union.
type Kind uint8

const (
	KindDataProcessing Kind = iota
	KindMultiply
	KindSingleTransfer
	KindBlockTransfer
	KindBranch
	KindSWI
	KindLDRC
	KindADR
	KindCondMove
	KindFPADyadic
	KindFPATransfer
	KindFPAIntTransfer
	KindFPACompare
	KindFPALoadConst
	KindFPASysReg
	KindVFPDyadic
	KindVFPCompare
	KindVFPTransfer
	KindVFPConvert
	KindVFPSysReg
	KindFPConstLoad
	// KindRawWord is a literal 32-bit data word spliced into the
	// instruction stream, grounded on the teacher assembler's `.word`
	// directive: used for the one link-patched heap-start word the image
	// preamble reserves immediately after its entry `MOV pc,pc` (spec.md
	// §6).
	KindRawWord
)

// Instr is the tagged union over every instruction family this backend
// emits. Exactly one pointer field is non-nil, selected by Kind.
type Instr struct {
	Kind Kind

	DP       *DataProcessing
	Mul      *Multiply
	ST       *SingleTransfer
	BT       *BlockTransfer
	Br       *Branch
	SWI      *SWI
	LDRC     *LDRC
	ADR      *ADR
	CondMove *CondMove
	FPADy    *FPADyadic
	FPATr    *FPATransfer
	FPAIntTr *FPAIntTransfer
	FPACmp   *FPACompare
	FPALdc   *FPALoadConst
	FPASys   *FPASysReg
	VFPDy    *VFPDyadic
	VFPCmp   *VFPCompare
	VFPTr    *VFPTransfer
	VFPConv  *VFPConvert
	VFPSys   *VFPSysReg
	FPConst  *FPConstLoad
	Raw      *RawWord
}

// RawWord is a literal data word; Value is written to the image verbatim.
type RawWord struct {
	Value uint32
}

// Word builds a raw data word, patched in place after encoding by setting
// Value on the returned Instr's Raw field once its final content is known
// (the linker does this for the preamble's heap-start word).
func Word(v uint32) Instr {
	return Instr{Kind: KindRawWord, Raw: &RawWord{Value: v}}
}

func DP(op DPOp, cond Cond, s bool, rd, rn Reg, op2 Operand2) Instr {
	return Instr{Kind: KindDataProcessing, DP: &DataProcessing{Op: op, Cond: cond, S: s, Rd: rd, Rn: rn, Op2: op2}}
}

func Mul(accumulate, s bool, cond Cond, rd, rm, rs, rn Reg) Instr {
	return Instr{Kind: KindMultiply, Mul: &Multiply{Cond: cond, Accumulate: accumulate, S: s, Rd: rd, Rm: rm, Rs: rs, Rn: rn}}
}

func SingleXfer(st SingleTransfer) Instr { return Instr{Kind: KindSingleTransfer, ST: &st} }

func BlockXfer(bt BlockTransfer) Instr { return Instr{Kind: KindBlockTransfer, BT: &bt} }

// Br builds a branch to a local label id (or the -1 epilogue placeholder).
func Br(cond Cond, link bool, lt LinkType, label int) Instr {
	return Instr{Kind: KindBranch, Br: &Branch{Cond: cond, Link: link, LinkType: lt, Target: TargetLabel, Label: label}}
}

// BrSection builds a BL to another section, resolved by the linker.
func BrSection(cond Cond, link bool, lt LinkType, section int) Instr {
	return Instr{Kind: KindBranch, Br: &Branch{Cond: cond, Link: link, LinkType: lt, Target: TargetSection, Section: section}}
}

// BrName builds a branch to another arm.Section by name, resolved by the
// linker (built-in routines, the cleanup coda).
func BrName(cond Cond, link bool, lt LinkType, name string) Instr {
	return Instr{Kind: KindBranch, Br: &Branch{Cond: cond, Link: link, LinkType: lt, Target: TargetName, Name: name}}
}

// BrBuiltin builds a BL to a builtin routine, resolved by the linker.
func BrBuiltin(cond Cond, link bool, lt LinkType, b ir.BuiltinKind) Instr {
	return BrName(cond, link, lt, b.String())
}

func Swi(s SWI) Instr { return Instr{Kind: KindSWI, SWI: &s} }
