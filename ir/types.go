// Package ir defines the typed, section-partitioned intermediate
// representation consumed by the ARM back end. The frontend (lexer, parser,
// symbol table) builds this representation; everything here is read-only by
// the time the back end sees it.
package ir

// ValueType is the type of an IR value: a virtual register, a call argument
// or result, or a section's return type.
type ValueType int

const (
	Void ValueType = iota
	Int32
	Real
	IntArray
	RealArray
	StringT
)

// Opcode identifies an IR operation.
type Opcode int

const (
	// Integer arithmetic, register and immediate forms.
	OpAddI32 Opcode = iota
	OpAddII32
	OpSubI32
	OpSubII32
	OpRSubII32
	OpMulI32
	OpMulII32
	OpDivI32  // built-in call in disguise; lowered via OpCallBuiltin(IDIV)
	OpAndI32
	OpAndII32
	OpOrI32
	OpOrII32
	OpEorI32
	OpEorII32
	OpMovI32
	OpMovII32
	OpNotI32

	// Real arithmetic.
	OpAddReal
	OpSubReal
	OpRSubReal
	OpMulReal
	OpDivReal
	OpMovReal
	OpMovIReal // immediate real load (constant pool)

	// Conversions.
	OpIntToReal
	OpRealToInt

	// Memory: offset from a base register (locals, globals, arrays).
	OpLoadOI32
	OpStoreOI32
	OpLoadOReal
	OpStoreOReal

	// Control flow.
	OpLabel
	OpJump
	OpJumpC // jump on condition computed by a preceding If* op

	// Relational set-condition ops. Each is immediately followed by an
	// OpJumpC in well-formed IR (the rule matcher's compound rules fuse the
	// pair back into a single CMP+branch).
	OpIfLtI32
	OpIfLteI32
	OpIfGtI32
	OpIfGteI32
	OpIfEqI32
	OpIfNeqI32
	OpIfLtII32
	OpIfLteII32
	OpIfGtII32
	OpIfGteII32
	OpIfEqII32
	OpIfNeqII32
	OpIfLtReal
	OpIfLteReal
	OpIfGtReal
	OpIfGteReal
	OpIfEqReal
	OpIfNeqReal

	// Calls and returns.
	OpCall
	OpCallBuiltin
	OpRet
	OpRetI32
	OpRetReal

	// Escape hatch into the RISC OS SWI namespace; the SWI number and
	// register masks are resolved by arm/swi, not by the frontend.
	OpSyscall

	// Runtime checkpoint: return from the section if the error flag is
	// pending. Emitted at statement boundaries when Settings.HandleEscapes.
	OpTestEsc
)

// BuiltinKind names a backend built-in routine: a function the language
// lowers to that has no native ARM opcode. Built-in sections are emitted by
// hand (arm/emit) rather than produced by the rule matcher.
type BuiltinKind int

const (
	NotBuiltin BuiltinKind = iota
	BuiltinIDiv
	BuiltinMemcpy
	BuiltinMemset
	BuiltinMemcmp
	BuiltinCompare
	BuiltinAlloc
	BuiltinDeref
)

func (b BuiltinKind) String() string {
	switch b {
	case BuiltinIDiv:
		return "IDIV"
	case BuiltinMemcpy:
		return "MEMCPY"
	case BuiltinMemset:
		return "MEMSET"
	case BuiltinMemcmp:
		return "MEMCMP"
	case BuiltinCompare:
		return "COMPARE"
	case BuiltinAlloc:
		return "ALLOC"
	case BuiltinDeref:
		return "DEREF"
	default:
		return "NONE"
	}
}

// OperandKind discriminates the Operand union.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandIntReg
	OperandRealReg
	OperandImmInt
	OperandImmReal
	OperandLabel
)

// Operand is one typed IR operand: a virtual register number, an integer or
// real immediate, or a label id. Virtual register ids are section-local and
// are NOT yet physical register numbers; that mapping happens in arm/regalloc.
type Operand struct {
	Kind  OperandKind
	Reg   uint32
	Int   int64
	Real  float64
	Label int
}

func IntRegOperand(r uint32) Operand  { return Operand{Kind: OperandIntReg, Reg: r} }
func RealRegOperand(r uint32) Operand { return Operand{Kind: OperandRealReg, Reg: r} }
func IntImmOperand(v int64) Operand   { return Operand{Kind: OperandImmInt, Int: v} }
func RealImmOperand(v float64) Operand {
	return Operand{Kind: OperandImmReal, Real: v}
}
func LabelOperand(l int) Operand { return Operand{Kind: OperandLabel, Label: l} }

// Type is a section's signature: parameter types in order, and a return
// type (Void for pure procedures).
type Type struct {
	Params []ValueType
	Return ValueType
}
