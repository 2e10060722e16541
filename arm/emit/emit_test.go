package emit

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmitter() *Emitter {
	irSec := ir.NewSection("test", ir.Type{})
	prog := arm.NewProgram(ir.NewStringPool(), ir.NewConstantPool(), ir.Settings{}, arm.FPA{})
	sec := prog.NewSection("test")
	return NewEmitter(sec, irSec, prog)
}

// TestIntReg_MemoizesPerIRRegister checks the same IR virtual register always
// maps to the same ARM virtual register, and distinct IR registers never
// collide.
func TestIntReg_MemoizesPerIRRegister(t *testing.T) {
	e := newTestEmitter()

	a1 := e.IntReg(3)
	a2 := e.IntReg(3)
	b1 := e.IntReg(7)

	assert.Equal(t, a1, a2, "repeated lookups of the same IR register must return the same ARM register")
	assert.NotEqual(t, a1, b1, "distinct IR registers must not collide")
}

// TestRealReg_MemoizesIndependentlyOfIntReg checks the int and real register
// maps are kept separate, so an IR register number reused across both
// classes does not collide.
func TestRealReg_MemoizesIndependentlyOfIntReg(t *testing.T) {
	e := newTestEmitter()

	i := e.IntReg(0)
	r := e.RealReg(0)

	assert.NotEqual(t, i, r, "int and real register 0 must be allocated from distinct ARM vreg pools")
	assert.Equal(t, r, e.RealReg(0), "repeated lookup must return the same real register")
}

// TestLabel_AllocatesOnFirstReferenceAndMemoizes checks Label supports
// forward references: the first call allocates, every later call for the
// same IR label id returns that same ARM label id.
func TestLabel_AllocatesOnFirstReferenceAndMemoizes(t *testing.T) {
	e := newTestEmitter()

	l1 := e.Label(5)
	l2 := e.Label(5)
	l3 := e.Label(6)

	assert.Equal(t, l1, l2)
	assert.NotEqual(t, l1, l3)
}

// TestIntOperand_FoldsImmediateIntoFreshRegister checks an immediate operand
// is materialised via a MOV into a brand new virtual register, leaving the
// register-operand path untouched.
func TestIntOperand_FoldsImmediateIntoFreshRegister(t *testing.T) {
	e := newTestEmitter()

	r := e.IntOperand(ir.IntImmOperand(42))

	require.Equal(t, 1, e.Sec.Len(), "materialising an immediate must emit exactly one MOV")
	op := e.Sec.Pool.Get(e.Sec.Head)
	assert.Equal(t, arm.KindDataProcessing, op.Instr.Kind)
	assert.Equal(t, arm.DPMov, op.Instr.DP.Op)
	assert.Equal(t, r, op.Instr.DP.Rd)
	assert.Equal(t, uint32(42), op.Instr.DP.Op2.Imm)

	reg := e.IntOperand(ir.IntRegOperand(9))
	assert.Equal(t, 1, e.Sec.Len(), "a register operand must not emit anything")
	assert.Equal(t, e.IntReg(9), reg)
}

// TestArithRules_AddI32 drives the add_i32 rule end to end: two IR registers
// in, one ADD instruction out with freshly mapped ARM registers.
func TestArithRules_AddI32(t *testing.T) {
	e := newTestEmitter()
	m := rules.NewMatcher(arithRules)

	ops := []ir.Op{{
		Opcode: ir.OpAddI32,
		Dest:   ir.IntRegOperand(0),
		Src1:   ir.IntRegOperand(1),
		Src2:   ir.IntRegOperand(2),
	}}
	m.Run(e, ops)

	require.Equal(t, 1, e.Sec.Len())
	op := e.Sec.Pool.Get(e.Sec.Head)
	assert.Equal(t, arm.KindDataProcessing, op.Instr.Kind)
	assert.Equal(t, arm.DPAdd, op.Instr.DP.Op)
	assert.Equal(t, e.IntReg(0), op.Instr.DP.Rd)
	assert.Equal(t, e.IntReg(1), op.Instr.DP.Rn)
	assert.Equal(t, e.IntReg(2), op.Instr.DP.Op2.Reg)
}

// TestArithRules_AddII32 drives the immediate-operand add rule and checks the
// immediate is folded straight into Operand2 rather than materialised into a
// register first.
func TestArithRules_AddII32(t *testing.T) {
	e := newTestEmitter()
	m := rules.NewMatcher(arithRules)

	ops := []ir.Op{{
		Opcode: ir.OpAddII32,
		Dest:   ir.IntRegOperand(0),
		Src1:   ir.IntRegOperand(1),
		Src2:   ir.IntImmOperand(10),
	}}
	m.Run(e, ops)

	require.Equal(t, 1, e.Sec.Len(), "dpImm folds the immediate without a separate MOV")
	op := e.Sec.Pool.Get(e.Sec.Head)
	assert.Equal(t, arm.DPAdd, op.Instr.DP.Op)
	assert.Equal(t, uint32(10), op.Instr.DP.Op2.Imm)
}

// TestArithRules_MovII32 checks the plain immediate-move rule emits a single
// MOV with the immediate folded into Operand2.
func TestArithRules_MovII32(t *testing.T) {
	e := newTestEmitter()
	m := rules.NewMatcher(arithRules)

	ops := []ir.Op{{Opcode: ir.OpMovII32, Dest: ir.IntRegOperand(0), Src1: ir.IntImmOperand(7)}}
	m.Run(e, ops)

	require.Equal(t, 1, e.Sec.Len())
	op := e.Sec.Pool.Get(e.Sec.Head)
	assert.Equal(t, arm.DPMov, op.Instr.DP.Op)
	assert.Equal(t, uint32(7), op.Instr.DP.Op2.Imm)
}
