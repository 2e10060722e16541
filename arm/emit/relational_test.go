package emit

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var controlTestMatcher = rules.NewMatcher(controlRules)

// TestCondJumpless_RegisterCompare checks a standalone If* (no following
// JumpC) lowers to an unconditional zeroing MOV followed by one fused
// arm.CondMove bundling the CMP and the conditional MOVcc that sets the
// result to 1 when the comparison holds.
func TestCondJumpless_RegisterCompare(t *testing.T) {
	e := newTestEmitter()

	ops := []ir.Op{{
		Opcode: ir.OpIfLtI32,
		Dest:   ir.IntRegOperand(0),
		Src1:   ir.IntRegOperand(1),
		Src2:   ir.IntRegOperand(2),
	}}
	controlTestMatcher.Run(e, ops)

	require.Equal(t, 2, e.Sec.Len())

	zero := e.Sec.Pool.Get(e.Sec.Head)
	require.Equal(t, arm.KindDataProcessing, zero.Instr.Kind)
	assert.Equal(t, arm.DPMov, zero.Instr.DP.Op)
	assert.Equal(t, arm.CondAL, zero.Instr.DP.Cond)
	assert.Equal(t, uint32(0), zero.Instr.DP.Op2.Imm)
	dest := zero.Instr.DP.Rd

	condMoveOp := e.Sec.Pool.Get(zero.Next)
	require.Equal(t, arm.KindCondMove, condMoveOp.Instr.Kind)
	cm := condMoveOp.Instr.CondMove
	assert.Equal(t, arm.CondLT, cm.Cond)
	assert.Equal(t, arm.DPCmp, cm.Compare.Op)
	assert.Equal(t, arm.CondAL, cm.Compare.Cond)
	assert.True(t, cm.Compare.S)
	assert.Equal(t, e.IntReg(1), cm.Compare.Rn)
	assert.Equal(t, e.IntReg(2), cm.Compare.Op2.Reg)
	assert.Equal(t, arm.DPMov, cm.Move.Op)
	assert.Equal(t, arm.CondLT, cm.Move.Cond)
	assert.Equal(t, dest, cm.Move.Rd)
	assert.Equal(t, uint32(1), cm.Move.Op2.Imm)
}

// TestCondJumpless_ImmediateCompare checks the immediate-operand variant
// folds the comparison's right-hand side into the fused CMP's Operand2
// instead of materialising it into a register first.
func TestCondJumpless_ImmediateCompare(t *testing.T) {
	e := newTestEmitter()

	ops := []ir.Op{{
		Opcode: ir.OpIfEqII32,
		Dest:   ir.IntRegOperand(0),
		Src1:   ir.IntRegOperand(1),
		Src2:   ir.IntImmOperand(9),
	}}
	controlTestMatcher.Run(e, ops)

	require.Equal(t, 2, e.Sec.Len())
	condMoveOp := e.Sec.Pool.Get(e.Sec.Pool.Get(e.Sec.Head).Next)
	cm := condMoveOp.Instr.CondMove
	assert.True(t, cm.Compare.Op2.IsImm)
	assert.Equal(t, uint32(9), cm.Compare.Op2.Imm)
	assert.Equal(t, arm.CondEQ, cm.Cond)
}
