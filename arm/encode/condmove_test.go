package encode

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSection_CondMoveExpandsToTwoWords checks a fused arm.CondMove op
// occupies two words in the encoded stream (the CMP it carries, then the
// conditional MOV), and that the label immediately after it lands eight
// bytes past the CondMove's own address rather than four.
func TestSection_CondMoveExpandsToTwoWords(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})

	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.Imm2(0)))
	sec.Append(arm.Instr{Kind: arm.KindCondMove, CondMove: &arm.CondMove{
		Cond:    arm.CondLT,
		Compare: arm.DataProcessing{Op: arm.DPCmp, Cond: arm.CondAL, S: true, Rn: arm.R1, Op2: arm.RegOp2(arm.R2)},
		Move:    arm.DataProcessing{Op: arm.DPMov, Cond: arm.CondLT, Rd: arm.R0, Op2: arm.Imm2(1)},
	}})
	after := sec.NewLabelID()
	sec.AppendLabel(after)
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R3, 0, arm.Imm2(5)))

	result, err := Section(sec, ir.NewConstantPool())
	require.Nil(t, err)

	require.Len(t, result.Words, 4, "zero MOV, CMP, MOVcc, final MOV = 4 words")
	assert.Equal(t, uint32(0xE3A00000), result.Words[0])
	assert.Equal(t, uint32(0xE1510002), result.Words[1], "fused CMP r1, r2")
	assert.Equal(t, uint32(0xB3A00001), result.Words[2], "fused MOVLT r0, #1")
	assert.Equal(t, uint32(12), result.LabelOffset[after], "label after a CondMove sits 12 bytes in: 4 (zero mov) + 8 (condmove)")
}
