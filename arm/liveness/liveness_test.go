package liveness

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyze_StraightLine walks a three-instruction straight-line section
// (two defs feeding one use) and checks the live-out set recorded for each
// instruction, backward from an empty exit set.
func TestAnalyze_StraightLine(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})
	v1 := sec.NewIntVReg()
	v2 := sec.NewIntVReg()

	op0 := sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, v1, 0, arm.Imm2(1)))
	op1 := sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, v2, 0, arm.Imm2(2)))
	op2 := sec.Append(arm.DP(arm.DPAdd, arm.CondAL, false, arm.R0, v1, arm.RegOp2(v2)))

	info := Analyze(sec, 32, 0)

	require.Contains(t, info.ByOp, op0)
	require.Contains(t, info.ByOp, op1)
	require.Contains(t, info.ByOp, op2)

	assert.ElementsMatch(t, []int{int(v1)}, info.ByOp[op0].Slice(), "v1 must stay live across op1 for op2's use")
	assert.ElementsMatch(t, []int{int(v1), int(v2)}, info.ByOp[op1].Slice(), "both operands of op2 live immediately before it")
	assert.True(t, info.ByOp[op2].Empty(), "nothing is live after the section's last use")
}

// TestAnalyze_BranchLoop checks that a label targeted by a backward
// conditional branch creates a two-subsection loop whose live-in set at the
// label includes the loop-carried register.
func TestAnalyze_BranchLoop(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("loop", pool, arm.FPA{})
	v1 := sec.NewIntVReg()
	label := sec.NewLabelID()

	sec.AppendLabel(label)
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, v1, v1, arm.Imm2(1)))
	sec.Append(arm.Br(arm.CondNE, false, arm.LinkVoid, label))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.RegOp2(v1)))

	info := Analyze(sec, 32, 0)

	require.Len(t, info.Subsections, 2, "a label plus a following branch splits the section in two")
	assert.True(t, info.Subsections[0].LiveIn.IsSet(int(v1)), "v1 must be live on entry to the loop body")
}
