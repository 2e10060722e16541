package regalloc

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/liveness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllocate_NoSpillNeeded gives every virtual register its own physical
// register and checks the allocator never emits a spill.
func TestAllocate_NoSpillNeeded(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})
	v1 := sec.NewIntVReg()
	v2 := sec.NewIntVReg()
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, v1, 0, arm.Imm2(1)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, v2, 0, arm.Imm2(2)))
	sec.Append(arm.DP(arm.DPAdd, arm.CondAL, false, arm.R0, v1, arm.RegOp2(v2)))

	info := liveness.Analyze(sec, 32, 0)
	result, err := Allocate(sec, []arm.Reg{arm.R4, arm.R5}, info, false, arm.FPA{})
	require.Nil(t, err)

	assert.Equal(t, arm.R4, result.Assignment[v1])
	assert.Equal(t, arm.R5, result.Assignment[v2])
	assert.Zero(t, result.SpillBytes)
	assert.Equal(t, 3, sec.Len(), "no spill/reload ops should have been inserted")
}

// TestAllocate_SpillsWhenRegisterPressureExceedsSupply forces both virtual
// registers through the single physical register R4, one at a time, so each
// handoff must spill the previous holder and reload it when it is needed
// again.
func TestAllocate_SpillsWhenRegisterPressureExceedsSupply(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})
	v1 := sec.NewIntVReg()
	v2 := sec.NewIntVReg()
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, v1, 0, arm.Imm2(1)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, v2, 0, arm.Imm2(2)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.RegOp2(v2)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R1, 0, arm.RegOp2(v1)))

	info := liveness.Analyze(sec, 32, 0)
	result, err := Allocate(sec, []arm.Reg{arm.R4}, info, false, arm.FPA{})
	require.Nil(t, err)

	assert.Equal(t, arm.R4, result.Assignment[v1])
	assert.Equal(t, arm.R4, result.Assignment[v2])
	assert.Equal(t, 8, result.SpillBytes, "v1 and v2 each need one 4-byte slot")
	assert.Equal(t, 7, sec.Len(), "4 original ops plus 3 inserted spill/reload ops")
}
