package peephole

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_RemovesNoopMov checks a MOV Rd, Rd is dropped but a genuine
// register-to-register move survives.
func TestRun_RemovesNoopMov(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.RegOp2(arm.R0)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R1, 0, arm.RegOp2(arm.R2)))

	Run(sec)

	require.Equal(t, 1, sec.Len())
	op := sec.Pool.Get(sec.Head)
	assert.Equal(t, arm.R1, op.Instr.DP.Rd)
	assert.Equal(t, arm.R2, op.Instr.DP.Op2.Reg)
}

// TestRun_RemovesRedundantReload checks a store immediately followed by a
// reload of the exact same register/slot is dropped, but an intervening
// offset keeps both around.
func TestRun_RemovesRedundantReload(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})
	store := func(off uint32) arm.Instr {
		return arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true, Base: arm.FP, Rd: arm.R4, OffsetImm: off})
	}
	load := func(off uint32) arm.Instr {
		return arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true, Base: arm.FP, Rd: arm.R4, OffsetImm: off})
	}
	sec.Append(store(0))
	sec.Append(load(0)) // redundant: reloads exactly what was just stored
	sec.Append(store(4))
	sec.Append(load(8)) // different slot: not redundant, both stay

	Run(sec)

	assert.Equal(t, 3, sec.Len())
}
