package fixup

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/liveness"
	"github.com/stretchr/testify/assert"
)

// TestRun_PatchesMaskToLiveRegistersOnly builds a call site where only R4 is
// live across the call and checks Run narrows the STM/LDM masks to exactly
// that register, then shifts the stack-argument offset by the preserved
// byte count.
func TestRun_PatchesMaskToLiveRegistersOnly(t *testing.T) {
	pool := arm.NewOpPool()
	sec := arm.NewSection("test", pool, arm.FPA{})

	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R4, 0, arm.Imm2(99)))
	argOp := sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.SP, Rd: arm.R3, OffsetImm: 0,
	}))
	stmOp := sec.Append(arm.BlockXfer(arm.BlockTransfer{
		Cond: arm.CondAL, Load: false, Base: arm.SP, Mode: arm.BlockDB, WriteBack: true,
	}))
	branchOp := sec.Append(arm.BrName(arm.CondAL, true, arm.LinkVoid, "somewhere"))
	ldmOp := sec.Append(arm.BlockXfer(arm.BlockTransfer{
		Cond: arm.CondAL, Load: true, Base: arm.SP, Mode: arm.BlockIA, WriteBack: true,
	}))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R5, 0, arm.RegOp2(arm.R4)))

	sec.CallSites = append(sec.CallSites, &arm.CallSite{
		StmOp: stmOp, LdmOp: ldmOp, BranchOp: branchOp,
		StackArgStores: []arm.OpIndex{argOp},
	})

	info := liveness.Analyze(sec, 32, 0)
	Run(sec, info)

	wantMask := uint16(1 << uint(arm.R4))
	assert.Equal(t, wantMask, sec.Pool.Get(stmOp).Instr.BT.Mask)
	assert.Equal(t, wantMask, sec.Pool.Get(ldmOp).Instr.BT.Mask)
	assert.Equal(t, uint32(4), sec.Pool.Get(argOp).Instr.ST.OffsetImm, "stack arg offset shifts by the one preserved register's 4 bytes")
}
