package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/rules"
	"github.com/markryan/subtilis-armback/ir"
)

// baseReg resolves the base register an OpLoadO*/OpStoreO* op's Src1 names.
// The frontend always supplies an int register here (locals use FP, globals
// use GLB, array bases are already loaded into a virtual register); Src2
// carries the byte offset as an immediate.
func baseReg(em *Emitter, o ir.Operand) arm.Reg { return em.IntReg(o.Reg) }

func loadOI32(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.IntReg(op.Dest.Reg)
	base := baseReg(em, op.Src1)
	em.Sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true,
		Base: base, Rd: dest, OffsetImm: uint32(op.Src2.Int),
	}))
}

func storeOI32(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	src := em.IntOperand(op.Dest)
	base := baseReg(em, op.Src1)
	em.Sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: base, Rd: src, OffsetImm: uint32(op.Src2.Int),
	}))
}

func loadOReal(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	dest := em.RealReg(op.Dest.Reg)
	base := baseReg(em, op.Src1)
	em.Sec.Append(em.Prog.FP.LoadReg(base, dest, int32(op.Src2.Int), true))
}

func storeOReal(e any, ops []ir.Op) {
	em := self(e)
	op := ops[0]
	src := em.RealOperand(op.Dest)
	base := baseReg(em, op.Src1)
	em.Sec.Append(em.Prog.FP.StoreReg(base, src, int32(op.Src2.Int), true))
}

var memoryRules = []rules.Rule{
	{Name: "loadoi32", Pattern: []rules.OpPattern{rules.Op(ir.OpLoadOI32)}, Handler: loadOI32},
	{Name: "storeoi32", Pattern: []rules.OpPattern{rules.Op(ir.OpStoreOI32)}, Handler: storeOI32},
	{Name: "loadoreal", Pattern: []rules.OpPattern{rules.Op(ir.OpLoadOReal)}, Handler: loadOReal},
	{Name: "storeoreal", Pattern: []rules.OpPattern{rules.Op(ir.OpStoreOReal)}, Handler: storeOReal},
}
