package arm

// VFP implements FPVariant for the Vector Floating Point coprocessor in
// double-precision (D-register) mode: 16 registers (d0-d15), IEEE 754
// double precision. Grounded on original_source/arch/arm32/vfp_alloc.c.
type VFP struct{}

var _ FPVariant = VFP{}

func (VFP) Name() string            { return "VFP" }
func (VFP) NumPhysRegs() int        { return 16 }
func (VFP) MaxTransferOffset() int32 { return 1020 } // VLDR/VSTR: 8-bit word offset x4
func (VFP) TransferStride() int32    { return 8 }

func (VFP) MovReg(dest, src Reg) Instr {
	return Instr{Kind: KindVFPDyadic, VFPDy: &VFPDyadic{Op: VFPMov, Cond: CondAL, Dd: dest, Dm: src}}
}

func (VFP) StoreReg(base, src Reg, offset int32, _ bool) Instr {
	return vfpTransfer(false, src, base, offset, CondAL)
}

func (VFP) LoadReg(base, dst Reg, offset int32, _ bool) Instr {
	return vfpTransfer(true, dst, base, offset, CondAL)
}

func (VFP) PreserveSlot(reg Reg, base Reg, offset int32) Instr {
	return vfpTransfer(false, reg, base, offset, CondNV)
}

func (VFP) RestoreSlot(reg Reg, base Reg, offset int32) Instr {
	return vfpTransfer(true, reg, base, offset, CondNV)
}

func vfpTransfer(load bool, dd, base Reg, offset int32, cond Cond) Instr {
	subtract := offset < 0
	if subtract {
		offset = -offset
	}
	return Instr{Kind: KindVFPTransfer, VFPTr: &VFPTransfer{
		Cond: cond, Load: load, Dd: dd, Base: base, Subtract: subtract,
		OffsetWords: uint32(offset / 4),
	}}
}

func (VFP) SetCond(instr *Instr, cond Cond) {
	if instr.Kind == KindVFPTransfer {
		instr.VFPTr.Cond = cond
	}
}

func (VFP) Cond(instr *Instr) Cond {
	if instr.Kind == KindVFPTransfer {
		return instr.VFPTr.Cond
	}
	return CondAL
}

func (VFP) Preamble() []Instr {
	// Write FPSCR to clear the exception-trap enable bits so default NaN
	// / flush-to-zero behaviour never traps to an undefined-instruction
	// handler RISC OS doesn't install.
	return []Instr{
		DP(DPMov, CondAL, false, R0, R0, Imm2(0)),
		{Kind: KindVFPSysReg, VFPSys: &VFPSysReg{Cond: CondAL, ToVFP: true, Rd: R0}},
	}
}

func (VFP) ArgRegs() []Reg { return []Reg{F0, F1, F2, F3} }
