package arm

// FPA implements FPVariant for the Floating Point Accelerator coprocessor:
// 8 registers (f0-f7), 80-bit extended internal format, byte-swapped
// doubles in memory. Grounded on original_source/arch/arm32/fpa_gen.c and
// fpa_gen.h's function-pointer table.
type FPA struct{}

var _ FPVariant = FPA{}

func (FPA) Name() string          { return "FPA" }
func (FPA) NumPhysRegs() int      { return 8 }
func (FPA) MaxTransferOffset() int32 { return 1020 } // LDF/STF encode a 0-255 word offset
func (FPA) TransferStride() int32    { return 8 }

func (FPA) MovReg(dest, src Reg) Instr {
	return Instr{Kind: KindFPADyadic, FPADy: &FPADyadic{
		Op: FPAMvf, Cond: CondAL, Precision: FPADouble, Rd: dest,
		Op2: FPAOperand2{Reg: src},
	}}
}

func (FPA) StoreReg(base, src Reg, offset int32, preIndexWriteback bool) Instr {
	return fpaTransfer(false, src, base, offset, preIndexWriteback, CondAL)
}

func (FPA) LoadReg(base, dst Reg, offset int32, preIndexWriteback bool) Instr {
	return fpaTransfer(true, dst, base, offset, preIndexWriteback, CondAL)
}

func (FPA) PreserveSlot(reg Reg, base Reg, offset int32) Instr {
	return fpaTransfer(false, reg, base, offset, true, CondNV)
}

func (FPA) RestoreSlot(reg Reg, base Reg, offset int32) Instr {
	return fpaTransfer(true, reg, base, offset, true, CondNV)
}

func fpaTransfer(load bool, rd, base Reg, offset int32, preIndexWriteback bool, cond Cond) Instr {
	subtract := offset < 0
	if subtract {
		offset = -offset
	}
	return Instr{Kind: KindFPATransfer, FPATr: &FPATransfer{
		Cond: cond, Load: load, Precision: FPADouble, Rd: rd, Base: base,
		PreIndexed: preIndexWriteback, WriteBack: preIndexWriteback,
		Subtract: subtract, OffsetWords: uint32(offset / 4),
	}}
}

func (FPA) SetCond(instr *Instr, cond Cond) {
	if instr.Kind == KindFPATransfer {
		instr.FPATr.Cond = cond
	}
}

func (FPA) Cond(instr *Instr) Cond {
	if instr.Kind == KindFPATransfer {
		return instr.FPATr.Cond
	}
	return CondAL
}

func (FPA) Preamble() []Instr {
	// Clear the FPA system status register's exception-trap bits via
	// WFS r0 after zeroing r0, so the backend never faults on the first
	// floating point instruction it emits (original_source's RISC OS
	// preamble does the equivalent RFS/WFS pair).
	return []Instr{
		DP(DPMov, CondAL, false, R0, R0, Imm2(0)),
		{Kind: KindFPASysReg, FPASys: &FPASysReg{Cond: CondAL, ToFPA: true, Rd: R0}},
	}
}

func (FPA) ArgRegs() []Reg { return []Reg{F0, F1, F2, F3} }
