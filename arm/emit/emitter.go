// Package emit lowers one typed IR section into one ARM section: it holds
// the per-section state instruction selection needs (virtual register
// renumbering, label renumbering, call-site bookkeeping) and the handler
// functions the arm/rules matcher dispatches into.
//
// Grounded on original_source/arm_gen.h's per-opcode handler naming
// convention (subtilis_arm_gen_addii32, subtilis_arm_gen_if_lt, ...) and on
// the teacher's encoder package for the ARM instruction shapes each handler
// builds.
package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/errs"
	"github.com/markryan/subtilis-armback/ir"
)

// Emitter is the per-section lowering context threaded through every rule
// handler (spec.md §4.2: handlers "emit into the current ARM section").
type Emitter struct {
	Sec   *arm.Section
	IRSec *ir.Section
	Prog  *arm.Program

	intRegs  map[uint32]arm.Reg
	realRegs map[uint32]arm.Reg
	labels   map[int]int

	// Err accumulates the first hard failure a handler hits (e.g. an
	// immediate that genuinely cannot be represented at this stage); handlers
	// keep running afterwards, but later failures are not recorded, and
	// compiler.Compile bails out as soon as it sees one.
	Err *errs.Error
}

func NewEmitter(sec *arm.Section, irSec *ir.Section, prog *arm.Program) *Emitter {
	return &Emitter{
		Sec:      sec,
		IRSec:    irSec,
		Prog:     prog,
		intRegs:  make(map[uint32]arm.Reg, irSec.IntRegCount()),
		realRegs: make(map[uint32]arm.Reg, irSec.RealRegCount()),
		labels:   make(map[int]int),
	}
}

// IntReg maps an IR-local integer virtual register to this section's ARM
// virtual register, allocating one on first use.
func (e *Emitter) IntReg(v uint32) arm.Reg {
	if r, ok := e.intRegs[v]; ok {
		return r
	}
	r := e.Sec.NewIntVReg()
	e.intRegs[v] = r
	return r
}

// RealReg is IntReg's floating point counterpart.
func (e *Emitter) RealReg(v uint32) arm.Reg {
	if r, ok := e.realRegs[v]; ok {
		return r
	}
	r := e.Sec.NewRealVReg()
	e.realRegs[v] = r
	return r
}

// Label maps an IR-local label id to this section's ARM label id, allocating
// one on first reference so forward references work without a pre-pass.
func (e *Emitter) Label(l int) int {
	if id, ok := e.labels[l]; ok {
		return id
	}
	id := e.Sec.NewLabelID()
	e.labels[l] = id
	return id
}

func (e *Emitter) fail(kind errs.Kind, format string, args ...any) {
	if e.Err == nil {
		e.Err = errs.Errorf(kind, format, args...)
	}
}

// IntOperand resolves an IR int-class operand to an ARM register, emitting
// a MOV into a fresh virtual register first if it is an immediate (most
// data-processing handlers fold an immediate into Operand2 directly instead
// of calling this; it exists for the handlers - multiply, shifts - whose ARM
// encoding has no immediate form).
func (e *Emitter) IntOperand(o ir.Operand) arm.Reg {
	switch o.Kind {
	case ir.OperandIntReg:
		return e.IntReg(o.Reg)
	case ir.OperandImmInt:
		r := e.Sec.NewIntVReg()
		e.Sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, r, 0, arm.Imm2(uint32(o.Int))))
		return r
	default:
		e.fail(errs.KindAssertion, "operand %v is not an integer value", o.Kind)
		return 0
	}
}

func (e *Emitter) RealOperand(o ir.Operand) arm.Reg {
	switch o.Kind {
	case ir.OperandRealReg:
		return e.RealReg(o.Reg)
	default:
		e.fail(errs.KindAssertion, "operand %v is not a real register", o.Kind)
		return 0
	}
}
