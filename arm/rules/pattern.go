// Package rules implements the instruction-selection matcher: an ordered
// table of patterns over the typed IR, each paired with a handler that lowers
// the matched IR ops into one ARM section. Matching is longest-match-first:
// multi-op (compound) patterns are tried before any single-op pattern gets a
// chance, so a relational-compare followed by a conditional jump fuses into
// one CMP+Bcc instead of emitting a redundant flag-setting move in between.
package rules

import "github.com/markryan/subtilis-armback/ir"

// OperandKind constrains what an operand slot may bind to. KindAny accepts
// any operand; the zero value, KindNone, leaves the slot unconstrained in
// an OpPattern (OpPattern.matches skips it).
type OperandKind int

const (
	KindNone OperandKind = iota
	KindAny
	KindIntReg
	KindRealReg
	KindImmInt
	KindImmReal
	KindLabel
)

func (k OperandKind) matches(o ir.Operand) bool {
	switch k {
	case KindNone:
		return o.Kind == ir.OperandNone
	case KindAny:
		return true
	case KindIntReg:
		return o.Kind == ir.OperandIntReg
	case KindRealReg:
		return o.Kind == ir.OperandRealReg
	case KindImmInt:
		return o.Kind == ir.OperandImmInt
	case KindImmReal:
		return o.Kind == ir.OperandImmReal
	case KindLabel:
		return o.Kind == ir.OperandLabel
	default:
		return false
	}
}

// OpPattern constrains a single ir.Op: its opcode, plus per-slot operand
// kind constraints. A zero-value OpPattern field (KindNone) means "don't
// care", i.e. whatever the opcode naturally produces there.
type OpPattern struct {
	Opcode         ir.Opcode
	Dest, Src1, Src2 OperandKind
}

func (p OpPattern) matches(op ir.Op) bool {
	if op.Opcode != p.Opcode {
		return false
	}
	if p.Dest != KindNone && !p.Dest.matches(op.Dest) {
		return false
	}
	if p.Src1 != KindNone && !p.Src1.matches(op.Src1) {
		return false
	}
	if p.Src2 != KindNone && !p.Src2.matches(op.Src2) {
		return false
	}
	return true
}

// Op builds an OpPattern that matches opcode regardless of operand shape;
// callers set its Dest/Src1/Src2 fields to constrain operands as needed.
func Op(opcode ir.Opcode) OpPattern { return OpPattern{Opcode: opcode} }
