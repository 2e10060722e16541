package emit

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/errcodes"
	"github.com/markryan/subtilis-armback/ir"
)

// Built-in sections are not produced by the rule matcher: they have no IR
// body, only a BuiltinKind tag on an otherwise-empty ir.Section (spec.md
// §4.6, "Built-in sections are emitted by hand"). BuildBuiltin dispatches to
// the per-builtin constructor and returns a populated *arm.Section ready for
// liveness/regalloc like any matcher-produced section.
func BuildBuiltin(prog *arm.Program, name string) *arm.Section {
	sec := prog.NewSection(name)
	switch name {
	case "IDIV":
		buildIDiv(sec)
	case "MEMCPY":
		buildMemcpy(sec)
	case "MEMSET":
		buildMemset(sec)
	case "MEMCMP":
		buildMemcmp(sec)
	case "COMPARE":
		buildCompare(sec)
	case "ALLOC":
		buildAlloc(sec)
	case "DEREF":
		buildDeref(sec)
	}
	return sec
}

// buildIDiv implements ARM2's software signed integer division: the core
// has no hardware divide, so both operands are first made positive, then
// quotient and remainder are produced by 32 rounds of shift-and-subtract
// over the dividend's magnitude (r0), each dividend bit entering the partial
// remainder through the carry flag and the divisor being added back when a
// subtraction goes negative (restoring division). Finally the quotient takes
// the sign of dividend EOR divisor and the remainder the dividend's sign.
// Grounded on original_source/arch/arm32/arm2_div.c; the round count is
// fixed at 32 (one per dividend bit) and must never be rounded down to 31,
// or the final quotient bit is silently dropped.
//
// Inputs: r0 = dividend, r1 = divisor. Outputs: r0 = quotient, r1 = remainder.
func buildIDiv(sec *arm.Section) {
	const (
		dividend  = arm.R0
		divisor   = arm.R1
		remainder = arm.R2
		quotient  = arm.R3
		counter   = arm.R4
		qsign     = arm.R5
		rsign     = arm.R6
	)

	// Guard against division by zero before doing any work.
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, divisor, arm.Imm2(0)))
	errLabel := sec.NewLabelID()
	sec.Append(arm.Br(arm.CondEQ, false, arm.LinkVoid, errLabel))

	// Record the result signs, then divide the operands' magnitudes.
	sec.Append(arm.DP(arm.DPEor, arm.CondAL, false, qsign, dividend, arm.RegOp2(divisor)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, true, rsign, 0, arm.RegOp2(dividend)))
	sec.Append(arm.DP(arm.DPRsb, arm.CondMI, false, dividend, dividend, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, divisor, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPRsb, arm.CondMI, false, divisor, divisor, arm.Imm2(0)))

	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, remainder, 0, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, quotient, 0, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, counter, 0, arm.Imm2(32)))

	loop := sec.NewLabelID()
	sec.AppendLabel(loop)

	// Shift the next dividend bit into the partial remainder.
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, true, dividend, 0, arm.ShiftImm2(dividend, arm.ShiftLSL, 1)))
	sec.Append(arm.DP(arm.DPAdc, arm.CondAL, false, remainder, remainder, arm.RegOp2(remainder)))

	// remainder -= divisor; if it didn't go negative, keep the subtraction
	// and set this round's quotient bit, else undo it.
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, remainder, remainder, arm.RegOp2(divisor)))
	sec.Append(arm.DP(arm.DPAdd, arm.CondCC, false, remainder, remainder, arm.RegOp2(divisor)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, quotient, 0, arm.ShiftImm2(quotient, arm.ShiftLSL, 1)))
	sec.Append(arm.DP(arm.DPOrr, arm.CondCS, false, quotient, quotient, arm.Imm2(1)))

	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, counter, counter, arm.Imm2(1)))
	sec.Append(arm.Br(arm.CondNE, false, arm.LinkVoid, loop))

	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, qsign, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPRsb, arm.CondMI, false, quotient, quotient, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, rsign, arm.Imm2(0)))
	sec.Append(arm.DP(arm.DPRsb, arm.CondMI, false, remainder, remainder, arm.Imm2(0)))

	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, dividend, 0, arm.RegOp2(quotient)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, divisor, 0, arm.RegOp2(remainder)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))

	sec.AppendLabel(errLabel)
	emitRaiseError(sec, errcodes.DivideByZero)
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))
}

// emitRaiseError stores code into the process-wide error-code word and sets
// the error flag (spec.md §7), both at the fixed offsets from GLB that
// compiler/preamble.go lays the globals region out to match.
func emitRaiseError(sec *arm.Section, code int) {
	tmp := sec.NewIntVReg()
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, tmp, 0, arm.Imm2(uint32(code))))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.GLB, Rd: tmp, OffsetImm: 0, // errorOffset in compiler/preamble.go
	}))
	flag := sec.NewIntVReg()
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, flag, 0, arm.Imm2(1)))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{
		Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true,
		Base: arm.GLB, Rd: flag, OffsetImm: 4, // eflagOffset in compiler/preamble.go
	}))
}

// buildMemcpy copies r2 bytes from r1 to r0, word-at-a-time with a trailing
// byte loop for the remainder. Grounded on
// original_source/common/vm_heap.c's block-copy helper.
func buildMemcpy(sec *arm.Section) {
	const (
		dst = arm.R0
		src = arm.R1
		n   = arm.R2
		tmp = arm.R3
	)
	wordLoop := sec.NewLabelID()
	byteLoop := sec.NewLabelID()
	done := sec.NewLabelID()

	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, n, arm.Imm2(4)))
	sec.Append(arm.Br(arm.CondLT, false, arm.LinkVoid, byteLoop))
	sec.AppendLabel(wordLoop)
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: false, Base: src, Rd: tmp, OffsetImm: 4}))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: false, Base: dst, Rd: tmp, OffsetImm: 4}))
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, n, n, arm.Imm2(4)))
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, n, arm.Imm2(4)))
	sec.Append(arm.Br(arm.CondGE, false, arm.LinkVoid, wordLoop))

	sec.AppendLabel(byteLoop)
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, n, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondEQ, false, arm.LinkVoid, done))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferByte, PreIndexed: false, Base: src, Rd: tmp, OffsetImm: 1}))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: false, Size: arm.TransferByte, PreIndexed: false, Base: dst, Rd: tmp, OffsetImm: 1}))
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, n, n, arm.Imm2(1)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, byteLoop))

	sec.AppendLabel(done)
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))
}

// buildMemset fills r2 bytes at r0 with the byte value in r1.
func buildMemset(sec *arm.Section) {
	const (
		dst = arm.R0
		val = arm.R1
		n   = arm.R2
	)
	loop := sec.NewLabelID()
	done := sec.NewLabelID()
	sec.AppendLabel(loop)
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, n, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondEQ, false, arm.LinkVoid, done))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: false, Size: arm.TransferByte, PreIndexed: false, Base: dst, Rd: val, OffsetImm: 1}))
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, n, n, arm.Imm2(1)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, loop))
	sec.AppendLabel(done)
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))
}

// buildMemcmp compares r2 bytes at r0 and r1, leaving -1/0/1 in r0.
func buildMemcmp(sec *arm.Section) {
	const (
		a   = arm.R0
		b   = arm.R1
		n   = arm.R2
		ca  = arm.R3
		cb  = arm.R4
	)
	loop := sec.NewLabelID()
	diff := sec.NewLabelID()
	equal := sec.NewLabelID()
	sec.AppendLabel(loop)
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, n, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondEQ, false, arm.LinkVoid, equal))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferByte, PreIndexed: false, Base: a, Rd: ca, OffsetImm: 1}))
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferByte, PreIndexed: false, Base: b, Rd: cb, OffsetImm: 1}))
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, ca, arm.RegOp2(cb)))
	sec.Append(arm.Br(arm.CondNE, false, arm.LinkVoid, diff))
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, true, n, n, arm.Imm2(1)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, loop))

	sec.AppendLabel(diff)
	sec.Append(arm.DP(arm.DPSub, arm.CondAL, false, a, ca, arm.RegOp2(cb)))
	sec.Append(arm.DP(arm.DPMov, arm.CondGT, false, a, 0, arm.Imm2(1)))
	sec.Append(arm.DP(arm.DPMvn, arm.CondLT, false, a, 0, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))

	sec.AppendLabel(equal)
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, a, 0, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))
}

// buildCompare implements the language-level three-way COMPARE built-in
// (string or array ordering), reusing MEMCMP's byte loop shape but taking
// the shorter length of the two operands first (r0=ptr a, r1=len a, r2=ptr
// b, r3=len b), matching the calling convention original_source's
// subtilis_compare routine uses for string comparison.
func buildCompare(sec *arm.Section) {
	const (
		pa, la = arm.R0, arm.R1
		pb, lb = arm.R2, arm.R3
		n      = arm.R4
	)
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, la, arm.RegOp2(lb)))
	sec.Append(arm.DP(arm.DPMov, arm.CondLE, false, n, 0, arm.RegOp2(la)))
	sec.Append(arm.DP(arm.DPMov, arm.CondGT, false, n, 0, arm.RegOp2(lb)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.RegOp2(pa)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R1, 0, arm.RegOp2(pb)))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R2, 0, arm.RegOp2(n)))
	sec.Append(arm.BrBuiltin(arm.CondAL, false, arm.LinkInt, ir.BuiltinMemcmp))
}

// buildAlloc implements the bump-pointer heap allocator: claim r0 bytes from
// the process heap, rounding up to a word, and raise OutOfMemory if the
// request would run into the stack guard region. Grounded on
// original_source/common/vm_heap.c's subtilis_vm_heap_alloc.
func buildAlloc(sec *arm.Section) {
	const (
		size = arm.R0
		ptr  = arm.R1
		next = arm.R2
	)
	ok := sec.NewLabelID()
	sec.Append(arm.DP(arm.DPAdd, arm.CondAL, false, size, size, arm.Imm2(3)))
	sec.Append(arm.DP(arm.DPBic, arm.CondAL, false, size, size, arm.Imm2(3)))

	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true, Base: arm.GLB, Rd: ptr, OffsetImm: 8}))
	sec.Append(arm.DP(arm.DPAdd, arm.CondAL, true, next, ptr, arm.RegOp2(size)))

	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: true, Size: arm.TransferWord, PreIndexed: true, Base: arm.GLB, Rd: arm.R3, OffsetImm: 12}))
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, next, arm.RegOp2(arm.R3)))
	sec.Append(arm.Br(arm.CondLS, false, arm.LinkVoid, ok))
	emitRaiseError(sec, errcodes.OutOfMemory)
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))

	sec.AppendLabel(ok)
	sec.Append(arm.SingleXfer(arm.SingleTransfer{Cond: arm.CondAL, Load: false, Size: arm.TransferWord, PreIndexed: true, Base: arm.GLB, Rd: next, OffsetImm: 8}))
	sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.RegOp2(ptr)))
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))
}

// buildDeref raises a BadSlot error if r0 is null, otherwise is a no-op:
// this backend's heap has no reference counting, so DEREF's only job is the
// null-pointer check original_source performs before every array/record
// access.
func buildDeref(sec *arm.Section) {
	ok := sec.NewLabelID()
	sec.Append(arm.DP(arm.DPCmp, arm.CondAL, true, 0, arm.R0, arm.Imm2(0)))
	sec.Append(arm.Br(arm.CondNE, false, arm.LinkVoid, ok))
	emitRaiseError(sec, errcodes.BadSlot)
	sec.AppendLabel(ok)
	sec.Append(arm.Br(arm.CondAL, false, arm.LinkVoid, -1))
}
