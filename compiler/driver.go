// Package compiler is the driver that sequences the back end's passes over
// one ir.Program and produces a RISC OS Absolute executable (spec.md §4.1:
// "wiring A through I together"). It owns nothing about instruction
// selection, allocation or encoding itself; it calls into arm/emit,
// arm/liveness, arm/regalloc, arm/fixup, arm/peephole and arm/encode in the
// fixed order spec.md's data-flow diagram describes, plus the image-level
// concerns (preamble, coda, linking, builtin on-demand construction) none
// of those passes know about individually.
package compiler

import (
	"bytes"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/arm/emit"
	"github.com/markryan/subtilis-armback/arm/encode"
	"github.com/markryan/subtilis-armback/arm/fixup"
	"github.com/markryan/subtilis-armback/arm/liveness"
	"github.com/markryan/subtilis-armback/arm/peephole"
	"github.com/markryan/subtilis-armback/arm/regalloc"
	"github.com/markryan/subtilis-armback/errs"
	"github.com/markryan/subtilis-armback/ir"
)

// Compile runs every pass over prog and returns the final image bytes, or
// the first hard failure any pass reported.
func Compile(prog *ir.Program, settings Settings) ([]byte, *errs.Error) {
	fp := fpVariant(settings.FPVariant)
	arena := arm.NewProgram(prog.Strings, prog.Constants, prog.Settings, fp)
	defer arena.Release()

	table := emit.Table()

	builtins := requiredBuiltins(prog)

	// Frontend sections keep the same index as in prog.Sections so
	// ir.CallOp.Target can be used directly as arm.BrSection's Section
	// field; builtin sections are appended afterward and resolved by name.
	armSecs := make([]*arm.Section, len(prog.Sections))
	for i, irSec := range prog.Sections {
		irSec.ErrorOffset = errorOffset
		irSec.EflagOffset = eflagOffset

		sec := arena.NewSection(sectionName(i, irSec))
		em := emit.NewEmitter(sec, irSec, arena)
		table.Run(em, irSec.Ops)
		if em.Err != nil {
			return nil, em.Err
		}

		epilogue := sec.NewLabelID()
		for _, idx := range sec.RetSites {
			op := sec.Pool.Get(idx)
			if op.Kind == arm.OpKindInstr && op.Instr.Kind == arm.KindBranch {
				op.Instr.Br.Label = epilogue
			}
		}
		sec.AppendLabel(epilogue)

		// Section 0 is the program's entry point: nothing BL'd into it, so
		// falling off its end has to transfer into the coda rather than
		// return via LR. Every other section was entered by BL from a call
		// site and must hand control back to its caller.
		if i == 0 {
			sec.Append(arm.BrName(arm.CondAL, false, arm.LinkVoid, "__coda"))
		} else {
			sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.PC, 0, arm.RegOp2(arm.LR)))
		}

		if err := finishSection(sec, irSec.IntRegCount(), irSec.RealRegCount(), fp); err != nil {
			return nil, err
		}
		armSecs[i] = sec
	}

	builtinSecs := make(map[ir.BuiltinKind]*arm.Section, len(builtins))
	for _, b := range builtins {
		sec := emit.BuildBuiltin(arena, b.String())
		epilogue := sec.NewLabelID()
		sec.Each(func(_ arm.OpIndex, op *arm.Op) {
			if op.Kind == arm.OpKindInstr && op.Instr.Kind == arm.KindBranch &&
				op.Instr.Br.Target == arm.TargetLabel && op.Instr.Br.Label == -1 {
				op.Instr.Br.Label = epilogue
			}
		})
		sec.AppendLabel(epilogue)
		sec.Append(arm.DP(arm.DPMov, arm.CondAL, false, arm.PC, 0, arm.RegOp2(arm.LR)))
		if err := finishSection(sec, 0, 0, fp); err != nil {
			return nil, err
		}
		builtinSecs[b] = sec
	}

	preSec, heapWordIdx, err := buildPreamble(arena, settings, 0)
	if err != nil {
		return nil, err
	}
	peephole.Run(preSec)

	codaSec, err := buildCoda(arena, settings)
	if err != nil {
		return nil, err
	}
	peephole.Run(codaSec)

	layouts, erro := encodeAll(preSec, armSecs, builtinSecs, codaSec, prog.Constants)
	if erro != nil {
		return nil, erro
	}

	words, erro := encode.Link(layouts)
	if erro != nil {
		return nil, erro
	}

	totalBytes := uint32(len(words) * 4)
	words[heapWordIdx] = settings.EntryAddress + totalBytes

	var buf bytes.Buffer
	if err := encode.WriteAbsolute(&buf, words); err != nil {
		return nil, errs.Errorf(errs.KindAssertion, "writing image: %v", err)
	}
	return buf.Bytes(), nil
}

// encodeAll encodes the preamble, every frontend section (in index order, so
// frontend section i lands at position i+1 of the returned slice, right
// after the preamble, where encode.Link's arm.TargetSection resolution looks
// for it), every builtin routine actually referenced, and the coda,
// accumulating each one's final byte offset as it goes so every Layout's
// CodeBase/PoolBase is already correct by the time encode.Link patches
// cross-section branches.
func encodeAll(preSec *arm.Section, armSecs []*arm.Section, builtinSecs map[ir.BuiltinKind]*arm.Section, codaSec *arm.Section, constants *ir.ConstantPool) ([]encode.Layout, *errs.Error) {
	var layouts []encode.Layout
	var offset uint32

	add := func(sec *arm.Section) *errs.Error {
		result, err := encode.Section(sec, constants)
		if err != nil {
			return err
		}
		codeBase := offset
		poolBase := codeBase + uint32(len(result.Words)*4)
		layouts = append(layouts, encode.Layout{
			Name:     sec.Name,
			CodeBase: codeBase,
			PoolBase: poolBase,
			Result:   result,
		})
		offset = poolBase + uint32(len(result.PoolWords)*4)
		return nil
	}

	if err := add(preSec); err != nil {
		return nil, err
	}
	for _, sec := range armSecs {
		if err := add(sec); err != nil {
			return nil, err
		}
	}
	for _, b := range builtinSecs {
		if err := add(b); err != nil {
			return nil, err
		}
	}
	if err := add(codaSec); err != nil {
		return nil, err
	}

	return layouts, nil
}

func sectionName(i int, sec *ir.Section) string {
	if sec.Name != "" {
		return sec.Name
	}
	return "__sec" + itoa(i)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	p := len(buf)
	for n > 0 {
		p--
		buf[p] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[p:])
}

// finishSection runs every post-emit pass over sec in spec order: liveness,
// two independent register-class allocations, call-site fixup, then
// peephole.
func finishSection(sec *arm.Section, intCount, realCount int, fp arm.FPVariant) *errs.Error {
	info := liveness.Analyze(sec, intCount, realCount)

	if _, err := regalloc.Allocate(sec, arm.AllocatableIntRegs, info, false, fp); err != nil {
		return err
	}
	realRegs := make([]arm.Reg, fp.NumPhysRegs())
	for i := range realRegs {
		realRegs[i] = arm.Reg(i)
	}
	if _, err := regalloc.Allocate(sec, realRegs, info, true, fp); err != nil {
		return err
	}

	fixup.Run(sec, info)
	peephole.Run(sec)
	return nil
}

// requiredBuiltins scans every section's ops for OpCallBuiltin/OpCall
// references to a built-in routine and returns the distinct set, in a
// stable order, so BuildBuiltin is only invoked once per routine actually
// used (spec.md §4.6: built-in sections are emitted on demand, not
// unconditionally).
func requiredBuiltins(prog *ir.Program) []ir.BuiltinKind {
	seen := map[ir.BuiltinKind]bool{}
	var out []ir.BuiltinKind
	mark := func(b ir.BuiltinKind) {
		if b != ir.NotBuiltin && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	for _, sec := range prog.Sections {
		for _, op := range sec.Ops {
			if op.Call != nil {
				mark(op.Call.Builtin)
			}
		}
	}
	// COMPARE always tail-calls MEMCMP; make sure it is built whenever
	// COMPARE is, even though the frontend never references MEMCMP itself.
	needsMemcmp := false
	for _, b := range out {
		if b == ir.BuiltinCompare {
			needsMemcmp = true
		}
	}
	if needsMemcmp {
		mark(ir.BuiltinMemcmp)
	}
	return out
}

func fpVariant(name string) arm.FPVariant {
	if name == "FPA" {
		return arm.FPA{}
	}
	return arm.VFP{}
}
