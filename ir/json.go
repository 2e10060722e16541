package ir

import "encoding/json"

// programDump is the on-disk shape of a Program: the textual IR format
// cmd/subtilisc's dump-ir subcommand prints and compile reads back in.
// It exists separately from Program/Section themselves because the pools'
// backing slices and each section's register/label counters are internal
// bookkeeping, not part of the IR a frontend actually produces.
type programDump struct {
	Sections  []sectionDump `json:"sections"`
	Strings   []string      `json:"strings"`
	Constants []Constant    `json:"constants"`
	Settings  Settings      `json:"settings"`
}

type sectionDump struct {
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Ops         []Op        `json:"ops"`
	Locals      int         `json:"locals"`
	ErrorOffset int         `json:"error_offset"`
	EflagOffset int         `json:"eflag_offset"`
	Ftype       BuiltinKind `json:"ftype"`
}

// Dump renders p as indented JSON.
func (p *Program) Dump() ([]byte, error) {
	d := programDump{
		Strings:   append([]string(nil), p.Strings.values...),
		Constants: append([]Constant(nil), p.Constants.blobs...),
		Settings:  p.Settings,
	}
	for _, s := range p.Sections {
		d.Sections = append(d.Sections, sectionDump{
			Name:        s.Name,
			Type:        s.Type,
			Ops:         s.Ops,
			Locals:      s.Locals,
			ErrorOffset: s.ErrorOffset,
			EflagOffset: s.EflagOffset,
			Ftype:       s.Ftype,
		})
	}
	return json.MarshalIndent(d, "", "  ")
}

// Load parses data, in the format Dump produces, into a Program. Each
// section's register/label counters are reconstructed from the highest id
// its own Ops actually reference, rather than persisted directly, so a
// freshly loaded section's NewIntReg/NewRealReg/NewLabel continue numbering
// from where the dump left off instead of colliding with ids already in
// use.
func Load(data []byte) (*Program, error) {
	var d programDump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}

	prog := NewProgram()
	for _, s := range d.Strings {
		prog.Strings.Intern(s)
	}
	for _, c := range d.Constants {
		prog.Constants.add(c)
	}
	prog.Settings = d.Settings

	for _, sd := range d.Sections {
		sec := NewSection(sd.Name, sd.Type)
		sec.Ops = sd.Ops
		sec.Locals = sd.Locals
		sec.ErrorOffset = sd.ErrorOffset
		sec.EflagOffset = sd.EflagOffset
		sec.Ftype = sd.Ftype
		sec.regCounter, sec.fregCounter, sec.labelCounter = countUsage(sec.Ops)
		prog.AddSection(sec)
	}
	return prog, nil
}

// countUsage scans ops for the highest int/real virtual register and label
// id referenced.
func countUsage(ops []Op) (intRegs uint32, realRegs uint32, labels int) {
	bump := func(o Operand) {
		switch o.Kind {
		case OperandIntReg:
			if o.Reg+1 > intRegs {
				intRegs = o.Reg + 1
			}
		case OperandRealReg:
			if o.Reg+1 > realRegs {
				realRegs = o.Reg + 1
			}
		case OperandLabel:
			if o.Label+1 > labels {
				labels = o.Label + 1
			}
		}
	}
	for _, op := range ops {
		bump(op.Dest)
		bump(op.Src1)
		bump(op.Src2)
		if op.Opcode == OpLabel && op.LabelID+1 > labels {
			labels = op.LabelID + 1
		}
		if op.Call != nil {
			for _, a := range op.Call.IntArgs {
				bump(a)
			}
			for _, a := range op.Call.RealArgs {
				bump(a)
			}
			if op.Call.Result != nil {
				bump(*op.Call.Result)
			}
		}
		if op.Syscall != nil {
			for _, a := range op.Syscall.InRegs {
				bump(a)
			}
			for _, a := range op.Syscall.OutRegs {
				bump(a)
			}
		}
	}
	return
}
