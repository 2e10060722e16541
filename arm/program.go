package arm

import "github.com/markryan/subtilis-armback/ir"

// Program is the assembler-facing output of the back end (spec.md §6,
// "Produced for assembler"): a set of ARM sections sharing one op-pool and
// the frontend's string/constant pools, plus per-compilation settings.
type Program struct {
	Pool     *OpPool
	Sections []*Section

	Strings   *ir.StringPool
	Constants *ir.ConstantPool
	Settings  ir.Settings

	FP FPVariant
}

func NewProgram(strings *ir.StringPool, constants *ir.ConstantPool, settings ir.Settings, fp FPVariant) *Program {
	return &Program{
		Pool:      NewOpPool(),
		Strings:   strings,
		Constants: constants,
		Settings:  settings,
		FP:        fp,
	}
}

func (p *Program) NewSection(name string) *Section {
	s := NewSection(name, p.Pool, p.FP)
	p.Sections = append(p.Sections, s)
	return s
}

// Release frees every op owned by this program in one step.
func (p *Program) Release() { p.Pool.Release() }
