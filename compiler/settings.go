package compiler

import (
	"github.com/markryan/subtilis-armback/config"
	"github.com/markryan/subtilis-armback/ir"
)

// Settings controls everything about a compilation that is not itself part
// of the IR: which FP coprocessor the target has, where the image loads,
// and how big its fixed memory regions are (spec.md §6, "Produced for
// assembler"/"settings"). IR.Settings (HandleEscapes, IgnoreGraphicsErrors,
// CheckMemLeaks) rides along unchanged; everything else here is a
// back-end/linker concern the frontend never sees.
type Settings struct {
	IR ir.Settings

	// FPVariant names which coprocessor Compile targets: "FPA" or "VFP".
	FPVariant string

	// EntryAddress is the fixed RISC OS load/entry address (spec.md §6:
	// "default 0x8000").
	EntryAddress uint32

	// GlobalsSize is the byte size of the statically allocated globals
	// region addressed via r12 (the error word and escape flag live at the
	// low end of it, per spec.md §6's error channel).
	GlobalsSize uint32

	// HeapGuardSize is the byte gap the preamble reserves between the top
	// of the heap's initial free block and the stack pointer at program
	// start (spec.md §6: "stack-top minus 8192").
	HeapGuardSize uint32
}

// DefaultSettings matches spec.md §6's defaults.
func DefaultSettings() Settings {
	return Settings{
		FPVariant:     "VFP",
		EntryAddress:  0x8000,
		GlobalsSize:   4096,
		HeapGuardSize: 8192,
	}
}

// SettingsFromConfig builds a Settings from a loaded config.Config's Compile
// section, letting a CLI front-end read settings from the same TOML file
// the teacher loads emulator settings from.
func SettingsFromConfig(c *config.Config) Settings {
	return Settings{
		IR: ir.Settings{
			HandleEscapes:        c.Compile.HandleEscapes,
			IgnoreGraphicsErrors: c.Compile.IgnoreGraphicsErrors,
			CheckMemLeaks:        c.Compile.CheckMemLeaks,
		},
		FPVariant:     c.Compile.FPVariant,
		EntryAddress:  c.Compile.EntryAddress,
		GlobalsSize:   c.Compile.GlobalsSize,
		HeapGuardSize: c.Compile.HeapGuardSize,
	}
}
