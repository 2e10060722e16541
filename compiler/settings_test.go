package compiler

import (
	"testing"

	"github.com/markryan/subtilis-armback/config"
	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "VFP", s.FPVariant)
	assert.Equal(t, uint32(0x8000), s.EntryAddress)
	assert.Equal(t, uint32(4096), s.GlobalsSize)
	assert.Equal(t, uint32(8192), s.HeapGuardSize)
}

func TestSettingsFromConfig_CopiesCompileSection(t *testing.T) {
	var c config.Config
	c.Compile.HandleEscapes = true
	c.Compile.IgnoreGraphicsErrors = true
	c.Compile.CheckMemLeaks = true
	c.Compile.FPVariant = "FPA"
	c.Compile.EntryAddress = 0x10000
	c.Compile.GlobalsSize = 2048
	c.Compile.HeapGuardSize = 4096

	s := SettingsFromConfig(&c)

	assert.True(t, s.IR.HandleEscapes)
	assert.True(t, s.IR.IgnoreGraphicsErrors)
	assert.True(t, s.IR.CheckMemLeaks)
	assert.Equal(t, "FPA", s.FPVariant)
	assert.Equal(t, uint32(0x10000), s.EntryAddress)
	assert.Equal(t, uint32(2048), s.GlobalsSize)
	assert.Equal(t, uint32(4096), s.HeapGuardSize)
}
