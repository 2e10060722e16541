package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringPool_InternDeduplicates(t *testing.T) {
	p := NewStringPool()

	a := p.Intern("hello")
	b := p.Intern("world")
	c := p.Intern("hello")

	assert.Equal(t, a, c, "interning the same string twice must return the same id")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "hello", p.Get(a))
	assert.Equal(t, "world", p.Get(b))
}

func TestConstantPool_AddDeduplicatesIdenticalBlobs(t *testing.T) {
	p := NewConstantPool()

	i1 := p.AddInt32(42)
	i2 := p.AddInt32(42)
	r1 := p.AddReal64(3.5)

	assert.Equal(t, i1, i2, "identical int32 constants must share one slot")
	assert.NotEqual(t, i1, r1)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, ConstInt32, p.Get(i1).Kind)
	assert.Equal(t, ConstReal64, p.Get(r1).Kind)
	assert.Equal(t, 3.5, p.Get(r1).Real)
}

func TestSection_RegisterAndLabelCountersIncrement(t *testing.T) {
	sec := NewSection("test", Type{Return: Int32})

	assert.Equal(t, uint32(0), sec.NewIntReg())
	assert.Equal(t, uint32(1), sec.NewIntReg())
	assert.Equal(t, uint32(0), sec.NewRealReg(), "real and int registers are numbered independently")
	assert.Equal(t, 0, sec.NewLabel())
	assert.Equal(t, 1, sec.NewLabel())

	assert.Equal(t, 2, sec.IntRegCount())
	assert.Equal(t, 1, sec.RealRegCount())
	assert.False(t, sec.IsVoid())
}

func TestSection_IsVoidForProcedures(t *testing.T) {
	sec := NewSection("proc", Type{Return: Void})
	assert.True(t, sec.IsVoid())
}

func TestProgram_AddSectionAndEntry(t *testing.T) {
	prog := NewProgram()
	entry := NewSection("entry", Type{})
	other := NewSection("other", Type{})

	idx0 := prog.AddSection(entry)
	idx1 := prog.AddSection(other)

	assert.Equal(t, 0, idx0)
	assert.Equal(t, 1, idx1)
	assert.Same(t, entry, prog.Entry())
}

// TestDumpLoad_RoundTripsSectionsAndPools checks a Program survives a
// Dump/Load round trip: every section's ops, locals and pool contents come
// back unchanged, and Load reconstructs each section's register/label
// counters from the highest id actually referenced in its ops rather than
// persisting them directly.
func TestDumpLoad_RoundTripsSectionsAndPools(t *testing.T) {
	prog := NewProgram()
	prog.Strings.Intern("hello")
	prog.Constants.AddInt32(7)

	sec := NewSection("main", Type{Return: Int32})
	sec.Locals = 16
	sec.ErrorOffset = 4
	sec.EflagOffset = 8
	sec.Append(Op{Opcode: OpMovII32, Dest: IntRegOperand(2), Src1: IntImmOperand(5)})
	sec.Append(Op{Opcode: OpLabel, LabelID: 3})
	prog.AddSection(sec)

	data, err := prog.Dump()
	require.NoError(t, err)

	loaded, err := Load(data)
	require.NoError(t, err)

	require.Len(t, loaded.Sections, 1)
	ls := loaded.Sections[0]
	assert.Equal(t, "main", ls.Name)
	assert.Equal(t, 16, ls.Locals)
	assert.Equal(t, 4, ls.ErrorOffset)
	assert.Equal(t, 8, ls.EflagOffset)
	require.Len(t, ls.Ops, 2)
	assert.Equal(t, uint32(2), ls.Ops[0].Dest.Reg)

	assert.Equal(t, 1, loaded.Strings.Len())
	assert.Equal(t, "hello", loaded.Strings.Get(0))
	assert.Equal(t, 1, loaded.Constants.Len())

	assert.Equal(t, uint32(3), ls.NewIntReg(), "counter must resume after the highest referenced int register (2)")
	assert.Equal(t, 4, ls.NewLabel(), "counter must resume after the highest referenced label id (3)")
}
