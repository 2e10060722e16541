package swi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	d, ok := Lookup("OS_WriteC")
	assert.True(t, ok)
	assert.Equal(t, uint32(0x00), d.Number)
	assert.Zero(t, d.OutMask)

	d, ok = Lookup("OS_File")
	assert.True(t, ok)
	assert.Equal(t, uint32(0x08), d.Number)
	assert.Equal(t, uint16(0x3e), d.OutMask)

	_, ok = Lookup("OS_NoSuchCall")
	assert.False(t, ok)
}
