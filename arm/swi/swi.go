// Package swi is the symbolic-name to RISC OS SWI-number table the back end
// consults when lowering an OpSyscall op. It is deliberately partial: it
// covers the handful of OS_* calls a compiled language runtime typically
// needs (console I/O, memory claim, program termination) rather than the
// full RISC OS SWI namespace, matching the partial table the back end's
// ancestor carries for the same calls (original_source/backends/riscos/
// riscos_swi.c).
package swi

// Desc describes one SWI: its number and the register mask it writes on
// return (the in-mask is derived from the call site's argument count, not
// stored here, since most SWIs accept a variable prefix of their declared
// inputs).
type Desc struct {
	Number  uint32
	OutMask uint16
}

var table = map[string]Desc{
	"OS_WriteC":     {Number: 0x00},
	"OS_Write0":     {Number: 0x02},
	"OS_NewLine":    {Number: 0x03},
	"OS_ReadC":      {Number: 0x04, OutMask: 1},
	"OS_Exit":       {Number: 0x11},
	"OS_Mouse":      {Number: 0x1c, OutMask: 0x0f},
	"OS_Byte":       {Number: 0x06, OutMask: 0x06},
	"OS_Word":       {Number: 0x07},
	"OS_File":       {Number: 0x08, OutMask: 0x3e},
	"OS_Args":       {Number: 0x09, OutMask: 0x06},
	"OS_GBPB":       {Number: 0x0c, OutMask: 0x3e},
	"OS_Find":       {Number: 0x0d, OutMask: 0x01},
	"OS_ReadLine":   {Number: 0x0e, OutMask: 0x02},
	"OS_Control":    {Number: 0x0f},
	"OS_GetEnv":     {Number: 0x10, OutMask: 0x07},
	"OS_ConvertInteger4": {Number: 0xdc, OutMask: 0x06},
	"OS_ChangeEnvironment": {Number: 0x1e, OutMask: 0x0f},
	"OS_Claim":     {Number: 0x1f},
	"OS_Release":   {Number: 0x20},
	"OS_ReadMemMapInfo": {Number: 0x22, OutMask: 0x03},
	"OS_ReadUnsigned": {Number: 0x25, OutMask: 0x04},
}

// Lookup resolves a symbolic SWI name to its descriptor.
func Lookup(name string) (Desc, bool) {
	d, ok := table[name]
	return d, ok
}
