// Package errcodes carries the runtime error-code constants a compiled
// program's generated code raises (division by zero, out of memory, bad
// array index, and so on), verbatim from
// original_source/common/error_codes.h. These are runtime values baked into
// generated code, not Go-level errors - see package errs for those.
package errcodes

const (
	OK               = 0
	OutOfMemory      = 1
	DivideByZero     = 18
	ArrayIndexOOB    = 3
	BadDimension     = 4
	NotSupported     = 5
	Overflow         = 6
	AssertionFailed   = 7
	BadProgram       = 8
	StringTooLong    = 9
	FileNotFound     = 10
	BadFileHandle    = 11
	NumericTypeBad   = 12
	Truncation       = 13
	HeapCorrupted    = 14
	BadSlot          = 15
)

// Name returns the symbolic name of a runtime error code, for diagnostics
// emitted by the driver when a built-in section's error path is disassembled.
func Name(code int) string {
	switch code {
	case OK:
		return "OK"
	case OutOfMemory:
		return "OutOfMemory"
	case DivideByZero:
		return "DivideByZero"
	case ArrayIndexOOB:
		return "ArrayIndexOOB"
	case BadDimension:
		return "BadDimension"
	case NotSupported:
		return "NotSupported"
	case Overflow:
		return "Overflow"
	case AssertionFailed:
		return "AssertionFailed"
	case BadProgram:
		return "BadProgram"
	case StringTooLong:
		return "StringTooLong"
	case FileNotFound:
		return "FileNotFound"
	case BadFileHandle:
		return "BadFileHandle"
	case NumericTypeBad:
		return "NumericTypeBad"
	case Truncation:
		return "Truncation"
	case HeapCorrupted:
		return "HeapCorrupted"
	case BadSlot:
		return "BadSlot"
	default:
		return "Unknown"
	}
}
