// Package encode performs the final, bit-exact lowering of an arm.Section
// into a stream of 32-bit ARM instruction words, resolving every label
// reference to a PC-relative offset and routing immediates and FP constants
// that cannot be encoded inline through a per-section constant pool (spec.md
// §4.8, "Encoding").
//
// The immediate-rotation search and condition/shift bit layouts are
// grounded on the teacher's encoder package; the two-pass address
// assignment and constant-pool placement are grounded on
// original_source/arch/arm32/arm_core.h's encoder notes referenced from
// arm_gen.h.
package encode

// EncodeImmediate finds an 8-bit value and 4-bit rotation whose decode
// reproduces value exactly, returning the packed 12-bit operand-2 immediate
// field (rotation in bits 11:8, value in bits 7:0) and whether one exists.
func EncodeImmediate(value uint32) (uint32, bool) {
	for rotate := uint32(0); rotate < 32; rotate += 2 {
		rotated := (value >> rotate) | (value << (32 - rotate))
		if rotated <= 0xFF {
			decodeRotate := (32 - rotate) % 32
			return ((decodeRotate / 2) << 8) | rotated, true
		}
	}
	return 0, false
}

// DecodeImmediate reverses EncodeImmediate's packed 12-bit field back to
// the full 32-bit value, for disassembly and tests.
func DecodeImmediate(packed uint32) uint32 {
	rot := (packed >> 8) & 0xF
	val := packed & 0xFF
	shift := rot * 2
	if shift == 0 {
		return val
	}
	return (val >> shift) | (val << (32 - shift))
}
