package encode

import (
	"fmt"

	"github.com/markryan/subtilis-armback/arm"
)

// dpMnemonics is indexed by the same 4-bit opcode encodeDP packs into bits
// 24:21, in arm.DPOp's own iota order.
var dpMnemonics = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

func condName(w uint32) string {
	name := arm.Cond((w >> 28) & 0xF).String()
	if name == "AL" {
		return ""
	}
	return name
}

func regName(n uint32) string {
	switch n {
	case 11:
		return "fp"
	case 12:
		return "glb"
	case 13:
		return "sp"
	case 14:
		return "lr"
	case 15:
		return "pc"
	default:
		return fmt.Sprintf("r%d", n)
	}
}

// Decode renders one already-encoded instruction word as a short,
// disassembly-style mnemonic, for cmd/subtilisc's disasm subcommand. It
// only recognizes the instruction classes this package itself encodes for
// the integer core (data processing, branch, single transfer, SWI, raw
// pool words); FPA/VFP coprocessor words are reported as their raw
// encoding rather than decoded, since nothing in this module's pipeline
// ever needs to read FP machine code back in.
func Decode(w uint32) string {
	cond := condName(w)

	switch {
	case w>>25&0x7 == 0x5: // branch: bits 27:25 == 101
		link := ""
		if w&(1<<24) != 0 {
			link = "L"
		}
		offset := int32(w&0xFFFFFF) << 8 >> 8 // sign-extend 24 bits
		target := offset*4 + 8
		return fmt.Sprintf("B%s%s .%+d", link, cond, target)

	case w>>24&0xF == 0xF: // SWI: bits 27:24 == 1111
		return fmt.Sprintf("SWI%s &%X", cond, w&0xFFFFFF)

	case w>>26&0x3 == 0x1: // single data transfer: bits 27:26 == 01
		load := "STR"
		if w&(1<<20) != 0 {
			load = "LDR"
		}
		size := ""
		if w&(1<<22) != 0 {
			size = "B"
		}
		rd := regName((w >> 12) & 0xF)
		rn := regName((w >> 16) & 0xF)
		sign := "+"
		if w&(1<<23) == 0 {
			sign = "-"
		}
		if w&(1<<25) == 0 {
			imm := w & 0xFFF
			return fmt.Sprintf("%s%s%s %s, [%s, #%s%d]", load, cond, size, rd, rn, sign, imm)
		}
		rm := regName(w & 0xF)
		return fmt.Sprintf("%s%s%s %s, [%s, %s%s]", load, cond, size, rd, rn, sign, rm)

	case w>>26&0x3 == 0x0 && w>>4&0xF == 0x9 && w>>22&0x3F == 0: // multiply
		rd := regName((w >> 16) & 0xF)
		rm := regName(w & 0xF)
		rs := regName((w >> 8) & 0xF)
		op := "MUL"
		if w&(1<<21) != 0 {
			op = "MLA"
		}
		return fmt.Sprintf("%s%s %s, %s, %s", op, cond, rd, rm, rs)

	case w>>26&0x3 == 0x0: // data processing: bits 27:26 == 00
		op := dpMnemonics[(w>>21)&0xF]
		s := ""
		if w&(1<<20) != 0 {
			s = "S"
		}
		rd := regName((w >> 12) & 0xF)
		rn := regName((w >> 16) & 0xF)
		op2 := decodeOp2(w)
		switch op {
		case "MOV", "MVN":
			return fmt.Sprintf("%s%s%s %s, %s", op, cond, s, rd, op2)
		case "CMP", "CMN", "TST", "TEQ":
			return fmt.Sprintf("%s%s %s, %s", op, cond, rn, op2)
		default:
			return fmt.Sprintf("%s%s%s %s, %s, %s", op, cond, s, rd, rn, op2)
		}

	default:
		return fmt.Sprintf("; &%08X (unrecognized or coprocessor word)", w)
	}
}

func decodeOp2(w uint32) string {
	if w&(1<<25) != 0 {
		imm := w & 0xFF
		rot := ((w >> 8) & 0xF) * 2
		val := imm>>rot | imm<<(32-rot)
		if rot == 0 {
			val = imm
		}
		return fmt.Sprintf("#%d", val)
	}
	rm := regName(w & 0xF)
	shiftTypes := [4]string{"LSL", "LSR", "ASR", "ROR"}
	shiftType := shiftTypes[(w>>5)&0x3]
	if w&(1<<4) != 0 {
		rs := regName((w >> 8) & 0xF)
		return fmt.Sprintf("%s, %s %s", rm, shiftType, rs)
	}
	amount := (w >> 7) & 0x1F
	if amount == 0 {
		return rm
	}
	return fmt.Sprintf("%s, %s #%d", rm, shiftType, amount)
}
