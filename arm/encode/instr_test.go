package encode

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/stretchr/testify/assert"
)

// TestWord_EncodeVectors covers the concrete end-to-end encode vectors
// (spec.md §8, "Concrete end-to-end scenarios"): one word in, one exact
// encoded word out, for each instruction family word dispatches to.
func TestWord_EncodeVectors(t *testing.T) {
	tests := []struct {
		name     string
		instr    arm.Instr
		expected uint32
	}{
		{
			name:     "MOVEQ r0, r1",
			instr:    arm.DP(arm.DPMov, arm.CondEQ, false, arm.R0, 0, arm.RegOp2(arm.R1)),
			expected: 0x01A00001,
		},
		{
			name:     "MVNSNE r0, r1",
			instr:    arm.DP(arm.DPMvn, arm.CondNE, true, arm.R0, 0, arm.RegOp2(arm.R1)),
			expected: 0x11F00001,
		},
		{
			name: "LDRCS r0, [r2, #16]",
			instr: arm.SingleXfer(arm.SingleTransfer{
				Cond:       arm.CondCS,
				Load:       true,
				Size:       arm.TransferWord,
				PreIndexed: true,
				Subtract:   false,
				Base:       arm.R2,
				Rd:         arm.R0,
				OffsetImm:  16,
			}),
			expected: 0x25920010,
		},
		{
			name:     "MULLT r0, r2, r1",
			instr:    arm.Mul(false, false, arm.CondLT, arm.R0, arm.R2, arm.R1, 0),
			expected: 0xB0000192,
		},
		{
			name:     "BMI . - 8",
			instr:    arm.Instr{Kind: arm.KindBranch, Br: &arm.Branch{Cond: arm.CondMI, Offset: -2}},
			expected: 0x4AFFFFFE,
		},
		{
			name: "LDMED R0!, {R3-R8}",
			instr: arm.BlockXfer(arm.BlockTransfer{
				Cond:      arm.CondAL,
				Load:      true,
				Base:      arm.R0,
				Mask:      0x1F8,
				Mode:      arm.BlockIB,
				WriteBack: true,
			}),
			expected: 0xE9B001F8,
		},
		{
			name:     "MOV R0, R1, ASR R2",
			instr:    arm.DP(arm.DPMov, arm.CondAL, false, arm.R0, 0, arm.ShiftReg2(arm.R1, arm.ShiftASR, arm.R2)),
			expected: 0xE1A00251,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, word(tt.instr), "encoded word mismatch")
		})
	}
}

// TestEncodeImmediate_RoundTrip checks that every value EncodeImmediate can
// pack DecodeImmediates back to the exact input.
func TestEncodeImmediate_RoundTrip(t *testing.T) {
	tests := []uint32{0, 1, 0xFF, 0x3FC, 0xFF000000, 1 << 31, 0x55000000}
	for _, v := range tests {
		packed, ok := EncodeImmediate(v)
		assert.True(t, ok, "expected %#x to be encodable", v)
		assert.Equal(t, v, DecodeImmediate(packed), "round-trip mismatch for %#x", v)
	}
}

func TestEncodeImmediate_Unencodable(t *testing.T) {
	_, ok := EncodeImmediate(0x101) // no rotation of an 8-bit value produces this
	assert.False(t, ok)
}

// TestDecode_MatchesEncodeVectors checks Decode against the same encoded
// words TestWord_EncodeVectors produces, confirming the decoder reads back
// the instruction family, condition, and operands the encoder wrote -
// though not necessarily the exact source syntax, since Decode renders
// branch targets relative to the instruction's own address rather than
// the execution-time PC the original mnemonic offset was written against.
func TestDecode_MatchesEncodeVectors(t *testing.T) {
	tests := []struct {
		word     uint32
		expected string
	}{
		{0x01A00001, "MOVEQ r0, r1"},
		{0xB0000192, "MULLT r0, r2, r1"},
		{0x25920010, "LDRCS r0, [r2, #+16]"},
		{0x4AFFFFFE, "BMI .+0"},
		{0xE1A00251, "MOV r0, r1, ASR r2"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decode(tt.word))
		})
	}
}
