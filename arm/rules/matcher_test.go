package rules

import (
	"testing"

	"github.com/markryan/subtilis-armback/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMatcher_LongestMatchWins checks a two-op compound rule is preferred
// over a single-op rule that would otherwise consume the first op alone.
func TestMatcher_LongestMatchWins(t *testing.T) {
	var fired []string
	single := Rule{
		Name:    "if-lt-alone",
		Pattern: []OpPattern{Op(ir.OpIfLtI32)},
		Handler: func(e any, ops []ir.Op) { fired = append(fired, "single") },
	}
	compound := Rule{
		Name:    "if-lt-then-jumpc",
		Pattern: []OpPattern{Op(ir.OpIfLtI32), Op(ir.OpJumpC)},
		Handler: func(e any, ops []ir.Op) { fired = append(fired, "compound") },
	}
	m := NewMatcher([]Rule{single, compound})

	ops := []ir.Op{
		{Opcode: ir.OpIfLtI32, Dest: ir.IntRegOperand(1), Src1: ir.IntRegOperand(2)},
		{Opcode: ir.OpJumpC, Dest: ir.LabelOperand(0)},
	}

	rule, consumed, ok := m.Match(ops, 0)
	require.True(t, ok)
	assert.Equal(t, "if-lt-then-jumpc", rule.Name)
	assert.Equal(t, 2, consumed)

	m.Run(nil, ops)
	assert.Equal(t, []string{"compound"}, fired)
}

// TestMatcher_FallsBackToSingleOpRule checks an op with no compound match
// still fires its single-op rule.
func TestMatcher_FallsBackToSingleOpRule(t *testing.T) {
	var fired []string
	single := Rule{
		Name:    "mov",
		Pattern: []OpPattern{Op(ir.OpMovI32)},
		Handler: func(e any, ops []ir.Op) { fired = append(fired, "mov") },
	}
	m := NewMatcher([]Rule{single})

	ops := []ir.Op{{Opcode: ir.OpMovI32, Dest: ir.IntRegOperand(1), Src1: ir.IntRegOperand(2)}}
	m.Run(nil, ops)
	assert.Equal(t, []string{"mov"}, fired)
}

// TestMatcher_PanicsOnNoRule checks an op the table has no rule for panics
// rather than being silently skipped, per the matcher's own contract.
func TestMatcher_PanicsOnNoRule(t *testing.T) {
	m := NewMatcher(nil)
	ops := []ir.Op{{Opcode: ir.OpMovI32}}
	assert.Panics(t, func() { m.Run(nil, ops) })
}
