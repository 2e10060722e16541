package compiler

import (
	"testing"

	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/ir"
	"github.com/stretchr/testify/assert"
)

func TestFpVariant(t *testing.T) {
	assert.Equal(t, arm.FPA{}, fpVariant("FPA"))
	assert.Equal(t, arm.VFP{}, fpVariant("VFP"))
	assert.Equal(t, arm.VFP{}, fpVariant(""), "an unrecognised name must fall back to VFP, the default")
}

func TestSectionName_UsesIRNameOrSyntheticFallback(t *testing.T) {
	named := &ir.Section{Name: "PROCFoo"}
	anon := &ir.Section{Name: ""}

	assert.Equal(t, "PROCFoo", sectionName(0, named))
	assert.Equal(t, "__sec0", sectionName(0, anon))
	assert.Equal(t, "__sec12", sectionName(12, anon))
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "0", itoa(0))
	assert.Equal(t, "7", itoa(7))
	assert.Equal(t, "123", itoa(123))
}

// TestRequiredBuiltins_DeduplicatesAndPullsInMemcmpForCompare checks the
// scan returns each referenced builtin once, in first-seen order, and that
// a COMPARE reference always pulls in MEMCMP even without a direct call to
// it (driver.go's documented COMPARE-tail-calls-MEMCMP special case).
func TestRequiredBuiltins_DeduplicatesAndPullsInMemcmpForCompare(t *testing.T) {
	prog := &ir.Program{
		Sections: []*ir.Section{
			{Ops: []ir.Op{
				{Opcode: ir.OpCallBuiltin, Call: &ir.CallOp{Builtin: ir.BuiltinIDiv}},
				{Opcode: ir.OpCallBuiltin, Call: &ir.CallOp{Builtin: ir.BuiltinIDiv}},
				{Opcode: ir.OpCallBuiltin, Call: &ir.CallOp{Builtin: ir.BuiltinCompare}},
				{Opcode: ir.OpMovII32}, // no Call: must not panic on a nil Call
			}},
		},
	}

	got := requiredBuiltins(prog)

	assert.Equal(t, []ir.BuiltinKind{ir.BuiltinIDiv, ir.BuiltinCompare, ir.BuiltinMemcmp}, got)
}

func TestRequiredBuiltins_EmptyWhenNoneReferenced(t *testing.T) {
	prog := &ir.Program{Sections: []*ir.Section{{Ops: []ir.Op{{Opcode: ir.OpMovII32}}}}}
	assert.Empty(t, requiredBuiltins(prog))
}
