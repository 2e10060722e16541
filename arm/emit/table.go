package emit

import "github.com/markryan/subtilis-armback/arm/rules"

// Table returns the complete instruction-selection rule set: every IR
// opcode the frontend can produce maps to at least one single-op rule, and
// the relational opcodes additionally get a two-op compound rule so a
// comparison immediately followed by its conditional jump fuses into one
// CMP+Bcc (spec.md §4.2).
func Table() *rules.Matcher {
	all := make([]rules.Rule, 0, 64)
	all = append(all, arithRules...)
	all = append(all, controlRules...)
	all = append(all, memoryRules...)
	all = append(all, callRules...)
	all = append(all, syscallRules...)
	return rules.NewMatcher(all)
}
