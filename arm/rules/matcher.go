package rules

import "github.com/markryan/subtilis-armback/ir"

// Handler lowers the ops a Rule matched (len(ops) == len(Rule.Pattern)) into
// one or more ARM instructions via e. e is an opaque context pointer; the
// compiler package supplies the concrete *emit.Emitter and casts it back.
type Handler func(e any, ops []ir.Op)

// Rule is one entry in a Matcher's table: a sequence of one or more
// consecutive op patterns, plus the handler invoked on a match.
type Rule struct {
	Name    string
	Pattern []OpPattern
	Handler Handler
}

// Matcher holds an ordered rule table. Rules are grouped by pattern length,
// longest first, so a compound (e.g. relational-compare + conditional jump)
// rule is always attempted before the single-op fallback that would
// otherwise consume just the first op (spec.md §4.2, "longest-match,
// first-rule-wins").
type Matcher struct {
	byLength [][]Rule // byLength[n-1] holds every rule whose pattern has length n
}

// NewMatcher builds a Matcher from an unordered rule list, grouping by
// pattern length and preserving each group's relative order (so among rules
// of equal length, the first one added wins ties).
func NewMatcher(all []Rule) *Matcher {
	m := &Matcher{}
	for _, r := range all {
		n := len(r.Pattern)
		if n == 0 {
			continue
		}
		for len(m.byLength) < n {
			m.byLength = append(m.byLength, nil)
		}
		m.byLength[n-1] = append(m.byLength[n-1], r)
	}
	return m
}

// Match attempts every rule against ops starting at index pos, longest
// pattern first, and returns the matching rule and how many ops it consumed.
// ok is false if no rule matches, which is a bug in the rule table: every
// opcode the frontend can produce must have at least a single-op fallback.
func (m *Matcher) Match(ops []ir.Op, pos int) (rule Rule, consumed int, ok bool) {
	for length := len(m.byLength); length >= 1; length-- {
		if pos+length > len(ops) {
			continue
		}
		for _, r := range m.byLength[length-1] {
			if matchSeq(r.Pattern, ops[pos:pos+length]) {
				return r, length, true
			}
		}
	}
	return Rule{}, 0, false
}

func matchSeq(patterns []OpPattern, ops []ir.Op) bool {
	for i, p := range patterns {
		if !p.matches(ops[i]) {
			return false
		}
	}
	return true
}

// Run drives the matcher across an entire op sequence, invoking each
// matched rule's handler in turn and advancing by the number of ops
// consumed.
func (m *Matcher) Run(e any, ops []ir.Op) {
	pos := 0
	for pos < len(ops) {
		rule, consumed, ok := m.Match(ops, pos)
		if !ok {
			panic("arm/rules: no rule matches op at index " + itoa(pos))
		}
		rule.Handler(e, ops[pos:pos+consumed])
		pos += consumed
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
