package encode

import (
	"github.com/markryan/subtilis-armback/arm"
	"github.com/markryan/subtilis-armback/errs"
)

// Layout places one already-encoded section within the final image: code
// first, then that section's own constant-pool island immediately after it,
// matching how Section lays out codeLen/poolWords (spec.md §4.8, "Linking").
type Layout struct {
	Name     string
	CodeBase uint32 // byte offset of this section's first instruction word
	PoolBase uint32 // byte offset of this section's constant-pool island
	Result   *Result
}

// Link resolves every cross-section and builtin branch left unresolved by
// Section, now that every section has a final address, and concatenates
// every section's code and pool words into one flat image in layout order.
// User calls are matched by section index: layouts[0] is the image's
// preamble, and frontend section i is layouts[i+1], in the order
// ir.Program enumerates sections in; builtin calls
// are matched by name, since the frontend never assigns builtin sections an
// index of their own.
func Link(layouts []Layout) ([]uint32, *errs.Error) {
	byName := map[string]*Layout{}
	for i := range layouts {
		byName[layouts[i].Name] = &layouts[i]
	}

	var out []uint32
	for li := range layouts {
		l := &layouts[li]
		words := append([]uint32(nil), l.Result.Words...)

		for _, ext := range l.Result.External {
			var target *Layout
			switch ext.Br.Target {
			case arm.TargetSection:
				ti := ext.Br.Section + 1 // layouts[0] is the preamble
				if ext.Br.Section < 0 || ti >= len(layouts) {
					return nil, errs.Errorf(errs.KindAssertion, "call target section %d out of range", ext.Br.Section)
				}
				target = &layouts[ti]
			case arm.TargetName:
				t, ok := byName[ext.Br.Name]
				if !ok {
					return nil, errs.Errorf(errs.KindAssertion, "unresolved branch target %q", ext.Br.Name)
				}
				target = t
			default:
				continue
			}

			pc := l.CodeBase + uint32(ext.WordIndex*4)
			offset := int32(target.CodeBase) - int32(pc+8)
			if offset < -(1<<25) || offset > (1<<25)-1 {
				return nil, errs.Errorf(errs.KindBranchRange, "linked branch offset %d out of 24-bit word range", offset)
			}
			ext.Br.Offset = offset / 4
			words[ext.WordIndex] = word(arm.Instr{Kind: arm.KindBranch, Br: ext.Br})
		}

		out = append(out, words...)
		out = append(out, l.Result.PoolWords...)
	}
	return out, nil
}
