package compiler

import "github.com/markryan/subtilis-armback/errs"

// Error, Kind and the Kind* constants are re-exported from errs so callers
// of this package never need to import errs directly; the split only exists
// to keep arm/emit (and the other leaf passes) free of a dependency on the
// driver that sequences them.
type Error = errs.Error
type Kind = errs.Kind

const (
	KindOOM          = errs.KindOOM
	KindAssertion    = errs.KindAssertion
	KindWalker       = errs.KindWalker
	KindBadImmediate = errs.KindBadImmediate
	KindBranchRange  = errs.KindBranchRange
	KindUnknownSWI   = errs.KindUnknownSWI
)

var Errorf = errs.Errorf
var IsWalkerSignal = errs.IsWalkerSignal
