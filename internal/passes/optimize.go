package passes

import (
	"kansomid/internal/dataflow"
	"kansomid/internal/ir"
)

// ConstantFold runs whole-function constant propagation and rewrites every
// instruction it proved constant into a LIT, the §4.7 "follow-up pass"
// that turns ConstantPropagation's analysis into code change. It runs
// before LocalOptimize so the per-block LVN/DCE pipeline can clean up the
// operands the fold makes dead.
func ConstantFold(fn *ir.Function) {
	result := dataflow.ConstantPropagation(fn)
	dataflow.Rewrite(fn, result)
}

// LocalOptimize runs the full per-block local pipeline on every block of
// fn, in the fixed order canonicalize -> to_ssa -> lvn -> dce, matching the
// single-block operation contract of §4.1. Each block starts LVN with a
// fresh table/environment: this IR's local value numbering is scoped to a
// block, not threaded across the CFG.
func LocalOptimize(fn *ir.Function, keep map[string]bool) {
	for _, b := range fn.Blocks {
		b.Canonicalize()
		b.ToSSA()
		b.LVN(map[int]ir.LVNEntry{}, map[string]int{})

		blockKeep := make(map[string]bool, len(keep)+len(b.Terminator.Refs))
		for k := range keep {
			blockKeep[k] = true
		}
		for _, r := range b.Terminator.Refs {
			blockKeep[r] = true
		}
		b.DCE(blockKeep)
	}
}
