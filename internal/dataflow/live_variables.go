// Package dataflow implements the concrete analyses built on top of the
// generic cfg worklist engine: live variables, reaching definitions, very
// busy expressions, interval analysis, constant propagation and static
// slicing, per §4.3.
package dataflow

import (
	"kansomid/internal/cfg"
	"kansomid/internal/ir"
)

// LiveVariables computes, for every block, the set of names live on entry
// and on exit: a name is live-out of b if some successor (transitively)
// reads it before redefining it. Backward analysis, merge = union.
func LiveVariables(f *ir.Function) cfg.Result[cfg.StringSet] {
	return cfg.Run(f, cfg.Analysis[cfg.StringSet]{
		Init:    cfg.StringSet{},
		Forward: false,
		Merge:   cfg.Union,
		Equal:   cfg.StringSet.Equal,
		Transfer: func(b *ir.Block, out cfg.StringSet) cfg.StringSet {
			use := cfg.StringSet(b.Use())
			gen := cfg.StringSet(b.Gen())
			return cfg.Union(use, cfg.Difference(out, gen))
		},
	})
}
