package dataflow

import (
	"kansomid/internal/cfg"
	"kansomid/internal/ir"
)

// reachingKey packs a (variable, defining-block-label) pair as
// "variable@label"; parameters use the initBlock label.
func reachingKey(variable, definingBlock string) string {
	return variable + "@" + definingBlock
}

// initBlock is the defining-block sentinel §4.3 assigns a function
// parameter: it reaches the entry block's in-set without having been
// defined by any real block.
const initBlock = "__init__"

// ReachingDefinitions computes, for each block, the set of definitions
// (var, defining-block) that reach its entry/exit. Forward, merge = union;
// a block's own redefinition of a name kills every other block's
// definition of that name.
func ReachingDefinitions(f *ir.Function) cfg.Result[cfg.StringSet] {
	init := make(cfg.StringSet, len(f.Params))
	for _, p := range f.Params {
		init[reachingKey(p.Name, initBlock)] = true
	}
	return cfg.Run(f, cfg.Analysis[cfg.StringSet]{
		Init:    init,
		Forward: true,
		Merge:   cfg.Union,
		Equal:   cfg.StringSet.Equal,
		Transfer: func(b *ir.Block, in cfg.StringSet) cfg.StringSet {
			gen := b.Gen()
			out := make(cfg.StringSet, len(in))
			for key := range in {
				variable := key[:indexOfAt(key)]
				if !gen[variable] {
					out[key] = true
				}
			}
			for variable := range gen {
				out[reachingKey(variable, b.Label)] = true
			}
			return out
		},
	})
}

func indexOfAt(key string) int {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '@' {
			return i
		}
	}
	return len(key)
}
