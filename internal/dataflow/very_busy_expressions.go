package dataflow

import (
	"fmt"
	"strings"

	"kansomid/internal/cfg"
	"kansomid/internal/ir"
)

func exprKey(op ir.Op, a, b string) string {
	return fmt.Sprintf("%s:%s:%s", op, a, b)
}

func exprRefsName(key, name string) bool {
	parts := strings.SplitN(key, ":", 3)
	return len(parts) == 3 && (parts[1] == name || parts[2] == name)
}

// VeryBusyExpressions computes, for each block, the set of binary
// expressions certain to be evaluated before either operand is redefined
// along every path forward from that point. Backward, merge = intersection
// (an expression is busy only if anticipated on every successor path).
func VeryBusyExpressions(f *ir.Function) cfg.Result[cfg.StringSet] {
	universe := allExprKeys(f)
	return cfg.Run(f, cfg.Analysis[cfg.StringSet]{
		Init:    cfg.StringSet{}, // nothing is busy past a return
		Bottom:  universe,        // top element: shrinks correctly under intersection
		Forward: false,
		Merge:   cfg.Intersect,
		Equal:   cfg.StringSet.Equal,
		Transfer: func(b *ir.Block, out cfg.StringSet) cfg.StringSet {
			result := out.Clone()
			for i := len(b.Instructions) - 1; i >= 0; i-- {
				inst := b.Instructions[i]
				if inst.Dest != "" {
					for key := range result {
						if exprRefsName(key, inst.Dest) {
							delete(result, key)
						}
					}
				}
				if inst.Op.IsArithmeticOrLogical() && len(inst.Refs) == 2 {
					result[exprKey(inst.Op, inst.Refs[0], inst.Refs[1])] = true
				}
			}
			return result
		},
	})
}

func allExprKeys(f *ir.Function) cfg.StringSet {
	keys := make(cfg.StringSet)
	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			if inst.Op.IsArithmeticOrLogical() && len(inst.Refs) == 2 {
				keys[exprKey(inst.Op, inst.Refs[0], inst.Refs[1])] = true
			}
		}
	}
	return keys
}
