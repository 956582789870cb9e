// Package passes implements the module- and function-level transformation
// pipeline: reachable-function pruning, per-block local optimization
// (canonicalize/to_ssa/lvn/dce), and automatic drop insertion.
package passes

import "kansomid/internal/ir"

// RemoveUnusedFunctions deletes every function unreachable from the
// module's entry function (the one named after the module itself) by
// walking the call graph built from each CALL instruction's callee name.
// Returns the names removed, in no particular order; logger, if non-nil,
// receives a one-line summary when anything was removed.
func RemoveUnusedFunctions(m *ir.Module, logger func(string)) []string {
	entry := m.EntryFunction()
	if entry == nil {
		return nil
	}

	callees := make(map[string]map[string]bool, len(m.Functions))
	for name, fn := range m.Functions {
		called := make(map[string]bool)
		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				if inst.Op == ir.CALL && len(inst.Args) > 0 {
					called[inst.Args[0].Str] = true
				}
			}
		}
		callees[name] = called
	}

	reachable := map[string]bool{entry.Name: true}
	queue := []string{entry.Name}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for callee := range callees[name] {
			if !reachable[callee] {
				reachable[callee] = true
				queue = append(queue, callee)
			}
		}
	}

	var removed []string
	for name := range m.Functions {
		if !reachable[name] {
			removed = append(removed, name)
		}
	}
	for _, name := range removed {
		delete(m.Functions, name)
	}

	if len(removed) > 0 && logger != nil {
		logger(summarize(removed))
	}
	return removed
}

func summarize(removed []string) string {
	out := "Removed unused functions: "
	for i, name := range removed {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}
