// Package analyze exposes the dataflow analyses that §4.3 defines but that
// no compiler pass consumes directly — reaching definitions, very busy
// expressions, interval analysis, dominators, static slicing — as a
// diagnostic report over an already-checked ir.Function. cmd/kansoc's
// -analyze flag is the tool entry point §4.7 asks these live at.
package analyze

import (
	"fmt"
	"sort"
	"strings"

	"kansomid/internal/cfg"
	"kansomid/internal/dataflow"
	"kansomid/internal/ir"
)

// Report renders a per-block summary of every block-granularity analysis
// for fn: live variables, reaching definitions, very busy expressions,
// interval bounds, and dominators. Output is sorted for determinism.
func Report(fn *ir.Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "function %s\n", fn.Name)

	live := dataflow.LiveVariables(fn)
	reaching := dataflow.ReachingDefinitions(fn)
	busy := dataflow.VeryBusyExpressions(fn)
	intervals := dataflow.IntervalAnalysis(fn)
	dom := cfg.Dominators(fn)

	for _, b := range fn.Blocks {
		fmt.Fprintf(&sb, "  %s:\n", b.Label)
		fmt.Fprintf(&sb, "    live-in:      %s\n", sortedSet(live.In[b.Label]))
		fmt.Fprintf(&sb, "    live-out:     %s\n", sortedSet(live.Out[b.Label]))
		fmt.Fprintf(&sb, "    reaching-in:  %s\n", sortedSet(reaching.In[b.Label]))
		fmt.Fprintf(&sb, "    very-busy-out: %s\n", sortedSet(busy.Out[b.Label]))
		fmt.Fprintf(&sb, "    intervals-out: %s\n", sortedIntervals(intervals.Out[b.Label]))
		imm, ok := cfg.ImmediateDominator(dom, b.Label)
		if ok {
			fmt.Fprintf(&sb, "    idom:         %s\n", imm)
		} else {
			fmt.Fprintf(&sb, "    idom:         (none)\n")
		}
	}
	return sb.String()
}

// Slice runs StaticSlice over label's instructions seeded at names,
// rendering the opcode of each kept instruction, one per line.
func Slice(fn *ir.Function, label string, seeds []string) string {
	b := fn.Block(label)
	if b == nil {
		return ""
	}
	kept := dataflow.StaticSlice(b, seeds)
	var sb strings.Builder
	for _, inst := range kept {
		fmt.Fprintf(&sb, "%s\n", inst.Op)
	}
	return sb.String()
}

func sortedSet(s cfg.StringSet) string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}

func sortedIntervals(env dataflow.IntervalEnv) string {
	names := make([]string, 0, len(env))
	for n := range env {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		v := env[n]
		parts = append(parts, fmt.Sprintf("%s=(%d,%d)", n, v.Lo, v.Hi))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
