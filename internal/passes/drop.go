package passes

import (
	"fmt"

	"kansomid/internal/cfg"
	"kansomid/internal/ir"
	"kansomid/internal/kerrors"
)

// DropError is the LifetimeError diagnostic §7 assigns to a drop-insertion
// failure: no deterministic point exists to free an allocation.
type DropError struct {
	Allocation string
	Block      string
}

func (e *DropError) Error() string {
	return fmt.Sprintf("%s: cannot place a deterministic free for %q allocated in block %q (divergent exits)",
		kerrors.ErrorDropPlacement, e.Allocation, e.Block)
}

// virtualExit is the synthetic post-dominator-tree root §1's resolved open
// question introduces to unify a subgraph's possibly-multiple exits into a
// single reversed-graph entry.
const virtualExit = "\x00exit"

// InsertDrops implements §4.7's automatic free insertion: for every ALLOC
// in fn producing a name, it computes the subgraph reachable from the
// allocating block, finds that block's unique immediate post-dominator
// within the subgraph (the deterministic rule resolved in DESIGN.md /
// SPEC_FULL.md for the source's ambiguous "last block" choice), and
// inserts a FREE immediately before that block's terminator. An allocation
// with an explicit FREE of its name in any block of that subgraph is left
// alone; whether that FREE lies on every path is not checked.
func InsertDrops(fn *ir.Function) error {
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			if inst.Op != ir.ALLOC {
				continue
			}
			if alreadyFreedEverywhere(fn, b.Label, inst.Dest) {
				continue
			}
			if err := insertDropFor(fn, b.Label, inst.Dest); err != nil {
				return err
			}
		}
	}
	return nil
}

func reachableSubgraph(fn *ir.Function, from string) cfg.StringSet {
	sub := cfg.NewStringSet(from)
	queue := []string{from}
	for len(queue) > 0 {
		label := queue[0]
		queue = queue[1:]
		for _, s := range fn.Successors(label) {
			if !sub[s] {
				sub[s] = true
				queue = append(queue, s)
			}
		}
	}
	return sub
}

func alreadyFreedEverywhere(fn *ir.Function, from, name string) bool {
	sub := reachableSubgraph(fn, from)
	for label := range sub {
		b := fn.Block(label)
		for _, inst := range b.Instructions {
			if inst.Op == ir.FREE && len(inst.Args) > 0 && inst.Args[0].Str == name {
				return true
			}
		}
	}
	return false
}

// postDominators computes, for each node in sub, the set of nodes in sub
// (plus the virtual exit) that post-dominate it: cfg.IntersectionDominance
// run over the reversed subgraph, with every subgraph exit (a block with
// no in-subgraph successor) made a predecessor of a single virtualExit
// root.
func postDominators(fn *ir.Function, sub cfg.StringSet) map[string]cfg.StringSet {
	revPred := func(n string) []string {
		if n == virtualExit {
			return nil
		}
		var preds []string
		for _, s := range fn.Successors(n) {
			if sub[s] {
				preds = append(preds, s)
			}
		}
		if len(preds) == 0 {
			preds = append(preds, virtualExit)
		}
		return preds
	}

	nodes := make([]string, 0, len(sub)+1)
	for n := range sub {
		nodes = append(nodes, n)
	}
	nodes = append(nodes, virtualExit)

	return cfg.IntersectionDominance(nodes, virtualExit, revPred)
}

func insertDropFor(fn *ir.Function, allocBlock, name string) error {
	// The allocating block is itself the only exit of its own subgraph
	// (e.g. `alloc; ...; ret` in one block): the free belongs right there,
	// before the terminator.
	if len(fn.Successors(allocBlock)) == 0 {
		appendFree(fn.Block(allocBlock), name)
		return nil
	}

	sub := reachableSubgraph(fn, allocBlock)
	dom := postDominators(fn, sub)
	target, ok := cfg.ImmediateDominator(dom, allocBlock)
	if !ok || target == virtualExit {
		return &DropError{Allocation: name, Block: allocBlock}
	}

	appendFree(fn.Block(target), name)
	return nil
}

func appendFree(b *ir.Block, name string) {
	b.Instructions = append(b.Instructions, ir.NewFree(name))
}
