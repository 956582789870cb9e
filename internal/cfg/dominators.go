package cfg

import "kansomid/internal/ir"

// IntersectionDominance computes the classic iterative-intersection
// dominator fixpoint over an arbitrary graph: dom[root] = {root}; for every
// other node n, dom[n] = {n} ∪ ⋂ dom[p] over preds(n), iterated until no
// dom set changes. It underlies both Dominators (a Function's ordinary
// forward dominators) and, given a reversed predecessor function and a
// synthetic exit root, the post-dominator computation automatic drop
// insertion needs.
func IntersectionDominance(nodes []string, root string, preds func(string) []string) map[string]StringSet {
	all := make(StringSet, len(nodes))
	for _, n := range nodes {
		all[n] = true
	}

	dom := make(map[string]StringSet, len(nodes))
	for _, n := range nodes {
		if n == root {
			dom[n] = NewStringSet(root)
		} else {
			dom[n] = all.Clone()
		}
	}

	changed := true
	for changed {
		changed = false
		for _, n := range nodes {
			if n == root {
				continue
			}
			var intersection StringSet
			for i, p := range preds(n) {
				if i == 0 {
					intersection = dom[p].Clone()
				} else {
					intersection = Intersect(intersection, dom[p])
				}
			}
			if intersection == nil {
				intersection = make(StringSet)
			}
			intersection[n] = true
			if !intersection.Equal(dom[n]) {
				dom[n] = intersection
				changed = true
			}
		}
	}
	return dom
}

// Dominators computes, for each block label, the set of labels (including
// itself) that dominate it, per §4.3's iterative-intersection formulation.
func Dominators(f *ir.Function) map[string]StringSet {
	entry := f.Entry()
	if entry == nil {
		return map[string]StringSet{}
	}
	nodes := make([]string, 0, len(f.Blocks))
	for _, b := range f.Blocks {
		nodes = append(nodes, b.Label)
	}
	return IntersectionDominance(nodes, entry.Label, f.Predecessors)
}

// ImmediateDominator returns the strict dominator of label closest to it.
// Applied to post-dominator sets, it picks the block where an
// automatically-inserted FREE is placed. Returns "", false if label has no
// strict dominator (the root).
func ImmediateDominator(dom map[string]StringSet, label string) (string, bool) {
	strict := make(StringSet)
	for d := range dom[label] {
		if d != label {
			strict[d] = true
		}
	}
	for candidate := range strict {
		isImmediate := true
		for other := range strict {
			if other != candidate && dom[other][candidate] {
				isImmediate = false
				break
			}
		}
		if isImmediate {
			return candidate, true
		}
	}
	return "", false
}
