package dataflow

import "kansomid/internal/ir"

// StaticSlice returns the subset of b's instructions that can affect (or
// are) one of seeds: a reverse walk tracking a set of tainted names,
// keeping any side-effecting instruction or terminator that touches a
// tainted name and every instruction that defines one.
func StaticSlice(b *ir.Block, seeds []string) []ir.Instruction {
	effected := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		effected[s] = true
	}

	touches := func(refs []string) bool {
		for _, r := range refs {
			if effected[r] {
				return true
			}
		}
		return false
	}

	var kept []ir.Instruction
	keepTerminator := touches(b.Terminator.Refs)
	if keepTerminator {
		for _, r := range b.Terminator.Refs {
			effected[r] = true
		}
	}

	for i := len(b.Instructions) - 1; i >= 0; i-- {
		inst := b.Instructions[i]
		relevant := (inst.Dest != "" && effected[inst.Dest]) ||
			(inst.Op.IsSideEffecting() && touches(inst.Refs))
		if relevant {
			kept = append(kept, inst)
			for _, r := range inst.Refs {
				effected[r] = true
			}
		}
	}

	for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
		kept[l], kept[r] = kept[r], kept[l]
	}
	if keepTerminator {
		kept = append(kept, b.Terminator)
	}
	return kept
}
