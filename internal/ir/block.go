package ir

import (
	"fmt"
	"sort"
)

// Block is a basic block: an ordered sequence of non-terminator
// instructions followed by exactly one terminator, per §3's Basic Block
// data model.
type Block struct {
	Label        string
	Instructions []Instruction
	Terminator   Instruction
	Parameters   []string
}

// NewBlock builds a block, asserting the terminator invariant described in
// §3: a non-empty block's terminator op must belong to {BR, JMP, RET}.
func NewBlock(label string, instructions []Instruction, terminator Instruction) *Block {
	if len(instructions) > 0 && !terminator.IsTerminator() {
		panic(fmt.Sprintf("ir: invalid terminator %q in block %q", terminator.Op, label))
	}
	return &Block{Label: label, Instructions: instructions, Terminator: terminator}
}

// Gen returns the set of destinations defined in this block.
func (b *Block) Gen() map[string]bool {
	gen := make(map[string]bool)
	for _, i := range b.Instructions {
		if i.Dest != "" {
			gen[i.Dest] = true
		}
	}
	return gen
}

// Use returns the set of free reads: variables used before being defined
// inside this block, including the terminator's operands.
func (b *Block) Use() map[string]bool {
	defined := make(map[string]bool)
	used := make(map[string]bool)
	for _, i := range b.Instructions {
		for _, ref := range i.Refs {
			if !defined[ref] {
				used[ref] = true
			}
		}
		if i.Dest != "" {
			defined[i.Dest] = true
		}
	}
	for _, ref := range b.Terminator.Refs {
		if !defined[ref] {
			used[ref] = true
		}
	}
	return used
}

// canonicalizable reports the set of ops canonicalize reorders — a conservative
// subset of Op.IsCommutative restricted to the binary ops this pass
// actually normalizes, matching the source's canonicalize().
func canonicalizable(op Op) bool {
	switch op {
	case ADD, MUL, EQ, NEQ:
		return true
	}
	return false
}

// Canonicalize sorts the reference tuple of commutative instructions
// (ADD, MUL, EQ, NEQ) lexicographically, giving a deterministic printed
// form. Idempotent: applying it twice yields the same ordering.
func (b *Block) Canonicalize() {
	for i := range b.Instructions {
		inst := &b.Instructions[i]
		if len(inst.Refs) > 0 && canonicalizable(inst.Op) {
			sorted := append([]string(nil), inst.Refs...)
			sort.Strings(sorted)
			inst.Refs = sorted
		}
	}
}

func renameVersion(x string) string {
	for i := len(x) - 1; i >= 0; i-- {
		if x[i] == '\'' {
			name := x[:i]
			version := x[i+1:]
			n := 0
			fmt.Sscanf(version, "%d", &n)
			return fmt.Sprintf("%s'%d", name, n+1)
		}
	}
	return x + "'0"
}

// ToSSA enforces single-assignment within this block only: on redefinition
// of a name `x` (whose current version may already be `x'k`), it assigns a
// fresh `x'(k+1)` and rewrites all subsequent references to the old name
// inside this block. Does not cross block boundaries.
func (b *Block) ToSSA() {
	defined := make(map[string]bool)
	for i := range b.Instructions {
		oldName := b.Instructions[i].Dest
		if oldName == "" {
			continue
		}
		if !defined[oldName] {
			defined[oldName] = true
			continue
		}
		newName := renameVersion(oldName)
		for j := i + 1; j < len(b.Instructions); j++ {
			cand := &b.Instructions[j]
			for k, r := range cand.Refs {
				if r == oldName {
					cand.Refs[k] = newName
				}
			}
			if cand.Dest == oldName {
				cand.Dest = newName
			}
		}
		defined[newName] = true
		b.Instructions[i].Dest = newName
	}
}

// RemoveNop drops every NOP instruction LVN leaves behind.
func (b *Block) RemoveNop() {
	kept := b.Instructions[:0]
	for _, i := range b.Instructions {
		if i.Op != NOP {
			kept = append(kept, i)
		}
	}
	b.Instructions = kept
}

// LVNEntry is one row of the value-number table: the value key that
// produced it and the canonical variable name holding that value.
type LVNEntry struct {
	Value    ValueKey
	Variable string
}

// ValueKey is the congruence key used by local value numbering: (op,
// operand-numbers) for pure binary ops, (op, payload, -) for LIT.
type ValueKey struct {
	Op   Op
	A    interface{}
	B    interface{}
	HasB bool
}

func findEntry(table map[int]LVNEntry, key ValueKey) (int, bool) {
	for id, entry := range table {
		if entry.Value == key {
			return id, true
		}
	}
	return 0, false
}

// LVNTrace is an opt-in debug hook fired whenever LVN allocates a fresh
// value number for a binary op (the source's "Found duplicate value for
// {name}" print, reworked as an injectable trace rather than unconditional
// stdout noise). Tests may set it; it is a no-op by default.
var LVNTrace = func(name string) {}

// LVN performs local value numbering threaded from a predecessor's table
// and environment: redundant computations become NOP and bind to the prior
// value number; LIT and binary-op value keys are constructed as described
// in §4.1.
func (b *Block) LVN(table map[int]LVNEntry, env map[string]int) (map[int]LVNEntry, map[string]int) {
	newTable := make(map[int]LVNEntry, len(table))
	for k, v := range table {
		newTable[k] = v
	}
	newEnv := make(map[string]int, len(env))
	for k, v := range env {
		newEnv[k] = v
	}

	// numberOf returns name's value number, giving a name defined outside
	// this block (a parameter or a predecessor's value) its own number.
	numberOf := func(name string) int {
		if id, ok := newEnv[name]; ok {
			return id
		}
		id := len(newTable)
		newTable[id] = LVNEntry{Value: ValueKey{Op: PARAM, A: name}, Variable: name}
		newEnv[name] = id
		return id
	}

	for idx := range b.Instructions {
		inst := &b.Instructions[idx]
		if inst.Dest != "" {
			name := inst.Dest
			switch inst.Op {
			case LIT:
				key := ValueKey{Op: LIT, A: inst.Args[2]}
				if id, ok := findEntry(newTable, key); ok {
					inst.Op = NOP
					newEnv[name] = id
				} else {
					newEnv[name] = len(newTable)
					newTable[len(newTable)] = LVNEntry{Value: key, Variable: name}
				}
			case REF, MOVE, ALLOC:
				key := ValueKey{Op: inst.Op, A: numberOf(inst.Refs[0])}
				inst.Refs = []string{newTable[key.A.(int)].Variable}
				newEnv[name] = len(newTable)
				newTable[len(newTable)] = LVNEntry{Value: key, Variable: name}
			default:
				a := numberOf(inst.Refs[0])
				b2 := numberOf(inst.Refs[1])
				key := ValueKey{Op: inst.Op, A: a, B: b2, HasB: true}
				if id, ok := findEntry(newTable, key); ok {
					inst.Op = NOP
					newEnv[name] = id
				} else {
					LVNTrace(name)
					inst.Refs = []string{newTable[a].Variable, newTable[b2].Variable}
					newEnv[name] = len(newTable)
					newTable[len(newTable)] = LVNEntry{Value: key, Variable: name}
				}
			}
		} else if len(inst.Refs) > 0 {
			rewritten := make([]string, len(inst.Refs))
			for i, r := range inst.Refs {
				rewritten[i] = newTable[numberOf(r)].Variable
			}
			inst.Refs = rewritten
		}
	}

	b.RemoveNop()
	return newTable, newEnv
}

// DCE removes instructions whose destination is unused downstream (and is
// not in keep) and whose op is not side-effecting; NOPs are always removed.
func (b *Block) DCE(keep map[string]bool) {
	used := make(map[string]bool, len(keep))
	for k := range keep {
		used[k] = true
	}

	kept := make([]Instruction, 0, len(b.Instructions))
	for i := len(b.Instructions) - 1; i >= 0; i-- {
		inst := b.Instructions[i]
		switch {
		case inst.Op.IsSideEffecting():
			for _, r := range inst.Refs {
				used[r] = true
			}
			kept = append(kept, inst)
		case (inst.Dest != "" && !used[inst.Dest]) || inst.Op == NOP:
			// dropped: dead destination, or an already-collapsed NOP
		case len(inst.Refs) > 0:
			for _, r := range inst.Refs {
				used[r] = true
			}
			kept = append(kept, inst)
		default:
			kept = append(kept, inst)
		}
	}

	for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
		kept[l], kept[r] = kept[r], kept[l]
	}
	b.Instructions = kept
}

// BorrowKind is a variable's ownership state under §4.6's state machine.
type BorrowKind int

const (
	Owning BorrowKind = iota
	Moved
	SharedBorrowing
	SharedBorrowed
	ExclusivelyBorrowing
	ExclusivelyBorrowed
)

// BorrowState pairs a variable's ownership state with the partner name the
// state references: who it was moved to, who it is borrowing from, or who
// holds the borrow against it. A variable absent from a Loans map is
// implicitly Owning(""), the zero value.
type BorrowState struct {
	Kind BorrowKind
	Of   string
}

// Loans maps a variable name to its current BorrowState, the representation
// §4.1's Block-level borrow_check primitive threads through the CFG.
type Loans map[string]BorrowState

// ViolationKind names which of §7's BorrowConflict sub-cases a Violation
// reports, letting callers assign a precise diagnostic code without
// re-parsing the message text.
type ViolationKind int

const (
	MoveFromMoved ViolationKind = iota
	MoveFromBorrowed
	BorrowWhileExclusive
	ExclusiveWhileShared
	UseOfMoved
)

// Violation is the error BorrowCheck returns when an instruction's
// reference conflicts with the current borrow state of its target.
type Violation struct {
	Kind    ViolationKind
	Message string
}

func (v *Violation) Error() string { return v.Message }

// BorrowCheck is the single-block borrow step of §4.6: given the states
// live on entry (already restricted to the function-level live-in set by
// the caller) it walks the block's instructions applying the MOVE/BRW/REF
// transitions and the "any other op" use-of-moved check, and returns the
// outgoing state map.
func (b *Block) BorrowCheck(loans Loans, live map[string]bool) (Loans, error) {
	state := make(Loans, len(loans))
	for name, st := range loans {
		if live[name] {
			state[name] = st
		}
	}

	for i, inst := range b.Instructions {
		dst := inst.Dest

		switch inst.Op {
		case MOVE:
			src := inst.Refs[0]
			switch state[src].Kind {
			case Moved:
				return nil, &Violation{MoveFromMoved, fmt.Sprintf(
					"'%s' cannot move '%s'; '%s' is already moved to '%s'", dst, src, src, state[src].Of)}
			case ExclusivelyBorrowed:
				return nil, &Violation{MoveFromBorrowed, fmt.Sprintf(
					"'%s' cannot move '%s'; '%s' is exclusively borrowed by '%s'", dst, src, src, state[src].Of)}
			case SharedBorrowed:
				return nil, &Violation{MoveFromBorrowed, fmt.Sprintf(
					"'%s' cannot move '%s'; '%s' is shared borrowed by '%s'", dst, src, src, state[src].Of)}
			}
			state[dst] = BorrowState{Kind: Owning, Of: src}
			state[src] = BorrowState{Kind: Moved, Of: dst}

		case BRW:
			src := inst.Refs[0]
			switch state[src].Kind {
			case Moved:
				return nil, &Violation{UseOfMoved, fmt.Sprintf(
					"'%s' cannot share borrow '%s'; '%s' was moved to '%s'", dst, src, src, state[src].Of)}
			case ExclusivelyBorrowed:
				return nil, &Violation{BorrowWhileExclusive, fmt.Sprintf(
					"'%s' cannot share borrow '%s'; '%s' is exclusively borrowed from '%s'", dst, src, src, state[src].Of)}
			}
			state[dst] = BorrowState{Kind: SharedBorrowing, Of: src}
			state[src] = BorrowState{Kind: SharedBorrowed, Of: dst}

		case REF:
			src := inst.Refs[0]
			st := state[src]
			laterUse := b.hasLaterUse(i+1, st.Of)
			switch st.Kind {
			case Moved:
				if laterUse {
					return nil, &Violation{UseOfMoved, fmt.Sprintf(
						"'%s' cannot mutably borrow moved value '%s'; '%s' was moved from '%s'", dst, src, src, st.Of)}
				}
			case SharedBorrowed:
				if laterUse {
					return nil, &Violation{ExclusiveWhileShared, fmt.Sprintf(
						"'%s' cannot mutably borrow '%s'; '%s' already shared borrowed by '%s'", dst, src, src, st.Of)}
				}
			case ExclusivelyBorrowed:
				if laterUse {
					return nil, &Violation{BorrowWhileExclusive, fmt.Sprintf(
						"'%s' cannot mutably borrow '%s'; '%s' already exclusively borrowed by '%s'", dst, src, src, st.Of)}
				}
			}
			state[dst] = BorrowState{Kind: ExclusivelyBorrowing, Of: src}
			state[src] = BorrowState{Kind: ExclusivelyBorrowed, Of: dst}

		default:
			for _, ref := range inst.Refs {
				if state[ref].Kind == Moved {
					return nil, &Violation{UseOfMoved, fmt.Sprintf(
						"Cannot use moved value '%s', it was moved to '%s'", ref, state[ref].Of)}
				}
			}
			if dst != "" {
				state[dst] = BorrowState{Kind: Owning}
			}
		}
	}

	for _, ref := range b.Terminator.Refs {
		if state[ref].Kind == Moved {
			return nil, &Violation{UseOfMoved, fmt.Sprintf(
				"Cannot use moved value '%s', it was moved to '%s'", ref, state[ref].Of)}
		}
	}

	return state, nil
}

// hasLaterUse reports whether name is referenced by any instruction in
// b.Instructions[from:] or by the block's terminator, mirroring §4.6's
// "later use of the existing borrower in the current block" guard on REF.
func (b *Block) hasLaterUse(from int, name string) bool {
	if name == "" {
		return false
	}
	for _, inst := range b.Instructions[from:] {
		for _, ref := range inst.Refs {
			if ref == name {
				return true
			}
		}
	}
	for _, ref := range b.Terminator.Refs {
		if ref == name {
			return true
		}
	}
	return false
}

// CheckDrops walks the block updating a set of allocations that are still
// live (allocated, not yet freed): ALLOC adds its destination, FREE removes
// the freed name.
func (b *Block) CheckDrops(allocated map[string]bool) {
	for _, inst := range b.Instructions {
		switch inst.Op {
		case ALLOC:
			allocated[inst.Dest] = true
		case FREE:
			if len(inst.Args) > 0 {
				delete(allocated, inst.Args[0].Str)
			}
		}
	}
}
