// Package borrow implements the CFG-sensitive borrow checker of §4.6: a
// function-level worklist wrapper around ir.Block's single-block
// borrow_check step, restricting incoming loans to the names the
// live-variables analysis reports as live at a block's entry.
package borrow

import (
	"errors"
	"fmt"
	"sort"

	"kansomid/internal/dataflow"
	"kansomid/internal/ir"
	"kansomid/internal/kerrors"
)

// ConflictError is the BorrowConflict diagnostic described in §7, naming
// the offending variables and the kind of conflict.
type ConflictError struct {
	Code    string
	Message string
	Block   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s[%s] in block %q: %s", kerrors.GetErrorCategory(e.Code), e.Code, e.Block, e.Message)
}

// mergeLoans performs the pointwise dictionary update over predecessor
// state maps described by §4.6: a name's state is taken from whichever
// predecessor defines it, later predecessors in iteration order winning on
// conflict (insertion-ordered per §5's determinism requirement, since
// fn.Predecessors returns blocks in their CFG-construction order).
func mergeLoans(maps []ir.Loans) ir.Loans {
	out := make(ir.Loans)
	for _, m := range maps {
		for name, st := range m {
			out[name] = st
		}
	}
	return out
}

func equalLoans(a, b ir.Loans) bool {
	if len(a) != len(b) {
		return false
	}
	for name, st := range a {
		other, ok := b[name]
		if !ok || other != st {
			return false
		}
	}
	return true
}

// CheckFunction walks fn's CFG forward from its entry block, threading the
// outgoing loan map of each block into its successors' incoming merge,
// restricted at each block entry to the names dataflow.LiveVariables
// reports live there. It returns the first BorrowConflict encountered,
// short-circuiting the traversal as required by §7's propagation policy.
func CheckFunction(fn *ir.Function) error {
	entry := fn.Entry()
	if entry == nil {
		return nil
	}

	live := dataflow.LiveVariables(fn)
	out := make(map[string]ir.Loans, len(fn.Blocks))

	queue := []string{entry.Label}
	queued := map[string]bool{entry.Label: true}

	for len(queue) > 0 {
		label := queue[0]
		queue = queue[1:]
		queued[label] = false

		b := fn.Block(label)
		var predOuts []ir.Loans
		for _, p := range fn.Predecessors(label) {
			if lo, ok := out[p]; ok {
				predOuts = append(predOuts, lo)
			}
		}
		in := mergeLoans(predOuts)
		liveIn := map[string]bool(live.In[label])

		newOut, err := b.BorrowCheck(in, liveIn)
		if err != nil {
			return classify(label, err)
		}

		prevOut, had := out[label]
		out[label] = newOut
		if !had || !equalLoans(prevOut, newOut) {
			for _, s := range fn.Successors(label) {
				if !queued[s] {
					queued[s] = true
					queue = append(queue, s)
				}
			}
		}
	}

	return nil
}

// classify maps the single-block step's Violation.Kind onto the
// BorrowConflict code from §7's taxonomy it corresponds to.
func classify(block string, err error) error {
	code := kerrors.ErrorUseOfMoved
	var v *ir.Violation
	if errors.As(err, &v) {
		switch v.Kind {
		case ir.MoveFromMoved:
			code = kerrors.ErrorMoveFromMoved
		case ir.MoveFromBorrowed:
			code = kerrors.ErrorMoveFromBorrowed
		case ir.BorrowWhileExclusive:
			code = kerrors.ErrorBorrowWhileExclusive
		case ir.ExclusiveWhileShared:
			code = kerrors.ErrorExclusiveWhileShared
		case ir.UseOfMoved:
			code = kerrors.ErrorUseOfMoved
		}
	}
	return &ConflictError{
		Code:    code,
		Message: err.Error(),
		Block:   block,
	}
}

// CheckModule runs CheckFunction over every function in the module,
// stopping at the first conflict.
func CheckModule(functions map[string]*ir.Function) error {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := CheckFunction(functions[name]); err != nil {
			return fmt.Errorf("function %q: %w", name, err)
		}
	}
	return nil
}
