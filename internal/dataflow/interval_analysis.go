package dataflow

import (
	"kansomid/internal/cfg"
	"kansomid/internal/ir"
)

// Interval is an inclusive [Lo, Hi] bound on a variable's possible integer
// value. Booleans (the result of an LT comparison) are represented the
// same way, with False = 0 and True = 1: (0,0) definitely false, (1,1)
// definitely true, (0,1) undetermined.
type Interval struct {
	Lo, Hi int64
}

const (
	defaultLo int64 = -(1 << 31)
	defaultHi int64 = 1<<31 - 1
)

// IntervalEnv maps variable name to its known bound.
type IntervalEnv map[string]Interval

func (e IntervalEnv) clone() IntervalEnv {
	c := make(IntervalEnv, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

func (e IntervalEnv) equal(o IntervalEnv) bool {
	if len(e) != len(o) {
		return false
	}
	for k, v := range e {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func boundOf(name string, env IntervalEnv) Interval {
	if v, ok := env[name]; ok {
		return v
	}
	return Interval{defaultLo, defaultHi}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func joinInterval(a, b Interval) Interval {
	return Interval{min64(a.Lo, b.Lo), max64(a.Hi, b.Hi)}
}

func mergeIntervalEnv(a, b IntervalEnv) IntervalEnv {
	out := make(IntervalEnv, len(a)+len(b))
	for k, av := range a {
		if bv, ok := b[k]; ok {
			out[k] = joinInterval(av, bv)
		} else {
			out[k] = av
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			out[k] = bv
		}
	}
	return out
}

func addInterval(a, b Interval) Interval {
	return Interval{a.Lo + b.Lo, a.Hi + b.Hi}
}

func subInterval(a, b Interval) Interval {
	return Interval{a.Lo - b.Hi, a.Hi - b.Lo}
}

func mulInterval(a, b Interval) Interval {
	corners := [4]int64{a.Lo * b.Lo, a.Lo * b.Hi, a.Hi * b.Lo, a.Hi * b.Hi}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo, hi = min64(lo, c), max64(hi, c)
	}
	return Interval{lo, hi}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// ltInterval evaluates `a < b` over intervals: Lo is whether it's
// definitely true (a's max is below b's min), Hi whether it's possibly
// true (a's min is below b's max).
func ltInterval(a, b Interval) Interval {
	return Interval{boolToInt(a.Hi < b.Lo), boolToInt(a.Lo < b.Hi)}
}

// narrowLT returns (a,b) narrowed under the assumption that `a < b` holds:
// a's upper bound drops below b's upper bound, b's lower bound rises above
// a's lower bound, matching the original's lt() helper.
func narrowLT(a, b Interval) (Interval, Interval) {
	return Interval{a.Lo, min64(a.Hi, b.Hi-1)}, Interval{max64(a.Lo+1, b.Lo), b.Hi}
}

// narrowGE returns (a,b) narrowed under the complementary assumption
// `a >= b`, matching the original's ge() helper.
func narrowGE(a, b Interval) (Interval, Interval) {
	return Interval{max64(a.Lo, b.Lo), a.Hi}, Interval{b.Lo, min64(a.Hi, b.Hi)}
}

// narrowBranchEdge refines predOut for the edge leaving pred into a
// successor, when pred's terminator is a BR over an LT comparison: the
// true edge narrows the compared operands (and the condition itself) under
// `lhs < rhs`, the false edge under the complementary `lhs >= rhs`. Any
// other terminator, or a condition not produced by LT, passes predOut
// through unchanged — matching §4.3's "Transfer applies interval
// arithmetic for ADD/SUB/MUL/LT" scope.
func narrowBranchEdge(pred *ir.Block, edgeIndex int, predOut IntervalEnv) IntervalEnv {
	if pred.Terminator.Op != ir.BR {
		return predOut
	}
	cond := pred.Terminator.Refs[0]

	var condInst *ir.Instruction
	for i := range pred.Instructions {
		if pred.Instructions[i].Dest == cond {
			condInst = &pred.Instructions[i]
		}
	}
	if condInst == nil || condInst.Op != ir.LT {
		return predOut
	}

	lhs, rhs := condInst.Refs[0], condInst.Refs[1]
	l := boundOf(lhs, predOut)
	r := boundOf(rhs, predOut)
	out := predOut.clone()

	if edgeIndex == 0 { // true edge: lhs < rhs holds
		a, b := narrowLT(l, r)
		if a.Lo > a.Hi || b.Lo > b.Hi {
			out[cond] = Interval{0, 0}
			return out
		}
		out[lhs], out[rhs], out[cond] = a, b, Interval{1, 1}
		return out
	}

	// false edge: lhs >= rhs holds
	a, b := narrowGE(l, r)
	if a.Lo > a.Hi || b.Lo > b.Hi {
		out[cond] = Interval{1, 1}
		return out
	}
	out[lhs], out[rhs], out[cond] = a, b, Interval{0, 0}
	return out
}

// maxRevisits caps how many times a block may be re-transferred before the
// analysis gives up refining it and returns its best estimate so far — the
// original's k>256 escape hatch against non-terminating interval widening.
const maxRevisits = 256

// IntervalAnalysis computes, for each block, a best-effort bound on every
// integer-valued variable live at that point. Forward; merge is a
// per-variable join (union of ranges), sharpened on BR/LT edges by
// narrowBranchEdge; transfer applies interval arithmetic for LIT/ADD/SUB/
// MUL/LT. Function parameters default to (INT32_MIN, INT32_MAX).
func IntervalAnalysis(f *ir.Function) cfg.Result[IntervalEnv] {
	init := make(IntervalEnv, len(f.Params))
	for _, p := range f.Params {
		init[p.Name] = Interval{defaultLo, defaultHi}
	}

	visits := make(map[string]int)
	return cfg.Run(f, cfg.Analysis[IntervalEnv]{
		Init:         init,
		Bottom:       IntervalEnv{},
		Forward:      true,
		Merge:        mergeIntervalEnv,
		Equal:        IntervalEnv.equal,
		NarrowOnEdge: narrowBranchEdge,
		Transfer: func(b *ir.Block, in IntervalEnv) IntervalEnv {
			visits[b.Label]++
			if visits[b.Label] > maxRevisits {
				return in
			}
			out := in.clone()
			for _, inst := range b.Instructions {
				if inst.Dest == "" {
					continue
				}
				switch {
				case inst.Op == ir.LIT && len(inst.Args) == 3 && inst.Args[2].Kind == ir.ArgInt:
					v := inst.Args[2].Int
					out[inst.Dest] = Interval{v, v}
				case len(inst.Refs) == 2:
					lhs := boundOf(inst.Refs[0], out)
					rhs := boundOf(inst.Refs[1], out)
					switch inst.Op {
					case ir.ADD:
						out[inst.Dest] = addInterval(lhs, rhs)
					case ir.SUB:
						out[inst.Dest] = subInterval(lhs, rhs)
					case ir.MUL:
						out[inst.Dest] = mulInterval(lhs, rhs)
					case ir.LT:
						out[inst.Dest] = ltInterval(lhs, rhs)
					}
				}
			}
			return out
		},
	})
}
