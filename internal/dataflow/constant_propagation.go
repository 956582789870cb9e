package dataflow

import (
	"kansomid/internal/cfg"
	"kansomid/internal/ir"
)

// constValue is either a known literal (Known=true) or the "unknown" top
// element the original spells '?'.
type constValue struct {
	Known bool
	Value int64
}

var unknownConst = constValue{}

// ConstEnv maps a variable to its propagated constant value, or to unknown.
type ConstEnv map[string]constValue

func (e ConstEnv) clone() ConstEnv {
	c := make(ConstEnv, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

func (e ConstEnv) equal(o ConstEnv) bool {
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

func mergeConst(a, b ConstEnv) ConstEnv {
	out := make(ConstEnv)
	for k, av := range a {
		if bv, ok := b[k]; ok {
			if av == bv {
				out[k] = av
			} else {
				out[k] = unknownConst
			}
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

func foldBinary(op ir.Op, a, b constValue) constValue {
	if !a.Known || !b.Known {
		return unknownConst
	}
	switch op {
	case ir.ADD:
		return constValue{true, a.Value + b.Value}
	case ir.SUB:
		return constValue{true, a.Value - b.Value}
	case ir.MUL:
		return constValue{true, a.Value * b.Value}
	case ir.DIV:
		if b.Value == 0 {
			return unknownConst
		}
		return constValue{true, a.Value / b.Value}
	case ir.MOD:
		if b.Value == 0 {
			return unknownConst
		}
		return constValue{true, a.Value % b.Value}
	case ir.EQ:
		return constValue{true, boolInt(a.Value == b.Value)}
	case ir.NEQ:
		return constValue{true, boolInt(a.Value != b.Value)}
	case ir.GT:
		return constValue{true, boolInt(a.Value > b.Value)}
	case ir.LT:
		return constValue{true, boolInt(a.Value < b.Value)}
	case ir.GTE:
		return constValue{true, boolInt(a.Value >= b.Value)}
	case ir.LTE:
		return constValue{true, boolInt(a.Value <= b.Value)}
	default:
		return unknownConst
	}
}

func boolInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// ConstantPropagation computes, for each block, the set of variables known
// to hold a compile-time constant on entry/exit. Forward, merge = agree
// (equal values survive, disagreement goes to unknown, and a name absent
// from one side keeps the other side's value).
func ConstantPropagation(f *ir.Function) cfg.Result[ConstEnv] {
	return cfg.Run(f, cfg.Analysis[ConstEnv]{
		Init:    ConstEnv{},
		Bottom:  ConstEnv{},
		Forward: true,
		Merge:   mergeConst,
		Equal:   ConstEnv.equal,
		Transfer: func(b *ir.Block, in ConstEnv) ConstEnv {
			out := in.clone()
			for _, inst := range b.Instructions {
				switch {
				case inst.Op == ir.LIT && len(inst.Args) == 3 && inst.Args[2].Kind == ir.ArgInt:
					out[inst.Dest] = constValue{true, inst.Args[2].Int}
				case inst.Op.IsArithmeticOrLogical() && len(inst.Refs) == 2:
					out[inst.Dest] = foldBinary(inst.Op, out[inst.Refs[0]], out[inst.Refs[1]])
				case inst.Dest != "":
					out[inst.Dest] = unknownConst
				}
			}
			return out
		},
	})
}

// Rewrite folds every LIT whose value constant propagation proved known
// into its literal payload in place, and marks formerly-computed
// instructions whose destination is now a known constant as LIT too,
// leaving DCE to remove the now-dead operands.
func Rewrite(f *ir.Function, result cfg.Result[ConstEnv]) {
	for _, b := range f.Blocks {
		env := result.In[b.Label].clone()
		for i := range b.Instructions {
			inst := &b.Instructions[i]
			if inst.Op.IsArithmeticOrLogical() && len(inst.Refs) == 2 {
				v := foldBinary(inst.Op, env[inst.Refs[0]], env[inst.Refs[1]])
				if v.Known {
					*inst = ir.NewLit(inst.Dest, "int", 0, ir.IntArg(v.Value))
				}
			}
			if inst.Op == ir.LIT && len(inst.Args) == 3 && inst.Args[2].Kind == ir.ArgInt {
				env[inst.Dest] = constValue{true, inst.Args[2].Int}
			} else if inst.Dest != "" {
				env[inst.Dest] = unknownConst
			}
		}
	}
}
