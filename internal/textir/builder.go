package textir

import (
	"fmt"

	"kansomid/internal/ir"
)

var binaryOps = map[string]ir.Op{
	"+": ir.ADD, "-": ir.SUB, "*": ir.MUL, "/": ir.DIV, "%": ir.MOD,
	"&&": ir.AND, "||": ir.OR, "==": ir.EQ, "!=": ir.NEQ,
	">": ir.GT, "<": ir.LT, ">=": ir.GTE, "<=": ir.LTE,
}

// Build lowers a parsed Program into an *ir.Module, resolving `$label`
// successor references into the block-position indices ir.Function's
// terminators require. moduleName, if non-empty, selects which function
// becomes the module's entry point (IsModule/IsMain), matching §3's rule
// that the module's own name is also the entry function name; an empty
// moduleName defaults to the first function declared.
func Build(moduleName string, prog *Program) (*ir.Module, error) {
	if moduleName == "" && len(prog.Functions) > 0 {
		moduleName = prog.Functions[0].Name
	}

	mod := ir.NewModule(moduleName)
	for _, fn := range prog.Functions {
		built, err := buildFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", fn.Name, err)
		}
		built.IsModule = fn.Name == moduleName
		built.IsMain = built.IsModule
		mod.AddFunction(built)
	}
	return mod, nil
}

func buildFunction(fn *Function) (*ir.Function, error) {
	labelIndex := make(map[string]int, len(fn.Blocks))
	for i, b := range fn.Blocks {
		if _, dup := labelIndex[b.Label]; dup {
			return nil, fmt.Errorf("duplicate block label %q", b.Label)
		}
		labelIndex[b.Label] = i
	}

	blocks := make([]*ir.Block, len(fn.Blocks))
	for i, b := range fn.Blocks {
		insts := make([]ir.Instruction, 0, len(b.Instructions))
		for _, inst := range b.Instructions {
			built, err := buildInstruction(inst)
			if err != nil {
				return nil, fmt.Errorf("block %q: %w", b.Label, err)
			}
			insts = append(insts, built)
		}

		term, err := buildTerminator(b.Terminator, labelIndex)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Label, err)
		}

		blocks[i] = &ir.Block{Label: b.Label, Instructions: insts, Terminator: term}
	}

	params := make([]ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.Param{Name: p.Name, Type: p.Type}
	}

	return ir.NewFunction(fn.Name, params, fn.Returns, blocks), nil
}

func buildInstruction(inst *Instruction) (ir.Instruction, error) {
	switch {
	case inst.Print != nil:
		return ir.NewPrint(inst.Print.Ref), nil
	case inst.Free != nil:
		return ir.NewFree(inst.Free.Ref), nil
	case inst.Nop != nil:
		return ir.NewNop(), nil
	case inst.Set != nil:
		// `set obj idx val` folds into an ASSIGN to an INDEX target, per
		// SPEC_FULL.md's note on the original's keyed-store instruction.
		return ir.Instruction{Op: ir.ASSIGN, Refs: []string{inst.Set.Target, inst.Set.Index, inst.Set.Value}}, nil
	case inst.Bind != nil:
		return buildBind(inst.Bind)
	default:
		return ir.Instruction{}, fmt.Errorf("empty instruction")
	}
}

func buildBind(b *BindInstr) (ir.Instruction, error) {
	rhs := b.RHS
	switch {
	case rhs.Int != nil:
		return ir.NewLit(b.Dest, typeOrInt(b.Type), 0, ir.IntArg(*rhs.Int)), nil
	case rhs.Str != nil:
		return ir.NewLit(b.Dest, typeOrStr(b.Type), 0, ir.StrArg(unquote(*rhs.Str))), nil
	case rhs.Ref != nil:
		// The grammar's first unary alternative accepts every unary
		// keyword, so the op is chosen from the matched keyword.
		switch rhs.Ref.Kind {
		case "move":
			return ir.NewUnaryRef(ir.MOVE, b.Dest, rhs.Ref.Arg), nil
		case "brw":
			return ir.NewUnaryRef(ir.BRW, b.Dest, rhs.Ref.Arg), nil
		case "alloc":
			return ir.NewAlloc(b.Dest, rhs.Ref.Arg), nil
		}
		return ir.NewUnaryRef(ir.REF, b.Dest, rhs.Ref.Arg), nil
	case rhs.Move != nil:
		return ir.NewUnaryRef(ir.MOVE, b.Dest, rhs.Move.Arg), nil
	case rhs.Brw != nil:
		return ir.NewUnaryRef(ir.BRW, b.Dest, rhs.Brw.Arg), nil
	case rhs.Alloc != nil:
		return ir.NewAlloc(b.Dest, rhs.Alloc.Arg), nil
	case rhs.Call != nil:
		return ir.NewCall(b.Dest, rhs.Call.Callee, rhs.Call.Args), nil
	case rhs.Get != nil:
		return ir.NewAccess(b.Dest, rhs.Get.Object, rhs.Get.Field), nil
	case rhs.Binary != nil:
		op, ok := binaryOps[rhs.Binary.Op]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("unknown operator %q", rhs.Binary.Op)
		}
		return ir.NewBinary(op, b.Dest, rhs.Binary.Lhs, rhs.Binary.Rhs), nil
	default:
		return ir.Instruction{}, fmt.Errorf("empty rhs for %q", b.Dest)
	}
}

func typeOrInt(declared string) string {
	if declared != "" {
		return declared
	}
	return "int"
}

func typeOrStr(declared string) string {
	if declared != "" {
		return declared
	}
	return "str"
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func buildTerminator(t *Terminator, labelIndex map[string]int) (ir.Instruction, error) {
	switch {
	case t.Ret != nil:
		if t.Ret.Value == "" {
			return ir.NewRet(), nil
		}
		return ir.NewRet(t.Ret.Value), nil
	case t.Jmp != nil:
		idx, ok := labelIndex[t.Jmp.Target]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("jmp to unknown block %q", t.Jmp.Target)
		}
		return ir.NewJmp(idx), nil
	case t.Br != nil:
		trueIdx, ok := labelIndex[t.Br.TrueLabel]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("br to unknown block %q", t.Br.TrueLabel)
		}
		falseIdx, ok := labelIndex[t.Br.FalseLabel]
		if !ok {
			return ir.Instruction{}, fmt.Errorf("br to unknown block %q", t.Br.FalseLabel)
		}
		return ir.NewBr(t.Br.Cond, trueIdx, falseIdx), nil
	default:
		return ir.Instruction{}, fmt.Errorf("block has no terminator")
	}
}
