// Package typecheck implements the per-function, local type checker of
// §4.5: a two-pass (forward then reverse) walk over every instruction that
// infers or validates a concrete Type for each destination, using the
// type lattice and subtype relation in internal/types. A destination still
// Inferred after both passes is a hard TypeError naming that destination;
// type errors carry no source position.
package typecheck

import (
	"fmt"

	"kansomid/internal/ir"
	"kansomid/internal/kerrors"
	"kansomid/internal/types"
)

// Env is the per-function typing environment exposed to the emitter:
// destination name -> concrete (never Inferred) Type.
type Env map[string]types.Type

// Checker type-checks functions against a shared Registry and the user
// types/function signatures visible in mod.
type Checker struct {
	registry *types.Registry
	module   *ir.Module
}

func NewChecker(registry *types.Registry, module *ir.Module) *Checker {
	return &Checker{registry: registry, module: module}
}

// CheckModule type-checks every function in the module, returning a typing
// environment per function name. Checking stops at the first function that
// fails, matching §7's "aggregates local diagnostics into a single error
// for the first offending instruction and aborts that function" policy —
// the Module itself is left unmodified by a failing function's partial env.
func (c *Checker) CheckModule() (map[string]Env, error) {
	envs := make(map[string]Env, len(c.module.Functions))
	for name, fn := range c.module.Functions {
		env, err := c.CheckFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", name, err)
		}
		envs[name] = env
	}
	return envs, nil
}

// CheckFunction runs the two-pass local inference described by §4.5 over
// fn's blocks in their declared order and returns the resulting typing
// environment, or the first TypeError encountered.
func (c *Checker) CheckFunction(fn *ir.Function) (Env, error) {
	env := make(Env)
	for _, p := range fn.Params {
		t, ok := c.registry.Resolve(p.Type)
		if !ok {
			return nil, c.typeError(kerrors.ErrorUnresolvedInferred,
				fmt.Sprintf("unknown parameter type %q for %q", p.Type, p.Name))
		}
		env[p.Name] = t
	}

	// Forward pass: infer destinations in instruction order, using
	// whatever is already known.
	for _, b := range fn.Blocks {
		for i := range b.Instructions {
			if err := c.inferInstruction(fn, env, &b.Instructions[i]); err != nil {
				return nil, err
			}
		}
		if err := c.inferTerminator(fn, env, b); err != nil {
			return nil, err
		}
	}

	// Reverse pass: revisit every instruction so a destination that
	// depended on a name defined later in another block (or whose own
	// first pass left it Inferred because an operand wasn't typed yet)
	// gets a second chance to resolve, per §4.5's bidirectional
	// convergence over LIT/params/returns.
	for bi := len(fn.Blocks) - 1; bi >= 0; bi-- {
		b := fn.Blocks[bi]
		for i := len(b.Instructions) - 1; i >= 0; i-- {
			if err := c.inferInstruction(fn, env, &b.Instructions[i]); err != nil {
				return nil, err
			}
		}
	}

	for name, t := range env {
		if _, inferred := t.(types.Inferred); inferred {
			return nil, c.typeError(kerrors.ErrorUnresolvedInferred,
				fmt.Sprintf("could not infer a concrete type for %q", name))
		}
	}

	return env, nil
}

func (c *Checker) typeOf(env Env, name string) types.Type {
	if t, ok := env[name]; ok {
		return t
	}
	return types.Inferred{}
}

func (c *Checker) typeError(code, msg string) error {
	return &kerrors.CompilerError{Level: kerrors.Error, Code: code, Message: msg}
}

func (c *Checker) inferInstruction(fn *ir.Function, env Env, inst *ir.Instruction) error {
	switch inst.Op {
	case ir.LIT:
		return c.inferLit(env, inst)
	case ir.DECL:
		return c.inferDecl(env, inst)
	case ir.MULTIDECL:
		return nil // destructured names are neither typed nor arity-checked
	case ir.ASSIGN:
		return c.inferAssign(env, inst)
	case ir.CALL:
		return c.inferCall(env, inst)
	case ir.INIT:
		return c.inferInit(env, inst)
	case ir.INDEX:
		return c.inferIndex(env, inst)
	case ir.ACCESS:
		return c.inferAccess(env, inst)
	case ir.REF:
		return c.inferBorrow(env, inst, types.Mut)
	case ir.BRW:
		return c.inferBorrow(env, inst, types.Const)
	case ir.MOVE, ir.COPY:
		env[inst.Dest] = c.typeOf(env, inst.Refs[0])
		return nil
	case ir.AS:
		return c.inferAs(env, inst)
	case ir.PARAM, ir.FIELD:
		if inst.TypeName != "" {
			if t, ok := c.registry.Resolve(inst.TypeName); ok {
				env[inst.Dest] = t
				return nil
			}
		} else if inst.Dest != "" && len(inst.Refs) > 0 {
			env[inst.Dest] = c.typeOf(env, inst.Refs[0])
		}
		return nil
	case ir.SYSCALL, ir.ASM:
		if inst.TypeName != "" {
			if t, ok := c.registry.Resolve(inst.TypeName); ok {
				env[inst.Dest] = t
			}
		} else if inst.Dest != "" {
			if _, known := env[inst.Dest]; !known {
				env[inst.Dest] = types.Inferred{}
			}
		}
		return nil
	case ir.PRINT, ir.FREE, ir.NOP, ir.LABEL:
		return nil
	default:
		if inst.Op.IsArithmeticOrLogical() {
			return c.inferBinary(env, inst)
		}
		return nil
	}
}

func (c *Checker) inferLit(env Env, inst *ir.Instruction) error {
	if len(inst.Args) >= 3 {
		payload := inst.Args[2]
		switch inst.TypeName {
		case "str":
			env[inst.Dest] = types.Array{Elem: mustResolve(c.registry, "char"), Len: len(payload.Str)}
			return nil
		case "int":
			env[inst.Dest] = types.Literal{Value: payload.Int}
			return nil
		}
	}
	if inst.TypeName != "" && c.registry.IsValidType(inst.TypeName) {
		t, _ := c.registry.Resolve(inst.TypeName)
		env[inst.Dest] = t
		return nil
	}
	if len(inst.Args) >= 3 {
		env[inst.Dest] = types.Literal{Value: inst.Args[2].Int}
		return nil
	}
	env[inst.Dest] = types.Inferred{}
	return nil
}

func mustResolve(r *types.Registry, name string) types.Type {
	t, _ := r.Resolve(name)
	return t
}

func (c *Checker) inferBinary(env Env, inst *ir.Instruction) error {
	lhs, rhs := c.typeOf(env, inst.Refs[0]), c.typeOf(env, inst.Refs[1])

	lp, lok := lhs.(types.Pointer)
	rp, rok := rhs.(types.Pointer)
	switch inst.Op {
	case ir.ADD, ir.SUB:
		if lok && !rok {
			env[inst.Dest] = lp
			return nil
		}
		if rok && !lok {
			env[inst.Dest] = rp
			return nil
		}
	case ir.EQ, ir.NEQ, ir.GT, ir.LT, ir.GTE, ir.LTE, ir.AND, ir.OR:
		if lok || rok {
			env[inst.Dest] = mustResolve(c.registry, "bool")
			return nil
		}
		if _, err := c.peer(lhs, rhs); err != nil {
			return err
		}
		env[inst.Dest] = mustResolve(c.registry, "bool")
		return nil
	}

	t, err := c.peer(lhs, rhs)
	if err != nil {
		return err
	}
	env[inst.Dest] = t
	return nil
}

func (c *Checker) peer(a, b types.Type) (types.Type, error) {
	t, ok := types.Peer(a, b)
	if !ok {
		return nil, c.typeError(kerrors.ErrorNoCommonSupertype,
			fmt.Sprintf("no common supertype for %s and %s", a.String(), b.String()))
	}
	return t, nil
}

func (c *Checker) inferDecl(env Env, inst *ir.Instruction) error {
	exprType := c.typeOf(env, inst.Refs[0])
	if inst.TypeName == "" {
		env[inst.Dest] = exprType
		return nil
	}
	declared, ok := c.registry.Resolve(inst.TypeName)
	if !ok {
		return c.typeError(kerrors.ErrorUnresolvedInferred, fmt.Sprintf("unknown type %q", inst.TypeName))
	}
	if _, isInferred := exprType.(types.Inferred); isInferred {
		env[inst.Dest] = declared
		return nil
	}
	if !types.IsSubtype(exprType, declared) {
		return c.typeError(kerrors.ErrorSubtypeFailure,
			fmt.Sprintf("cannot declare %q: %s is not a subtype of %s", inst.Dest, exprType.String(), declared.String()))
	}
	env[inst.Dest] = declared
	return nil
}

func (c *Checker) inferAssign(env Env, inst *ir.Instruction) error {
	if len(inst.Refs) == 3 {
		// `set target index value`, folded into ASSIGN by internal/textir.
		target, _, value := inst.Refs[0], inst.Refs[1], inst.Refs[2]
		elem, err := c.elementType(c.typeOf(env, target))
		if err != nil {
			return err
		}
		if !types.IsSubtype(c.typeOf(env, value), elem) {
			return c.typeError(kerrors.ErrorSubtypeFailure, fmt.Sprintf("cannot store %s into element of type %s", c.typeOf(env, value).String(), elem.String()))
		}
		return nil
	}
	target, expr := inst.Refs[0], inst.Refs[1]
	lhs, rhs := c.typeOf(env, target), c.typeOf(env, expr)
	if _, isInferred := lhs.(types.Inferred); isInferred {
		env[target] = rhs
		return nil
	}
	if !types.IsSubtype(rhs, lhs) {
		return c.typeError(kerrors.ErrorSubtypeFailure,
			fmt.Sprintf("cannot assign %s to %s (%s)", rhs.String(), target, lhs.String()))
	}
	return nil
}

func (c *Checker) inferCall(env Env, inst *ir.Instruction) error {
	if len(inst.Args) == 0 {
		return c.typeError(kerrors.ErrorInternalInvariant, "call instruction missing callee name")
	}
	callee := inst.Args[0].Str
	fn, ok := c.module.Functions[callee]
	if !ok {
		return c.typeError(kerrors.ErrorUnknownName, fmt.Sprintf("call to undefined function %q", callee))
	}
	if len(inst.Refs) != len(fn.Params) {
		return c.typeError(kerrors.ErrorArityMismatch,
			fmt.Sprintf("call to %q passes %d arguments, expected %d", callee, len(inst.Refs), len(fn.Params)))
	}
	for i, ref := range inst.Refs {
		want, ok := c.registry.Resolve(fn.Params[i].Type)
		if !ok {
			return c.typeError(kerrors.ErrorUnresolvedInferred, fmt.Sprintf("unknown parameter type %q", fn.Params[i].Type))
		}
		if !types.IsSubtype(c.typeOf(env, ref), want) {
			return c.typeError(kerrors.ErrorSubtypeFailure,
				fmt.Sprintf("argument %d to %q: %s is not a subtype of %s", i, callee, c.typeOf(env, ref).String(), want.String()))
		}
	}
	if inst.Dest == "" {
		return nil
	}
	switch len(fn.Returns) {
	case 0:
		env[inst.Dest] = mustResolve(c.registry, "void")
	case 1:
		t, ok := c.registry.Resolve(fn.Returns[0])
		if !ok {
			return c.typeError(kerrors.ErrorUnresolvedInferred, fmt.Sprintf("unknown return type %q", fn.Returns[0]))
		}
		env[inst.Dest] = t
	default:
		rets := make([]types.Type, len(fn.Returns))
		for i, r := range fn.Returns {
			t, ok := c.registry.Resolve(r)
			if !ok {
				return c.typeError(kerrors.ErrorUnresolvedInferred, fmt.Sprintf("unknown return type %q", r))
			}
			rets[i] = t
		}
		env[inst.Dest] = types.Function{Returns: rets}
	}
	return nil
}

func (c *Checker) inferInit(env Env, inst *ir.Instruction) error {
	st, ok := c.registry.UserType(inst.TypeName)
	if !ok {
		return c.typeError(kerrors.ErrorUnknownField, fmt.Sprintf("unknown struct type %q", inst.TypeName))
	}
	if len(inst.Refs) != len(st.Fields) {
		return c.typeError(kerrors.ErrorArityMismatch,
			fmt.Sprintf("struct literal %q passes %d fields, expected %d", inst.TypeName, len(inst.Refs), len(st.Fields)))
	}
	for i, ref := range inst.Refs {
		field := st.Fields[i]
		if !types.IsSubtype(c.typeOf(env, ref), field.Type) {
			return c.typeError(kerrors.ErrorSubtypeFailure,
				fmt.Sprintf("field %q: %s is not a subtype of %s", field.Name, c.typeOf(env, ref).String(), field.Type.String()))
		}
	}
	env[inst.Dest] = st
	return nil
}

func (c *Checker) elementType(t types.Type) (types.Type, error) {
	switch tt := t.(type) {
	case types.Pointer:
		if tt.Pointee == nil {
			return nil, c.typeError(kerrors.ErrorUnknownField, "cannot index a void pointer")
		}
		return tt.Pointee, nil
	case types.Array:
		return tt.Elem, nil
	default:
		return nil, c.typeError(kerrors.ErrorUnknownField, fmt.Sprintf("%s is not indexable", t.String()))
	}
}

func (c *Checker) inferIndex(env Env, inst *ir.Instruction) error {
	elem, err := c.elementType(c.typeOf(env, inst.Refs[0]))
	if err != nil {
		return err
	}
	env[inst.Dest] = elem
	return nil
}

func (c *Checker) inferAccess(env Env, inst *ir.Instruction) error {
	objType := c.typeOf(env, inst.Refs[0])
	field := inst.Refs[1]
	if arr, ok := objType.(types.Array); ok && field == "len" {
		env[inst.Dest] = types.Literal{Value: int64(arr.Len)}
		return nil
	}
	st, ok := structOf(objType)
	if !ok {
		return c.typeError(kerrors.ErrorUnknownField, fmt.Sprintf("%s has no fields", objType.String()))
	}
	ft, ok := st.FieldType(field)
	if !ok {
		return c.typeError(kerrors.ErrorUnknownField, fmt.Sprintf("%q has no field %q", st.Name, field))
	}
	env[inst.Dest] = ft
	return nil
}

func structOf(t types.Type) (*types.Struct, bool) {
	switch tt := t.(type) {
	case *types.Struct:
		return tt, true
	case types.Pointer:
		return structOf(tt.Pointee)
	default:
		return nil, false
	}
}

func (c *Checker) inferBorrow(env Env, inst *ir.Instruction, q types.Qualifier) error {
	env[inst.Dest] = types.Pointer{Pointee: c.typeOf(env, inst.Refs[0]), Qualifier: q}
	return nil
}

func (c *Checker) inferAs(env Env, inst *ir.Instruction) error {
	target, ok := c.registry.Resolve(inst.TypeName)
	if !ok {
		return c.typeError(kerrors.ErrorUnresolvedInferred, fmt.Sprintf("unknown cast target %q", inst.TypeName))
	}
	source := c.typeOf(env, inst.Refs[0])
	if !types.IsSubtype(source, target) {
		return c.typeError(kerrors.ErrorInvalidCast,
			fmt.Sprintf("cannot cast %s to %s", source.String(), target.String()))
	}
	env[inst.Dest] = target
	return nil
}

func (c *Checker) inferTerminator(fn *ir.Function, env Env, b *ir.Block) error {
	if b.Terminator.Op != ir.RET || fn.IsModule {
		return nil
	}
	refs := b.Terminator.Refs
	if len(refs) != len(fn.Returns) {
		return c.typeError(kerrors.ErrorArityMismatch,
			fmt.Sprintf("function %q returns %d values, expected %d", fn.Name, len(refs), len(fn.Returns)))
	}
	for i, ref := range refs {
		want, ok := c.registry.Resolve(fn.Returns[i])
		if !ok {
			return c.typeError(kerrors.ErrorUnresolvedInferred, fmt.Sprintf("unknown return type %q", fn.Returns[i]))
		}
		if !types.IsSubtype(c.typeOf(env, ref), want) {
			return c.typeError(kerrors.ErrorSubtypeFailure,
				fmt.Sprintf("return value %d: %s is not a subtype of %s", i, c.typeOf(env, ref).String(), want.String()))
		}
	}
	return nil
}
