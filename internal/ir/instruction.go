package ir

import "kansomid/internal/token"

// ArgKind tags the payload carried in an Arg. Per the REDESIGN FLAGS note on
// dynamically-typed IR payloads, literal arguments are a small tagged sum
// rather than a bare interface{}.
type ArgKind int

const (
	ArgInt ArgKind = iota
	ArgString
)

// Arg is one element of an Instruction's argument tuple: literal data,
// labels, or successor-block positions — never a reference to another
// instruction's value (those live in Refs).
type Arg struct {
	Kind ArgKind
	Int  int64
	Str  string
}

func IntArg(v int64) Arg   { return Arg{Kind: ArgInt, Int: v} }
func StrArg(v string) Arg  { return Arg{Kind: ArgString, Str: v} }

// Instruction is the three-address record described by the DATA MODEL:
// {op, destination name?, arg tuple, reference tuple, source-location
// token?}. A single discriminated struct, per the REDESIGN FLAGS note
// collapsing the source's near-duplicate instruction constructors.
type Instruction struct {
	ID       int
	Op       Op
	Dest     string // "" if the op has no destination
	TypeName string // source-level type annotation, "" if none (Inferred)
	Args     []Arg
	Refs     []string
	Token    token.Token
}

// IsTerminator reports whether this instruction is one of {BR, JMP, RET}.
func (i Instruction) IsTerminator() bool { return i.Op.IsTerminator() }

// --- Smart constructors, one per opcode family, with arity assertions
// matching the invariants in the DATA MODEL section. Each panics with
// InternalInvariant-flavored messages on misuse by a caller within this
// module; upstream malformed input is instead validated by driver.Validate.

func badArity(op Op, want string) {
	panic("ir: " + op.String() + " requires " + want)
}

// NewBinary builds an arithmetic, logical, or comparison instruction.
func NewBinary(op Op, dest, lhs, rhs string) Instruction {
	if !op.IsArithmeticOrLogical() {
		badArity(op, "an arithmetic/logical op")
	}
	return Instruction{Op: op, Dest: dest, Refs: []string{lhs, rhs}}
}

// NewLit builds a LIT instruction. Per §3, LIT carries (type-tag,
// data-pool index, payload value).
func NewLit(dest, typeTag string, dataIndex int64, payload Arg) Instruction {
	return Instruction{Op: LIT, Dest: dest, TypeName: typeTag,
		Args: []Arg{StrArg(typeTag), IntArg(dataIndex), payload}}
}

// NewUnaryRef builds REF, BRW, MOVE, or COPY, each of which has exactly one
// reference per §3.
func NewUnaryRef(op Op, dest, src string) Instruction {
	switch op {
	case REF, BRW, MOVE, COPY:
	default:
		badArity(op, "REF/BRW/MOVE/COPY")
	}
	return Instruction{Op: op, Dest: dest, Refs: []string{src}}
}

// NewAlloc builds an ALLOC, which has exactly one reference (the type/size
// operand) per §3.
func NewAlloc(dest, sizeOrType string) Instruction {
	return Instruction{Op: ALLOC, Dest: dest, Refs: []string{sizeOrType}}
}

// NewFree builds a FREE of the named allocation.
func NewFree(name string) Instruction {
	return Instruction{Op: FREE, Args: []Arg{StrArg(name)}}
}

// NewAssign builds an ASSIGN: target <- expr (no destination; refs =
// (target, expr), matching how the type checker reads code.target()/
// code.expr()).
func NewAssign(target, expr string) Instruction {
	return Instruction{Op: ASSIGN, Refs: []string{target, expr}}
}

// NewAccess builds an ACCESS (infix field read): refs = (object, fieldName).
func NewAccess(dest, obj, field string) Instruction {
	return Instruction{Op: ACCESS, Dest: dest, Refs: []string{obj, field}}
}

// NewIndex builds an INDEX: refs = (target, index).
func NewIndex(dest, target, index string) Instruction {
	return Instruction{Op: INDEX, Dest: dest, Refs: []string{target, index}}
}

// NewAs builds an AS cast: refs = (source,); the target type is carried in
// TypeName.
func NewAs(dest, source, toType string) Instruction {
	return Instruction{Op: AS, Dest: dest, TypeName: toType, Refs: []string{source}}
}

// NewDecl builds a DECL (`let`-like declaration): refs = (expr,); TypeName
// carries the declared type name (possibly empty, meaning Inferred).
func NewDecl(dest, declaredType, expr string) Instruction {
	return Instruction{Op: DECL, Dest: dest, TypeName: declaredType, Refs: []string{expr}}
}

// NewMultiDecl builds a MULTIDECL destructuring several names out of one
// tuple-valued expr.
func NewMultiDecl(names []string, expr string) Instruction {
	args := make([]Arg, len(names))
	for i, n := range names {
		args[i] = StrArg(n)
	}
	return Instruction{Op: MULTIDECL, Args: args, Refs: []string{expr}}
}

// NewCall builds a CALL to a named function with positional argument refs.
func NewCall(dest, funcName string, args []string) Instruction {
	return Instruction{Op: CALL, Dest: dest, Args: []Arg{StrArg(funcName)}, Refs: args}
}

// NewPrint builds a PRINT of one value.
func NewPrint(ref string) Instruction {
	return Instruction{Op: PRINT, Refs: []string{ref}}
}

// NewParam builds a PARAM pseudo-instruction binding a destination to a
// function parameter's declared type.
func NewParam(dest, typeName string) Instruction {
	return Instruction{Op: PARAM, Dest: dest, TypeName: typeName}
}

// NewField builds a FIELD projection: refs = (ref,).
func NewField(dest, ref string) Instruction {
	return Instruction{Op: FIELD, Dest: dest, Refs: []string{ref}}
}

// NewInit builds an INIT (struct literal construction): TypeName carries
// the struct type, refs carry field values in declaration order.
func NewInit(dest, typeName string, fieldValues []string) Instruction {
	return Instruction{Op: INIT, Dest: dest, TypeName: typeName, Refs: fieldValues}
}

// NewSyscall / NewAsm carry an opaque reference list the type checker
// leaves Inferred unless already constrained.
func NewSyscall(dest string, refs []string) Instruction {
	return Instruction{Op: SYSCALL, Dest: dest, Refs: refs}
}

func NewAsm(dest string, refs []string) Instruction {
	return Instruction{Op: ASM, Dest: dest, Refs: refs}
}

// NewNop builds a NOP, the placeholder LVN leaves behind for a redundant
// computation.
func NewNop() Instruction { return Instruction{Op: NOP} }

// --- Terminators

// NewBr builds a BR: refs = (cond,), args = (trueSuccessor, falseSuccessor)
// as block positions within the owning Function.
func NewBr(cond string, trueIdx, falseIdx int) Instruction {
	return Instruction{Op: BR, Refs: []string{cond}, Args: []Arg{IntArg(int64(trueIdx)), IntArg(int64(falseIdx))}}
}

// NewJmp builds a JMP: args = (successor,).
func NewJmp(targetIdx int) Instruction {
	return Instruction{Op: JMP, Args: []Arg{IntArg(int64(targetIdx))}}
}

// NewRet builds a RET, optionally returning values.
func NewRet(refs ...string) Instruction {
	return Instruction{Op: RET, Refs: refs}
}
