// Package ir implements the IR data model: operations, instructions, basic
// blocks, functions and modules, together with the per-block local
// transformations (gen/use, canonicalize, to_ssa, dce, lvn, borrow_check).
package ir

// Op is the closed opcode tag set, partitioned per the governing
// specification's DATA MODEL section. Per the REDESIGN FLAGS note
// ("Instruction becomes a discriminated record"), Op replaces the source's
// dynamically-typed, string-based opcode with a sealed enum.
type Op int

const (
	// Arithmetic
	ADD Op = iota
	SUB
	MUL
	DIV
	MOD

	// Logical
	AND
	OR
	NOT
	EQ
	NEQ
	GT
	LT
	GTE
	LTE

	// Misc
	DOT
	ACCESS
	AS
	INDEX
	ASSIGN
	LIT
	BRW
	REF
	MOVE
	COPY
	PARAM
	FIELD
	INIT

	// Side-effecting
	RET
	PRINT
	CALL
	ALLOC
	FREE
	SYSCALL
	DECL
	MULTIDECL
	ASM

	// Terminators
	BR
	JMP

	// Meta
	NOP
	LABEL
	BLANK // the '_' pseudo-destination for multi-value calls
)

var opNames = map[Op]string{
	ADD: "add", SUB: "sub", MUL: "mul", DIV: "div", MOD: "mod",
	AND: "and", OR: "or", NOT: "not", EQ: "eq", NEQ: "neq", GT: "gt", LT: "lt", GTE: "gte", LTE: "lte",
	DOT: "dot", ACCESS: "access", AS: "as", INDEX: "index", ASSIGN: "assign", LIT: "lit",
	BRW: "brw", REF: "ref", MOVE: "move", COPY: "copy", PARAM: "param", FIELD: "field", INIT: "init",
	RET: "ret", PRINT: "print", CALL: "call", ALLOC: "alloc", FREE: "free",
	SYSCALL: "syscall", DECL: "decl", MULTIDECL: "multidecl", ASM: "asm",
	BR: "br", JMP: "jmp",
	NOP: "nop", LABEL: "label", BLANK: "_",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "unknown"
}

// IsTerminator reports whether op belongs to the closed terminator set
// {BR, JMP, RET}.
func (o Op) IsTerminator() bool {
	return o == BR || o == JMP || o == RET
}

// sideEffecting is the set an op must belong to for DCE to keep it
// unconditionally, per §3's Side-effecting partition.
var sideEffecting = map[Op]bool{
	RET: true, PRINT: true, CALL: true, ALLOC: true, FREE: true,
	SYSCALL: true, DECL: true, MULTIDECL: true, ASM: true,
}

// IsSideEffecting reports whether op must survive dead-code elimination
// regardless of whether its destination is used downstream.
func (o Op) IsSideEffecting() bool {
	return sideEffecting[o]
}

// IsArithmeticOrLogical reports whether op is one of the pure binary
// operators eligible for LVN/canonicalize/constant-propagation.
func (o Op) IsArithmeticOrLogical() bool {
	switch o {
	case ADD, SUB, MUL, DIV, MOD, AND, OR, EQ, NEQ, GT, LT, GTE, LTE:
		return true
	}
	return false
}

// IsCommutative reports whether op's two operands may be reordered during
// canonicalization.
func (o Op) IsCommutative() bool {
	switch o {
	case ADD, MUL, AND, OR, EQ, NEQ:
		return true
	}
	return false
}
