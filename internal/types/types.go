// Package types implements the type lattice described by the middle-end's
// type system: primitive, literal, pointer, array, struct, function,
// optional, generic and instantiated-generic types, plus the subtype
// relation and peer resolution used by the type checker.
package types

import (
	"fmt"
	"strings"
)

// Qualifier marks mutability on a pointer or reference.
type Qualifier int

const (
	Const Qualifier = iota
	Mut
)

// Type is the common interface implemented by every lattice member.
// Printed form doubles as the interning key (see Registry).
type Type interface {
	String() string
	Size() int
}

// Inferred is the lattice top: it is a supertype of every type, compatible
// with anything until resolved. A destination left at Inferred after type
// checking is a hard TypeError.
type Inferred struct{}

func (Inferred) String() string { return "<inferred>" }
func (Inferred) Size() int      { return 0 }

// Primitive is a concrete nominal scalar type (bool, iN, uN, fN, char, int, void...).
type Primitive struct {
	Name string
	Bits int
}

func (p Primitive) String() string { return p.Name }
func (p Primitive) Size() int      { return p.Bits / 8 }

// Literal is a singleton type representing an integer literal value whose
// size is derived from its bit length, per §4.4.
type Literal struct {
	Value int64
}

func (l Literal) String() string { return fmt.Sprintf("literal(%d)", l.Value) }
func (l Literal) Size() int {
	n := l.Value
	if n < 0 {
		n = -n - 1
	}
	bits := 1
	for n > 0 {
		bits++
		n >>= 1
	}
	return bits/8 + 1
}

// Pointer models both REF (exclusive borrow) and BRW (shared borrow) result
// types, and plain pointers. A nil Pointee denotes `void*`, the documented
// universal-compatibility hack (see DESIGN.md).
type Pointer struct {
	Pointee   Type
	Qualifier Qualifier
}

func (p Pointer) String() string {
	q := ""
	if p.Qualifier == Mut {
		q = "mut "
	}
	if p.Pointee == nil {
		return fmt.Sprintf("*%svoid", q)
	}
	return fmt.Sprintf("*%s%s", q, p.Pointee.String())
}
func (p Pointer) Size() int { return 8 }

// Array is a fixed-length homogeneous sequence.
type Array struct {
	Elem Type
	Len  int
}

func (a Array) String() string { return fmt.Sprintf("[%s;%d]", a.Elem.String(), a.Len) }
func (a Array) Size() int      { return a.Elem.Size() * a.Len }

// Function is a callable signature.
type Function struct {
	Params  []Type
	Returns []Type
}

func (f Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	returns := make([]string, len(f.Returns))
	for i, r := range f.Returns {
		returns[i] = r.String()
	}
	ret := ""
	if len(returns) > 0 {
		ret = " -> " + strings.Join(returns, ", ")
	}
	return fmt.Sprintf("fn(%s)%s", strings.Join(params, ", "), ret)
}
func (f Function) Size() int { return 8 }

// StructField is one ordered field of a struct type.
type StructField struct {
	Name string
	Type Type
}

// Struct is a nominal product type with ordered fields.
type Struct struct {
	Name   string
	Fields []StructField
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) Size() int {
	total := 0
	for _, f := range s.Fields {
		total += f.Type.Size()
	}
	return total
}

// FieldType looks up a struct field's type by name. An Array's `len` is
// not handled here; the type checker resolves it.
func (s *Struct) FieldType(name string) (Type, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Optional wraps a base type; Optional(Optional(b)) collapses to Optional(b)
// per §4.4.
type Optional struct {
	Base Type
}

func (o Optional) String() string { return o.Base.String() + "?" }
func (o Optional) Size() int      { return o.Base.Size() + 1 }

// NewOptional builds an Optional, flattening nested optionals.
func NewOptional(base Type) Type {
	if opt, ok := base.(Optional); ok {
		return opt
	}
	return Optional{Base: base}
}

// Generic is an uninstantiated generic type declaration, e.g. Vec<T>.
// The core admits generics syntactically but does not drive instantiation
// (spec.md NON-GOALS); InstantiatedGeneric exists only to model types the
// parser already instantiated upstream.
type Generic struct {
	Name       string
	ParamNames []string
}

func (g Generic) String() string { return fmt.Sprintf("%s<%s>", g.Name, strings.Join(g.ParamNames, ", ")) }
func (g Generic) Size() int      { return -1 }

type InstantiatedGeneric struct {
	Generic Generic
	Args    []Type
}

func (i InstantiatedGeneric) String() string {
	args := make([]string, len(i.Args))
	for n, a := range i.Args {
		args[n] = a.String()
	}
	return fmt.Sprintf("%s<%s>", i.Generic.Name, strings.Join(args, ", "))
}
func (i InstantiatedGeneric) Size() int { return 0 }
