package types

// widening is the integer/float widening table from §4.4: for a source
// primitive name, the set of target primitive names it may widen to.
var widening = map[string]map[string]bool{
	"bool": set("char", "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f32", "f64", "int"),
	"i8":   set("i16", "i32", "i64", "f32", "f64", "int"),
	"u8":   set("u16", "u32", "u64", "i16", "i32", "i64", "f32", "f64", "int"),
	"i16":  set("i32", "i64", "f32", "f64", "int"),
	"u16":  set("u32", "u64", "i32", "i64", "f32", "f64", "int"),
	"i32":  set("i64", "f64", "int"),
	"u32":  set("u64", "i64", "f64", "int"),
	"f32":  set("f64"),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func widens(from, to string) bool {
	if from == to {
		return true
	}
	targets, ok := widening[from]
	return ok && targets[to]
}

// IsSubtype implements the `a <: b` relation of §4.4.
func IsSubtype(a, b Type) bool {
	if _, ok := b.(Inferred); ok {
		return true
	}
	if a == b {
		return true
	}

	switch at := a.(type) {
	case Primitive:
		if bt, ok := b.(Primitive); ok {
			return widens(at.Name, bt.Name)
		}
	case Literal:
		if bt, ok := b.(Primitive); ok {
			if bt.Name == "bool" {
				return at.Value == 0 || at.Value == 1
			}
			return isIntegerPrimitive(bt.Name) && bt.Size() >= at.Size()
		}
	case Pointer:
		if bt, ok := b.(Pointer); ok {
			return pointerSubtype(at, bt)
		}
	case Array:
		if bt, ok := b.(Pointer); ok {
			return at.Elem == bt.Pointee || IsSubtype(at.Elem, bt.Pointee)
		}
	case Optional:
		if bt, ok := b.(Optional); ok {
			return at.Base == bt.Base || IsSubtype(at.Base, bt.Base)
		}
		return IsSubtype(at.Base, b)
	}

	// A non-optional base is a subtype of Optional(base), per §4.4.
	if bt, ok := b.(Optional); ok {
		return a == bt.Base || IsSubtype(a, bt.Base)
	}

	return false
}

func isIntegerPrimitive(name string) bool {
	switch name {
	case "i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "int":
		return true
	}
	return false
}

// pointerSubtype implements the REF/BRW/void* compatibility rules: a MUT
// source pointer may widen to a non-MUT target (never the reverse), and
// `void*` (Pointee == nil) is a universal super/subtype — a deliberately
// kept hack, see DESIGN.md's "Resolved open questions".
func pointerSubtype(a, b Pointer) bool {
	if a.Pointee == nil || b.Pointee == nil {
		return true
	}
	sameOrSub := a.Pointee == b.Pointee || IsSubtype(a.Pointee, b.Pointee)
	if !sameOrSub {
		return false
	}
	qualOK := a.Qualifier == Mut || b.Qualifier != Mut
	return qualOK
}

// Peer resolves the join of two operand types under a binary operation: the
// common supertype reached by widening in either direction, or Literal
// narrowing to a Primitive. Returns ok=false if no common supertype exists.
func Peer(a, b Type) (Type, bool) {
	if a == b {
		return a, true
	}
	if IsSubtype(a, b) {
		return b, true
	}
	if IsSubtype(b, a) {
		return a, true
	}
	if la, ok := a.(Literal); ok {
		if pb, ok := b.(Primitive); ok && IsSubtype(la, pb) {
			return pb, true
		}
	}
	if lb, ok := b.(Literal); ok {
		if pa, ok := a.(Primitive); ok && IsSubtype(lb, pa) {
			return pa, true
		}
	}
	return nil, false
}
