package types

// Registry interns Types by their printed form: two structurally equal
// types share a single representative, so equality on interned handles is
// pointer equality. Scoped per type-check invocation rather than global.
type Registry struct {
	interned map[string]Type
	builtins map[string]Type
	user     map[string]*Struct
}

// NewRegistry builds a registry pre-populated with the builtin primitive set.
func NewRegistry() *Registry {
	r := &Registry{
		interned: make(map[string]Type),
		builtins: make(map[string]Type),
		user:     make(map[string]*Struct),
	}
	r.initBuiltins()
	return r
}

func (r *Registry) initBuiltins() {
	prims := []Primitive{
		{Name: "void", Bits: 0},
		{Name: "bool", Bits: 8},
		{Name: "char", Bits: 8},
		{Name: "int", Bits: 64},
		{Name: "i8", Bits: 8}, {Name: "i16", Bits: 16}, {Name: "i32", Bits: 32}, {Name: "i64", Bits: 64},
		{Name: "u8", Bits: 8}, {Name: "u16", Bits: 16}, {Name: "u32", Bits: 32}, {Name: "u64", Bits: 64},
		{Name: "f32", Bits: 32}, {Name: "f64", Bits: 64},
	}
	for _, p := range prims {
		r.builtins[p.Name] = r.Intern(p)
	}
	r.builtins["str"] = r.Intern(Pointer{Pointee: r.builtins["char"]})
	r.builtins["void*"] = r.Intern(Pointer{Pointee: nil})
}

// Intern returns the canonical representative for t, registering it on
// first sight.
func (r *Registry) Intern(t Type) Type {
	key := t.String()
	if existing, ok := r.interned[key]; ok {
		return existing
	}
	r.interned[key] = t
	return t
}

// Lookup returns the interned representative for a printed key, if any.
func (r *Registry) Lookup(key string) (Type, bool) {
	t, ok := r.interned[key]
	return t, ok
}

// Builtin resolves a builtin type name (including the "void*" and "str" aliases).
func (r *Registry) Builtin(name string) (Type, bool) {
	t, ok := r.builtins[name]
	return t, ok
}

// IsBuiltin reports whether name is a recognized builtin type name.
func (r *Registry) IsBuiltin(name string) bool {
	_, ok := r.builtins[name]
	return ok
}

// AddUserType registers a user-defined struct type by name.
func (r *Registry) AddUserType(s *Struct) {
	r.user[s.Name] = s
	r.interned[s.String()] = s
}

// UserType looks up a previously-registered user-defined struct.
func (r *Registry) UserType(name string) (*Struct, bool) {
	s, ok := r.user[name]
	return s, ok
}

// IsUserDefined reports whether name names a registered struct type.
func (r *Registry) IsUserDefined(name string) bool {
	_, ok := r.user[name]
	return ok
}

// IsValidType reports whether name resolves to either a builtin or a
// user-defined type.
func (r *Registry) IsValidType(name string) bool {
	return r.IsBuiltin(name) || r.IsUserDefined(name)
}

// Resolve looks up a type by its source-level name, in builtin then
// user-defined order.
func (r *Registry) Resolve(name string) (Type, bool) {
	if t, ok := r.builtins[name]; ok {
		return t, true
	}
	if s, ok := r.user[name]; ok {
		return s, true
	}
	return nil, false
}
