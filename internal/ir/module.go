package ir

import "kansomid/internal/types"

// Literal is one entry of a module's constant data pool: a type-tagged
// payload too large or too structured to inline as an Arg (strings, byte
// arrays).
type Literal struct {
	TypeTag string
	Bytes   []byte
}

// Module is the top-level compilation unit: an ordered function table plus
// the shared data pool, named constants, user-defined types and imports
// described in §3.
type Module struct {
	Name      string
	Functions map[string]*Function
	DataPool  []Literal
	Constants map[string]Arg
	UserTypes map[string]*types.Struct
	Imports   map[string]*Module
}

// NewModule builds an empty module ready to receive functions.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Functions: make(map[string]*Function),
		Constants: make(map[string]Arg),
		UserTypes: make(map[string]*types.Struct),
		Imports:   make(map[string]*Module),
	}
}

// AddFunction registers fn under its own name.
func (m *Module) AddFunction(fn *Function) {
	m.Functions[fn.Name] = fn
}

// EntryFunction returns the function whose name equals the module's own
// name — the implicit module-initialization entry point, matching how the
// original locates the root of the call graph for reachability pruning.
func (m *Module) EntryFunction() *Function {
	return m.Functions[m.Name]
}
