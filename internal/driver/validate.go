package driver

import "kansomid/internal/ir"

// ValidationError reports a structural problem in a Module that predates
// type or borrow checking: a function with no blocks, or a call to a name
// the module never defines.
type ValidationError struct {
	Function string
	Reason   string
}

func (e *ValidationError) Error() string {
	return "invalid function " + e.Function + ": " + e.Reason
}

// Validate checks the structural invariants §3 assumes before any
// analysis runs. Block-index terminator targets are already enforced by
// ir.NewFunction itself (it panics on an out-of-range BR/JMP), so this
// only covers what construction can't: an entry-less function, and a
// CALL naming a function the module never defines.
func Validate(mod *ir.Module) error {
	for name, fn := range mod.Functions {
		if len(fn.Blocks) == 0 {
			return &ValidationError{Function: name, Reason: "no blocks"}
		}
		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				if inst.Op != ir.CALL || len(inst.Args) == 0 {
					continue
				}
				callee := inst.Args[0].Str
				if _, ok := mod.Functions[callee]; !ok {
					return &ValidationError{
						Function: name,
						Reason:   "calls undefined function " + callee,
					}
				}
			}
		}
	}
	return nil
}
