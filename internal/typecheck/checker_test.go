package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/ir"
	"kansomid/internal/textir"
	"kansomid/internal/types"
)

func parseModule(t *testing.T, source string) *ir.Module {
	t.Helper()
	mod, err := textir.Parse("test.irtxt", source, "")
	require.NoError(t, err)
	return mod
}

func TestCheckSingleBlockMoveInfersVoidForBlank(t *testing.T) {
	mod := parseModule(t, `@test()
$entry
x:=32
y:=move x
_:=call print y
ret
end
`)
	mod.AddFunction(ir.NewFunction("print", []ir.Param{{Name: "v", Type: "int"}}, nil, []*ir.Block{
		ir.NewBlock("entry", nil, ir.NewRet()),
	}))

	c := NewChecker(types.NewRegistry(), mod)
	env, err := c.CheckFunction(mod.Functions["test"])
	require.NoError(t, err)
	assert.Equal(t, types.Primitive{Name: "void", Bits: 0}, env["_"])
	assert.Equal(t, types.Literal{Value: 32}, env["x"])
	assert.Equal(t, types.Literal{Value: 32}, env["y"])
}

func TestCheckCallArityMismatch(t *testing.T) {
	mod := parseModule(t, `@test()
$entry
_:=call print
ret
end
`)
	mod.AddFunction(ir.NewFunction("print", []ir.Param{{Name: "v", Type: "int"}}, nil, []*ir.Block{
		ir.NewBlock("entry", nil, ir.NewRet()),
	}))

	c := NewChecker(types.NewRegistry(), mod)
	_, err := c.CheckFunction(mod.Functions["test"])
	require.Error(t, err)
}

func TestCheckAssignRejectsWideningIntoNarrowDeclaration(t *testing.T) {
	mod := ir.NewModule("test")
	entry := ir.NewBlock("entry", []ir.Instruction{
		ir.NewDecl("x", "u8", "lit1"),
		ir.NewDecl("y", "int", "lit2"),
		ir.NewAssign("x", "y"),
	}, ir.NewRet())
	entry.Instructions = append([]ir.Instruction{
		ir.NewLit("lit1", "int", 0, ir.IntArg(32)),
		ir.NewLit("lit2", "int", 0, ir.IntArg(1000000)),
	}, entry.Instructions...)
	mod.AddFunction(ir.NewFunction("test", nil, nil, []*ir.Block{entry}))

	c := NewChecker(types.NewRegistry(), mod)
	_, err := c.CheckFunction(mod.Functions["test"])
	require.Error(t, err)
}
