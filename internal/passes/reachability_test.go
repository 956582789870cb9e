package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/ir"
)

func TestRemoveUnusedFunctionsPrunesUncalled(t *testing.T) {
	mod := ir.NewModule("main")
	mod.AddFunction(ir.NewFunction("main", nil, nil, []*ir.Block{
		ir.NewBlock("entry", []ir.Instruction{
			ir.NewCall("_", "used", nil),
		}, ir.NewRet()),
	}))
	mod.AddFunction(ir.NewFunction("used", nil, nil, []*ir.Block{
		ir.NewBlock("entry", nil, ir.NewRet()),
	}))
	mod.AddFunction(ir.NewFunction("unused", nil, nil, []*ir.Block{
		ir.NewBlock("entry", nil, ir.NewRet()),
	}))

	var logged []string
	removed := RemoveUnusedFunctions(mod, func(s string) { logged = append(logged, s) })

	assert.Equal(t, []string{"unused"}, removed)
	require.Contains(t, mod.Functions, "main")
	require.Contains(t, mod.Functions, "used")
	assert.NotContains(t, mod.Functions, "unused")
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "unused")
}

func TestRemoveUnusedFunctionsNoopWhenAllReachable(t *testing.T) {
	mod := ir.NewModule("main")
	mod.AddFunction(ir.NewFunction("main", nil, nil, []*ir.Block{
		ir.NewBlock("entry", nil, ir.NewRet()),
	}))

	removed := RemoveUnusedFunctions(mod, nil)
	assert.Empty(t, removed)
}
