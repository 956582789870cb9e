package borrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/ir"
)

func lit(dest string, v int64) ir.Instruction {
	return ir.NewLit(dest, "int", 0, ir.IntArg(v))
}

func TestCheckFunctionAcceptsCleanMove(t *testing.T) {
	entry := ir.NewBlock("entry", []ir.Instruction{
		lit("x", 32),
		ir.NewUnaryRef(ir.MOVE, "y", "x"),
		ir.NewPrint("y"),
	}, ir.NewRet())
	fn := ir.NewFunction("test", nil, nil, []*ir.Block{entry})

	require.NoError(t, CheckFunction(fn))
}

func TestCheckFunctionRejectsModifyWhileLoaned(t *testing.T) {
	entry := ir.NewBlock("entry", []ir.Instruction{
		ir.NewUnaryRef(ir.REF, "r", "x"),
		lit("x", 9),
	}, ir.NewRet())
	fn := ir.NewFunction("test", nil, nil, []*ir.Block{entry})

	err := CheckFunction(fn)
	require.Error(t, err)
	_, ok := err.(*ConflictError)
	assert.True(t, ok, "expected a *ConflictError, got %T", err)
}

func TestCheckFunctionAcrossDiamondBlocks(t *testing.T) {
	entry := ir.NewBlock("entry", []ir.Instruction{
		lit("x", 34),
		lit("y", 35),
		ir.NewBinary(ir.GT, "cond", "x", "y"),
	}, ir.NewBr("cond", 1, 2))
	left := ir.NewBlock("L", []ir.Instruction{
		lit("one", 1),
		ir.NewBinary(ir.ADD, "z", "x", "one"),
	}, ir.NewJmp(3))
	right := ir.NewBlock("R", []ir.Instruction{
		ir.NewBinary(ir.ADD, "z", "x", "x"),
	}, ir.NewJmp(3))
	end := ir.NewBlock("end", []ir.Instruction{
		ir.NewPrint("z"),
	}, ir.NewRet())

	fn := ir.NewFunction("diamond", nil, nil, []*ir.Block{entry, left, right, end})
	assert.NoError(t, CheckFunction(fn))
}
