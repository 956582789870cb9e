package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/ir"
)

func TestInsertDropsSingleBlock(t *testing.T) {
	entry := ir.NewBlock("entry", []ir.Instruction{
		ir.NewAlloc("p", "i64"),
		ir.NewPrint("p"),
	}, ir.NewRet())
	fn := ir.NewFunction("test", nil, nil, []*ir.Block{entry})

	require.NoError(t, InsertDrops(fn))
	last := entry.Instructions[len(entry.Instructions)-1]
	assert.Equal(t, ir.FREE, last.Op)
	assert.Equal(t, "p", last.Args[0].Str)
}

func TestInsertDropsAtJoinPostDominator(t *testing.T) {
	entry := ir.NewBlock("entry", []ir.Instruction{
		ir.NewAlloc("p", "i64"),
		ir.NewBinary(ir.GT, "cond", "p", "p"),
	}, ir.NewBr("cond", 1, 2))
	left := ir.NewBlock("L", nil, ir.NewJmp(3))
	right := ir.NewBlock("R", nil, ir.NewJmp(3))
	end := ir.NewBlock("end", []ir.Instruction{
		ir.NewPrint("p"),
	}, ir.NewRet())
	fn := ir.NewFunction("test", nil, nil, []*ir.Block{entry, left, right, end})

	require.NoError(t, InsertDrops(fn))
	last := end.Instructions[len(end.Instructions)-1]
	assert.Equal(t, ir.FREE, last.Op)
	assert.Empty(t, left.Instructions)
	assert.Empty(t, right.Instructions)
}

func TestInsertDropsLeavesExplicitFreeAlone(t *testing.T) {
	entry := ir.NewBlock("entry", []ir.Instruction{
		ir.NewAlloc("p", "i64"),
		ir.NewFree("p"),
	}, ir.NewRet())
	fn := ir.NewFunction("test", nil, nil, []*ir.Block{entry})

	require.NoError(t, InsertDrops(fn))
	assert.Len(t, entry.Instructions, 2)
}
