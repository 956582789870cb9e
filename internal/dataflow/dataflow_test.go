package dataflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/dataflow"
	"kansomid/internal/ir"
)

// diamondFunction mirrors the live-variable diamond §8 scenario 4 analyzes:
// entry defines x then branches; both arms compute y from x; join only
// needs y, so x is live-out of entry but dead by join.
func diamondFunction() *ir.Function {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{
			ir.NewLit("x", "int", 0, ir.IntArg(7)),
			ir.NewLit("c", "int", 0, ir.IntArg(0)),
		},
		ir.NewBr("c", 1, 2))
	left := ir.NewBlock("left",
		[]ir.Instruction{ir.NewBinary(ir.ADD, "y", "x", "x")},
		ir.NewJmp(3))
	right := ir.NewBlock("right",
		[]ir.Instruction{ir.NewBinary(ir.SUB, "y", "x", "x")},
		ir.NewJmp(3))
	join := ir.NewBlock("join", nil, ir.NewRet("y"))
	return ir.NewFunction("diamond", nil, []string{"y"}, []*ir.Block{entry, left, right, join})
}

func TestLiveVariablesDiamond(t *testing.T) {
	f := diamondFunction()
	result := dataflow.LiveVariables(f)

	assert.True(t, result.Out["entry"]["x"], "x feeds both branches")
	assert.False(t, result.In["join"]["x"], "x is dead by the join point")
	assert.True(t, result.In["join"]["y"])
	assert.False(t, result.Out["join"]["y"], "nothing follows the return")
}

// intervalLoopFunction mirrors §8 scenario 5: x starts at 0 and increments
// by 1 while x<10, so the loop body always sees x in (0,9) and the exit
// always sees x pinned at exactly (10,10).
func intervalLoopFunction() *ir.Function {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{ir.NewLit("x", "int", 0, ir.IntArg(0))},
		ir.NewJmp(1))
	cond := ir.NewBlock("cond",
		[]ir.Instruction{
			ir.NewLit("ten", "int", 0, ir.IntArg(10)),
			ir.NewBinary(ir.LT, "c", "x", "ten"),
		},
		ir.NewBr("c", 2, 3))
	body := ir.NewBlock("body",
		[]ir.Instruction{
			ir.NewLit("one", "int", 0, ir.IntArg(1)),
			ir.NewBinary(ir.ADD, "x", "x", "one"),
		},
		ir.NewJmp(1))
	end := ir.NewBlock("end", nil, ir.NewRet("x"))
	return ir.NewFunction("loop", nil, []string{"x"}, []*ir.Block{entry, cond, body, end})
}

func TestIntervalAnalysisNarrowsLoopBounds(t *testing.T) {
	f := intervalLoopFunction()
	result := dataflow.IntervalAnalysis(f)

	assert.Equal(t, dataflow.Interval{Lo: 0, Hi: 9}, result.In["body"]["x"])
	assert.Equal(t, dataflow.Interval{Lo: 10, Hi: 10}, result.In["end"]["x"])
}

func TestReachingDefinitionsSeedsParameterSentinel(t *testing.T) {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{ir.NewBinary(ir.ADD, "y", "p", "p")},
		ir.NewRet("y"))
	f := ir.NewFunction("withParam", []ir.Param{{Name: "p", Type: "int"}}, []string{"y"}, []*ir.Block{entry})

	result := dataflow.ReachingDefinitions(f)
	assert.True(t, result.In["entry"]["p@__init__"], "p's parameter definition must reach the entry block")
}

func TestReachingDefinitionsKillsPriorDefOnRedefinition(t *testing.T) {
	b1 := ir.NewBlock("b1",
		[]ir.Instruction{ir.NewLit("x", "int", 0, ir.IntArg(1))},
		ir.NewJmp(1))
	b2 := ir.NewBlock("b2",
		[]ir.Instruction{ir.NewLit("x", "int", 0, ir.IntArg(2))},
		ir.NewRet("x"))
	f := ir.NewFunction("redefine", nil, []string{"x"}, []*ir.Block{b1, b2})

	result := dataflow.ReachingDefinitions(f)
	assert.True(t, result.In["b2"]["x@b1"])
	assert.True(t, result.Out["b2"]["x@b2"])
	assert.False(t, result.Out["b2"]["x@b1"], "b2's redefinition kills b1's")
}

// busyExpressionsFunction computes x+y on both branches of a diamond before
// either operand is redefined, so x+y is very busy at entry.
func busyExpressionsFunction() *ir.Function {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{ir.NewLit("c", "int", 0, ir.IntArg(0))},
		ir.NewBr("c", 1, 2))
	left := ir.NewBlock("left",
		[]ir.Instruction{ir.NewBinary(ir.ADD, "a", "x", "y")},
		ir.NewJmp(3))
	right := ir.NewBlock("right",
		[]ir.Instruction{ir.NewBinary(ir.ADD, "b", "x", "y")},
		ir.NewJmp(3))
	join := ir.NewBlock("join", nil, ir.NewRet("a"))
	return ir.NewFunction("busy", []ir.Param{{Name: "x"}, {Name: "y"}}, []string{"a"}, []*ir.Block{entry, left, right, join})
}

func TestVeryBusyExpressionsAnticipatedOnBothPaths(t *testing.T) {
	f := busyExpressionsFunction()
	result := dataflow.VeryBusyExpressions(f)

	assert.True(t, result.Out["entry"]["add:x:y"], "x+y is evaluated on every path out of entry")
	assert.False(t, result.Out["join"]["add:x:y"], "nothing is busy past the return")
}

func TestConstantPropagationAndRewriteFoldsArithmetic(t *testing.T) {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{
			ir.NewLit("a", "int", 0, ir.IntArg(2)),
			ir.NewLit("b", "int", 0, ir.IntArg(3)),
			ir.NewBinary(ir.ADD, "c", "a", "b"),
		},
		ir.NewRet("c"))
	f := ir.NewFunction("fold", nil, []string{"c"}, []*ir.Block{entry})

	result := dataflow.ConstantPropagation(f)
	require.True(t, result.Out["entry"]["c"].Known)

	dataflow.Rewrite(f, result)
	got := f.Block("entry").Instructions[2]
	require.Equal(t, ir.LIT, got.Op)
	require.Len(t, got.Args, 3)
	assert.Equal(t, int64(5), got.Args[2].Int)
}

func TestStaticSliceKeepsOnlyInstructionsAffectingSeed(t *testing.T) {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{
			ir.NewLit("x", "int", 0, ir.IntArg(1)),
			ir.NewLit("unrelated", "int", 0, ir.IntArg(99)),
			ir.NewBinary(ir.ADD, "y", "x", "x"),
		},
		ir.NewRet("y"))

	kept := dataflow.StaticSlice(entry, []string{"y"})

	var dests []string
	for _, inst := range kept {
		dests = append(dests, inst.Dest)
	}
	assert.Contains(t, dests, "y")
	assert.Contains(t, dests, "x")
	assert.NotContains(t, dests, "unrelated")
}
