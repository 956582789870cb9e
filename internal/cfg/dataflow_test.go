package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/cfg"
	"kansomid/internal/ir"
)

// diamondFunction builds entry -> (left | right) -> join -> ret, the
// canonical diamond CFG §8 scenario 4 (live-variable diamond) analyzes.
func diamondFunction() *ir.Function {
	entry := ir.NewBlock("entry",
		[]ir.Instruction{
			ir.NewLit("x", "int", 0, ir.IntArg(1)),
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

func TestRunForwardPropagatesThroughDiamond(t *testing.T) {
	f := diamondFunction()
	result := cfg.Run(f, cfg.Analysis[cfg.StringSet]{
		Init:    cfg.NewStringSet("x", "c"),
		Forward: true,
		Merge:   cfg.Union,
		Equal:   cfg.StringSet.Equal,
		Transfer: func(b *ir.Block, in cfg.StringSet) cfg.StringSet {
			out := in.Clone()
			for k := range b.Gen() {
				out[k] = true
			}
			return out
		},
	})

	assert.True(t, result.In["join"]["x"])
	assert.True(t, result.Out["left"]["y"])
	assert.True(t, result.Out["right"]["y"])
	assert.True(t, result.In["join"]["y"], "join must see y regardless of which branch ran")
}

func TestRunBackwardPropagatesLiveness(t *testing.T) {
	f := diamondFunction()
	result := cfg.Run(f, cfg.Analysis[cfg.StringSet]{
		Init:    cfg.StringSet{},
		Forward: false,
		Merge:   cfg.Union,
		Equal:   cfg.StringSet.Equal,
		Transfer: func(b *ir.Block, out cfg.StringSet) cfg.StringSet {
			return cfg.Union(cfg.StringSet(b.Use()), cfg.Difference(out, cfg.StringSet(b.Gen())))
		},
	})

	assert.True(t, result.Out["entry"]["x"], "x must be live out of entry: both branches read it")
	assert.True(t, result.In["join"]["y"])
	assert.False(t, result.In["entry"]["y"], "y is not defined until after the branch")
}

func TestNarrowOnEdgeSeesEdgeIndex(t *testing.T) {
	f := diamondFunction()
	var seenTrue, seenFalse bool
	cfg.Run(f, cfg.Analysis[cfg.StringSet]{
		Init:    cfg.StringSet{},
		Forward: true,
		Merge:   cfg.Union,
		Equal:   cfg.StringSet.Equal,
		NarrowOnEdge: func(pred *ir.Block, edgeIndex int, value cfg.StringSet) cfg.StringSet {
			if pred.Label == "entry" {
				if edgeIndex == 0 {
					seenTrue = true
				} else {
					seenFalse = true
				}
			}
			return value
		},
		Transfer: func(b *ir.Block, in cfg.StringSet) cfg.StringSet { return in },
	})

	require.True(t, seenTrue, "left is entry's true (index 0) successor")
	require.True(t, seenFalse, "right is entry's false (index 1) successor")
}

func TestDominatorsOfDiamond(t *testing.T) {
	f := diamondFunction()
	dom := cfg.Dominators(f)

	assert.True(t, dom["join"]["entry"], "entry dominates every block")
	assert.False(t, dom["join"]["left"], "left does not dominate join: right is another path")
	assert.False(t, dom["join"]["right"])

	idom, ok := cfg.ImmediateDominator(dom, "join")
	require.True(t, ok)
	assert.Equal(t, "entry", idom)

	_, ok = cfg.ImmediateDominator(dom, "entry")
	assert.False(t, ok, "entry has no strict dominator")
}
