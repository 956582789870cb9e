package textir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kansomid/internal/ir"
)

func TestParseSingleBlockMove(t *testing.T) {
	source := `@test()
$entry
x:=32
y:=move x
_:=call print y
ret
end
`
	mod, err := Parse("test.irtxt", source, "")
	require.NoError(t, err)
	require.NotNil(t, mod)

	fn := mod.Functions["test"]
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 1)

	entry := fn.Blocks[0]
	assert.Equal(t, "entry", entry.Label)
	require.Len(t, entry.Instructions, 3)
	assert.Equal(t, ir.LIT, entry.Instructions[0].Op)
	assert.Equal(t, ir.MOVE, entry.Instructions[1].Op)
	assert.Equal(t, []string{"x"}, entry.Instructions[1].Refs)
	assert.Equal(t, ir.CALL, entry.Instructions[2].Op)
	assert.Equal(t, ir.RET, entry.Terminator.Op)
}

func TestParseDiamondCFGSuccessors(t *testing.T) {
	source := `@diamond()
$entry
x:=34
y:=35
cond:=x>y
br cond $L $R
$L
one:=1
z:=x+one
jmp $end
$R
z:=x+x
jmp $end
$end
zero:=0
x:=z+zero
print x
ret
end
`
	mod, err := Parse("test.irtxt", source, "")
	require.NoError(t, err)
	fn := mod.Functions["diamond"]
	require.NotNil(t, fn)
	require.Len(t, fn.Blocks, 4)

	assert.ElementsMatch(t, []string{"L", "R"}, fn.Successors("entry"))
	assert.ElementsMatch(t, []string{"end"}, fn.Successors("L"))
	assert.ElementsMatch(t, []string{"end"}, fn.Successors("R"))
	assert.Empty(t, fn.Successors("end"))
	assert.ElementsMatch(t, []string{"entry"}, fn.Predecessors("L"))
	assert.ElementsMatch(t, []string{"L", "R"}, fn.Predecessors("end"))
}

func TestParseUnknownBlockReference(t *testing.T) {
	source := `@bad()
$entry
jmp $nowhere
end
`
	_, err := Parse("test.irtxt", source, "")
	require.Error(t, err)
}
