package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleBlockSource = `@main()
$entry
x:=42
print x
ret
end
`

func TestCompileRunsFullPipeline(t *testing.T) {
	res, err := Compile("single.irtxt", singleBlockSource, "main", DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, res.Module.Functions, "main")

	env, ok := res.Envs["main"]
	require.True(t, ok)
	assert.Contains(t, env, "x")
}

func TestCompileRejectsUndefinedCallee(t *testing.T) {
	const source = `@main()
$entry
y:=call missing
ret
end
`
	_, err := Compile("bad.irtxt", source, "main", DefaultOptions())
	require.Error(t, err)
}

func TestCompileStopsAtBorrowConflict(t *testing.T) {
	const source = `@main()
$entry
x:=32
r1:=brw x
r2:=ref x
print r1
ret
end
`
	_, err := Compile("conflict.irtxt", source, "main", DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already shared borrowed by 'r1'")
}
