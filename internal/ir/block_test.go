package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(dest string, v int64) Instruction {
	return NewLit(dest, "int", 0, IntArg(v))
}

func TestBlockUseFreeVariables(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		lit("a", 1),
		NewBinary(ADD, "b", "a", "c"),
	}}
	assert.Equal(t, map[string]bool{"c": true}, b.Use())
	assert.Equal(t, map[string]bool{"a": true, "b": true}, b.Gen())
}

func TestBlockDCERemovesDeadCode(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		lit("x", 1),
		lit("y", 2), // never read; must be dropped
		NewPrint("x"),
	}}
	b.DCE(nil)
	require.Len(t, b.Instructions, 2)
	assert.Equal(t, "x", b.Instructions[0].Dest)
	assert.Equal(t, PRINT, b.Instructions[1].Op)
}

func TestBlockDCEDoesNotDropRedefinitionStillRead(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		lit("x", 1),
		NewPrint("x"),
		lit("x", 2),
		NewPrint("x"),
	}}
	b.DCE(nil)
	assert.Len(t, b.Instructions, 4)
}

func TestBlockDCEHonorsKeepSet(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		lit("x", 1),
	}}
	b.DCE(map[string]bool{"x": true})
	require.Len(t, b.Instructions, 1)
}

func TestBlockLVNRemovesDuplicateValues(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		lit("a", 1),
		lit("b", 1), // same payload as a: becomes NOP, rebinds to a's value number
		NewBinary(ADD, "c", "a", "b"),
		NewPrint("c"),
	}}
	table, _ := b.LVN(map[int]LVNEntry{}, map[string]int{})
	assert.NotEmpty(t, table)
	// b collapsed into a NOP that RemoveNop then deleted, so only 3 insts remain.
	require.Len(t, b.Instructions, 3)
	add := b.Instructions[1]
	assert.Equal(t, ADD, add.Op)
	assert.Equal(t, []string{"a", "a"}, add.Refs)
}

func TestBlockLVNWithOverwrittenVariable(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		lit("a", 1),
		NewBinary(ADD, "b", "a", "a"),
		lit("a", 2),
		NewBinary(ADD, "c", "a", "a"),
	}}
	b.ToSSA()
	require.Equal(t, "a", b.Instructions[0].Dest)
	require.Equal(t, "a'0", b.Instructions[2].Dest)

	_, env := b.LVN(map[int]LVNEntry{}, map[string]int{})
	assert.Contains(t, env, "a")
	assert.Contains(t, env, "a'0")
	assert.NotEqual(t, env["a"], env["a'0"])
}

func TestBlockCanonicalizeSortsCommutativeRefs(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		NewBinary(ADD, "s", "y", "x"),
		NewBinary(SUB, "d", "y", "x"),
	}}
	b.Canonicalize()
	assert.Equal(t, []string{"x", "y"}, b.Instructions[0].Refs)
	assert.Equal(t, []string{"y", "x"}, b.Instructions[1].Refs) // SUB is not commutative
}

func TestBlockBorrowCheckAllowsUnconflictingLoan(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		NewUnaryRef(REF, "r", "x"),
		NewPrint("r"),
	}}
	live := map[string]bool{"x": true, "r": true}
	out, err := b.BorrowCheck(Loans{}, live)
	require.NoError(t, err)
	assert.Equal(t, BorrowState{Kind: ExclusivelyBorrowed, Of: "r"}, out["x"])
	assert.Equal(t, BorrowState{Kind: ExclusivelyBorrowing, Of: "x"}, out["r"])
}

func TestBlockBorrowCheckTransfersStateOnMoveOfABorrow(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		NewUnaryRef(REF, "r", "x"),
		NewUnaryRef(MOVE, "r2", "r"),
	}}
	live := map[string]bool{"x": true, "r": true, "r2": true}
	out, err := b.BorrowCheck(Loans{}, live)
	require.NoError(t, err)
	assert.Equal(t, BorrowState{Kind: Moved, Of: "r2"}, out["r"])
	assert.Equal(t, BorrowState{Kind: Owning, Of: "r"}, out["r2"])
}

func TestBlockBorrowCheckAllowsMoveThenUseOfTarget(t *testing.T) {
	// x:=32; y:=move x; _:=call print y
	b := &Block{Instructions: []Instruction{
		lit("x", 32),
		NewUnaryRef(MOVE, "y", "x"),
		NewCall("_", "print", []string{"y"}),
	}}
	_, err := b.BorrowCheck(Loans{}, map[string]bool{"x": true, "y": true, "_": true})
	require.NoError(t, err)
}

func TestBlockBorrowCheckDetectsUseOfMovedValue(t *testing.T) {
	// x:=32; y:=move x; _:=call print x
	b := &Block{Instructions: []Instruction{
		lit("x", 32),
		NewUnaryRef(MOVE, "y", "x"),
		NewCall("_", "print", []string{"x"}),
	}}
	_, err := b.BorrowCheck(Loans{}, map[string]bool{"x": true, "y": true, "_": true})
	require.Error(t, err)
	assert.Equal(t, "Cannot use moved value 'x', it was moved to 'y'", err.Error())
}

func TestBlockBorrowCheckDetectsExclusiveBorrowWhileShared(t *testing.T) {
	// x:=32; r1:=brw x; r2:=ref x; print r1
	b := &Block{Instructions: []Instruction{
		lit("x", 32),
		NewUnaryRef(BRW, "r1", "x"),
		NewUnaryRef(REF, "r2", "x"),
		NewPrint("r1"),
	}}
	live := map[string]bool{"x": true, "r1": true, "r2": true}
	_, err := b.BorrowCheck(Loans{}, live)
	require.Error(t, err)
	assert.Equal(t, "'r2' cannot mutably borrow 'x'; 'x' already shared borrowed by 'r1'", err.Error())

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, ExclusiveWhileShared, v.Kind)
}

func TestBlockCheckDropsTracksOutstandingAllocations(t *testing.T) {
	b := &Block{Instructions: []Instruction{
		NewAlloc("p", "i64"),
		NewFree("p"),
		NewAlloc("q", "i64"),
	}}
	allocated := map[string]bool{}
	b.CheckDrops(allocated)
	assert.False(t, allocated["p"])
	assert.True(t, allocated["q"])
}
