package cbg_test

import (
	"testing"

	"github.com/herohde/cbh2pgn/pkg/cb"
	"github.com/herohde/cbh2pgn/pkg/cbg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardBoard(t *testing.T) {
	b := cbg.NewStandardBoard()
	require.NoError(t, b.Validate())

	tests := []struct {
		sq    cb.Square
		color cb.Color
		piece cb.Piece
		index uint8
	}{
		{cb.A1, cb.White, cb.Rook, 0},
		{cb.H1, cb.White, cb.Rook, 1},
		{cb.B1, cb.White, cb.Knight, 0},
		{cb.G1, cb.White, cb.Knight, 1},
		{cb.C1, cb.White, cb.Bishop, 0},
		{cb.F1, cb.White, cb.Bishop, 1},
		{cb.D1, cb.White, cb.Queen, 0},
		{cb.E1, cb.White, cb.King, cbg.KingSlot},
		{cb.A2, cb.White, cb.Pawn, 0},
		{cb.H2, cb.White, cb.Pawn, 7},
		{cb.D8, cb.Black, cb.Queen, 0},
		{cb.E8, cb.Black, cb.King, cbg.KingSlot},
		{cb.C7, cb.Black, cb.Pawn, 2},
		{cb.A8, cb.Black, cb.Rook, 0},
	}
	for _, tt := range tests {
		color, piece, index, ok := b.At(tt.sq)
		require.True(t, ok, "%v empty", tt.sq)
		assert.Equal(t, tt.color, color)
		assert.Equal(t, tt.piece, piece)
		assert.Equal(t, tt.index, index)

		sq, ok := b.Lookup(tt.color, tt.piece, tt.index)
		require.True(t, ok)
		assert.Equal(t, tt.sq, sq)
	}
}

func TestBoardPlaceRemove(t *testing.T) {
	var b cbg.Board
	require.NoError(t, b.Place(cb.D4, cb.White, cb.Knight, 1))

	assert.Error(t, b.Place(cb.D4, cb.Black, cb.Queen, 0), "occupied square")
	assert.Error(t, b.Place(cb.A1, cb.White, cb.Knight, 1), "assigned index")

	color, piece, index, ok := b.Remove(cb.D4)
	require.True(t, ok)
	assert.Equal(t, cb.White, color)
	assert.Equal(t, cb.Knight, piece)
	assert.Equal(t, uint8(1), index)

	_, _, _, ok = b.Remove(cb.D4)
	assert.False(t, ok)

	require.NoError(t, b.Place(cb.A1, cb.White, cb.Knight, 1))
	require.NoError(t, b.Validate())
}

func TestBoardMoveTo(t *testing.T) {
	b := cbg.NewStandardBoard()
	require.NoError(t, b.MoveTo(cb.White, cb.Knight, 1, cb.F3))

	sq, ok := b.Lookup(cb.White, cb.Knight, 1)
	require.True(t, ok)
	assert.Equal(t, cb.F3, sq)

	_, _, _, ok = b.At(cb.G1)
	assert.False(t, ok)
	require.NoError(t, b.Validate())

	assert.Error(t, b.MoveTo(cb.White, cb.Knight, 1, cb.E1), "occupied destination")
	assert.Error(t, b.MoveTo(cb.White, cb.Queen, 3, cb.E4), "unassigned index")
}

func TestBoardPromote(t *testing.T) {
	var b cbg.Board
	require.NoError(t, b.Place(cb.A8, cb.White, cb.Pawn, 0))
	require.NoError(t, b.Place(cb.B8, cb.White, cb.Pawn, 1))
	require.NoError(t, b.Place(cb.D1, cb.White, cb.Queen, 0))

	// The queen bucket holds index 0, so promotion takes index 1, then 2.
	index, ok := b.Promote(cb.White, 0, cb.Queen)
	require.True(t, ok)
	assert.Equal(t, uint8(1), index)

	index, ok = b.Promote(cb.White, 1, cb.Queen)
	require.True(t, ok)
	assert.Equal(t, uint8(2), index)

	_, _, _, ok = b.At(cb.A8)
	require.True(t, ok)
	sq, ok := b.Lookup(cb.White, cb.Queen, 1)
	require.True(t, ok)
	assert.Equal(t, cb.A8, sq)

	_, ok = b.Lookup(cb.White, cb.Pawn, 0)
	assert.False(t, ok, "pawn index freed")
	require.NoError(t, b.Validate())

	_, ok = b.Promote(cb.White, 5, cb.Queen)
	assert.False(t, ok, "no such pawn")
}

func TestBoardPromoteReusesFreedIndex(t *testing.T) {
	b := cbg.NewStandardBoard()

	// Capture the original queen and clear a8: a promotion then reuses index 0.
	_, _, _, ok := b.Remove(cb.D1)
	require.True(t, ok)
	_, _, _, ok = b.Remove(cb.A8)
	require.True(t, ok)
	require.NoError(t, b.MoveTo(cb.White, cb.Pawn, 0, cb.A8))

	index, ok := b.Promote(cb.White, 0, cb.Queen)
	require.True(t, ok)
	assert.Equal(t, uint8(0), index)
	require.NoError(t, b.Validate())
}

func TestBoardSnapshot(t *testing.T) {
	b := cbg.NewStandardBoard()
	snapshot := b

	require.NoError(t, b.MoveTo(cb.White, cb.Pawn, 4, cb.E4))
	_, _, _, ok := b.At(cb.E2)
	assert.False(t, ok)

	b = snapshot
	_, _, _, ok = b.At(cb.E2)
	assert.True(t, ok, "snapshot restored")
	require.NoError(t, b.Validate())
}
