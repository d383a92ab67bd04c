package cbg

import (
	"testing"

	"github.com/herohde/cbh2pgn/pkg/cb"
	"github.com/stretchr/testify/assert"
)

func TestOpcodePartition(t *testing.T) {
	counts := map[opKind]int{}
	for _, o := range opcodes {
		counts[o.kind]++
	}

	// 10 king codes (8 steps + 2 castles), 28 queen, 2x14 rooks, 2x14 bishops,
	// 2x8 knights, 8x4 pawns.
	assert.Equal(t, 142, counts[opMove])
	assert.Equal(t, 1, counts[opEndGame])
	assert.Equal(t, 1, counts[opNull])
	assert.Equal(t, 1, counts[opPush])
	assert.Equal(t, 1, counts[opPop])
	assert.Equal(t, 1, counts[opComment])
	assert.Equal(t, 1, counts[opAnnotation])
	assert.Equal(t, 256-142-6, counts[opIllegal])
}

func TestOpcodeSlots(t *testing.T) {
	slots := map[cb.Piece]map[uint8]int{}
	for _, o := range opcodes {
		if o.kind != opMove {
			continue
		}
		if slots[o.piece] == nil {
			slots[o.piece] = map[uint8]int{}
		}
		slots[o.piece][o.slot]++
	}

	assert.Equal(t, map[uint8]int{KingSlot: 10}, slots[cb.King])
	assert.Equal(t, map[uint8]int{0: 28}, slots[cb.Queen])
	assert.Equal(t, map[uint8]int{0: 14, 1: 14}, slots[cb.Rook])
	assert.Equal(t, map[uint8]int{0: 14, 1: 14}, slots[cb.Bishop])
	assert.Equal(t, map[uint8]int{0: 8, 1: 8}, slots[cb.Knight])
	assert.Equal(t, map[uint8]int{0: 4, 1: 4, 2: 4, 3: 4, 4: 4, 5: 4, 6: 4, 7: 4}, slots[cb.Pawn])
}

func TestOpcodeSliderCoverage(t *testing.T) {
	// Modulo-8 wrap per axis: the queen's 28 codes reach every other square on
	// the mover's rank, file and diagonals, from any origin.
	targets := map[cb.Square]bool{}
	from := cb.D4
	for _, o := range opcodes {
		if o.kind != opMove || o.piece != cb.Queen {
			continue
		}
		f := (from.File().V() + int(o.df)) & 7
		r := (from.Rank().V() + int(o.dr)) & 7
		targets[cb.NewSquare(cb.File(f), cb.Rank(r))] = true
	}

	assert.Len(t, targets, 27)
	assert.False(t, targets[from])
	for _, want := range []cb.Square{cb.A4, cb.H4, cb.D1, cb.D8, cb.A1, cb.H8, cb.A7, cb.G1} {
		assert.True(t, targets[want], "queen cannot reach %v", want)
	}
}
