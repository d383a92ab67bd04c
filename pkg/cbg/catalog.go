package cbg

import (
	"fmt"

	"github.com/herohde/cbh2pgn/pkg/cb"
)

const (
	// KingSlot is the sentinel catalog index for kings. There is at most one
	// king per side, so the king bucket carries no positional indices.
	KingSlot uint8 = 0xff

	// maxSlots is the bucket capacity per (color, piece kind).
	maxSlots = 8
)

// cell is one board square: a piece with its catalog index, or empty.
type cell struct {
	piece cb.Piece
	color cb.Color
	index uint8
}

// Board tracks the 8x8 board and the per-side piece catalog in lockstep. The
// move stream addresses pieces by (kind, catalog index) rather than by square,
// so both views must mirror each other exactly after every opcode. Board is a
// plain value type: a struct copy is a full snapshot.
type Board struct {
	cells [cb.NumSquares]cell
	slots [cb.NumColors][cb.NumPieces][maxSlots]cb.Square
	used  [cb.NumColors][cb.NumPieces]uint8 // occupancy bits per bucket
}

// norm maps the king sentinel to its single internal slot.
func norm(piece cb.Piece, index uint8) uint8 {
	if piece == cb.King {
		return 0
	}
	return index
}

// At returns the content of the given square, if occupied. Kings report the
// KingSlot sentinel index.
func (b *Board) At(sq cb.Square) (cb.Color, cb.Piece, uint8, bool) {
	c := b.cells[sq]
	if c.piece == cb.NoPiece {
		return 0, cb.NoPiece, 0, false
	}
	return c.color, c.piece, c.index, true
}

// Lookup returns the square of the piece at the given catalog position.
func (b *Board) Lookup(color cb.Color, piece cb.Piece, index uint8) (cb.Square, bool) {
	i := norm(piece, index)
	if i >= maxSlots || b.used[color][piece]&(1<<i) == 0 {
		return 0, false
	}
	return b.slots[color][piece][i], true
}

// Place puts a piece on an empty square under an unassigned catalog index.
func (b *Board) Place(sq cb.Square, color cb.Color, piece cb.Piece, index uint8) error {
	if b.cells[sq].piece != cb.NoPiece {
		return fmt.Errorf("%w: square %v occupied", ErrCatalog, sq)
	}
	i := norm(piece, index)
	if i >= maxSlots {
		return fmt.Errorf("%w: index %v out of range", ErrCatalog, index)
	}
	if b.used[color][piece]&(1<<i) != 0 {
		return fmt.Errorf("%w: %v%v %v already assigned", ErrCatalog, color, piece, index)
	}

	b.cells[sq] = cell{piece: piece, color: color, index: index}
	b.slots[color][piece][i] = sq
	b.used[color][piece] |= 1 << i
	return nil
}

// Remove clears the given square and frees its catalog index.
func (b *Board) Remove(sq cb.Square) (cb.Color, cb.Piece, uint8, bool) {
	c := b.cells[sq]
	if c.piece == cb.NoPiece {
		return 0, cb.NoPiece, 0, false
	}
	b.cells[sq] = cell{}
	b.used[c.color][c.piece] &^= 1 << norm(c.piece, c.index)
	return c.color, c.piece, c.index, true
}

// MoveTo relocates the piece at the given catalog position. The destination
// square must be empty; captures are removed by the caller first.
func (b *Board) MoveTo(color cb.Color, piece cb.Piece, index uint8, to cb.Square) error {
	from, ok := b.Lookup(color, piece, index)
	if !ok {
		return fmt.Errorf("%w: %v%v %v not assigned", ErrCatalog, color, piece, index)
	}
	if b.cells[to].piece != cb.NoPiece {
		return fmt.Errorf("%w: square %v occupied", ErrCatalog, to)
	}
	b.cells[to] = b.cells[from]
	b.cells[from] = cell{}
	b.slots[color][piece][norm(piece, index)] = to
	return nil
}

// Promote converts the given pawn into the target kind. The pawn's index is
// freed and the lowest free index in the target bucket is allocated, so later
// opcodes can address the promoted piece.
func (b *Board) Promote(color cb.Color, pawnIndex uint8, to cb.Piece) (uint8, bool) {
	sq, ok := b.Lookup(color, cb.Pawn, pawnIndex)
	if !ok {
		return 0, false
	}

	var i uint8
	for ; i < maxSlots; i++ {
		if b.used[color][to]&(1<<i) == 0 {
			break
		}
	}
	if i == maxSlots {
		return 0, false
	}

	b.used[color][cb.Pawn] &^= 1 << pawnIndex
	b.used[color][to] |= 1 << i
	b.slots[color][to][i] = sq
	b.cells[sq] = cell{piece: to, color: color, index: i}
	return i, true
}

// Validate checks the board/catalog bijection in both directions.
func (b *Board) Validate() error {
	for sq := cb.ZeroSquare; sq < cb.NumSquares; sq++ {
		c := b.cells[sq]
		if c.piece == cb.NoPiece {
			continue
		}
		at, ok := b.Lookup(c.color, c.piece, c.index)
		if !ok || at != sq {
			return fmt.Errorf("%w: %v%v %v on %v not in catalog", ErrCatalog, c.color, c.piece, c.index, sq)
		}
	}
	for color := cb.ZeroColor; color < cb.NumColors; color++ {
		for piece := cb.Pawn; piece < cb.NumPieces; piece++ {
			for i := uint8(0); i < maxSlots; i++ {
				if b.used[color][piece]&(1<<i) == 0 {
					continue
				}
				sq := b.slots[color][piece][i]
				c := b.cells[sq]
				if c.piece != piece || c.color != color || norm(c.piece, c.index) != i {
					return fmt.Errorf("%w: %v%v %v maps to %v holding %v%v", ErrCatalog, color, piece, i, sq, c.color, c.piece)
				}
			}
		}
	}
	return nil
}

// NewStandardBoard returns the standard chess start position with the catalog
// indexed left-to-right: queenside rook/knight/bishop take index 0, pawns are
// indexed by file, kings use the sentinel.
func NewStandardBoard() Board {
	var b Board

	back := []cb.Piece{cb.Rook, cb.Knight, cb.Bishop, cb.Queen, cb.King, cb.Bishop, cb.Knight, cb.Rook}
	index := [8]uint8{0, 0, 0, 0, KingSlot, 1, 1, 1}

	for f := cb.ZeroFile; f < cb.NumFiles; f++ {
		must(b.Place(cb.NewSquare(f, cb.Rank1), cb.White, back[f], index[f]))
		must(b.Place(cb.NewSquare(f, cb.Rank2), cb.White, cb.Pawn, uint8(f)))
		must(b.Place(cb.NewSquare(f, cb.Rank7), cb.Black, cb.Pawn, uint8(f)))
		must(b.Place(cb.NewSquare(f, cb.Rank8), cb.Black, back[f], index[f]))
	}
	return b
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
