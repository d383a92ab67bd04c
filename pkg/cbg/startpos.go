package cbg

import (
	"fmt"

	"github.com/herohde/cbh2pgn/pkg/cb"
	"github.com/seekerror/stdlib/pkg/lang"
)

// SetupSize is the size of the start-position block present in a game record
// whose "not initial" flag is set.
const SetupSize = 28

// Setup is a decoded non-standard start position.
type Setup struct {
	State    State
	Halfmove int
	Fullmove int
	FEN      string
}

// setupPieces maps the 3-bit board-stream piece code to a piece kind.
var setupPieces = [6]cb.Piece{cb.King, cb.Queen, cb.Rook, cb.Bishop, cb.Knight, cb.Pawn}

// DecodeSetup parses the 28-byte start-position block: side to move, castling
// rights, en-passant file, clocks, and a packed 64-square board. Catalog
// indices are assigned in scan order (a1, a2, .. a8, b1, .. h8), taking the
// least free index in each bucket as pieces are encountered.
func DecodeSetup(block []byte) (Setup, error) {
	if len(block) < SetupSize {
		return Setup{}, fmt.Errorf("%w: block is %v bytes", ErrInvalidStartPosition, len(block))
	}

	turn := cb.White
	if block[0]&0x1 != 0 {
		turn = cb.Black
	}
	rights := cb.Castling(block[0]>>1) & cb.FullCastlingRights

	var ep lang.Optional[cb.Square]
	if f := block[1]; f != 0xff {
		if f > 7 {
			return Setup{}, fmt.Errorf("%w: en passant file %v", ErrInvalidStartPosition, f)
		}
		// The target sits behind the pawn that just jumped: rank 3 after a
		// white jump (Black to move), rank 6 after a black one.
		r := cb.Rank6
		if turn == cb.Black {
			r = cb.Rank3
		}
		ep = lang.Some(cb.NewSquare(cb.File(f), r))
	}

	halfmove := int(block[2])
	fullmove := int(block[3])
	if fullmove == 0 {
		fullmove = 1
	}

	var board Board
	var count [cb.NumColors][cb.NumPieces]uint8
	bits := bitReader{buf: block[4:SetupSize]}

	for f := cb.ZeroFile; f < cb.NumFiles; f++ {
		for r := cb.ZeroRank; r < cb.NumRanks; r++ {
			occupied, err := bits.read(1)
			if err != nil {
				return Setup{}, err
			}
			if occupied == 0 {
				continue
			}

			fields, err := bits.read(4) // color bit + 3-bit piece code
			if err != nil {
				return Setup{}, err
			}
			color := cb.Color(fields >> 3)
			code := fields & 0x7
			if int(code) >= len(setupPieces) {
				return Setup{}, fmt.Errorf("%w: piece code %v", ErrInvalidStartPosition, code)
			}
			piece := setupPieces[code]

			sq := cb.NewSquare(f, r)
			if piece == cb.Pawn && (r == cb.Rank1 || r == cb.Rank8) {
				return Setup{}, fmt.Errorf("%w: pawn on %v", ErrInvalidStartPosition, sq)
			}

			index := count[color][piece]
			if piece == cb.King {
				if index > 0 {
					return Setup{}, fmt.Errorf("%w: two %v kings", ErrInvalidStartPosition, color)
				}
				index = KingSlot
			} else if index >= maxSlots {
				return Setup{}, fmt.Errorf("%w: more than %v %v%v", ErrInvalidStartPosition, maxSlots, color, piece)
			}
			if err := board.Place(sq, color, piece, index); err != nil {
				return Setup{}, fmt.Errorf("%w: %v", ErrInvalidStartPosition, err)
			}
			count[color][piece]++
		}
	}

	for color := cb.ZeroColor; color < cb.NumColors; color++ {
		if count[color][cb.King] == 0 {
			return Setup{}, fmt.Errorf("%w: no %v king", ErrInvalidStartPosition, color)
		}
	}

	state := State{Board: board, Turn: turn, Rights: rights, EnPassant: ep}
	return Setup{
		State:    state,
		Halfmove: halfmove,
		Fullmove: fullmove,
		FEN:      FEN(&state.Board, turn, rights, ep, halfmove, fullmove),
	}, nil
}

// bitReader reads MSB-first bit fields from the packed board stream.
type bitReader struct {
	buf []byte
	pos int // bit offset
}

func (b *bitReader) read(n int) (uint8, error) {
	var v uint8
	for i := 0; i < n; i++ {
		byteAt := b.pos >> 3
		if byteAt >= len(b.buf) {
			return 0, fmt.Errorf("%w: board stream exhausted", ErrInvalidStartPosition)
		}
		bit := (b.buf[byteAt] >> (7 - uint(b.pos&7))) & 1
		v = v<<1 | bit
		b.pos++
	}
	return v, nil
}
