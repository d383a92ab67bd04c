package cbg

import "github.com/herohde/cbh2pgn/pkg/cb"

// The move stream is a sequence of single-byte opcodes. Every byte value in
// 0x00..0xff is either a move for one of the named piece slots, a marker
// introducing a multi-byte payload, or illegal. Move displacements are from
// the side to move's perspective: the rank delta is negated for Black. Slider
// displacements (queen, rook, bishop) wrap modulo 8 per axis, which is what
// lets 7 codes per axis cover both directions; king, knight and pawn deltas
// are literal and an off-board target desynchronizes the stream.
type opKind uint8

const (
	opIllegal opKind = iota
	opMove
	opEndGame
	opNull
	opPush
	opPop
	opComment
	opAnnotation
)

// op describes the meaning of a single opcode byte.
type op struct {
	kind  opKind
	piece cb.Piece
	slot  uint8
	df    int8
	dr    int8
	wrap  bool // slider displacement, modulo 8 per axis
	flags cb.MoveFlag
}

// Opcode byte partition.
const (
	opcodeEndGame       = 0x00
	opcodeKingBase      = 0x01 // 8 steps
	opcodeCastleKing    = 0x09
	opcodeCastleQueen   = 0x0a
	opcodeQueenBase     = 0x0b // 28 codes
	opcodeRookBase      = 0x27 // 2 rooks, 14 codes each
	opcodeBishopBase    = 0x43 // 2 bishops, 14 codes each
	opcodeKnightBase    = 0x5f // 2 knights, 8 codes each
	opcodePawnBase      = 0x6f // 8 pawns, 4 codes each
	opcodeNullMove      = 0x8f
	opcodeVariationPush = 0x90
	opcodeVariationPop  = 0x91
	opcodeComment       = 0x92
	opcodeAnnotation    = 0x93
)

// annotationSize is the fixed payload after the annotation marker: a move
// glyph, a position glyph and an extra code, each a NAG number or zero.
const annotationSize = 3

var (
	kingSteps = [8][2]int8{
		{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
	}
	knightSteps = [8][2]int8{
		{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
	queenDirs  = [4][2]int8{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}
	rookDirs   = [2][2]int8{{1, 0}, {0, 1}}
	bishopDirs = [2][2]int8{{1, 1}, {-1, 1}}
	pawnSteps  = [4][2]int8{{0, 1}, {0, 2}, {-1, 1}, {1, 1}}

	// promoPieces maps the promotion trailer byte to the new piece kind.
	promoPieces = [4]cb.Piece{cb.Queen, cb.Rook, cb.Bishop, cb.Knight}
)

// opcodes is the static dispatch table, indexed by byte value.
var opcodes = buildOpcodes()

func buildOpcodes() [256]op {
	var t [256]op // zero value is opIllegal

	t[opcodeEndGame] = op{kind: opEndGame}
	t[opcodeNullMove] = op{kind: opNull}
	t[opcodeVariationPush] = op{kind: opPush}
	t[opcodeVariationPop] = op{kind: opPop}
	t[opcodeComment] = op{kind: opComment}
	t[opcodeAnnotation] = op{kind: opAnnotation}

	for i, d := range kingSteps {
		t[opcodeKingBase+i] = op{kind: opMove, piece: cb.King, slot: KingSlot, df: d[0], dr: d[1]}
	}
	t[opcodeCastleKing] = op{kind: opMove, piece: cb.King, slot: KingSlot, flags: cb.KingSideCastle}
	t[opcodeCastleQueen] = op{kind: opMove, piece: cb.King, slot: KingSlot, flags: cb.QueenSideCastle}

	code := opcodeQueenBase
	for _, d := range queenDirs {
		for dist := int8(1); dist <= 7; dist++ {
			t[code] = op{kind: opMove, piece: cb.Queen, slot: 0, df: d[0] * dist, dr: d[1] * dist, wrap: true}
			code++
		}
	}

	code = opcodeRookBase
	for slot := uint8(0); slot < 2; slot++ {
		for _, d := range rookDirs {
			for dist := int8(1); dist <= 7; dist++ {
				t[code] = op{kind: opMove, piece: cb.Rook, slot: slot, df: d[0] * dist, dr: d[1] * dist, wrap: true}
				code++
			}
		}
	}

	code = opcodeBishopBase
	for slot := uint8(0); slot < 2; slot++ {
		for _, d := range bishopDirs {
			for dist := int8(1); dist <= 7; dist++ {
				t[code] = op{kind: opMove, piece: cb.Bishop, slot: slot, df: d[0] * dist, dr: d[1] * dist, wrap: true}
				code++
			}
		}
	}

	code = opcodeKnightBase
	for slot := uint8(0); slot < 2; slot++ {
		for _, d := range knightSteps {
			t[code] = op{kind: opMove, piece: cb.Knight, slot: slot, df: d[0], dr: d[1]}
			code++
		}
	}

	code = opcodePawnBase
	for slot := uint8(0); slot < 8; slot++ {
		for _, d := range pawnSteps {
			t[code] = op{kind: opMove, piece: cb.Pawn, slot: slot, df: d[0], dr: d[1]}
			code++
		}
	}

	return t
}
