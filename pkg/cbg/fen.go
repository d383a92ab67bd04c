package cbg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/herohde/cbh2pgn/pkg/cb"
	"github.com/seekerror/stdlib/pkg/lang"
)

// FEN encodes the board and game data in FEN notation. Ranks are emitted from
// 8 down to 1 with blank runs compressed, per the standard.
func FEN(b *Board, turn cb.Color, rights cb.Castling, ep lang.Optional[cb.Square], halfmove, fullmove int) string {
	var sb strings.Builder
	for r := cb.NumRanks; r > cb.ZeroRank; r-- {
		blanks := 0
		for f := cb.ZeroFile; f < cb.NumFiles; f++ {
			color, piece, _, ok := b.At(cb.NewSquare(f, r-1))
			if !ok {
				blanks++
				continue
			}

			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(printPiece(color, piece))
		}

		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > cb.Rank1+1 {
			sb.WriteString("/")
		}
	}

	target := "-"
	if sq, ok := ep.V(); ok {
		target = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), turn, rights, target, halfmove, fullmove)
}

func printPiece(c cb.Color, p cb.Piece) string {
	if c == cb.White {
		return strings.ToUpper(p.String())
	}
	return p.String()
}
