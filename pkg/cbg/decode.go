package cbg

import (
	"fmt"

	"github.com/herohde/cbh2pgn/pkg/cb"
	"github.com/seekerror/stdlib/pkg/lang"
)

// State is the decoder context threaded through a game: the shadow board and
// catalog plus the side to move and the castling/en-passant shadows. State is
// a value type, so a struct copy is a full snapshot.
type State struct {
	Board     Board
	Turn      cb.Color
	Rights    cb.Castling
	EnPassant lang.Optional[cb.Square]
}

// NewState returns the decoder context for the standard chess start position.
func NewState() State {
	return State{Board: NewStandardBoard(), Turn: cb.White, Rights: cb.FullCastlingRights}
}

// frame is a saved decoding context for variation backtracking. Besides the
// context to resume at the matching pop, it carries the pre-move snapshot so
// that a sibling variation can follow immediately after the pop.
type frame struct {
	resume     State
	resumeNode *Node
	pre        State
	preNode    *Node
}

// Decode interprets one game's move stream against the given initial context
// and returns the root of the decoded game tree. Decoding is best-effort: on a
// mid-game error the partial tree is returned along with the error.
//
// Variation markers rewind the working context to the snapshot taken before
// the last completed move, so the following opcodes populate a sibling branch;
// the matching pop restores the mainline context.
func Decode(stream []byte, s State) (*Node, error) {
	root := &Node{}
	node := root

	pre, preNode := s, root
	var stack []frame

	cur := &cursor{buf: stream}
	for {
		if cur.done() {
			return root, ErrTruncated
		}
		bt, err := cur.next()
		if err != nil {
			return root, err
		}

		o := opcodes[bt]
		switch o.kind {
		case opEndGame:
			if len(stack) != 0 {
				return root, fmt.Errorf("%w: %v open variations at end of game", ErrUnbalancedVariation, len(stack))
			}
			return root, nil

		case opMove:
			saved, savedNode := s, node
			m, err := applyMove(&s, o, cur)
			if err != nil {
				return root, err
			}
			pre, preNode = saved, savedNode
			node = node.Add(m)
			s.Turn = s.Turn.Opponent()

		case opNull:
			pre, preNode = s, node
			node = node.Add(cb.Move{Flags: cb.NullMove})
			s.EnPassant = lang.Optional[cb.Square]{}
			s.Turn = s.Turn.Opponent()

		case opPush:
			if node.IsRoot() && len(stack) == 0 {
				return root, fmt.Errorf("%w: variation before any move", ErrUnbalancedVariation)
			}
			stack = append(stack, frame{resume: s, resumeNode: node, pre: pre, preNode: preNode})
			s, node = pre, preNode
			pre, preNode = s, node

		case opPop:
			if len(stack) == 0 {
				return root, fmt.Errorf("%w: pop without push", ErrUnbalancedVariation)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			s, node, pre, preNode = top.resume, top.resumeNode, top.pre, top.preNode

		case opComment:
			text, err := readComment(cur)
			if err != nil {
				return root, err
			}
			if node.Comment != "" {
				node.Comment += " "
			}
			node.Comment += text

		case opAnnotation:
			nags, err := readAnnotation(cur)
			if err != nil {
				return root, err
			}
			node.NAGs = append(node.NAGs, nags...)

		default:
			return root, fmt.Errorf("%w: illegal opcode %#02x", ErrDesync, bt)
		}
	}
}

// applyMove executes a single move opcode against the context, consuming the
// promotion trailer byte when present, and returns the move record.
func applyMove(s *State, o op, cur *cursor) (cb.Move, error) {
	if o.flags&(cb.KingSideCastle|cb.QueenSideCastle) != 0 {
		return applyCastle(s, o)
	}

	from, ok := s.Board.Lookup(s.Turn, o.piece, o.slot)
	if !ok {
		return cb.Move{}, fmt.Errorf("%w: %v not in catalog", ErrDesync, slotName(o.piece, o.slot))
	}

	df, dr := int(o.df), int(o.dr)
	if s.Turn == cb.Black {
		dr = -dr
	}

	f, r := from.File().V()+df, from.Rank().V()+dr
	if o.wrap {
		f, r = f&7, r&7
	} else if f < 0 || f > 7 || r < 0 || r > 7 {
		return cb.Move{}, fmt.Errorf("%w: %v moves off board from %v", ErrDesync, slotName(o.piece, o.slot), from)
	}
	to := cb.NewSquare(cb.File(f), cb.Rank(r))

	m := cb.Move{From: from, To: to}

	// Captures. A pawn moving diagonally onto an empty square captures en
	// passant: the victim sits beside it, on the moving pawn's previous rank.
	if color, victim, _, occupied := s.Board.At(to); occupied {
		if color == s.Turn {
			return cb.Move{}, fmt.Errorf("%w: %v blocked by own %v on %v", ErrDesync, slotName(o.piece, o.slot), victim.Name(), to)
		}
		s.Board.Remove(to)
		s.Rights = clearRookRights(s.Rights, color, to)
		m.Flags |= cb.Capture
	} else if o.piece == cb.Pawn && df != 0 {
		victimSq := cb.NewSquare(cb.File(f), from.Rank())
		color, victim, _, occupied := s.Board.At(victimSq)
		if !occupied || victim != cb.Pawn || color != s.Turn.Opponent() {
			return cb.Move{}, fmt.Errorf("%w: en passant victim missing on %v", ErrDesync, victimSq)
		}
		s.Board.Remove(victimSq)
		m.Flags |= cb.Capture | cb.EnPassant
	}

	if err := s.Board.MoveTo(s.Turn, o.piece, o.slot, to); err != nil {
		return cb.Move{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}

	// Promotion: a pawn reaching the last rank is followed by the piece code.
	if o.piece == cb.Pawn && (to.Rank() == cb.Rank8 || to.Rank() == cb.Rank1) {
		code, err := cur.next()
		if err != nil {
			return cb.Move{}, err
		}
		if int(code) >= len(promoPieces) {
			return cb.Move{}, fmt.Errorf("%w: promotion code %#02x", ErrDesync, code)
		}
		target := promoPieces[code]
		if _, ok := s.Board.Promote(s.Turn, o.slot, target); !ok {
			return cb.Move{}, fmt.Errorf("%w: no free %v slot", ErrDesync, target.Name())
		}
		m.Promotion = target
	}

	// Castling-rights and en-passant shadows.
	switch o.piece {
	case cb.King:
		s.Rights = s.Rights.Clear(cb.SideRights(s.Turn))
	case cb.Rook:
		s.Rights = clearRookRights(s.Rights, s.Turn, from)
	}
	s.EnPassant = lang.Optional[cb.Square]{}
	if o.piece == cb.Pawn && (dr == 2 || dr == -2) {
		s.EnPassant = lang.Some(cb.NewSquare(from.File(), cb.Rank(from.Rank().V()+dr/2)))
	}

	return m, nil
}

// applyCastle moves both king and rook under a single move record. The rook is
// found by its corner square on the king's rank.
func applyCastle(s *State, o op) (cb.Move, error) {
	from, ok := s.Board.Lookup(s.Turn, cb.King, KingSlot)
	if !ok {
		return cb.Move{}, fmt.Errorf("%w: king not in catalog", ErrDesync)
	}
	r := from.Rank()

	kingside := o.flags&cb.KingSideCastle != 0
	var kingTo, rookFrom, rookTo cb.Square
	if kingside {
		kingTo, rookFrom, rookTo = cb.NewSquare(cb.FileG, r), cb.NewSquare(cb.FileH, r), cb.NewSquare(cb.FileF, r)
	} else {
		kingTo, rookFrom, rookTo = cb.NewSquare(cb.FileC, r), cb.NewSquare(cb.FileA, r), cb.NewSquare(cb.FileD, r)
	}

	color, piece, rookIndex, occupied := s.Board.At(rookFrom)
	if !occupied || piece != cb.Rook || color != s.Turn {
		return cb.Move{}, fmt.Errorf("%w: castling rook missing on %v", ErrDesync, rookFrom)
	}

	if err := s.Board.MoveTo(s.Turn, cb.King, KingSlot, kingTo); err != nil {
		return cb.Move{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}
	if err := s.Board.MoveTo(s.Turn, cb.Rook, rookIndex, rookTo); err != nil {
		return cb.Move{}, fmt.Errorf("%w: %v", ErrDesync, err)
	}

	s.Rights = s.Rights.Clear(cb.SideRights(s.Turn))
	s.EnPassant = lang.Optional[cb.Square]{}

	flags := cb.KingSideCastle
	if !kingside {
		flags = cb.QueenSideCastle
	}
	return cb.Move{From: from, To: kingTo, Flags: flags}, nil
}

// clearRookRights drops the castling right bound to a rook's home corner when
// that corner square is vacated or its occupant captured.
func clearRookRights(rights cb.Castling, color cb.Color, sq cb.Square) cb.Castling {
	switch {
	case color == cb.White && sq == cb.A1:
		return rights.Clear(cb.WhiteQueenSideCastle)
	case color == cb.White && sq == cb.H1:
		return rights.Clear(cb.WhiteKingSideCastle)
	case color == cb.Black && sq == cb.A8:
		return rights.Clear(cb.BlackQueenSideCastle)
	case color == cb.Black && sq == cb.H8:
		return rights.Clear(cb.BlackKingSideCastle)
	default:
		return rights
	}
}

func slotName(piece cb.Piece, slot uint8) string {
	if piece == cb.King {
		return "king"
	}
	return fmt.Sprintf("%v %v", piece.Name(), slot)
}
