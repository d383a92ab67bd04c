package cbg

import (
	"encoding/binary"
	"testing"

	"github.com/herohde/cbh2pgn/pkg/cb"
)

// enc builds move streams for tests by searching the opcode table for the
// byte that moves a piece between the given squares under the current state.
// It maintains the same pre-move snapshot and variation stack as the decoder,
// so fixtures and decoder cannot drift apart.
type enc struct {
	t   *testing.T
	s   State
	pre State
	out []byte

	stack []frame
}

func newEnc(t *testing.T, s State) *enc {
	t.Helper()
	return &enc{t: t, s: s, pre: s}
}

func (e *enc) emit(from, to cb.Square, trailer ...byte) *enc {
	e.t.Helper()
	for b := 0; b < 256; b++ {
		o := opcodes[b]
		if o.kind != opMove {
			continue
		}

		trial := e.s
		cur := &cursor{buf: trailer}
		m, err := applyMove(&trial, o, cur)
		if err != nil || m.From != from || m.To != to || cur.pos != len(trailer) {
			continue
		}
		if err := trial.Board.Validate(); err != nil {
			e.t.Fatalf("invariant broken after %v: %v", m, err)
		}

		e.out = append(e.out, byte(b))
		e.out = append(e.out, trailer...)
		e.pre = e.s
		e.s = trial
		e.s.Turn = e.s.Turn.Opponent()
		return e
	}
	e.t.Fatalf("no opcode moves %v to %v", from, to)
	return e
}

func (e *enc) move(from, to string) *enc {
	e.t.Helper()
	return e.emit(sq(e.t, from), sq(e.t, to))
}

func (e *enc) promote(from, to string, piece cb.Piece) *enc {
	e.t.Helper()
	var code byte
	for ; int(code) < len(promoPieces); code++ {
		if promoPieces[code] == piece {
			break
		}
	}
	return e.emit(sq(e.t, from), sq(e.t, to), code)
}

func (e *enc) null() *enc {
	e.out = append(e.out, opcodeNullMove)
	e.pre = e.s
	e.s.Turn = e.s.Turn.Opponent()
	return e
}

func (e *enc) push() *enc {
	e.out = append(e.out, opcodeVariationPush)
	e.stack = append(e.stack, frame{resume: e.s, pre: e.pre})
	e.s = e.pre
	return e
}

func (e *enc) pop() *enc {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.out = append(e.out, opcodeVariationPop)
	e.s, e.pre = top.resume, top.pre
	return e
}

func (e *enc) comment(text string) *enc {
	e.out = append(e.out, opcodeComment)
	e.out = binary.BigEndian.AppendUint16(e.out, uint16(len(text)))
	e.out = append(e.out, []byte(text)...)
	return e
}

func (e *enc) nags(codes ...byte) *enc {
	e.out = append(e.out, opcodeAnnotation)
	var block [annotationSize]byte
	copy(block[:], codes)
	e.out = append(e.out, block[:]...)
	return e
}

func (e *enc) end() []byte {
	return append(e.out, opcodeEndGame)
}

func sq(t *testing.T, str string) cb.Square {
	t.Helper()
	s, err := cb.ParseSquareStr(str)
	if err != nil {
		t.Fatalf("bad square %v: %v", str, err)
	}
	return s
}
