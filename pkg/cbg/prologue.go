package cbg

import (
	"encoding/binary"
	"fmt"
)

// PrologueSize is the fixed size of the header word of a .cbg game record.
const PrologueSize = 4

// Prologue is the decoded header word of a .cbg game record: the encoding
// flags and the total record length, prologue included.
type Prologue struct {
	NotInitial bool // game starts from a non-standard position
	NotEncoded bool // moves stored without the standard encoding
	Is960      bool // Chess960 game
	Special    bool // special encoding variant
	Length     int
}

// DecodePrologue parses the 4-byte record header.
func DecodePrologue(raw []byte) (Prologue, error) {
	if len(raw) < PrologueSize {
		return Prologue{}, fmt.Errorf("%w: prologue is %v bytes", ErrTruncated, len(raw))
	}
	word := binary.BigEndian.Uint32(raw[:PrologueSize])

	p := Prologue{
		NotInitial: word&0x80000000 != 0,
		NotEncoded: word&0x40000000 != 0,
		Is960:      word&0x20000000 != 0,
		Special:    word&0x10000000 != 0,
		Length:     int(word & 0xffffff),
	}
	if p.Length < PrologueSize {
		return Prologue{}, fmt.Errorf("%w: record length %v", ErrTruncated, p.Length)
	}
	return p, nil
}
