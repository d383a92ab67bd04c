package cbh

import (
	"io"
	"strings"

	"github.com/herohde/cbh2pgn/pkg/cb"
)

const (
	playerHeaderSize = 28
	playerRecordSize = 67

	playerLastName  = 9 // 30 bytes, NUL-padded
	playerFirstName = 39
	playerNameEnd   = 59
)

// PlayerName resolves a player record index in the .cbp file to a PGN-style
// "Last, First" name. Unresolvable players yield the PGN unknown marker "?".
func PlayerName(r io.ReaderAt, index uint32) string {
	buf := make([]byte, playerRecordSize)
	if _, err := r.ReadAt(buf, playerHeaderSize+int64(index)*playerRecordSize); err != nil {
		return "?"
	}

	last := strings.TrimSpace(cb.DecodeText(buf[playerLastName:playerFirstName]))
	first := strings.TrimSpace(cb.DecodeText(buf[playerFirstName:playerNameEnd]))

	switch {
	case last == "" && first == "":
		return "?"
	case first == "":
		return last
	case last == "":
		return first
	default:
		return last + ", " + first
	}
}
