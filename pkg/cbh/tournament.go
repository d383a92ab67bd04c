package cbh

import (
	"io"
	"strings"

	"github.com/herohde/cbh2pgn/pkg/cb"
)

const (
	tournamentHeaderSize = 28
	tournamentRecordSize = 99

	tournamentTitle = 9 // 40 bytes, NUL-padded
	tournamentPlace = 49
	tournamentEnd   = 79
)

// EventSite resolves a tournament record index in the .cbt file to the PGN
// Event and Site tag values. Unresolvable tournaments yield "?".
func EventSite(r io.ReaderAt, index uint32) (event, site string) {
	buf := make([]byte, tournamentRecordSize)
	if _, err := r.ReadAt(buf, tournamentHeaderSize+int64(index)*tournamentRecordSize); err != nil {
		return "?", "?"
	}

	event = strings.TrimSpace(cb.DecodeText(buf[tournamentTitle:tournamentPlace]))
	site = strings.TrimSpace(cb.DecodeText(buf[tournamentPlace:tournamentEnd]))
	if event == "" {
		event = "?"
	}
	if site == "" {
		site = "?"
	}
	return event, site
}
