// Package cbh reads the fixed-width directory files of a ChessBase database:
// the .cbh game index plus the .cbp player and .cbt tournament directories.
// All readers operate on io.ReaderAt, so the callers can hand in read-only
// memory maps.
package cbh

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// RecordSize is the fixed size of a .cbh record. Record 0 is the file header;
// records 1..N describe one game each.
const RecordSize = 46

// Known file-header magics, reported at startup. Unknown magics produce a
// warning only; conversion proceeds.
const (
	MagicCB9     = "00002c002e01"
	MagicCBLight = "000024002e01"
)

// Record is a single 46-byte game record.
type Record [RecordSize]byte

// IsGame returns true iff the record describes a game (as opposed to text or
// other non-game content).
func (r Record) IsGame() bool {
	return r[0]&0x01 != 0
}

// Deleted returns true iff the record is marked as deleted.
func (r Record) Deleted() bool {
	return r[0]&0x80 != 0
}

// GameOffset returns the byte offset of the game's record in the .cbg file.
func (r Record) GameOffset() int64 {
	return int64(binary.BigEndian.Uint32(r[1:5]))
}

// WhitePlayer returns the white player's record index in the .cbp file.
func (r Record) WhitePlayer() uint32 {
	return binary.BigEndian.Uint32(r[5:9])
}

// BlackPlayer returns the black player's record index in the .cbp file.
func (r Record) BlackPlayer() uint32 {
	return binary.BigEndian.Uint32(r[9:13])
}

// Tournament returns the tournament's record index in the .cbt file.
func (r Record) Tournament() uint32 {
	return binary.BigEndian.Uint32(r[13:17])
}

// Date returns the packed game date. Unknown fields are zero.
func (r Record) Date() (year, month, day int) {
	v := uint32(r[17])<<16 | uint32(r[18])<<8 | uint32(r[19])
	return int(v >> 9), int((v >> 5) & 0xf), int(v & 0x1f)
}

// Result returns the game result as a PGN result string.
func (r Record) Result() string {
	switch r[20] {
	case 1:
		return "1-0"
	case 2:
		return "0-1"
	case 3:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// Round returns the round and subround numbers.
func (r Record) Round() (round, subround int) {
	return int(r[21]), int(r[22])
}

// Ratings returns the Elo ratings, zero if absent.
func (r Record) Ratings() (white, black int) {
	return int(binary.LittleEndian.Uint16(r[23:25])), int(binary.LittleEndian.Uint16(r[25:27]))
}

// Index provides record access over a .cbh file.
type Index struct {
	r       io.ReaderAt
	records int
}

// NewIndex returns an index over a .cbh file of the given size.
func NewIndex(r io.ReaderAt, size int64) *Index {
	return &Index{r: r, records: int(size / RecordSize)}
}

// NumRecords returns the record count, including the file header at record 0.
func (x *Index) NumRecords() int {
	return x.records
}

// Record returns the i'th record.
func (x *Index) Record(i int) (Record, error) {
	var rec Record
	if i < 0 || i >= x.records {
		return rec, fmt.Errorf("record %v out of range [0;%v)", i, x.records)
	}
	if _, err := x.r.ReadAt(rec[:], int64(i)*RecordSize); err != nil {
		return rec, fmt.Errorf("read record %v: %w", i, err)
	}
	return rec, nil
}

// Magic returns the file-header id bytes as a hex string.
func (x *Index) Magic() (string, error) {
	rec, err := x.Record(0)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(rec[0:6]), nil
}
