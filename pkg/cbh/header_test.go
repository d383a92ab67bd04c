package cbh_test

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/herohde/cbh2pgn/pkg/cbh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameRecord(gameOffset, white, black, tournament uint32, year, month, day int, result, round, subround byte, whiteElo, blackElo uint16) []byte {
	rec := make([]byte, cbh.RecordSize)
	rec[0] = 0x01
	binary.BigEndian.PutUint32(rec[1:5], gameOffset)
	binary.BigEndian.PutUint32(rec[5:9], white)
	binary.BigEndian.PutUint32(rec[9:13], black)
	binary.BigEndian.PutUint32(rec[13:17], tournament)

	date := uint32(year)<<9 | uint32(month)<<5 | uint32(day)
	rec[17], rec[18], rec[19] = byte(date>>16), byte(date>>8), byte(date)

	rec[20] = result
	rec[21], rec[22] = round, subround
	binary.LittleEndian.PutUint16(rec[23:25], whiteElo)
	binary.LittleEndian.PutUint16(rec[25:27], blackElo)
	return rec
}

func TestRecordFields(t *testing.T) {
	raw := gameRecord(0x2c, 3, 4, 2, 2021, 11, 26, 1, 5, 2, 2855, 2782)

	magic, _ := hex.DecodeString(cbh.MagicCB9)
	header := make([]byte, cbh.RecordSize)
	copy(header, magic)

	index := cbh.NewIndex(bytes.NewReader(append(header, raw...)), int64(2*cbh.RecordSize))
	require.Equal(t, 2, index.NumRecords())

	got, err := index.Magic()
	require.NoError(t, err)
	assert.Equal(t, cbh.MagicCB9, got)

	rec, err := index.Record(1)
	require.NoError(t, err)

	assert.True(t, rec.IsGame())
	assert.False(t, rec.Deleted())
	assert.Equal(t, int64(0x2c), rec.GameOffset())
	assert.Equal(t, uint32(3), rec.WhitePlayer())
	assert.Equal(t, uint32(4), rec.BlackPlayer())
	assert.Equal(t, uint32(2), rec.Tournament())

	year, month, day := rec.Date()
	assert.Equal(t, 2021, year)
	assert.Equal(t, 11, month)
	assert.Equal(t, 26, day)

	assert.Equal(t, "1-0", rec.Result())

	round, subround := rec.Round()
	assert.Equal(t, 5, round)
	assert.Equal(t, 2, subround)

	whiteElo, blackElo := rec.Ratings()
	assert.Equal(t, 2855, whiteElo)
	assert.Equal(t, 2782, blackElo)

	_, err = index.Record(2)
	assert.Error(t, err)
}

func TestRecordFlags(t *testing.T) {
	var rec cbh.Record
	assert.False(t, rec.IsGame())

	rec[0] = 0x81
	assert.True(t, rec.IsGame())
	assert.True(t, rec.Deleted())
}

func TestRecordResult(t *testing.T) {
	tests := []struct {
		code     byte
		expected string
	}{
		{0, "*"},
		{1, "1-0"},
		{2, "0-1"},
		{3, "1/2-1/2"},
		{9, "*"},
	}
	for _, tt := range tests {
		var rec cbh.Record
		rec[20] = tt.code
		assert.Equal(t, tt.expected, rec.Result())
	}
}

func TestPGNDate(t *testing.T) {
	assert.Equal(t, "2021.11.26", cbh.PGNDate(2021, 11, 26))
	assert.Equal(t, "2021.11.??", cbh.PGNDate(2021, 11, 0))
	assert.Equal(t, "2021.??.??", cbh.PGNDate(2021, 0, 0))
	assert.Equal(t, "????.??.??", cbh.PGNDate(0, 0, 0))
	assert.Equal(t, "????.03.??", cbh.PGNDate(0, 3, 0))
}

func TestPGNRound(t *testing.T) {
	assert.Equal(t, "3", cbh.PGNRound(3, 0))
	assert.Equal(t, "3(2)", cbh.PGNRound(3, 2))
	assert.Equal(t, "0", cbh.PGNRound(0, 0))
}
