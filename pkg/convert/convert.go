// Package convert drives the database-to-PGN conversion: per-record
// conversion over the four input files, plus the sequential and parallel
// batch runners.
package convert

import (
	"fmt"
	"io"
	"strconv"

	"github.com/herohde/cbh2pgn/pkg/cbg"
	"github.com/herohde/cbh2pgn/pkg/cbh"
	"github.com/herohde/cbh2pgn/pkg/pgn"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Issue records one skipped or failed game: the record index, the first byte
// of its game record and the reason. Issues never halt the batch.
type Issue struct {
	Index     int
	FirstByte byte
	Reason    string
}

func (e Issue) String() string {
	return fmt.Sprintf("(%v, %#02x, %v)", e.Index, e.FirstByte, e.Reason)
}

// Source is one set of opened database files. Each worker holds its own
// Source; the underlying readers are never written to and need no locking.
type Source struct {
	index       *cbh.Index
	games       io.ReaderAt
	players     io.ReaderAt
	tournaments io.ReaderAt
}

// NewSource returns a Source over the given readers, where size is the byte
// size of the .cbh file.
func NewSource(header io.ReaderAt, size int64, games, players, tournaments io.ReaderAt) *Source {
	return &Source{
		index:       cbh.NewIndex(header, size),
		games:       games,
		players:     players,
		tournaments: tournaments,
	}
}

// NumRecords returns the .cbh record count, including the file header.
func (s *Source) NumRecords() int {
	return s.index.NumRecords()
}

// Magic returns the .cbh file-header id as a hex string.
func (s *Source) Magic() (string, error) {
	return s.index.Magic()
}

// ConvertRecord converts a single game record. It returns the game, or nil
// with an Issue when the game was skipped or failed to decode, or nil with no
// Issue for deleted and non-game records.
func (s *Source) ConvertRecord(i int) (*pgn.Game, *Issue) {
	rec, err := s.index.Record(i)
	if err != nil {
		return nil, &Issue{Index: i, Reason: err.Error()}
	}
	if !rec.IsGame() || rec.Deleted() {
		return nil, nil
	}

	offset := rec.GameOffset()
	var raw [cbg.PrologueSize]byte
	if _, err := s.games.ReadAt(raw[:], offset); err != nil {
		return nil, &Issue{Index: i, Reason: fmt.Sprintf("read game prologue: %v", err)}
	}
	first := raw[0]

	pro, err := cbg.DecodePrologue(raw[:])
	if err != nil {
		return nil, &Issue{Index: i, FirstByte: first, Reason: err.Error()}
	}
	switch {
	case pro.Special:
		return nil, &Issue{Index: i, FirstByte: first, Reason: "ignored: special encoding flag"}
	case pro.Is960 && pro.NotInitial:
		return nil, &Issue{Index: i, FirstByte: first, Reason: "ignored: 960 with custom start"}
	case pro.Is960:
		return nil, &Issue{Index: i, FirstByte: first, Reason: "ignored: chess 960"}
	case pro.NotEncoded:
		return nil, &Issue{Index: i, FirstByte: first, Reason: "ignored: not encoded"}
	}

	payload := make([]byte, pro.Length-cbg.PrologueSize)
	if _, err := s.games.ReadAt(payload, offset+cbg.PrologueSize); err != nil {
		return nil, &Issue{Index: i, FirstByte: first, Reason: fmt.Sprintf("read game record: %v", err)}
	}

	state := cbg.NewState()
	var fen lang.Optional[string]
	if pro.NotInitial {
		if len(payload) < cbg.SetupSize {
			return nil, &Issue{Index: i, FirstByte: first, Reason: cbg.ErrInvalidStartPosition.Error()}
		}
		setup, err := cbg.DecodeSetup(payload[:cbg.SetupSize])
		if err != nil {
			return nil, &Issue{Index: i, FirstByte: first, Reason: err.Error()}
		}
		state = setup.State
		fen = lang.Some(setup.FEN)
		payload = payload[cbg.SetupSize:]
	}

	root, err := cbg.Decode(payload, state)
	if err != nil {
		return nil, &Issue{Index: i, FirstByte: first, Reason: err.Error()}
	}

	year, month, day := rec.Date()
	round, subround := rec.Round()
	whiteElo, blackElo := rec.Ratings()
	event, site := cbh.EventSite(s.tournaments, rec.Tournament())
	result := rec.Result()

	tags := []pgn.Tag{
		{Key: "Event", Value: event},
		{Key: "Site", Value: site},
		{Key: "Date", Value: cbh.PGNDate(year, month, day)},
		{Key: "Round", Value: cbh.PGNRound(round, subround)},
		{Key: "White", Value: cbh.PlayerName(s.players, rec.WhitePlayer())},
		{Key: "Black", Value: cbh.PlayerName(s.players, rec.BlackPlayer())},
		{Key: "Result", Value: result},
	}
	if whiteElo > 0 {
		tags = append(tags, pgn.Tag{Key: "WhiteElo", Value: strconv.Itoa(whiteElo)})
	}
	if blackElo > 0 {
		tags = append(tags, pgn.Tag{Key: "BlackElo", Value: strconv.Itoa(blackElo)})
	}
	if f, ok := fen.V(); ok {
		tags = append(tags, pgn.Tag{Key: "SetUp", Value: "1"}, pgn.Tag{Key: "FEN", Value: f})
	}

	return &pgn.Game{Tags: tags, Root: root, Result: result, FEN: fen}, nil
}
