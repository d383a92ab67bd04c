// Package pgn serializes decoded games as Portable Game Notation. SAN
// rendering and legality context come from replaying the move tree through
// the corentings/chess position machinery.
package pgn

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	chess "github.com/corentings/chess/v2"
	"github.com/herohde/cbh2pgn/pkg/cb"
	"github.com/herohde/cbh2pgn/pkg/cbg"
	"github.com/seekerror/stdlib/pkg/lang"
)

// columns is the movetext wrap width, matching the conventional exporters.
const columns = 79

// Tag is a single PGN tag pair. Order is significant: the seven-tag roster
// comes first, in roster order.
type Tag struct {
	Key, Value string
}

// Game is one exportable game: its tag pairs, the decoded move tree and the
// result token. FEN, when set, is the non-standard start position to replay
// from; it must match the FEN tag pair.
type Game struct {
	Tags   []Tag
	Root   *cbg.Node
	Result string
	FEN    lang.Optional[string]
}

// Write emits the game as PGN: tag pairs, a blank line, and wrapped movetext
// terminated by the result token and a blank line.
func (g *Game) Write(w io.Writer) error {
	var sb strings.Builder
	for _, t := range g.Tags {
		fmt.Fprintf(&sb, "[%s %q]\n", t.Key, t.Value)
	}
	sb.WriteString("\n")

	tokens, err := g.movetext()
	if err != nil {
		return err
	}
	for _, line := range wrap(tokens, columns) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	_, err = io.WriteString(w, sb.String())
	return err
}

func (g *Game) movetext() ([]string, error) {
	pos, num, white, err := g.start()
	if err != nil {
		return nil, err
	}

	tw := &tokenWriter{}
	if g.Root != nil {
		pushComment(tw, g.Root.Comment)
		if err := writeMoves(g.Root, pos, num, white, !white, tw); err != nil {
			return nil, err
		}
	}

	result := g.Result
	if result == "" {
		result = "*"
	}
	tw.push(result)
	return tw.tokens, nil
}

func (g *Game) start() (*chess.Position, int, bool, error) {
	f, ok := g.FEN.V()
	if !ok {
		return chess.StartingPosition(), 1, true, nil
	}

	parts := strings.Fields(f)
	if len(parts) != 6 {
		return nil, 0, false, fmt.Errorf("invalid FEN: '%v'", f)
	}
	num, err := strconv.Atoi(parts[5])
	if err != nil || num < 1 {
		return nil, 0, false, fmt.Errorf("invalid FEN move number: '%v'", f)
	}

	pos, err := position(f)
	if err != nil {
		return nil, 0, false, err
	}
	return pos, num, parts[1] == "w", nil
}

// writeMoves emits the children of parent: the mainline move with its glyphs
// and comment, then each variation in parentheses, then the mainline
// continuation. pos is the position before the move, num/white the move
// number and side to move; force requests an explicit "N..." number.
func writeMoves(parent *cbg.Node, pos *chess.Position, num int, white bool, force bool, tw *tokenWriter) error {
	main, ok := parent.Mainline()
	if !ok {
		return nil
	}

	san, next, err := render(pos, main.Move)
	if err != nil {
		return err
	}
	writeNumber(tw, num, white, force)
	tw.push(san)
	for _, nag := range main.NAGs {
		tw.push(fmt.Sprintf("$%d", nag))
	}
	pushComment(tw, main.Comment)

	interrupted := main.Comment != ""
	for _, v := range parent.Variations() {
		vsan, vnext, err := render(pos, v.Move)
		if err != nil {
			return err
		}
		tw.open()
		writeNumber(tw, num, white, true)
		tw.push(vsan)
		for _, nag := range v.NAGs {
			tw.push(fmt.Sprintf("$%d", nag))
		}
		pushComment(tw, v.Comment)
		if err := writeMoves(v, vnext, nextNum(num, white), !white, v.Comment != "", tw); err != nil {
			return err
		}
		tw.close()
		interrupted = true
	}

	return writeMoves(main, next, nextNum(num, white), !white, interrupted, tw)
}

// render returns the SAN token for the move and the position after it.
func render(pos *chess.Position, m cb.Move) (string, *chess.Position, error) {
	if m.Is(cb.NullMove) {
		next, err := nullPosition(pos)
		return "--", next, err
	}

	mv, err := chess.UCINotation{}.Decode(pos, m.String())
	if err != nil {
		return "", nil, fmt.Errorf("invalid move %v: %w", m, err)
	}
	return chess.AlgebraicNotation{}.Encode(pos, mv), pos.Update(mv), nil
}

// nullPosition flips the side to move without moving: a null move in an
// analysis variation. The en-passant target is dropped.
func nullPosition(pos *chess.Position) (*chess.Position, error) {
	parts := strings.Fields(pos.String())
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid position FEN: '%v'", pos)
	}
	if parts[1] == "w" {
		parts[1] = "b"
	} else {
		parts[1] = "w"
		if n, err := strconv.Atoi(parts[5]); err == nil {
			parts[5] = strconv.Itoa(n + 1)
		}
	}
	parts[3] = "-"
	return position(strings.Join(parts, " "))
}

func position(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}

func writeNumber(tw *tokenWriter, num int, white, force bool) {
	if white {
		tw.push(strconv.Itoa(num) + ".")
	} else if force {
		tw.push(strconv.Itoa(num) + "...")
	}
}

func nextNum(num int, white bool) int {
	if white {
		return num
	}
	return num + 1
}

// pushComment emits a brace comment word-by-word so long comments wrap.
func pushComment(tw *tokenWriter, comment string) {
	if comment == "" {
		return
	}
	words := strings.Fields(strings.ReplaceAll(comment, "}", ")"))
	if len(words) == 0 {
		return
	}
	words[0] = "{" + words[0]
	words[len(words)-1] += "}"
	for _, w := range words {
		tw.push(w)
	}
}

// tokenWriter accumulates movetext tokens. Variation parentheses attach to
// the neighboring tokens rather than standing alone.
type tokenWriter struct {
	tokens []string
	prefix string
}

func (t *tokenWriter) push(s string) {
	if t.prefix != "" {
		s = t.prefix + s
		t.prefix = ""
	}
	t.tokens = append(t.tokens, s)
}

func (t *tokenWriter) open() {
	t.prefix += "("
}

func (t *tokenWriter) close() {
	if t.prefix != "" {
		// Empty variation: drop the dangling parenthesis.
		t.prefix = t.prefix[:len(t.prefix)-1]
		return
	}
	t.tokens[len(t.tokens)-1] += ")"
}

// wrap joins tokens with single spaces into lines of at most the given width.
// A token longer than the width takes a line of its own.
func wrap(tokens []string, width int) []string {
	var lines []string
	var line strings.Builder
	for _, tok := range tokens {
		switch {
		case line.Len() == 0:
			line.WriteString(tok)
		case line.Len()+1+len(tok) <= width:
			line.WriteString(" ")
			line.WriteString(tok)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(tok)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
