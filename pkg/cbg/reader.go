package cbg

import (
	"encoding/binary"

	"github.com/herohde/cbh2pgn/pkg/cb"
)

// cursor is a bounds-checked reader over one game's move stream.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.buf)
}

func (c *cursor) next() (byte, error) {
	if c.done() {
		return 0, ErrTruncated
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, ErrTruncated
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// readComment consumes a length-prefixed comment payload: a 2-byte big-endian
// length followed by legacy single-byte text, transcoded to UTF-8.
func readComment(c *cursor) (string, error) {
	raw, err := c.take(2)
	if err != nil {
		return "", err
	}
	payload, err := c.take(int(binary.BigEndian.Uint16(raw)))
	if err != nil {
		return "", err
	}
	return cb.DecodeText(payload), nil
}

// readAnnotation consumes the fixed annotation block and returns the NAG
// codes present, in stream order.
func readAnnotation(c *cursor) ([]uint8, error) {
	raw, err := c.take(annotationSize)
	if err != nil {
		return nil, err
	}
	var nags []uint8
	for _, b := range raw {
		if b != 0 {
			nags = append(nags, b)
		}
	}
	return nags, nil
}
