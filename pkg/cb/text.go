package cb

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText transcodes legacy single-byte text from the database files
// (Windows-1252) into UTF-8, dropping any NUL padding.
func DecodeText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		// Windows-1252 is total over single bytes; a decode failure would
		// indicate a transform bug, so fall back to the raw bytes.
		return string(b)
	}
	return string(out)
}
