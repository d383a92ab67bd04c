// Package cbg decodes ChessBase game records: the move-stream byte encoding,
// the optional start-position block and the attached comments and annotations.
// Decoding is best-effort and per game: a failure yields the partial game tree
// along with the error.
package cbg

import "errors"

var (
	// ErrDesync indicates that the decoder's shadow state no longer matches the
	// encoder's: an opcode referenced an empty catalog slot, a destination off
	// the board, or a capture victim that does not exist. The remainder of the
	// stream is un-interpretable.
	ErrDesync = errors.New("desync")

	// ErrTruncated indicates that the stream ended before the end-of-game marker.
	ErrTruncated = errors.New("truncated stream")

	// ErrUnbalancedVariation indicates mismatched variation push/pop markers.
	ErrUnbalancedVariation = errors.New("unbalanced variation")

	// ErrInvalidStartPosition indicates a malformed 28-byte setup block.
	ErrInvalidStartPosition = errors.New("invalid start position")

	// ErrCatalog indicates a broken board/catalog invariant. It is a programming
	// error if it escapes this package.
	ErrCatalog = errors.New("catalog invariant violation")
)
