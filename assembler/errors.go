package assembler

import "errors"

var (
	// ErrInvalidTypeID means the configured family type id is missing or
	// malformed. Fatal: a configuration problem, not a transient one.
	ErrInvalidTypeID = errors.New("missing or invalid client type id")

	// ErrLayoutMismatch means the fetched on-chain cells do not match the
	// configured family layout. Fatal.
	ErrLayoutMismatch = errors.New("client cell layout mismatch")

	// ErrInsufficientCapacity means the collected fee cells cannot cover
	// the transaction's outputs plus fee.
	ErrInsufficientCapacity = errors.New("insufficient input capacity")
)
