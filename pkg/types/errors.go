package types

import "errors"

// Errors returned by ParseULID and ULIDFromBytes when a stats-history
// record id read back from storage doesn't decode.
var (
	ErrInvalidULIDLength    = errors.New("types: invalid ULID length")
	ErrInvalidULIDCharacter = errors.New("types: invalid ULID character")
)
