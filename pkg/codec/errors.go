package codec

import "errors"

// Errors returned by the codec and its file collaborators. Callers match them
// with errors.Is; every returned error wraps exactly one of these.
var (
	ErrEmptyInput    = errors.New("input is empty")
	ErrMissingFile   = errors.New("input file not found")
	ErrEncoding      = errors.New("invalid byte sequence for text encoding")
	ErrInvalidConfig = errors.New("invalid codec config")
)
