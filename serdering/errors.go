package serdering

import "errors"

var (
	ErrShortage       = errors.New("serdering: not enough bytes for a complete frame header")
	ErrVersion        = errors.New("serdering: malformed or unrecognized version string")
	ErrSAIDMismatch   = errors.New("serdering: said does not verify against the event body")
	ErrMissingField   = errors.New("serdering: required field missing")
	ErrUnexpectedType = errors.New("serdering: field has an unexpected type")
)
