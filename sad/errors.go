package sad

import "errors"

var (
	ErrUnsupportedKind = errors.New("sad: unsupported serialization kind")
	ErrMissingLabel    = errors.New("sad: missing SAID label field")
	ErrUnsupportedCode = errors.New("sad: unsupported digest code")
	ErrBadVersionString = errors.New("sad: malformed version string")
	ErrMalformed       = errors.New("sad: malformed document")
)
