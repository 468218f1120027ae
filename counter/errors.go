package counter

import "errors"

var (
	ErrEmptyMaterial   = errors.New("counter: empty material")
	ErrUnexpectedCode  = errors.New("counter: unexpected or unknown code")
	ErrInvalidCodeSize = errors.New("counter: invalid code size")
	ErrShortage        = errors.New("counter: not enough bytes, caller should wait for more input")
	ErrInvalidCount    = errors.New("counter: count out of range for code")
)
