package indexer

import "errors"

var (
	ErrEmptyMaterial       = errors.New("indexer: empty material")
	ErrUnexpectedCode      = errors.New("indexer: unexpected or unknown code")
	ErrInvalidCodeSize     = errors.New("indexer: invalid code size for raw material")
	ErrRawMaterial         = errors.New("indexer: raw material does not match expected size")
	ErrShortage            = errors.New("indexer: not enough bytes, caller should wait for more input")
	ErrInvalidVarIndex     = errors.New("indexer: index or ondex out of range for code")
	ErrUnexpectedCountCode = errors.New("indexer: unexpected count code where indexer material expected")
	ErrUnexpectedOpCode    = errors.New("indexer: unexpected op code where indexer material expected")
)
