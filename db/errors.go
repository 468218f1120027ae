package db

import "errors"

var (
	ErrNotOpened    = errors.New("db: environment is not opened")
	ErrEmptyKey     = errors.New("db: key cannot be empty")
	ErrKeyExists    = errors.New("db: key already exists")
	ErrUnsplittable = errors.New("db: key has no separator to split on")
	ErrBadOrdinal   = errors.New("db: ordinal suffix is not valid hex")
	ErrOrdinalOverflow = errors.New("db: ordinal number exceeds maximum size")
)
