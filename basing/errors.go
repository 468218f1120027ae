package basing

import "errors"

var (
	ErrNoSuchEvent     = errors.New("basing: no event at that key")
	ErrNotOwnPrefix    = errors.New("basing: prefix is not locally owned")
	ErrHabitatNotFound = errors.New("basing: no habitat record with that name")
)
