package filing

import "errors"

var (
	ErrNotRelative  = errors.New("filing: name/base must be a relative path")
	ErrNotOpened    = errors.New("filing: filer is not open")
	ErrAlreadyFiled = errors.New("filing: path is a file, directory operation requested")
)
