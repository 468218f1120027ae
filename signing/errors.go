package signing

import "errors"

var (
	ErrUnsupportedAlgorithm = errors.New("signing: unsupported key algorithm")
	ErrVerifyFailed         = errors.New("signing: signature verification failed")
	ErrSeedSize             = errors.New("signing: wrong seed size for algorithm")
	ErrKeySize              = errors.New("signing: wrong public key size for algorithm")
)
