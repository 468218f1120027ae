package signing

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/datatrails/go-datatrails-keri/matter"
)

// Diger computes and carries a digest under a configured digest code.
type Diger struct {
	m matter.Matter
}

// digest computes raw's digest under code, or ErrUnsupportedAlgorithm if
// code does not name a digest family this package implements.
func digest(code matter.Code, raw []byte) ([]byte, error) {
	switch code {
	case matter.Blake3_256:
		sum := blake3.Sum256(raw)
		return sum[:], nil
	case matter.Blake2b256:
		sum := blake2b.Sum256(raw)
		return sum[:], nil
	case matter.SHA3_256:
		sum := sha3.Sum256(raw)
		return sum[:], nil
	case matter.SHA2_256:
		sum := sha256.Sum256(raw)
		return sum[:], nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// FromSer computes a Diger over ser under code.
func FromSer(ser []byte, code matter.Code) (Diger, error) {
	sum, err := digest(code, ser)
	if err != nil {
		return Diger{}, err
	}
	m, err := matter.New(code, sum)
	if err != nil {
		return Diger{}, err
	}
	return Diger{m: m}, nil
}

// DigerFromQb64 parses a Diger from its qb64 text form.
func DigerFromQb64(s string) (Diger, error) {
	m, _, err := matter.FromQb64(s)
	if err != nil {
		return Diger{}, err
	}
	return Diger{m: m}, nil
}

func (d Diger) Code() matter.Code { return d.m.Code() }
func (d Diger) Raw() []byte       { return d.m.Raw() }

// Qb64 renders the fully qualified Base64 text representation.
func (d Diger) Qb64() (string, error) { return d.m.Qb64() }

// Verify recomputes the digest over ser and compares it to this Diger's
// raw value.
func (d Diger) Verify(ser []byte) bool {
	sum, err := digest(d.m.Code(), ser)
	if err != nil {
		return false
	}
	if len(sum) != len(d.m.Raw()) {
		return false
	}
	for i := range sum {
		if sum[i] != d.m.Raw()[i] {
			return false
		}
	}
	return true
}
