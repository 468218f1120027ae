// Package signing provides the capability wrappers the verifier pipeline
// depends on — Signer, Verfer, Diger, Cigar, Siger — over external
// cryptographic primitives. See spec.md §4.6.
package signing

import (
	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/datatrails/go-datatrails-keri/matter"
)

// Verfer wraps a public verification key and its Matter derivation code.
type Verfer struct {
	code matter.Code
	raw  []byte
}

// NewVerfer builds a Verfer from a raw public key and its code.
func NewVerfer(code matter.Code, raw []byte) (Verfer, error) {
	switch code {
	case matter.Ed25519, matter.Ed25519N:
		if len(raw) != ed25519.PublicKeySize {
			return Verfer{}, ErrKeySize
		}
	default:
		return Verfer{}, ErrUnsupportedAlgorithm
	}
	return Verfer{code: code, raw: append([]byte(nil), raw...)}, nil
}

func (v Verfer) Code() matter.Code { return v.code }
func (v Verfer) Raw() []byte       { return v.raw }

// Qb64 renders the fully qualified Base64 text representation.
func (v Verfer) Qb64() (string, error) {
	m, err := matter.New(v.code, v.raw)
	if err != nil {
		return "", err
	}
	return m.Qb64()
}

// Verify checks sig (a raw signature, not a wrapped Cigar/Siger) against
// ser under this key.
func (v Verfer) Verify(sig, ser []byte) bool {
	switch v.code {
	case matter.Ed25519, matter.Ed25519N:
		return ed25519.Verify(ed25519.PublicKey(v.raw), ser, sig)
	default:
		return false
	}
}

// VerifyCigar verifies a non-indexed Cigar signature against ser.
func (v Verfer) VerifyCigar(c Cigar, ser []byte) bool {
	return v.Verify(c.Raw(), ser)
}

// VerifySiger verifies an indexed Siger signature against ser.
func (v Verfer) VerifySiger(s Siger, ser []byte) bool {
	return v.Verify(s.Raw(), ser)
}
