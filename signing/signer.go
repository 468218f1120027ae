package signing

import (
	"crypto/rand"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/datatrails/go-datatrails-keri/indexer"
	"github.com/datatrails/go-datatrails-keri/matter"
)

// Signer holds a private key seed and carries the Verfer derived from it.
// It is the only signing capability the verifier/Kevery layers depend on;
// key generation and storage live outside the core (spec.md Non-goals).
type Signer struct {
	seed   []byte
	priv   ed25519.PrivateKey
	verfer Verfer
}

// NewSigner derives a Signer from a raw 32-byte Ed25519 seed. transferable
// selects whether the embedded Verfer uses the transferable (Ed25519) or
// non-transferable (Ed25519N) derivation code.
func NewSigner(seed []byte, transferable bool) (Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return Signer{}, ErrSeedSize
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	code := matter.Ed25519N
	if transferable {
		code = matter.Ed25519
	}
	verfer, err := NewVerfer(code, pub)
	if err != nil {
		return Signer{}, err
	}
	return Signer{seed: append([]byte(nil), seed...), priv: priv, verfer: verfer}, nil
}

// NewSignerRandom generates a fresh random Signer.
func NewSignerRandom(transferable bool) (Signer, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return Signer{}, err
	}
	return NewSigner(seed, transferable)
}

// Verfer returns the verification key derived from this signer's seed.
func (s Signer) Verfer() Verfer { return s.verfer }

// Qb64 renders the seed's fully qualified Base64 text representation.
func (s Signer) Qb64() (string, error) {
	m, err := matter.New(matter.Ed25519Seed, s.seed)
	if err != nil {
		return "", err
	}
	return m.Qb64()
}

// Sign signs ser. With no index, it returns a Cigar (non-indexed,
// non-transferable-receipt form). With an index, it returns a Siger,
// picking the smallest-fitting indexed code: the plain "both-list" code
// when ondex is absent or equals index, the current-only code when only
// is set, or the big code (which carries a distinct ondex segment) when
// ondex differs from index.
func (s Signer) Sign(ser []byte, index *int, only bool, ondex *int) (Cigar, *Siger, error) {
	sig := ed25519.Sign(s.priv, ser)

	if index == nil {
		c, err := NewCigar(matter.Ed25519Sig, sig, s.verfer)
		return c, nil, err
	}

	var code indexer.Code
	var on *int
	switch {
	case only:
		code = indexer.Ed25519CrtSig
	case ondex != nil && *ondex != *index:
		code = indexer.Ed25519BigSig
		on = ondex
	default:
		code = indexer.Ed25519Sig
		on = ondex
	}

	x, err := indexer.New(code, sig, *index, on)
	if err != nil {
		return Cigar{}, nil, err
	}
	siger := NewSiger(x)
	return Cigar{}, &siger, nil
}
