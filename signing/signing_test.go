package signing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-keri/indexer"
	"github.com/datatrails/go-datatrails-keri/matter"
)

func fixedSeed() []byte {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestSignerVerferRoundTripCigar(t *testing.T) {
	s, err := NewSigner(fixedSeed(), true)
	require.NoError(t, err)

	msg := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	cig, _, err := s.Sign(msg, nil, false, nil)
	require.NoError(t, err)
	require.True(t, s.Verfer().VerifyCigar(cig, msg))

	perturbed := append([]byte(nil), msg...)
	perturbed[0] ^= 0xff
	require.False(t, s.Verfer().VerifyCigar(cig, perturbed))
}

// TestSignerBigSigerOnOndexMismatch pins spec.md §8 Scenario F: signing
// a fixed 32-byte-seed Ed25519 key over the literal message with
// index=1, ondex=3 must promote to the big both-list code (the plain
// code's zero-width ondex segment cannot carry a differing value), and
// verification must accept the original bytes and reject any single-byte
// perturbation of them.
func TestSignerBigSigerOnOndexMismatch(t *testing.T) {
	s, err := NewSigner(fixedSeed(), true)
	require.NoError(t, err)

	msg := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	index, ondex := 1, 3
	_, sig, err := s.Sign(msg, &index, false, &ondex)
	require.NoError(t, err)
	require.Equal(t, indexer.Ed25519BigSig, sig.Code())
	require.Equal(t, 1, sig.Index())
	require.Equal(t, 3, sig.Ondex())
	require.True(t, s.Verfer().VerifySiger(*sig, msg))

	perturbed := append([]byte(nil), msg...)
	perturbed[0] ^= 0xff
	require.False(t, s.Verfer().VerifySiger(*sig, perturbed))
}

func TestSignerCurrentOnlySiger(t *testing.T) {
	s, err := NewSigner(fixedSeed(), true)
	require.NoError(t, err)

	msg := []byte("hello")
	index := 2
	_, sig, err := s.Sign(msg, &index, true, nil)
	require.NoError(t, err)
	require.Equal(t, indexer.Ed25519CrtSig, sig.Code())
	require.Equal(t, 0, sig.Ondex())
}

func TestDigerVerify(t *testing.T) {
	msg := []byte("the quick brown fox")
	d, err := FromSer(msg, matter.Blake3_256)
	require.NoError(t, err)
	require.True(t, d.Verify(msg))
	require.False(t, d.Verify([]byte("the quick brown fix")))

	q, err := d.Qb64()
	require.NoError(t, err)
	back, err := DigerFromQb64(q)
	require.NoError(t, err)
	require.True(t, back.Verify(msg))
}
