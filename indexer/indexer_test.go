package indexer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestQb64RoundTripBothList(t *testing.T) {
	raw := fill(64, 0x7a)
	x, err := New(Ed25519Sig, raw, 3, nil)
	require.NoError(t, err)
	require.Equal(t, 3, x.Ondex())

	q, err := x.Qb64()
	require.NoError(t, err)

	back, n, err := FromQb64(q)
	require.NoError(t, err)
	require.Equal(t, len(q), n)
	require.Equal(t, 3, back.Index())
	require.Equal(t, 3, back.Ondex())
	require.True(t, bytes.Equal(raw, back.Raw()))
}

func TestQb64RoundTripCurrentOnly(t *testing.T) {
	raw := fill(64, 0x11)
	x, err := New(Ed25519CrtSig, raw, 5, nil)
	require.NoError(t, err)
	require.Equal(t, 0, x.Ondex())

	q, err := x.Qb64()
	require.NoError(t, err)

	back, n, err := FromQb64(q)
	require.NoError(t, err)
	require.Equal(t, len(q), n)
	require.Equal(t, 5, back.Index())
}

func TestNewRejectsNonZeroOndexForCrtOnly(t *testing.T) {
	on := 2
	_, err := New(Ed25519CrtSig, fill(64, 0), 2, &on)
	require.ErrorIs(t, err, ErrInvalidVarIndex)
}

func TestNewRejectsWrongRawSize(t *testing.T) {
	_, err := New(Ed25519Sig, fill(63, 0), 0, nil)
	require.ErrorIs(t, err, ErrRawMaterial)
}

func TestBigCodeForPromotion(t *testing.T) {
	big, ok := BigCodeFor(Ed25519Sig)
	require.True(t, ok)
	require.Equal(t, Ed25519BigSig, big)
}

// TestFromQb64ScenarioC pins spec.md §8 Scenario C's exact literal vector:
// decoding this qb64 frame must yield code "A" (Ed25519 sig), index 0,
// ondex 0, and a 64-byte raw signature.
func TestFromQb64ScenarioC(t *testing.T) {
	q := "AACZ0jw5JCQwn2v7GKCMQHISMi5rsscfcA4nbY9AqqWMyG6FyCH2cZFwqezPkq8p3sr8f37Xb3wXgh3UPG8igSYJ"
	x, n, err := FromQb64(q)
	require.NoError(t, err)
	require.Equal(t, len(q), n)
	require.Equal(t, Ed25519Sig, x.Code())
	require.Equal(t, 0, x.Index())
	require.Equal(t, 0, x.Ondex())
	require.Len(t, x.Raw(), 64)
}
