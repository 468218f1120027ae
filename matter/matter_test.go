package matter

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

func TestQb64RoundTrip(t *testing.T) {
	cases := []struct {
		code Code
		n    int
	}{
		{Ed25519Seed, 32},
		{Blake3_256, 32},
		{Ed25519Sig, 64},
		{Salt128, 16},
		{NumberShort, 4},
		{NumberBig, 16},
		{ECDSA256k1N, 33},
		{DateTime, 24},
	}
	for _, c := range cases {
		raw := fill(c.n, 0x5a)
		m, err := New(c.code, raw)
		require.NoError(t, err, c.code)
		q, err := m.Qb64()
		require.NoError(t, err, c.code)

		back, n, err := FromQb64(q)
		require.NoError(t, err, c.code)
		require.Equal(t, len(q), n)
		require.Equal(t, c.code, back.Code())
		require.True(t, bytes.Equal(raw, back.Raw()), c.code)
	}
}

func TestQb2RoundTrip(t *testing.T) {
	raw := fill(32, 0x11)
	m, err := New(Blake3_256, raw)
	require.NoError(t, err)

	qb64, err := m.Qb64()
	require.NoError(t, err)
	qb2, err := m.Qb2()
	require.NoError(t, err)
	require.Equal(t, len(qb64)*3/4, len(qb2))

	back, n, err := FromQb2(qb2)
	require.NoError(t, err)
	require.Equal(t, len(qb2), n)
	require.True(t, bytes.Equal(raw, back.Raw()))
}

func TestNewRejectsWrongRawSize(t *testing.T) {
	_, err := New(Ed25519Seed, fill(31, 0))
	require.ErrorIs(t, err, ErrRawMaterial)
}

func TestFromQb64RejectsUnknownCode(t *testing.T) {
	_, _, err := FromQb64("z" + string(fill(43, 'A')))
	require.ErrorIs(t, err, ErrUnexpectedCode)
}

func TestFromQb64ShortageOnTruncatedFrame(t *testing.T) {
	raw := fill(32, 0x42)
	m, err := New(Ed25519Seed, raw)
	require.NoError(t, err)
	q, err := m.Qb64()
	require.NoError(t, err)

	_, _, err = FromQb64(q[:len(q)-4])
	require.ErrorIs(t, err, ErrShortage)
}

func TestFromQb64RejectsCountAndOpCodes(t *testing.T) {
	_, _, err := FromQb64("-AAB")
	require.ErrorIs(t, err, ErrUnexpectedCountCode)
	_, _, err = FromQb64("_AAB")
	require.ErrorIs(t, err, ErrUnexpectedOpCode)
}
