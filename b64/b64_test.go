package b64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntToB64RoundTrip(t *testing.T) {
	for _, n := range []uint64{0, 1, 63, 64, 4095, 100024000} {
		s := IntToB64(n, 6)
		got, err := B64ToInt(s)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestEncodeDecodeB64(t *testing.T) {
	raw := []byte("abcdefghijkl")
	s := EncodeB64(raw)
	got, err := DecodeB64(s)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestNabSextetsZeroPadsRight(t *testing.T) {
	// "-0V" three sextets -> ceil(3*6/8) = 3 bytes, last byte's low bits zero.
	b, err := NabSextets([]byte("-0V"), 3)
	require.NoError(t, err)
	require.Len(t, b, 3)
	require.Equal(t, byte(0), b[2]&0x3f)
}

func TestCharToSextetRejectsOutsideAlphabet(t *testing.T) {
	_, err := CharToSextet('!')
	require.ErrorIs(t, err, ErrBadChar)
}
