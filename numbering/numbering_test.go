package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNumberShortAndBig(t *testing.T) {
	n, err := NewNumber(42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), n.Num())

	big, err := NewNumber(1 << 40)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), big.Num())
}

func TestNumberQb64RoundTrip(t *testing.T) {
	n, err := NewNumber(12345)
	require.NoError(t, err)
	q, err := n.Qb64()
	require.NoError(t, err)

	back, err := ParseNumber(q)
	require.NoError(t, err)
	require.Equal(t, uint64(12345), back.Num())
}

func TestParseNumberDecimalAndHex(t *testing.T) {
	n, err := ParseNumber("0x2a")
	require.NoError(t, err)
	require.Equal(t, uint64(42), n.Num())

	n2, err := ParseNumber("42")
	require.NoError(t, err)
	require.Equal(t, uint64(42), n2.Num())
}

// TestNumhZero guards against TrimLeft stripping an all-zero hex string
// down to the empty string instead of "0".
func TestNumhZero(t *testing.T) {
	n, err := NewNumber(0)
	require.NoError(t, err)
	require.Equal(t, "0", n.Numh())
}

func TestNumhNonZero(t *testing.T) {
	n, err := NewNumber(0x2a)
	require.NoError(t, err)
	require.Equal(t, "2a", n.Numh())
}

func TestTholderPlainSatisfy(t *testing.T) {
	th := NewTholderInt(2)
	require.False(t, th.Satisfy([]int{0}))
	require.True(t, th.Satisfy([]int{0, 1}))
}

func TestTholderWeightedSatisfy(t *testing.T) {
	th, err := NewTholderWeighted([][]string{{"1/2", "1/2", "1/4"}})
	require.NoError(t, err)
	require.False(t, th.Satisfy([]int{0}))
	require.True(t, th.Satisfy([]int{0, 1}))
}

func TestDaterRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDater(now)
	q, err := d.Qb64()
	require.NoError(t, err)

	back, err := ParseDater(q)
	require.NoError(t, err)
	require.True(t, now.Equal(back.Time()))
}
