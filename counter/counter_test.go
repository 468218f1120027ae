package counter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQb64RoundTrip(t *testing.T) {
	c, err := New(ControllerIdxSigs, 2)
	require.NoError(t, err)
	q, err := c.Qb64()
	require.NoError(t, err)
	require.Equal(t, 4, len(q))

	back, n, err := FromQb64(q)
	require.NoError(t, err)
	require.Equal(t, len(q), n)
	require.Equal(t, ControllerIdxSigs, back.Code())
	require.Equal(t, 2, back.Count())
}

func TestGenusVersionCounter(t *testing.T) {
	c, err := New(KERIACDCGenusVersion, 16)
	require.NoError(t, err)
	q, err := c.Qb64()
	require.NoError(t, err)
	require.Equal(t, "--AAA", q[:5])

	back, n, err := FromQb64(q)
	require.NoError(t, err)
	require.Equal(t, len(q), n)
	require.Equal(t, 16, back.Count())
}

func TestNewPromotesToBigCodeOnOverflow(t *testing.T) {
	c, err := New(AttachmentGroup, 64*64)
	require.NoError(t, err)
	require.Equal(t, BigAttachmentGroup, c.Code())
}

func TestQb2RoundTrip(t *testing.T) {
	c, err := New(AttachmentGroup, 5)
	require.NoError(t, err)
	qb2, err := c.Qb2()
	require.NoError(t, err)

	back, n, err := FromQb2(qb2)
	require.NoError(t, err)
	require.Equal(t, len(qb2), n)
	require.Equal(t, 5, back.Count())
}
