package basing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-keri/filing"
)

func newTestBaser(t *testing.T) *Baser {
	t.Helper()
	b, err := New("basing-test", filing.WithTemp(true))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close(true) })
	return b
}

func TestEvtKelFelRoundTrip(t *testing.T) {
	b := newTestBaser(t)

	pre := "EPrefixA"
	said := "EDigestA"

	ok, err := b.PutEvt(pre, said, []byte("serialized-event"))
	require.NoError(t, err)
	require.True(t, ok)

	raw, err := b.GetEvt(pre, said)
	require.NoError(t, err)
	require.Equal(t, []byte("serialized-event"), raw)

	require.NoError(t, b.PutKel(pre, 0, said))
	kel, err := b.GetKel(pre, 0)
	require.NoError(t, err)
	require.Equal(t, []string{said}, kel)

	fn, err := b.AppendFel(pre, said)
	require.NoError(t, err)
	require.Equal(t, uint64(0), fn)

	got, err := b.GetFel(pre, 0)
	require.NoError(t, err)
	require.Equal(t, said, got)
}

func TestKelAccumulatesDuplicatesUnderRecovery(t *testing.T) {
	b := newTestBaser(t)
	pre := "EPrefixB"

	require.NoError(t, b.PutKel(pre, 3, "EFirstDigest"))
	require.NoError(t, b.PutKel(pre, 3, "ESecondDigest"))

	kel, err := b.GetKel(pre, 3)
	require.NoError(t, err)
	require.Len(t, kel, 2)
	require.Contains(t, kel, "EFirstDigest")
	require.Contains(t, kel, "ESecondDigest")
}

func TestSigsWigsRctsIdempotent(t *testing.T) {
	b := newTestBaser(t)
	pre, said := "EPrefixC", "EDigestC"

	require.NoError(t, b.PutSig(pre, said, "sig1"))
	require.NoError(t, b.PutSig(pre, said, "sig1"))
	require.NoError(t, b.PutSig(pre, said, "sig2"))

	sigs, err := b.GetSigs(pre, said)
	require.NoError(t, err)
	require.Len(t, sigs, 2)

	require.NoError(t, b.PutWig(pre, said, "wig1"))
	wigs, err := b.GetWigs(pre, said)
	require.NoError(t, err)
	require.Equal(t, []string{"wig1"}, wigs)

	require.NoError(t, b.PutRct(pre, said, "Everfer", "Esig"))
	rcts, err := b.GetRcts(pre, said)
	require.NoError(t, err)
	require.Equal(t, []string{"EverferEsig"}, rcts)
}

func TestHabsAndPrefixes(t *testing.T) {
	b := newTestBaser(t)

	rec := &HabitatRecord{Hid: "EOwnPrefix", Name: "alice", Watchers: []string{"EWatcherA"}}
	require.NoError(t, b.PutHab("alice", rec))

	got, err := b.GetHab("alice")
	require.NoError(t, err)
	require.Equal(t, "EOwnPrefix", got.Hid)
	require.Equal(t, []string{"EWatcherA"}, got.Watchers)

	require.False(t, b.IsOwn("EOwnPrefix"))
	require.NoError(t, b.LoadPrefixes())
	require.True(t, b.IsOwn("EOwnPrefix"))

	b.RemoveOwn("EOwnPrefix")
	require.False(t, b.IsOwn("EOwnPrefix"))
}

func TestGetHabMissing(t *testing.T) {
	b := newTestBaser(t)
	_, err := b.GetHab("nobody")
	require.ErrorIs(t, err, ErrHabitatNotFound)
}
