package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-keri/filing"
	"github.com/datatrails/go-datatrails-keri/sad"
)

func TestOnKeySplitRoundTrip(t *testing.T) {
	key := OnKey([]byte("EPrefix"), 42, '.')
	top, on, err := SplitOnKey(key, '.')
	require.NoError(t, err)
	require.Equal(t, []byte("EPrefix"), top)
	require.Equal(t, uint64(42), on)
}

func TestKomerPutGetRem(t *testing.T) {
	lmdb, err := New("komer-test", filing.WithTemp(true))
	require.NoError(t, err)
	defer lmdb.Close(true)

	kind := sad.KindJSON
	kom, err := NewKomer[*sad.Doc](lmdb, "records.", kind, SadEncoder(kind), SadDecoder(kind))
	require.NoError(t, err)

	rec := sad.NewDoc()
	rec.Set("first", "Jim")
	rec.Set("last", "Black")

	ok, err := kom.Put([]string{"jim"}, rec)
	require.NoError(t, err)
	require.True(t, ok)

	got, found, err := kom.Get([]string{"jim"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Jim", got.GetString("first"))

	n, err := kom.CntAll()
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)

	removed, err := kom.Rem([]string{"jim"})
	require.NoError(t, err)
	require.True(t, removed)
}

func TestLMDBerOnValAppendOrder(t *testing.T) {
	lmdb, err := New("onval-test", filing.WithTemp(true))
	require.NoError(t, err)
	defer lmdb.Close(true)

	dbi, err := lmdb.CreateDatabase("events.", false)
	require.NoError(t, err)

	pre := []byte("EPreA")
	for i := 0; i < 3; i++ {
		on, err := lmdb.AppendOnVal(dbi, pre, []byte{byte(i)})
		require.NoError(t, err)
		require.Equal(t, uint64(i), on)
	}

	n, err := lmdb.CntOnVals(dbi, pre)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var seen []uint64
	err = lmdb.GetOnItemIter(dbi, pre, func(on uint64, val []byte) (bool, error) {
		seen = append(seen, on)
		return true, nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2}, seen)
}
