package serdering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-keri/matter"
	"github.com/datatrails/go-datatrails-keri/sad"
)

func icpDoc() *sad.Doc {
	d := sad.NewDoc()
	d.Set("v", "KERI10JSON000000_")
	d.Set("t", "icp")
	d.Set("d", "")
	d.Set("i", "")
	d.Set("s", "0")
	d.Set("kt", "1")
	d.Set("k", []sad.Value{"DFakeKeyQb64Placeholder000000000000000000001"})
	d.Set("nt", "1")
	d.Set("n", []sad.Value{})
	d.Set("bt", "0")
	d.Set("b", []sad.Value{})
	d.Set("c", []sad.Value{})
	d.Set("a", []sad.Value{})
	return d
}

func buildRaw(t *testing.T) []byte {
	t.Helper()
	d := icpDoc()
	said, signed, err := sad.Saidify(d, matter.Blake3_256, sad.KindJSON, "d", nil)
	require.NoError(t, err)
	require.NotEmpty(t, said)

	raw, _, _, resized, _, err := sad.Sizeify(signed, sad.KindJSON)
	require.NoError(t, err)
	require.NotNil(t, resized)
	return raw
}

func TestSmellFindsVersionString(t *testing.T) {
	raw := buildRaw(t)
	s, err := Smell(raw)
	require.NoError(t, err)
	require.Equal(t, "KERI", s.Proto)
	require.Equal(t, sad.KindJSON, s.Kind)
	require.Equal(t, len(raw), s.Size)
}

func TestFromRawVerifiesSAID(t *testing.T) {
	raw := buildRaw(t)
	sr, err := FromRaw(raw, nil)
	require.NoError(t, err)
	require.Equal(t, "icp", sr.Ilk())
	require.NotEmpty(t, sr.Said())
	require.True(t, sr.Estive())
	require.Equal(t, uint64(0), sr.Sn())
}

func TestFromRawRejectsTamperedBody(t *testing.T) {
	raw := buildRaw(t)
	tampered := append([]byte(nil), raw...)
	// Flip the sequence number's digit without updating the SAID.
	idx := -1
	target := []byte(`"s":"0"`)
	for i := 0; i+len(target) <= len(tampered); i++ {
		if string(tampered[i:i+len(target)]) == string(target) {
			idx = i
			break
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	tampered[idx+5] = '1'

	_, err := FromRaw(tampered, nil)
	require.Error(t, err)
}

func TestFromRawShortageOnTruncatedFrame(t *testing.T) {
	raw := buildRaw(t)
	_, err := FromRaw(raw[:10], nil)
	require.ErrorIs(t, err, ErrShortage)
}
