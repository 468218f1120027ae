package eventing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-keri/basing"
	"github.com/datatrails/go-datatrails-keri/filing"
	"github.com/datatrails/go-datatrails-keri/klog"
	"github.com/datatrails/go-datatrails-keri/matter"
	"github.com/datatrails/go-datatrails-keri/numbering"
	"github.com/datatrails/go-datatrails-keri/sad"
	"github.com/datatrails/go-datatrails-keri/serdering"
	"github.com/datatrails/go-datatrails-keri/signing"
)

func newTestDB(t *testing.T) *basing.Baser {
	t.Helper()
	b, err := basing.New("eventing-test", filing.WithTemp(true))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close(true) })
	return b
}

// buildIcp signs and sizes a single-key, non-rotatable (nt=0) inception
// event, using the signer's own public key qb64 as the identifier prefix
// (a basic, non-self-addressing derivation — simplest fixture for
// exercising Kever's acceptance machinery without a second SAID pass).
func buildIcp(t *testing.T, signer signing.Signer) (*serdering.Serder, signing.Siger) {
	t.Helper()
	pub, err := signer.Verfer().Qb64()
	require.NoError(t, err)

	d := sad.NewDoc()
	d.Set("v", "KERI10JSON000000_")
	d.Set("t", "icp")
	d.Set("d", "")
	d.Set("i", pub)
	d.Set("s", "0")
	d.Set("kt", "1")
	d.Set("k", []sad.Value{pub})
	d.Set("nt", "0")
	d.Set("n", []sad.Value{})
	d.Set("bt", "0")
	d.Set("b", []sad.Value{})
	d.Set("c", []sad.Value{})
	d.Set("a", []sad.Value{})

	_, signed, err := sad.Saidify(d, matter.Blake3_256, sad.KindJSON, "d", nil)
	require.NoError(t, err)
	raw, _, _, _, _, err := sad.Sizeify(signed, sad.KindJSON)
	require.NoError(t, err)

	serder, err := serdering.FromRaw(raw, nil)
	require.NoError(t, err)

	idx := 0
	_, siger, err := signer.Sign(serder.Raw(), &idx, false, nil)
	require.NoError(t, err)
	require.NotNil(t, siger)
	return serder, *siger
}

// buildIxn signs and sizes an interaction event at sn against prior,
// under the same signer and threshold as the inception it follows.
func buildIxn(t *testing.T, signer signing.Signer, pre, prior string, sn uint64) (*serdering.Serder, signing.Siger) {
	t.Helper()
	d := sad.NewDoc()
	d.Set("v", "KERI10JSON000000_")
	d.Set("t", "ixn")
	d.Set("d", "")
	d.Set("i", pre)
	n, err := numbering.NewNumber(sn)
	require.NoError(t, err)
	d.Set("s", n.Numh())
	d.Set("p", prior)
	d.Set("a", []sad.Value{})

	_, signed, err := sad.Saidify(d, matter.Blake3_256, sad.KindJSON, "d", nil)
	require.NoError(t, err)
	raw, _, _, _, _, err := sad.Sizeify(signed, sad.KindJSON)
	require.NoError(t, err)

	serder, err := serdering.FromRaw(raw, nil)
	require.NoError(t, err)

	idx := 0
	_, siger, err := signer.Sign(serder.Raw(), &idx, false, nil)
	require.NoError(t, err)
	return serder, *siger
}

func TestVerifySigsDedupesAndSorts(t *testing.T) {
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	serder, siger := buildIcp(t, signer)

	accepted, indices := VerifySigs(serder.Raw(), []signing.Siger{siger, siger}, serder.Verfers())
	require.Len(t, accepted, 1)
	require.Equal(t, []int{0}, indices)
}

func TestNewKeverAcceptsInception(t *testing.T) {
	db := newTestDB(t)
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	serder, siger := buildIcp(t, signer)

	kv, err := NewKever(db, klog.NewNop(), serder, []signing.Siger{siger}, nil, true, false)
	require.NoError(t, err)
	require.Equal(t, uint64(0), kv.Sn)
	require.Equal(t, serder.Said(), kv.Said)

	raw, err := db.GetEvt(serder.Pre(), serder.Said())
	require.NoError(t, err)
	require.Equal(t, serder.Raw(), raw)
}

func TestKeveryProcessEventAcceptsInceptionThenInteraction(t *testing.T) {
	db := newTestDB(t)
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	icp, icpSig := buildIcp(t, signer)

	kv := NewKevery(db, klog.NewNop())
	require.NoError(t, kv.ProcessEvent(icp, []signing.Siger{icpSig}, nil, true))

	k, ok := kv.Kever(icp.Pre())
	require.True(t, ok)
	require.Equal(t, uint64(0), k.Sn)

	ixn, ixnSig := buildIxn(t, signer, icp.Pre(), icp.Said(), 1)
	require.NoError(t, kv.ProcessEvent(ixn, []signing.Siger{ixnSig}, nil, true))

	k, ok = kv.Kever(icp.Pre())
	require.True(t, ok)
	require.Equal(t, uint64(1), k.Sn)
	require.Equal(t, ixn.Said(), k.Said)
}

func TestKeveryProcessEventEscrowsOutOfOrder(t *testing.T) {
	db := newTestDB(t)
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	icp, icpSig := buildIcp(t, signer)

	kv := NewKevery(db, klog.NewNop())
	ixn, ixnSig := buildIxn(t, signer, icp.Pre(), icp.Said(), 1)

	err = kv.ProcessEvent(ixn, []signing.Siger{ixnSig}, nil, true)
	require.ErrorIs(t, err, ErrOutOfOrder)
	_, ok := kv.Kever(icp.Pre())
	require.False(t, ok)
}

func TestKeveryProcessEventDuplicateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	icp, icpSig := buildIcp(t, signer)

	kv := NewKevery(db, klog.NewNop())
	require.NoError(t, kv.ProcessEvent(icp, []signing.Siger{icpSig}, nil, true))

	err = kv.ProcessEvent(icp, []signing.Siger{icpSig}, nil, true)
	require.NoError(t, err)

	sigs, err := db.GetSigs(icp.Pre(), icp.Said())
	require.NoError(t, err)
	require.Len(t, sigs, 1)
}

func TestProcessReceiptWithoutEventEscrows(t *testing.T) {
	db := newTestDB(t)
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	icp, _ := buildIcp(t, signer)

	kv := NewKevery(db, klog.NewNop())

	rctDoc := sad.NewDoc()
	rctDoc.Set("v", "KERI10JSON000000_")
	rctDoc.Set("t", "rct")
	rctDoc.Set("d", icp.Said())
	rctDoc.Set("i", icp.Pre())
	rctDoc.Set("s", "0")
	raw, _, _, _, _, err := sad.Sizeify(rctDoc, sad.KindJSON)
	require.NoError(t, err)
	rct, err := serdering.FromRaw(raw, nil)
	require.NoError(t, err)

	nontrans, err := signing.NewSignerRandom(false)
	require.NoError(t, err)
	cigar, _, err := nontrans.Sign(icp.Raw(), nil, false, nil)
	require.NoError(t, err)

	err = kv.ProcessReceipt(rct, []signing.Cigar{cigar}, true)
	require.ErrorIs(t, err, ErrUnverifiedReceipt)
}

func TestProcessReceiptAppendsRctCouple(t *testing.T) {
	db := newTestDB(t)
	signer, err := signing.NewSignerRandom(true)
	require.NoError(t, err)
	icp, icpSig := buildIcp(t, signer)

	kv := NewKevery(db, klog.NewNop())
	require.NoError(t, kv.ProcessEvent(icp, []signing.Siger{icpSig}, nil, true))

	rctDoc := sad.NewDoc()
	rctDoc.Set("v", "KERI10JSON000000_")
	rctDoc.Set("t", "rct")
	rctDoc.Set("d", icp.Said())
	rctDoc.Set("i", icp.Pre())
	rctDoc.Set("s", "0")
	raw, _, _, _, _, err := sad.Sizeify(rctDoc, sad.KindJSON)
	require.NoError(t, err)
	rct, err := serdering.FromRaw(raw, nil)
	require.NoError(t, err)

	nontrans, err := signing.NewSignerRandom(false)
	require.NoError(t, err)
	cigar, _, err := nontrans.Sign(icp.Raw(), nil, false, nil)
	require.NoError(t, err)

	require.NoError(t, kv.ProcessReceipt(rct, []signing.Cigar{cigar}, true))

	rcts, err := db.GetRcts(icp.Pre(), icp.Said())
	require.NoError(t, err)
	require.Len(t, rcts, 1)
}

func TestFiveOpenQuestionStubsReturnErrNotImplemented(t *testing.T) {
	db := newTestDB(t)
	kv := NewKevery(db, klog.NewNop())

	_, err := kv.fetchWitnessState("EPre", 0)
	require.ErrorIs(t, err, ErrNotImplemented)

	require.ErrorIs(t, kv.escrowOutOfOrder(nil, nil, nil, false), ErrNotImplemented)
	require.ErrorIs(t, kv.escrowLikelyDuplicitous(nil, nil), ErrNotImplemented)
	require.ErrorIs(t, kv.ProcessAttachedReceiptCouples(nil, nil), ErrNotImplemented)
	require.ErrorIs(t, kv.ProcessAttachedReceiptQuadruples(nil), ErrNotImplemented)
}
