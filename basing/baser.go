// Package basing implements Baser, the set of named KERI sub-databases
// layered over db.LMDBer: the canonical event store, the key-event log
// ordinal indices, the signature/witness-signature/receipt collections,
// and the habitat record table. See spec.md §4.11.
package basing

import (
	"sync"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/datatrails/go-datatrails-keri/db"
	"github.com/datatrails/go-datatrails-keri/filing"
	"github.com/datatrails/go-datatrails-keri/sad"
)

// Baser owns one LMDBer environment and the seven sub-databases spec.md
// §4.11 names, plus the in-memory set of locally owned prefixes.
type Baser struct {
	ldb *db.LMDBer

	evts mdbx.DBI
	kels mdbx.DBI
	fels mdbx.DBI
	sigs mdbx.DBI
	wigs mdbx.DBI
	rcts mdbx.DBI
	habs *db.Komer[*HabitatRecord]

	mu       sync.RWMutex
	prefixes map[string]struct{}
}

// New opens (creating if absent) a Baser at name, with all seven sub-dbs.
func New(name string, opts ...filing.Option) (*Baser, error) {
	ldb, err := db.New(name, opts...)
	if err != nil {
		return nil, err
	}
	b := &Baser{ldb: ldb, prefixes: make(map[string]struct{})}

	if b.evts, err = ldb.CreateDatabase("evts.", false); err != nil {
		return nil, err
	}
	if b.kels, err = ldb.CreateDatabase("kels.", true); err != nil {
		return nil, err
	}
	if b.fels, err = ldb.CreateDatabase("fels.", false); err != nil {
		return nil, err
	}
	if b.sigs, err = ldb.CreateDatabase("sigs.", true); err != nil {
		return nil, err
	}
	if b.wigs, err = ldb.CreateDatabase("wigs.", true); err != nil {
		return nil, err
	}
	if b.rcts, err = ldb.CreateDatabase("rcts.", true); err != nil {
		return nil, err
	}
	if b.habs, err = db.NewKomer[*HabitatRecord](ldb, "habs.", sad.KindJSON, habEncode, habDecode); err != nil {
		return nil, err
	}
	return b, nil
}

// Close releases the underlying environment and Filer resource.
func (b *Baser) Close(clear bool) error { return b.ldb.Close(clear) }

// PutEvt writes the serialized event raw under (pre, said), failing
// without error if one is already stored there.
func (b *Baser) PutEvt(pre, said string, raw []byte) (bool, error) {
	return b.ldb.PutVal(b.evts, db.DgKey([]byte(pre), []byte(said)), raw)
}

// GetEvt returns the serialized event at (pre, said), or nil if absent.
func (b *Baser) GetEvt(pre, said string) ([]byte, error) {
	return b.ldb.GetVal(b.evts, db.DgKey([]byte(pre), []byte(said)))
}

// DelEvt removes the event at (pre, said).
func (b *Baser) DelEvt(pre, said string) (bool, error) {
	return b.ldb.DelVal(b.evts, db.DgKey([]byte(pre), []byte(said)))
}

// PutKel records said as the (possibly one-of-several, under recovery)
// digest accepted at (pre, sn). Distinct SAIDs at the same sn accumulate
// as duplicates in kels's DUP_SORT database rather than overwriting.
func (b *Baser) PutKel(pre string, sn uint64, said string) error {
	return b.ldb.SetVal(b.kels, db.SnKey([]byte(pre), sn), []byte(said))
}

// GetKel returns every SAID recorded at (pre, sn), in sorted order. Under
// normal operation this is a single element; more than one means a
// superseding recovery left both the superseded and superseding digest
// on record at that sn.
func (b *Baser) GetKel(pre string, sn uint64) ([]string, error) {
	vals, err := b.ldb.GetAllVals(b.kels, db.SnKey([]byte(pre), sn))
	if err != nil {
		return nil, err
	}
	return bytesToStrings(vals), nil
}

// DelKel removes all SAIDs recorded at (pre, sn).
func (b *Baser) DelKel(pre string, sn uint64) (bool, error) {
	return b.ldb.DelVal(b.kels, db.SnKey([]byte(pre), sn))
}

// AppendFel records said as the next first-seen-log entry for pre,
// returning the fn it was written at.
func (b *Baser) AppendFel(pre string, said string) (uint64, error) {
	return b.ldb.AppendOnVal(b.fels, []byte(pre), []byte(said))
}

// GetFel returns the SAID first seen for pre at first-seen ordinal fn.
func (b *Baser) GetFel(pre string, fn uint64) (string, error) {
	v, err := b.ldb.GetOnVal(b.fels, []byte(pre), fn)
	if err != nil || v == nil {
		return "", err
	}
	return string(v), nil
}

// CntFel returns the number of first-seen-log entries recorded for pre.
func (b *Baser) CntFel(pre string) (int, error) {
	return b.ldb.CntOnVals(b.fels, []byte(pre))
}

// PutSig adds sigQb64 to the indexed-signature set for (pre, said),
// idempotently: re-adding the same signature qb64 is a no-op.
func (b *Baser) PutSig(pre, said, sigQb64 string) error {
	return b.ldb.SetVal(b.sigs, db.DgKey([]byte(pre), []byte(said)), []byte(sigQb64))
}

// GetSigs returns every indexed signature qb64 recorded for (pre, said).
func (b *Baser) GetSigs(pre, said string) ([]string, error) {
	vals, err := b.ldb.GetAllVals(b.sigs, db.DgKey([]byte(pre), []byte(said)))
	if err != nil {
		return nil, err
	}
	return bytesToStrings(vals), nil
}

// PutWig adds wigQb64 to the indexed witness-signature set for
// (pre, said), idempotently.
func (b *Baser) PutWig(pre, said, wigQb64 string) error {
	return b.ldb.SetVal(b.wigs, db.DgKey([]byte(pre), []byte(said)), []byte(wigQb64))
}

// GetWigs returns every indexed witness signature qb64 recorded for
// (pre, said).
func (b *Baser) GetWigs(pre, said string) ([]string, error) {
	vals, err := b.ldb.GetAllVals(b.wigs, db.DgKey([]byte(pre), []byte(said)))
	if err != nil {
		return nil, err
	}
	return bytesToStrings(vals), nil
}

// PutRct adds a nontransferable receipt couple (verferQb64, sigQb64) for
// (pre, said).
func (b *Baser) PutRct(pre, said, verferQb64, sigQb64 string) error {
	return b.ldb.SetVal(b.rcts, db.DgKey([]byte(pre), []byte(said)), []byte(verferQb64+sigQb64))
}

// GetRcts returns every verferQb64∥sigQb64 couple recorded for (pre, said).
func (b *Baser) GetRcts(pre, said string) ([]string, error) {
	vals, err := b.ldb.GetAllVals(b.rcts, db.DgKey([]byte(pre), []byte(said)))
	if err != nil {
		return nil, err
	}
	return bytesToStrings(vals), nil
}

// PutHab stores rec under name, overwriting any existing record.
func (b *Baser) PutHab(name string, rec *HabitatRecord) error {
	return b.habs.Pin([]string{name}, rec)
}

// GetHab returns the habitat record stored under name.
func (b *Baser) GetHab(name string) (*HabitatRecord, error) {
	rec, found, err := b.habs.Get([]string{name})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrHabitatNotFound
	}
	return rec, nil
}

// LoadPrefixes seeds the in-memory set of locally owned prefixes from
// every habitat record's Hid, replacing whatever set was loaded before.
// Called once at startup, per spec.md §4.11.
func (b *Baser) LoadPrefixes() error {
	items, err := b.habs.GetItemIter(nil)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prefixes = make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Val.Hid != "" {
			b.prefixes[it.Val.Hid] = struct{}{}
		}
	}
	return nil
}

// AddOwn marks pre as locally owned.
func (b *Baser) AddOwn(pre string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prefixes[pre] = struct{}{}
}

// RemoveOwn unmarks pre as locally owned.
func (b *Baser) RemoveOwn(pre string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.prefixes, pre)
}

// IsOwn reports whether pre is in the locally owned prefix set, gating
// "is this our own event?" for Kevery's receipt-processing rules.
func (b *Baser) IsOwn(pre string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.prefixes[pre]
	return ok
}

func bytesToStrings(vals [][]byte) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}
