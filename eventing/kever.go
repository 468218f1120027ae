// Package eventing implements Kever, the per-prefix key-event state
// machine, and Kevery, the dispatch pipeline that feeds it incoming
// events, receipts, and queries. See spec.md §4.12, §4.13.
package eventing

import (
	"sort"

	"github.com/datatrails/go-datatrails-keri/basing"
	"github.com/datatrails/go-datatrails-keri/klog"
	"github.com/datatrails/go-datatrails-keri/matter"
	"github.com/datatrails/go-datatrails-keri/numbering"
	"github.com/datatrails/go-datatrails-keri/serdering"
	"github.com/datatrails/go-datatrails-keri/signing"
)

const (
	IlkIcp = "icp"
	IlkRot = "rot"
	IlkIxn = "ixn"
	IlkDip = "dip"
	IlkDrt = "drt"
	IlkRct = "rct"
)

// LastEst records the sequence number and SAID of a prefix's most recent
// establishment event (icp/rot/dip/drt).
type LastEst struct {
	Sn   uint64
	Said string
}

// Kever holds the current key state for one identifier prefix, derived
// from the chain of establishment and interaction events accepted so
// far. See spec.md §4.12.
type Kever struct {
	db  *basing.Baser
	log klog.Logger

	Pre      string
	Sn       uint64
	Fn       uint64
	Said     string
	Serder   *serdering.Serder // last establishment event
	Verfers  []signing.Verfer
	Tholder  numbering.Tholder
	Ndigers  []signing.Diger
	Ntholder numbering.Tholder
	Berfers  []signing.Verfer // current witnesses
	Toader   numbering.Number
	Delpre   string
	LastEst  LastEst
}

// VerifySigs implements spec.md §4.12's signature verification contract:
// accepted sigers are those whose index is in range, whose signature
// verifies against ser under the corresponding verfer, deduplicated by
// index (first wins), sorted ascending.
func VerifySigs(ser []byte, sigers []signing.Siger, verfers []signing.Verfer) ([]signing.Siger, []int) {
	byIndex := make(map[int]signing.Siger)
	for _, siger := range sigers {
		idx := siger.Index()
		if idx < 0 || idx >= len(verfers) {
			continue
		}
		if _, seen := byIndex[idx]; seen {
			continue
		}
		if !verfers[idx].VerifySiger(siger, ser) {
			continue
		}
		byIndex[idx] = siger
	}

	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	accepted := make([]signing.Siger, 0, len(indices))
	for _, idx := range indices {
		accepted = append(accepted, byIndex[idx])
	}
	return accepted, indices
}

// NewKever establishes a fresh per-prefix state machine from an
// inception (icp/dip) event, verifying its attached signatures satisfy
// its own threshold before any state is recorded.
func NewKever(db *basing.Baser, log klog.Logger, serder *serdering.Serder, sigers []signing.Siger, wigers []signing.Siger, local, check bool) (*Kever, error) {
	pre := serder.Pre()
	if pre == "" {
		return nil, ErrMissingField
	}
	said := serder.Said()
	if said == "" {
		return nil, ErrMissingField
	}

	verfers := serder.Verfers()
	tholder, ok := serder.Tholder()
	if !ok {
		tholder = numbering.NewTholderInt(len(verfers))
	}
	accepted, indices := VerifySigs(serder.Raw(), sigers, verfers)
	if !tholder.Satisfy(indices) {
		log.Errorw("inception signature threshold not satisfied", "pre", pre, "said", said)
		return nil, ErrRotationRejected
	}

	ntholder, _ := serder.Ntholder()
	toader, err := serder.Toader()
	if err != nil {
		return nil, err
	}

	kv := &Kever{
		db:       db,
		log:      log,
		Pre:      pre,
		Sn:       0,
		Said:     said,
		Serder:   serder,
		Verfers:  verfers,
		Tholder:  tholder,
		Ndigers:  serder.Ndigers(),
		Ntholder: ntholder,
		Berfers:  serder.Berfers(),
		Toader:   toader,
		Delpre:   serder.Delpre(),
		LastEst:  LastEst{Sn: 0, Said: said},
	}

	var accWigers []signing.Siger
	if len(wigers) > 0 {
		accWigers, _ = VerifySigs(serder.Raw(), wigers, kv.Berfers)
	}

	if err := kv.LogEvent(serder, accepted, accWigers, true, check); err != nil {
		return nil, err
	}
	return kv, nil
}

// LogEvent records an accepted event: the event body, its verified
// controller and witness signatures, the digest at (pre, sn), and —
// unless check suppresses it — the first-seen ordinal. Each of these
// writes is its own Baser transaction, so an error part-way through
// leaves the earlier writes in place.
func (k *Kever) LogEvent(serder *serdering.Serder, sigers, wigers []signing.Siger, firstSeen, check bool) error {
	said := serder.Said()

	if _, err := k.db.PutEvt(k.Pre, said, serder.Raw()); err != nil {
		return err
	}
	for _, s := range sigers {
		qb64, err := s.Qb64()
		if err != nil {
			return err
		}
		if err := k.db.PutSig(k.Pre, said, qb64); err != nil {
			return err
		}
	}
	for _, w := range wigers {
		qb64, err := w.Qb64()
		if err != nil {
			return err
		}
		if err := k.db.PutWig(k.Pre, said, qb64); err != nil {
			return err
		}
	}
	if err := k.db.PutKel(k.Pre, serder.Sn(), said); err != nil {
		return err
	}
	if firstSeen && !check {
		fn, err := k.db.AppendFel(k.Pre, said)
		if err != nil {
			return err
		}
		k.Fn = fn + 1
	}

	k.Sn = serder.Sn()
	k.Said = said
	if serder.Estive() {
		k.Serder = serder
		k.Verfers = serder.Verfers()
		if tholder, ok := serder.Tholder(); ok {
			k.Tholder = tholder
		}
		k.Ndigers = serder.Ndigers()
		if ntholder, ok := serder.Ntholder(); ok {
			k.Ntholder = ntholder
		}
		cuts := stringSet(serder.Cuts())
		adds := serder.Adds()
		k.Berfers = applyWitnessRoster(k.Berfers, cuts, adds)
		if toader, err := serder.Toader(); err == nil {
			k.Toader = toader
		}
		k.LastEst = LastEst{Sn: serder.Sn(), Said: said}
		k.log.Debugw("establishment event logged", "pre", k.Pre, "sn", serder.Sn(), "said", said, "ilk", serder.Ilk())
	} else {
		k.log.Debugw("event logged", "pre", k.Pre, "sn", serder.Sn(), "said", said, "ilk", serder.Ilk())
	}
	return nil
}

// Update applies a non-inception event (rot/drt/ixn) already determined
// by Kevery to be in-order or within a superseding-recovery window:
// verifies its signatures against the acceptance predicate for its ilk,
// and if satisfied, logs it.
func (k *Kever) Update(serder *serdering.Serder, sigers, wigers []signing.Siger, local, check bool) error {
	switch serder.Ilk() {
	case IlkRot, IlkDrt:
		return k.updateRotation(serder, sigers, wigers, check)
	case IlkIxn:
		return k.updateInteraction(serder, sigers, wigers, check)
	default:
		return ErrMissingField
	}
}

// updateRotation checks steps 2-4 of spec.md §4.12's rotation acceptance
// predicate for rot/drt events: new keys against the prior next-key
// commitment, signatures against the new kt, and witness signatures
// against the new toad. Delegated anchor verification (step 5) is not
// performed; see DESIGN.md for the scope decision.
func (k *Kever) updateRotation(serder *serdering.Serder, sigers, wigers []signing.Siger, check bool) error {
	newVerfers := serder.Verfers()

	// Step 2: new signing keys must satisfy the previous next-key
	// threshold scheme (their digests were committed to in Ndigers).
	if !newKeysSatisfyPriorNext(newVerfers, k.Ndigers, k.Ntholder) {
		k.log.Errorw("rotation rejected: new keys do not satisfy prior next-key commitment", "pre", k.Pre, "sn", serder.Sn())
		return ErrRotationRejected
	}

	// Step 3: signatures from the new keys must satisfy the new kt.
	newTholder, ok := serder.Tholder()
	if !ok {
		newTholder = numbering.NewTholderInt(len(newVerfers))
	}
	accepted, indices := VerifySigs(serder.Raw(), sigers, newVerfers)
	if !newTholder.Satisfy(indices) {
		k.log.Errorw("rotation rejected: signatures do not satisfy new threshold", "pre", k.Pre, "sn", serder.Sn())
		return ErrRotationRejected
	}

	// Step 4: new witness roster, satisfied by indexed witness sigs
	// under the new toad.
	newBerfers := applyWitnessRoster(k.Berfers, stringSet(serder.Cuts()), serder.Adds())
	newToader, err := serder.Toader()
	if err != nil {
		return err
	}
	accWigers, widx := VerifySigs(serder.Raw(), wigers, newBerfers)
	if len(newBerfers) > 0 && len(widx) < int(newToader.Num()) {
		k.log.Errorw("rotation rejected: witness signatures do not satisfy new toad", "pre", k.Pre, "sn", serder.Sn())
		return ErrRotationRejected
	}

	return k.LogEvent(serder, accepted, accWigers, k.Fn == 0 || serder.Sn() > k.LastEst.Sn, check)
}

// updateInteraction implements spec.md §4.12's acceptance predicate for
// ixn events: signatures under the current kt/k, witness signatures
// under the current toader.
func (k *Kever) updateInteraction(serder *serdering.Serder, sigers, wigers []signing.Siger, check bool) error {
	accepted, indices := VerifySigs(serder.Raw(), sigers, k.Verfers)
	if !k.Tholder.Satisfy(indices) {
		k.log.Errorw("interaction rejected: signatures do not satisfy current threshold", "pre", k.Pre, "sn", serder.Sn())
		return ErrInteractionRejected
	}
	accWigers, widx := VerifySigs(serder.Raw(), wigers, k.Berfers)
	if len(k.Berfers) > 0 && len(widx) < int(k.Toader.Num()) {
		k.log.Errorw("interaction rejected: witness signatures do not satisfy current toad", "pre", k.Pre, "sn", serder.Sn())
		return ErrInteractionRejected
	}
	return k.LogEvent(serder, accepted, accWigers, true, check)
}

// LocallyWitnessed reports whether enough witness signatures have been
// recorded for the event at (pre, said) to satisfy the current toad.
func (k *Kever) LocallyWitnessed(said string) (bool, error) {
	wigs, err := k.db.GetWigs(k.Pre, said)
	if err != nil {
		return false, err
	}
	return uint64(len(wigs)) >= k.Toader.Num(), nil
}

func stringSet(ss []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// applyWitnessRoster returns current minus cuts plus adds, preserving
// current's relative order and appending additions after it, matching
// spec.md §4.12's "previous witnesses − br + ba".
func applyWitnessRoster(current []signing.Verfer, cuts map[string]struct{}, adds []string) []signing.Verfer {
	out := make([]signing.Verfer, 0, len(current)+len(adds))
	for _, v := range current {
		qb64, err := v.Qb64()
		if err != nil {
			continue
		}
		if _, cut := cuts[qb64]; cut {
			continue
		}
		out = append(out, v)
	}
	out = append(out, verfersFromQb64(adds)...)
	return out
}

func verfersFromQb64(keys []string) []signing.Verfer {
	out := make([]signing.Verfer, 0, len(keys))
	for _, k := range keys {
		m, _, err := matter.FromQb64(k)
		if err != nil {
			continue
		}
		v, err := signing.NewVerfer(m.Code(), m.Raw())
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// newKeysSatisfyPriorNext reports whether every new verfer's qb64 digest
// (under each prior digest's own code) appears in priorNdigers, and that
// the indices of matching digests satisfy priorNtholder. A simplified but faithful reading of spec.md
// §4.12 step 2: each new key must be committed to by the previous "n".
func newKeysSatisfyPriorNext(newVerfers []signing.Verfer, priorNdigers []signing.Diger, priorNtholder numbering.Tholder) bool {
	if len(priorNdigers) == 0 {
		return len(newVerfers) == 0
	}
	matched := make([]int, 0, len(newVerfers))
	for _, v := range newVerfers {
		qb64, err := v.Qb64()
		if err != nil {
			return false
		}
		idx := -1
		for i, d := range priorNdigers {
			if d.Verify([]byte(qb64)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		matched = append(matched, idx)
	}
	return priorNtholder.Satisfy(matched)
}
