package eventing

import (
	"fmt"
	"time"

	"github.com/datatrails/go-datatrails-keri/basing"
	"github.com/datatrails/go-datatrails-keri/indexer"
	"github.com/datatrails/go-datatrails-keri/klog"
	"github.com/datatrails/go-datatrails-keri/matter"
	"github.com/datatrails/go-datatrails-keri/serdering"
	"github.com/datatrails/go-datatrails-keri/signing"
)

// Cue kinds, per spec.md §4.13.
const (
	CueReceipt = "receipt"
	CueNotice  = "notice"
	CueWitness = "witness"
	CueReplay  = "replay"
	CueReply   = "reply"
	CueStream  = "stream"
	CueRoute   = "route"
)

// Cue is a notice of an event needing a receipt, or a request needing a
// response, queued for a transport-layer caller to act on.
type Cue struct {
	Kind   string
	Serder *serdering.Serder
}

// Kevery is the key-event message processing facility: it dispatches
// incoming events, receipts, and queries, acting as a Kever factory per
// prefix. See spec.md §4.13.
type Kevery struct {
	db  *basing.Baser
	log klog.Logger

	Cues []Cue

	Lax    bool
	Local  bool
	Cloned bool
	Direct bool
	Check  bool

	kevers map[string]*Kever

	urEscrows  map[string]receiptEscrowEntry
	uwEscrows  map[string]receiptEscrowEntry
	qnfEscrows map[string]queryEscrowEntry
}

// NewKevery builds a Kevery over db. lax defaults true, direct defaults
// true, matching the original's defaults (kevery.rs `Kevery::new`).
func NewKevery(db *basing.Baser, log klog.Logger) *Kevery {
	return &Kevery{
		db:         db,
		log:        log,
		Lax:        true,
		Direct:     true,
		kevers:     make(map[string]*Kever),
		urEscrows:  make(map[string]receiptEscrowEntry),
		uwEscrows:  make(map[string]receiptEscrowEntry),
		qnfEscrows: make(map[string]queryEscrowEntry),
	}
}

// Kever returns the cached state machine for pre, if one exists.
func (kv *Kevery) Kever(pre string) (*Kever, bool) {
	k, ok := kv.kevers[pre]
	return k, ok
}

func (kv *Kevery) cue(kind string, serder *serdering.Serder) {
	kv.Cues = append(kv.Cues, Cue{Kind: kind, Serder: serder})
}

func (kv *Kevery) cueAcceptance(pre string, serder *serdering.Serder, said string) {
	if kv.Direct || kv.Lax || !kv.db.IsOwn(pre) {
		kv.cue(CueReceipt, serder)
	} else if !kv.Direct {
		kv.cue(CueNotice, serder)
	}
	if kv.Local {
		if k, ok := kv.kevers[pre]; ok {
			if witnessed, _ := k.LocallyWitnessed(said); witnessed {
				kv.cue(CueWitness, serder)
			}
		}
	}
}

// ProcessEvent implements spec.md §4.13's dispatch for key events,
// following kevery.rs's process_event branch structure: new prefix vs.
// known prefix, inception ilks vs. rotation/interaction ilks, in-order
// vs. out-of-order vs. superseding-recovery vs. duplicate/duplicitous.
func (kv *Kevery) ProcessEvent(serder *serdering.Serder, sigers, wigers []signing.Siger, local bool) error {
	pre := serder.Pre()
	if pre == "" {
		return ErrMissingField
	}
	sn := serder.Sn()
	ilk := serder.Ilk()
	said := serder.Said()
	if said == "" {
		return ErrMissingField
	}

	k, known := kv.kevers[pre]

	if !known {
		if ilk == IlkIcp || ilk == IlkDip {
			newK, err := NewKever(kv.db, kv.log, serder, sigers, wigers, local, kv.Check)
			if err != nil {
				return err
			}
			kv.kevers[pre] = newK
			kv.cueAcceptance(pre, serder, said)
			return nil
		}
		if err := kv.escrowOutOfOrder(serder, sigers, wigers, local); err != nil {
			if err := kv.swallowStub("escrowOutOfOrder", pre, sn, err); err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: pre=%s sn=%d", ErrOutOfOrder, pre, sn)
	}

	if ilk == IlkIcp || ilk == IlkDip {
		if sn != 0 {
			return ErrInvalidSn
		}
		return kv.resolveDuplicateOrDuplicitous(k, serder, sigers, wigers, k.Said, 0)
	}

	sno := k.Sn + 1
	switch {
	case sn > sno:
		if err := kv.escrowOutOfOrder(serder, sigers, wigers, local); err != nil {
			if err := kv.swallowStub("escrowOutOfOrder", pre, sn, err); err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: pre=%s sn=%d", ErrOutOfOrder, pre, sn)

	case sn == sno,
		ilk == IlkRot && k.LastEst.Sn < sn && sn <= sno,
		ilk == IlkDrt && k.LastEst.Sn <= sn && sn <= sno:

		if err := k.Update(serder, sigers, wigers, local, kv.Check); err != nil {
			return err
		}
		kv.cueAcceptance(pre, serder, said)
		return nil

	default:
		existing, err := kv.db.GetKel(pre, sn)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			if err := kv.escrowLikelyDuplicitous(serder, sigers); err != nil {
				if err := kv.swallowStub("escrowLikelyDuplicitous", pre, sn, err); err != nil {
					return err
				}
			}
			return fmt.Errorf("%w: pre=%s sn=%d (no existing event)", ErrLikelyDuplicitous, pre, sn)
		}
		return kv.resolveDuplicateOrDuplicitous(k, serder, sigers, wigers, existing[0], sn)
	}
}

// resolveDuplicateOrDuplicitous implements the "duplicate vs.
// duplicitous" branch of spec.md §4.12: if said matches the digest
// already accepted at (pre, sn), any newly-verified signatures are
// logged without advancing fn; otherwise the event is escrowed as
// likely duplicitous.
func (kv *Kevery) resolveDuplicateOrDuplicitous(k *Kever, serder *serdering.Serder, sigers, wigers []signing.Siger, existingSaid string, sn uint64) error {
	if existingSaid == serder.Said() {
		accepted, indices := VerifySigs(serder.Raw(), sigers, k.Verfers)
		_ = indices
		var accWigers []signing.Siger
		if len(wigers) > 0 {
			accWigers, _ = VerifySigs(serder.Raw(), wigers, k.Berfers)
		}
		if len(accepted) == 0 && len(accWigers) == 0 {
			kv.log.Debugw("duplicate event carried no new signatures", "pre", k.Pre, "sn", sn, "said", existingSaid)
			return nil
		}
		kv.log.Debugw("duplicate event accepted additional signatures", "pre", k.Pre, "sn", sn, "said", existingSaid)
		return k.LogEvent(serder, accepted, accWigers, false, kv.Check)
	}

	kv.log.Errorw("likely duplicitous event detected", "pre", k.Pre, "sn", sn, "said", serder.Said(), "existing", existingSaid)
	if err := kv.escrowLikelyDuplicitous(serder, sigers); err != nil {
		if err := kv.swallowStub("escrowLikelyDuplicitous", k.Pre, sn, err); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: pre=%s sn=%d said=%s", ErrLikelyDuplicitous, k.Pre, sn, serder.Said())
}

// swallowStub converts a stub's ErrNotImplemented into a logged,
// non-fatal event so the documented ordering error (ErrOutOfOrder/
// ErrLikelyDuplicitous) is still what callers see — without ever letting
// ErrNotImplemented itself masquerade as the branch's outcome. Any other
// error from the stub (there are none today, but the contract holds if
// one of these is ever implemented) is returned unchanged.
func (kv *Kevery) swallowStub(op, pre string, sn uint64, err error) error {
	if err == ErrNotImplemented {
		kv.log.Errorw("escrow stub not implemented, event not escrowed", "op", op, "pre", pre, "sn", sn)
		return nil
	}
	return err
}

// The following are the five code paths spec.md §9 leaves as open
// questions, preserved as ErrNotImplemented stubs rather than guessed
// at. The original Rust leaves fetch_witness_state/escrow_oo_event/
// escrow_ld_event as todo!() bodies; process_attached_receipt_couples
// and process_attached_receipt_quadruples are no-ops there, but this
// port treats all five the same way so "not yet decided" is never
// silently swallowed.

func (kv *Kevery) fetchWitnessState(pre string, sn uint64) ([]string, error) {
	return nil, ErrNotImplemented
}

func (kv *Kevery) escrowOutOfOrder(serder *serdering.Serder, sigers, wigers []signing.Siger, local bool) error {
	return ErrNotImplemented
}

func (kv *Kevery) escrowLikelyDuplicitous(serder *serdering.Serder, sigers []signing.Siger) error {
	return ErrNotImplemented
}

// ProcessAttachedReceiptCouples would log nontransferable receipt
// couples (verfer, sig) attached directly to a cloned event stream.
func (kv *Kevery) ProcessAttachedReceiptCouples(serder *serdering.Serder, cigars []signing.Cigar) error {
	return ErrNotImplemented
}

// ProcessAttachedReceiptQuadruples would log transferable receipt
// quadruples (pre, sn, said, sig) attached directly to a cloned event
// stream.
func (kv *Kevery) ProcessAttachedReceiptQuadruples(serder *serdering.Serder) error {
	return ErrNotImplemented
}

// ProcessReceipt implements spec.md §4.13's receipt-processing contract
// for nontransferable receipts: look up the event at (pre, sn), compare
// SAIDs, and for each cigar either skip it (transferable verfer,
// self-receipt, or non-local other's-receipt), verify and promote it to
// an indexed witness signature if the signer is in the witness roster,
// or otherwise append it as a receipt couple.
func (kv *Kevery) ProcessReceipt(serder *serdering.Serder, cigars []signing.Cigar, local bool) error {
	pre := serder.Pre()
	if pre == "" {
		return ErrMissingField
	}
	sn := serder.Sn()

	existing, err := kv.db.GetKel(pre, sn)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		kv.escrowUnverifiedReceipt(serder, cigars, serder.Said())
		return fmt.Errorf("%w: pre=%s sn=%d", ErrUnverifiedReceipt, pre, sn)
	}
	ldig := existing[0]
	if ldig != serder.Said() {
		return fmt.Errorf("%w: pre=%s sn=%d", ErrStaleReceipt, pre, sn)
	}

	raw, err := kv.db.GetEvt(pre, ldig)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrEventNotFound
	}

	wits, err := kv.fetchWitnessState(pre, sn)
	if err != nil {
		if err != ErrNotImplemented {
			return err
		}
		kv.log.Errorw("witness state unavailable, receipts recorded as couples only", "pre", pre, "sn", sn)
	}

	for _, cigar := range cigars {
		verfer := cigar.Verfer()
		if verfer.Code() != matter.Ed25519N {
			// transferable verfer: a nontrans-receipt cigar list can
			// only carry nontransferable signer keys.
			continue
		}
		rpre, err := verfer.Qb64()
		if err != nil {
			continue
		}
		if !kv.Lax && kv.db.IsOwn(rpre) {
			if kv.db.IsOwn(pre) {
				kv.log.Debugw("skipped own receipt attachment on own event", "pre", pre, "said", serder.Said())
				continue
			}
			if !local {
				kv.log.Debugw("skipped own receipt attachment on nonlocal event", "pre", pre, "said", serder.Said())
				continue
			}
		}
		if !verfer.VerifyCigar(cigar, raw) {
			continue
		}
		if idx := indexOf(wits, rpre); idx >= 0 {
			wig, err := cigarAsIndexedQb64(cigar, idx)
			if err != nil {
				return err
			}
			if err := kv.db.PutWig(pre, ldig, wig); err != nil {
				return err
			}
			kv.log.Debugw("promoted receipt cigar to indexed witness signature", "pre", pre, "said", ldig, "index", idx)
			continue
		}
		sigQb64, err := cigar.Qb64()
		if err != nil {
			return err
		}
		if err := kv.db.PutRct(pre, ldig, rpre, sigQb64); err != nil {
			return err
		}
		kv.log.Debugw("recorded nontransferable receipt couple", "pre", pre, "said", ldig, "from", rpre)
	}
	return nil
}

// ProcessReceiptWitness implements spec.md §4.13's witness-receipt
// processing: like ProcessReceipt, but the wigers are already indexed
// into the witness roster of the receipted event's establishment event,
// so each is resolved to a witness verfer by index rather than matched
// by qb64 against a cigar's embedded key.
func (kv *Kevery) ProcessReceiptWitness(serder *serdering.Serder, wigers []signing.Siger, local bool) error {
	pre := serder.Pre()
	if pre == "" {
		return ErrMissingField
	}
	sn := serder.Sn()

	existing, err := kv.db.GetKel(pre, sn)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		kv.escrowUnverifiedWitnessReceipt(serder, wigers, serder.Said())
		return fmt.Errorf("%w: pre=%s sn=%d", ErrUnverifiedReceipt, pre, sn)
	}
	ldig := existing[0]
	if ldig != serder.Said() {
		return fmt.Errorf("%w: pre=%s sn=%d", ErrStaleReceipt, pre, sn)
	}

	raw, err := kv.db.GetEvt(pre, ldig)
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrEventNotFound
	}

	wits, err := kv.fetchWitnessState(pre, sn)
	if err != nil {
		if err != ErrNotImplemented {
			return err
		}
		// Every wiger is index-resolved against wits; without it this
		// function can verify nothing. Surface the stub's error instead
		// of silently iterating an always-empty roster and returning a
		// misleading nil (success) with zero signatures recorded.
		if len(wigers) > 0 {
			kv.log.Errorw("witness state unavailable, cannot process witness receipt", "pre", pre, "sn", sn)
			return err
		}
	}

	for _, wiger := range wigers {
		idx := wiger.Index()
		if idx < 0 || idx >= len(wits) {
			continue
		}
		m, _, err := matter.FromQb64(wits[idx])
		if err != nil {
			continue
		}
		wigerVerfer, err := signing.NewVerfer(m.Code(), m.Raw())
		if err != nil || wigerVerfer.Code() != matter.Ed25519N {
			continue
		}
		wpre, err := wigerVerfer.Qb64()
		if err != nil {
			continue
		}
		if !kv.Lax && kv.db.IsOwn(wpre) {
			if kv.db.IsOwn(pre) {
				continue
			}
			if !local {
				continue
			}
		}
		if !wigerVerfer.VerifySiger(wiger, raw) {
			continue
		}
		qb64, err := wiger.Qb64()
		if err != nil {
			return err
		}
		if err := kv.db.PutWig(pre, ldig, qb64); err != nil {
			return err
		}
		kv.log.Debugw("recorded indexed witness receipt", "pre", pre, "said", ldig, "index", idx)
	}
	return nil
}

// ProcessQuery handles a replay-mode query for one of the three routes
// spec.md §4.13 names: /logs/{pre} (cued as a replay request; the events
// themselves are not streamed here), /ksn/{pre} (gated on the
// witness-signature count meeting the current toad), and /mbx/{pre}
// (cued as a stream request without further processing here). Unknown
// routes are cued for the caller to handle and reported as an error,
// matching the original's default branch.
func (kv *Kevery) ProcessQuery(serder *serdering.Serder, route, pre string) error {
	k, known := kv.kevers[pre]
	if !known {
		kv.escrowQueryNotFound(serder)
		return fmt.Errorf("%w: route=%s pre=%s", ErrQueryNotFound, route, pre)
	}

	switch route {
	case "ksn":
		wigs, err := kv.db.GetWigs(pre, k.Said)
		if err != nil {
			return err
		}
		if uint64(len(wigs)) < k.Toader.Num() {
			kv.escrowQueryNotFound(serder)
			return fmt.Errorf("%w: route=%s pre=%s", ErrQueryNotFound, route, pre)
		}
		kv.cue(CueReply, serder)
		return nil
	case "mbx":
		kv.cue(CueStream, serder)
		return nil
	case "logs":
		kv.cue(CueReplay, serder)
		return nil
	default:
		kv.cue(CueRoute, serder)
		return fmt.Errorf("%w: invalid query route=%s", ErrQueryNotFound, route)
	}
}

func (kv *Kevery) escrowQueryNotFound(serder *serdering.Serder) {
	said := serder.Said()
	entry := newQueryEscrowEntry(time.Now(), serder)
	kv.qnfEscrows[said] = entry
	kv.log.Debugw("query escrowed: not found", "escrow_id", entry.id, "said", said)
}

// SweepQueryEscrows discards query-not-found escrow entries older than
// their timeout.
func (kv *Kevery) SweepQueryEscrows(now time.Time) int {
	return sweepQueries(kv.qnfEscrows, TimeoutQNF, now)
}

func (kv *Kevery) escrowUnverifiedReceipt(serder *serdering.Serder, cigars []signing.Cigar, said string) {
	entry := newReceiptEscrowEntry(time.Now(), serder, cigars, nil, said)
	kv.urEscrows[said] = entry
	kv.log.Debugw("receipt escrowed: event not yet seen", "escrow_id", entry.id, "said", said)
}

func (kv *Kevery) escrowUnverifiedWitnessReceipt(serder *serdering.Serder, wigers []signing.Siger, said string) {
	entry := newReceiptEscrowEntry(time.Now(), serder, nil, wigers, said)
	kv.uwEscrows[said] = entry
	kv.log.Debugw("witness receipt escrowed: event not yet seen", "escrow_id", entry.id, "said", said)
}

// SweepReceiptEscrows discards unverified-receipt escrow entries older
// than their timeout, and is meant to be called periodically by a
// caller, not automatically.
func (kv *Kevery) SweepReceiptEscrows(now time.Time) (ur, uw int) {
	return sweepReceipts(kv.urEscrows, TimeoutURE, now), sweepReceipts(kv.uwEscrows, TimeoutUWE, now)
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

// cigarAsIndexedQb64 renders a promoted witness receipt's Ed25519
// signature as an indexed signature qb64 at the witness's roster index.
func cigarAsIndexedQb64(cigar signing.Cigar, index int) (string, error) {
	x, err := indexer.New(indexer.Ed25519Sig, cigar.Raw(), index, nil)
	if err != nil {
		return "", err
	}
	return x.Qb64()
}
