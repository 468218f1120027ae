package eventing

import (
	"time"

	"github.com/google/uuid"

	"github.com/datatrails/go-datatrails-keri/serdering"
	"github.com/datatrails/go-datatrails-keri/signing"
)

// Escrow timeouts, in seconds, per spec.md §4.13.
const (
	TimeoutOO  = 1200 * time.Second
	TimeoutPSE = 3600 * time.Second
	TimeoutPWE = 3600 * time.Second
	TimeoutLDE = 3600 * time.Second
	TimeoutURE = 3600 * time.Second
	TimeoutUWE = 3600 * time.Second
	TimeoutQNF = 300 * time.Second
)

// receiptEscrowEntry holds an unverified receipt pending the arrival of
// the event it receipts, or an unverified witness receipt pending the
// arrival of the witness roster needed to check it. id is a correlation
// identifier for escrow log lines and diagnostics — not a KERI identifier
// itself, just something stable to grep a given escrow attempt by across
// a sweep's lifetime.
type receiptEscrowEntry struct {
	id      string
	arrived time.Time
	serder  *serdering.Serder
	cigars  []signing.Cigar
	wigers  []signing.Siger
	said    string
}

func newReceiptEscrowEntry(now time.Time, serder *serdering.Serder, cigars []signing.Cigar, wigers []signing.Siger, said string) receiptEscrowEntry {
	return receiptEscrowEntry{
		id:      uuid.NewString(),
		arrived: now,
		serder:  serder,
		cigars:  cigars,
		wigers:  wigers,
		said:    said,
	}
}

// queryEscrowEntry holds a query that named a prefix or event this node
// doesn't yet have, pending its arrival.
type queryEscrowEntry struct {
	id      string
	arrived time.Time
	serder  *serdering.Serder
}

func newQueryEscrowEntry(now time.Time, serder *serdering.Serder) queryEscrowEntry {
	return queryEscrowEntry{id: uuid.NewString(), arrived: now, serder: serder}
}

// sweepReceipts and sweepQueries remove every entry older than ttl,
// returning how many were dropped. Nothing in this package calls them on
// its own; callers run them periodically.
func sweepReceipts(m map[string]receiptEscrowEntry, ttl time.Duration, now time.Time) int {
	dropped := 0
	for k, e := range m {
		if now.Sub(e.arrived) > ttl {
			delete(m, k)
			dropped++
		}
	}
	return dropped
}

func sweepQueries(m map[string]queryEscrowEntry, ttl time.Duration, now time.Time) int {
	dropped := 0
	for k, e := range m {
		if now.Sub(e.arrived) > ttl {
			delete(m, k)
			dropped++
		}
	}
	return dropped
}
