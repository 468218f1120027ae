package eventing

import "errors"

var (
	// ErrNotImplemented marks a code path whose behavior spec.md §9 leaves
	// as an open question. Callers see this sentinel rather than a
	// silent no-op, so "not yet decided" is distinguishable from
	// "rejected".
	ErrNotImplemented = errors.New("eventing: not implemented")

	ErrMissingField       = errors.New("eventing: event missing a required field")
	ErrInvalidSn          = errors.New("eventing: invalid sequence number for inception event")
	ErrKeverNotFound      = errors.New("eventing: no kever for prefix")
	ErrEventNotFound      = errors.New("eventing: event not found")
	ErrOutOfOrder         = errors.New("eventing: out-of-order event")
	ErrLikelyDuplicitous  = errors.New("eventing: likely duplicitous event")
	ErrUnverifiedReceipt  = errors.New("eventing: unverified receipt")
	ErrStaleReceipt       = errors.New("eventing: stale receipt")
	ErrQueryNotFound      = errors.New("eventing: query not found")
	ErrRotationRejected   = errors.New("eventing: rotation does not satisfy acceptance predicate")
	ErrInteractionRejected = errors.New("eventing: interaction does not satisfy acceptance predicate")
)
