// Package serdering implements the Serder event envelope: smelling a raw
// message for its version string, deserializing it into a Sadder (sad.Doc),
// deriving and verifying its SAID, and exposing typed field accessors for
// KERI key events and ACDC credentials. See spec.md §4.8.
package serdering

import (
	"strconv"

	"github.com/datatrails/go-datatrails-keri/matter"
	"github.com/datatrails/go-datatrails-keri/numbering"
	"github.com/datatrails/go-datatrails-keri/sad"
	"github.com/datatrails/go-datatrails-keri/signing"
)

// Smellage carries the front-matter a Serder needs before the full body is
// parsed: protocol, version, serialization kind, and overall frame size.
type Smellage struct {
	Proto string
	Major int
	Minor int
	Kind  sad.Kind
	Size  int
}

// Smell extracts the version string from the front of raw without fully
// deserializing it, per spec.md §4.8 "smell(raw)".
func Smell(raw []byte) (Smellage, error) {
	s, err := sad.Smell(raw)
	if err != nil {
		if len(raw) < 17 {
			return Smellage{}, ErrShortage
		}
		return Smellage{}, ErrVersion
	}
	return Smellage{Proto: s.Proto, Major: s.Major, Minor: s.Minor, Kind: s.Kind, Size: s.Size}, nil
}

// primaryLabel maps an event ilk to the field holding its self-addressing
// identifier, i.e. the field that must equal the digest of the event's own
// serialization. Query-like messages (absent from this table) carry no
// SAID at all. Ilks whose "d" field instead names some OTHER document
// belong in referenceLabel below, not here.
var primaryLabel = map[string]string{
	"icp": "d", "rot": "d", "ixn": "d", "dip": "d", "drt": "d",
	"vcp": "d", "vrt": "d",
	"iss": "d", "rev": "d", "bis": "d", "brv": "d",
	"acm": "d", "acg": "d", "acd": "d", // ACDC credential variants
}

// referenceLabel maps an event ilk to a field that holds the digest of
// some OTHER document, not of this message's own serialization. These
// values are exposed via Said() for caller convenience but are never
// checked with sad.Verify, since verifying them against this message's
// own bytes would always fail. A receipt's "d" is the digest of the
// event it receipts, not of the receipt itself.
var referenceLabel = map[string]string{
	"rct": "d",
}

// Serder is the deserialized, SAID-verified envelope around a single KERI
// or ACDC event. Unconsumed bytes past Size remain in the caller's buffer
// for attachment-group parsing.
type Serder struct {
	raw   []byte
	doc   *sad.Doc
	kind  sad.Kind
	proto string
	major int
	minor int
	size  int
	ilk   string
	said  string
}

// FromRaw deserializes raw into a Serder, verifying its SAID against the
// primary label for its ilk. If smellage is nil, raw is smelled first.
// Per spec.md §4.8: (1) resolve smellage, (2) slice raw to size, (3) load
// the sad under kind, (4) resolve the primary SAID label for ilk and
// require it be present, (5) verify.
func FromRaw(raw []byte, smellage *Smellage) (*Serder, error) {
	var s Smellage
	if smellage != nil {
		s = *smellage
	} else {
		var err error
		s, err = Smell(raw)
		if err != nil {
			return nil, err
		}
	}
	if len(raw) < s.Size {
		return nil, ErrShortage
	}
	body := raw[:s.Size]

	doc, err := sad.Loads(body, s.Kind)
	if err != nil {
		return nil, err
	}

	ilk := doc.GetString("t")
	label, hasLabel := primaryLabel[ilk]

	sr := &Serder{
		raw:   append([]byte(nil), body...),
		doc:   doc,
		kind:  s.Kind,
		proto: s.Proto,
		major: s.Major,
		minor: s.Minor,
		size:  s.Size,
		ilk:   ilk,
	}

	if !hasLabel {
		if refLabel, hasRef := referenceLabel[ilk]; hasRef {
			sr.said = doc.GetString(refLabel)
		}
		return sr, nil
	}
	said := doc.GetString(label)
	if said == "" {
		return nil, ErrMissingField
	}
	sr.said = said

	code, err := saidCode(said)
	if err != nil {
		return nil, err
	}
	if !sad.Verify(doc, code, s.Kind, label, nil, true, doc.Has("v")) {
		return nil, ErrSAIDMismatch
	}
	return sr, nil
}

// saidCode recovers a SAID's digest code by parsing its qb64 frame, without
// needing the caller to pass the code out of band.
func saidCode(said string) (matter.Code, error) {
	m, _, err := matter.FromQb64(said)
	if err != nil {
		return "", err
	}
	return m.Code(), nil
}

// Raw returns the exact byte span this Serder was parsed from.
func (s *Serder) Raw() []byte { return s.raw }

// Size is the number of raw bytes this frame occupies.
func (s *Serder) Size() int { return s.size }

// Kind is the serialization kind the frame was parsed under.
func (s *Serder) Kind() sad.Kind { return s.kind }

// Ked returns the underlying field dictionary (alias for .sad in the
// original implementation).
func (s *Serder) Ked() *sad.Doc { return s.doc }

// Ilk is the event type tag from field "t".
func (s *Serder) Ilk() string { return s.ilk }

// Said is the self-addressing identifier FromRaw verified or, for a
// reference-label ilk such as rct, the unverified digest of the document
// it references; "" if the ilk carries neither.
func (s *Serder) Said() string { return s.said }

// Estive reports whether this event establishes or re-establishes keys.
func (s *Serder) Estive() bool {
	switch s.ilk {
	case "icp", "rot", "dip", "drt":
		return true
	default:
		return false
	}
}

func getStrings(d *sad.Doc, field string) []string {
	v, ok := d.Get(field)
	if !ok {
		return nil
	}
	list, ok := v.([]sad.Value)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

func verfersFromQb64(keys []string) []signing.Verfer {
	if keys == nil {
		return nil
	}
	out := make([]signing.Verfer, 0, len(keys))
	for _, k := range keys {
		m, _, err := matter.FromQb64(k)
		if err != nil {
			return nil
		}
		v, err := signing.NewVerfer(m.Code(), m.Raw())
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func digersFromQb64(digs []string) []signing.Diger {
	if digs == nil {
		return nil
	}
	out := make([]signing.Diger, 0, len(digs))
	for _, dq := range digs {
		dg, err := signing.DigerFromQb64(dq)
		if err != nil {
			return nil
		}
		out = append(out, dg)
	}
	return out
}

// Pre is the qb64 identifier prefix from field "i".
func (s *Serder) Pre() string { return s.doc.GetString("i") }

// Sner parses field "s" (sequence number, hex string) as a Number.
func (s *Serder) Sner() (numbering.Number, error) {
	sn := s.doc.GetString("s")
	if sn == "" {
		sn = "0"
	}
	n, err := strconv.ParseUint(sn, 16, 64)
	if err != nil {
		return numbering.Number{}, err
	}
	return numbering.NewNumber(n)
}

// Sn is the sequence number as an integer, or 0 if absent/unparseable.
func (s *Serder) Sn() uint64 {
	n, err := s.Sner()
	if err != nil {
		return 0
	}
	return n.Num()
}

// Verfers parses field "k" (signing keys) into Verfer instances.
func (s *Serder) Verfers() []signing.Verfer {
	return verfersFromQb64(getStrings(s.doc, "k"))
}

// Ntholder parses field "nt" (next key threshold) into a Tholder.
func (s *Serder) Ntholder() (numbering.Tholder, bool) {
	return tholderField(s.doc, "nt")
}

// Tholder parses field "kt" (current signing key threshold) into a Tholder.
func (s *Serder) Tholder() (numbering.Tholder, bool) {
	return tholderField(s.doc, "kt")
}

func tholderField(d *sad.Doc, field string) (numbering.Tholder, bool) {
	kt := d.GetString(field)
	if kt == "" {
		return numbering.Tholder{}, false
	}
	n, err := strconv.Atoi(kt)
	if err != nil {
		return numbering.Tholder{}, false
	}
	return numbering.NewTholderInt(n), true
}

// Ndigers parses field "n" (next key digests) into Diger instances.
func (s *Serder) Ndigers() []signing.Diger {
	return digersFromQb64(getStrings(s.doc, "n"))
}

// Berfers parses field "b" (backer/witness keys) into Verfer instances.
func (s *Serder) Berfers() []signing.Verfer {
	return verfersFromQb64(getStrings(s.doc, "b"))
}

// Toader parses field "bt" (backer TOAD threshold) into a Number.
func (s *Serder) Toader() (numbering.Number, error) {
	bt := s.doc.GetString("bt")
	if bt == "" {
		bt = "0"
	}
	return numbering.ParseNumber(bt)
}

// Cuts is the list of witnesses to remove, field "br".
func (s *Serder) Cuts() []string { return getStrings(s.doc, "br") }

// Adds is the list of witnesses to add, field "ba".
func (s *Serder) Adds() []string { return getStrings(s.doc, "ba") }

// Delpre is the delegator's identifier prefix, field "di".
func (s *Serder) Delpre() string { return s.doc.GetString("di") }

// Prior is the prior event's SAID, field "p".
func (s *Serder) Prior() string { return s.doc.GetString("p") }

// Stamp parses field "dt" (event timestamp) into a Dater.
func (s *Serder) Stamp() (numbering.Dater, error) {
	return numbering.ParseDater(s.doc.GetString("dt"))
}
