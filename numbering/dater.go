package numbering

import (
	"fmt"
	"strings"
	"time"

	"github.com/datatrails/go-datatrails-keri/b64"
	"github.com/datatrails/go-datatrails-keri/matter"
)

// Dater wraps an RFC-3339 timestamp (with explicit timezone offset) as a
// CESR DateTime primitive.
type Dater struct {
	t time.Time
}

// layout is the fixed-width RFC-3339 form a Dater renders: microsecond
// precision and a numeric zone offset, e.g.
// "2021-01-01T00:00:00.000000+00:00" (32 characters). Mapping ':', '.' and
// '+' to 'c', 'd' and 'p' turns it into 32 Base64 characters, which decode
// to matter.DateTime's 24-byte raw payload.
const layout = "2006-01-02T15:04:05.000000-07:00"

var (
	toB64Chars   = strings.NewReplacer(":", "c", ".", "d", "+", "p")
	fromB64Chars = strings.NewReplacer("c", ":", "d", ".", "p", "+")
)

// NewDater wraps t.
func NewDater(t time.Time) Dater { return Dater{t: t.UTC()} }

// NewDaterNow wraps the given current time (callers supply "now" rather
// than this package calling time.Now, keeping construction deterministic
// for tests and replay).
func NewDaterNow(now time.Time) Dater { return NewDater(now) }

// Time returns the wrapped timestamp.
func (d Dater) Time() time.Time { return d.t }

// Dts renders the RFC-3339 text form used in event fields like "dt".
func (d Dater) Dts() string {
	return d.t.Format(layout)
}

// Qb64 renders the fully qualified Base64 text representation.
func (d Dater) Qb64() (string, error) {
	raw, err := b64.DecodeB64(toB64Chars.Replace(d.Dts()))
	if err != nil {
		return "", err
	}
	m, err := matter.New(matter.DateTime, raw)
	if err != nil {
		return "", err
	}
	return m.Qb64()
}

// ParseDater parses an RFC-3339 timestamp string or a qb64 DateTime frame.
func ParseDater(s string) (Dater, error) {
	if m, _, err := matter.FromQb64(s); err == nil && m.Code() == matter.DateTime {
		t, err := time.Parse(layout, fromB64Chars.Replace(b64.EncodeB64(m.Raw())))
		if err != nil {
			return Dater{}, err
		}
		return Dater{t: t}, nil
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return Dater{}, fmt.Errorf("numbering: cannot parse %q as a Dater: %w", s, err)
		}
	}
	return Dater{t: t}, nil
}
