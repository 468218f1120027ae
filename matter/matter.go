// Package matter implements the CESR primitive codec: tagged cryptographic
// material with round-tripping text (qb64) and binary (qb2) encodings.
// See spec.md §4.2.
package matter

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-keri/b64"
)

var (
	ErrEmptyMaterial       = errors.New("matter: empty material")
	ErrUnexpectedCode      = errors.New("matter: unexpected or unknown code")
	ErrInvalidCodeSize     = errors.New("matter: invalid code size for raw material")
	ErrRawMaterial         = errors.New("matter: raw material does not match expected size")
	ErrShortage            = errors.New("matter: not enough bytes, caller should wait for more input")
	ErrNonZeroedPadBits    = errors.New("matter: non-zeroed pad bits in qb64")
	ErrNonZeroedLeadBytes  = errors.New("matter: non-zeroed lead bytes in qb64")
	ErrUnexpectedCountCode = errors.New("matter: unexpected count code where primitive expected")
	ErrUnexpectedOpCode    = errors.New("matter: unexpected op code where primitive expected")
)

// Matter is a tagged cryptographic primitive: a code identifying the
// primitive family plus its raw payload. Immutable once constructed
// (spec.md §3 "Lifecycles").
type Matter struct {
	code Code
	raw  []byte
}

// Code returns the primitive's hard derivation code.
func (m Matter) Code() Code { return m.code }

// Raw returns the primitive's raw payload bytes.
func (m Matter) Raw() []byte { return m.raw }

// New constructs a Matter from an explicit code and raw payload, validating
// that raw's length matches the code's expected raw size (invariant I1).
func New(code Code, raw []byte) (Matter, error) {
	sizes, ok := SizesFor(code)
	if !ok {
		return Matter{}, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	want := sizes.RawSize()
	if len(raw) != want {
		return Matter{}, fmt.Errorf("%w: code=%s want=%d got=%d", ErrRawMaterial, code, want, len(raw))
	}
	return Matter{code: code, raw: append([]byte(nil), raw...)}, nil
}

// Qb64 renders the fully qualified Base64 text representation (infil).
func (m Matter) Qb64() (string, error) {
	sizes, ok := SizesFor(m.code)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedCode, m.code)
	}
	cs := sizes.HS + sizes.SS
	ps := (3 - (len(m.raw) % 3)) % 3
	if cs%4 != ps-sizes.LS {
		return "", fmt.Errorf("%w: code=%s cs=%d ps=%d ls=%d", ErrInvalidCodeSize, m.code, cs, ps, sizes.LS)
	}
	padded := make([]byte, 0, ps+sizes.LS+len(m.raw))
	padded = append(padded, make([]byte, ps+sizes.LS)...)
	padded = append(padded, m.raw...)
	full := b64.EncodeB64(padded)
	body := full[ps-sizes.LS:]
	out := string(m.code) + body
	if len(out) != sizes.FS {
		return "", fmt.Errorf("%w: code=%s want fs=%d got=%d", ErrInvalidCodeSize, m.code, sizes.FS, len(out))
	}
	return out, nil
}

// Qb64b is Qb64 as a byte slice.
func (m Matter) Qb64b() ([]byte, error) {
	s, err := m.Qb64()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Qb2 renders the fully qualified binary representation. Every Matter code
// in this table has fs divisible by 4 (spec.md §3 invariant "fs mod 4 = 0"),
// so the qb64 frame is a clean, alignment-free Base64 string and qb2 is
// simply its standard binary decoding.
func (m Matter) Qb2() ([]byte, error) {
	qb64, err := m.Qb64()
	if err != nil {
		return nil, err
	}
	return b64.DecodeB64(qb64)
}

// FromQb64 parses a Matter from the front of a qb64 string (exfil). It
// returns ErrShortage if s is a legitimate prefix of a longer frame, so
// callers that are streaming input know to accumulate more bytes.
func FromQb64(s string) (Matter, int, error) {
	if len(s) == 0 {
		return Matter{}, 0, ErrEmptyMaterial
	}
	switch s[0] {
	case '-':
		return Matter{}, 0, ErrUnexpectedCountCode
	case '_':
		return Matter{}, 0, ErrUnexpectedOpCode
	}
	hs, ok := HardSize(s[0])
	if !ok {
		return Matter{}, 0, fmt.Errorf("%w: lead byte %q", ErrUnexpectedCode, s[0])
	}
	if len(s) < hs {
		return Matter{}, 0, ErrShortage
	}
	code := Code(s[:hs])
	sizes, ok := SizesFor(code)
	if !ok {
		return Matter{}, 0, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	if len(s) < sizes.FS {
		return Matter{}, 0, ErrShortage
	}
	cs := sizes.HS + sizes.SS
	body := s[cs:sizes.FS]
	// Qb64 stripped ps-ls leading 'A' (zero-sextet) characters before
	// prepending the code; reinstate them to recover a clean base64 frame.
	stripped := cs % 4
	full := repeatA(stripped) + body
	padded, err := b64.DecodeB64(full)
	if err != nil {
		return Matter{}, 0, err
	}
	for i := 0; i < stripped; i++ {
		if padded[i] != 0 {
			return Matter{}, 0, ErrNonZeroedPadBits
		}
	}
	padded = padded[stripped:]
	for i := 0; i < sizes.LS; i++ {
		if padded[i] != 0 {
			return Matter{}, 0, ErrNonZeroedLeadBytes
		}
	}
	raw := padded[sizes.LS:]
	return Matter{code: code, raw: raw}, sizes.FS, nil
}

// FromQb2 parses a Matter from the front of a qb2 byte slice. It decodes
// just enough leading bytes to recover the code, looks up the frame's full
// size, then re-encodes the whole frame to base64 and reuses FromQb64 —
// valid because every Matter code's byte length is a multiple of 3
// (fs is always a multiple of 4), so grouping never crosses a code boundary.
func FromQb2(b []byte) (Matter, int, error) {
	if len(b) < 3 {
		return Matter{}, 0, ErrShortage
	}
	head := b64.EncodeB64(b[:3])
	hs, ok := HardSize(head[0])
	if !ok {
		return Matter{}, 0, fmt.Errorf("%w: lead byte %q", ErrUnexpectedCode, head[0])
	}
	code := Code(head[:hs])
	sizes, ok := SizesFor(code)
	if !ok {
		return Matter{}, 0, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	needBytes := sizes.FS * 3 / 4
	if len(b) < needBytes {
		return Matter{}, 0, ErrShortage
	}
	qb64 := b64.EncodeB64(b[:needBytes])
	m, n, err := FromQb64(qb64)
	if err != nil {
		return Matter{}, 0, err
	}
	return m, n * 3 / 4, nil
}

func repeatA(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = 'A'
	}
	return string(out)
}
