package counter

import (
	"fmt"

	"github.com/datatrails/go-datatrails-keri/b64"
)

// Counter is a framing prefix: a code identifying the group/attachment
// kind that follows and a count of the 4-character quadlets it spans (or,
// for the genus-version code, the packed protocol version).
type Counter struct {
	code  Code
	count int
}

func (c Counter) Code() Code { return c.code }
func (c Counter) Count() int { return c.count }

// New constructs a Counter, validating that count fits in the code's soft
// segment and promoting to the big-count variant when it doesn't (spec.md
// §4.4 "soft promotion").
func New(code Code, count int) (Counter, error) {
	sizes, ok := SizesFor(code)
	if !ok {
		return Counter{}, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	max := pow64(sizes.SS) - 1
	if uint64(count) > max {
		if big, ok := BigCodeFor(code); ok {
			return New(big, count)
		}
		return Counter{}, fmt.Errorf("%w: count=%d exceeds capacity of code=%s", ErrInvalidCount, count, code)
	}
	if count < 0 {
		return Counter{}, fmt.Errorf("%w: negative count=%d", ErrInvalidCount, count)
	}
	return Counter{code: code, count: count}, nil
}

// Qb64 renders the fully qualified Base64 text representation: the hard
// code followed by the count encoded as ss Base64 sextets.
func (c Counter) Qb64() (string, error) {
	sizes, ok := SizesFor(c.code)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedCode, c.code)
	}
	out := string(c.code) + b64.IntToB64(uint64(c.count), sizes.SS)
	if len(out) != sizes.FS {
		return "", fmt.Errorf("%w: code=%s want fs=%d got=%d", ErrInvalidCodeSize, c.code, sizes.FS, len(out))
	}
	return out, nil
}

// Qb2 renders the fully qualified binary representation. Every counter
// code's fs is a multiple of 4, so — exactly as for Matter — qb2 is the
// standard base64 decoding of the qb64 frame.
func (c Counter) Qb2() ([]byte, error) {
	qb64, err := c.Qb64()
	if err != nil {
		return nil, err
	}
	return b64.DecodeB64(qb64)
}

// FromQb64 parses a Counter from the front of a qb64 string.
func FromQb64(s string) (Counter, int, error) {
	if len(s) == 0 {
		return Counter{}, 0, ErrEmptyMaterial
	}
	if s[0] != '-' {
		return Counter{}, 0, fmt.Errorf("%w: not a counter frame, lead byte %q", ErrUnexpectedCode, s[0])
	}
	if len(s) < 2 {
		return Counter{}, 0, ErrShortage
	}
	hs, ok := HardSize([2]byte{s[0], s[1]})
	if !ok {
		return Counter{}, 0, fmt.Errorf("%w: lead bytes %q", ErrUnexpectedCode, s[:2])
	}
	if len(s) < hs {
		return Counter{}, 0, ErrShortage
	}
	code := Code(s[:hs])
	sizes, ok := SizesFor(code)
	if !ok {
		return Counter{}, 0, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	if len(s) < sizes.FS {
		return Counter{}, 0, ErrShortage
	}
	count, err := b64.B64ToInt(s[hs:sizes.FS])
	if err != nil {
		return Counter{}, 0, err
	}
	return Counter{code: code, count: int(count)}, sizes.FS, nil
}

// FromQb2 parses a Counter from the front of a qb2 byte slice.
func FromQb2(raw []byte) (Counter, int, error) {
	if len(raw) < 3 {
		return Counter{}, 0, ErrShortage
	}
	head := b64.EncodeB64(raw[:3])
	hs, ok := HardSize([2]byte{head[0], head[1]})
	if !ok {
		return Counter{}, 0, fmt.Errorf("%w: lead bytes %q", ErrUnexpectedCode, head[:2])
	}
	needBytes := 6 // covers up to 8 leading b64 chars, more than any hs in this table
	if len(raw) < needBytes {
		needBytes = len(raw) - len(raw)%3
	}
	if needBytes == 0 || len(b64.EncodeB64(raw[:needBytes])) < hs {
		return Counter{}, 0, ErrShortage
	}
	code := Code(b64.EncodeB64(raw[:needBytes])[:hs])
	sizes, ok := SizesFor(code)
	if !ok {
		return Counter{}, 0, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	frameBytes := sizes.FS * 3 / 4
	if len(raw) < frameBytes {
		return Counter{}, 0, ErrShortage
	}
	qb64 := b64.EncodeB64(raw[:frameBytes])
	c, n, err := FromQb64(qb64)
	if err != nil {
		return Counter{}, 0, err
	}
	return c, n * 3 / 4, nil
}

func pow64(n int) uint64 {
	r := uint64(1)
	for i := 0; i < n; i++ {
		r *= 64
	}
	return r
}
