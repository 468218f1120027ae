package indexer

import (
	"fmt"

	"github.com/datatrails/go-datatrails-keri/b64"
)

// Indexer is an indexed signature: a code, the signing-list index it
// belongs at, the prior-next-list index it applies to when the code
// carries one (ondex), and the raw signature bytes.
type Indexer struct {
	code  Code
	index int
	ondex int
	raw   []byte
}

func (x Indexer) Code() Code   { return x.code }
func (x Indexer) Index() int   { return x.index }
func (x Indexer) Ondex() int   { return x.ondex }
func (x Indexer) Raw() []byte  { return x.raw }

// New constructs an Indexer, validating index/ondex bounds and current-
// only/both-list semantics per spec.md §4.3.
func New(code Code, raw []byte, index int, ondex *int) (Indexer, error) {
	sizes, ok := SizesFor(code)
	if !ok {
		return Indexer{}, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	ms := sizes.SS - sizes.OS
	if index < 0 || uint64(index) > pow64(ms)-1 {
		return Indexer{}, fmt.Errorf("%w: index=%d code=%s", ErrInvalidVarIndex, index, code)
	}

	on := 0
	haveOn := false
	if ondex != nil {
		haveOn = true
		on = *ondex
		if sizes.OS != 0 && uint64(on) > pow64(sizes.OS)-1 {
			return Indexer{}, fmt.Errorf("%w: ondex=%d code=%s", ErrInvalidVarIndex, on, code)
		}
	}

	if IsCurrentOnly(code) {
		if haveOn && on != 0 {
			return Indexer{}, fmt.Errorf("%w: non-zero ondex=%d for current-only code=%s", ErrInvalidVarIndex, on, code)
		}
		on = 0
	} else {
		if !haveOn {
			on = index
		} else if sizes.OS == 0 && on != index {
			return Indexer{}, fmt.Errorf("%w: non-matching ondex=%d index=%d code=%s", ErrInvalidVarIndex, on, index, code)
		}
	}

	want := sizes.RawSize()
	if len(raw) != want {
		return Indexer{}, fmt.Errorf("%w: code=%s want=%d got=%d", ErrRawMaterial, code, want, len(raw))
	}
	return Indexer{code: code, index: index, ondex: on, raw: append([]byte(nil), raw...)}, nil
}

// Qb64 renders the fully qualified Base64 text representation.
func (x Indexer) Qb64() (string, error) {
	sizes, ok := SizesFor(x.code)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedCode, x.code)
	}
	cs := sizes.HS + sizes.SS
	ms := sizes.SS - sizes.OS
	ps := (3 - (len(x.raw) % 3)) % 3
	if cs%4 != ps-sizes.LS {
		return "", fmt.Errorf("%w: code=%s cs=%d ps=%d", ErrInvalidCodeSize, x.code, cs, ps)
	}

	padded := make([]byte, 0, ps+sizes.LS+len(x.raw))
	padded = append(padded, make([]byte, ps+sizes.LS)...)
	padded = append(padded, x.raw...)
	body := b64.EncodeB64(padded)[ps-sizes.LS:]

	head := string(x.code) + b64.IntToB64(uint64(x.index), ms)
	if sizes.OS != 0 {
		head += b64.IntToB64(uint64(x.ondex), sizes.OS)
	}

	out := head + body
	if len(out) != sizes.FS {
		return "", fmt.Errorf("%w: code=%s want fs=%d got=%d", ErrInvalidCodeSize, x.code, sizes.FS, len(out))
	}
	return out, nil
}

// FromQb64 parses an Indexer from the front of a qb64 string.
func FromQb64(s string) (Indexer, int, error) {
	if len(s) == 0 {
		return Indexer{}, 0, ErrEmptyMaterial
	}
	switch s[0] {
	case '-':
		return Indexer{}, 0, ErrUnexpectedCountCode
	case '_':
		return Indexer{}, 0, ErrUnexpectedOpCode
	}
	hs, ok := HardSize(s[0])
	if !ok {
		return Indexer{}, 0, fmt.Errorf("%w: lead byte %q", ErrUnexpectedCode, s[0])
	}
	if len(s) < hs {
		return Indexer{}, 0, ErrShortage
	}
	code := Code(s[:hs])
	sizes, ok := SizesFor(code)
	if !ok {
		return Indexer{}, 0, fmt.Errorf("%w: %s", ErrUnexpectedCode, code)
	}
	if len(s) < sizes.FS {
		return Indexer{}, 0, ErrShortage
	}
	ms := sizes.SS - sizes.OS
	cs := sizes.HS + sizes.SS

	index, err := b64.B64ToInt(s[hs : hs+ms])
	if err != nil {
		return Indexer{}, 0, err
	}

	var ondex *int
	if sizes.OS != 0 {
		v, err := b64.B64ToInt(s[hs+ms : hs+ms+sizes.OS])
		if err != nil {
			return Indexer{}, 0, err
		}
		on := int(v)
		if IsCurrentOnly(code) && on != 0 {
			return Indexer{}, 0, fmt.Errorf("%w: ondex=%d for current-only code=%s", ErrInvalidVarIndex, on, code)
		}
		ondex = &on
	}

	stripped := (4 - (cs % 4)) % 4
	body := s[cs:sizes.FS]
	full := repeatA(stripped) + body
	padded, err := b64.DecodeB64(full)
	if err != nil {
		return Indexer{}, 0, err
	}
	padded = padded[stripped+sizes.LS:]

	idx, err := New(code, padded, int(index), ondex)
	if err != nil {
		return Indexer{}, 0, err
	}
	return idx, sizes.FS, nil
}

func pow64(n int) uint64 {
	r := uint64(1)
	for i := 0; i < n; i++ {
		r *= 64
	}
	return r
}

func repeatA(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = 'A'
	}
	return string(out)
}
