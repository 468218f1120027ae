// Package numbering implements the typed CESR wrappers used throughout
// event fields: Number (integers), Tholder (signing thresholds), and
// Dater (timestamps). See spec.md §4.5.
package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/datatrails/go-datatrails-keri/matter"
)

// Number wraps an unsigned integer as Matter primitive, promoting from the
// short (4-byte) code to the big/"huge" (16-byte) code when the value
// doesn't fit in 32 bits.
type Number struct {
	m matter.Matter
}

// NewNumber picks the smallest-fitting code for n and builds a Number.
func NewNumber(n uint64) (Number, error) {
	code := matter.NumberShort
	raw := make([]byte, 4)
	if n > 0xFFFFFFFF {
		code = matter.NumberBig
		raw = make([]byte, 16)
	}
	putBE(raw, n)
	m, err := matter.New(code, raw)
	if err != nil {
		return Number{}, err
	}
	return Number{m: m}, nil
}

func putBE(raw []byte, n uint64) {
	for i := len(raw) - 1; i >= 0; i-- {
		raw[i] = byte(n)
		n >>= 8
	}
}

func getBE(raw []byte) uint64 {
	var n uint64
	for _, b := range raw {
		n = n<<8 | uint64(b)
	}
	return n
}

// Num returns the wrapped integer value.
func (x Number) Num() uint64 { return getBE(x.m.Raw()) }

// Numh is the lowercase hex representation without a "0x" prefix. Zero
// renders as "0", not "" — TrimLeft alone strips an all-zero string bare.
func (x Number) Numh() string {
	h := strings.TrimLeft(fmt.Sprintf("%x", x.Num()), "0")
	if h == "" {
		return "0"
	}
	return h
}

// Huge is the 32-character zero-padded hex representation.
func (x Number) Huge() string {
	return fmt.Sprintf("%032x", x.Num())
}

// Qb64 renders the fully qualified Base64 text representation.
func (x Number) Qb64() (string, error) { return x.m.Qb64() }

// ParseNumber accepts a hex string (with or without "0x" prefix), a plain
// decimal string, or a qb64 CESR frame.
func ParseNumber(s string) (Number, error) {
	if m, _, err := matter.FromQb64(s); err == nil {
		return Number{m: m}, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return NewNumber(n)
		}
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return NewNumber(n)
	}
	if isHexOnly(s) {
		if n, err := strconv.ParseUint(s, 16, 64); err == nil {
			return NewNumber(n)
		}
	}
	return Number{}, fmt.Errorf("numbering: cannot parse %q as a Number", s)
}

func isHexOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
