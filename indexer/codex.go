// Package indexer implements CESR Indexer material: signatures tagged with
// a list-position index (and, for "both-list" codes, a second prior-next
// list index). See spec.md §4.3.
package indexer

// Code is an indexer derivation code's hard part.
type Code string

// Indexed signature codes. "Sig" codes carry one index that applies to
// both the current signing list and the prior-next list when both lists
// exist on an event; "CrtSig" codes carry only a current-list index.
// "Big" variants widen the soft (index) segment for lists with more than
// 64 members. Only defined codes are listed, mirroring the "only provide
// defined codes" convention used throughout the CESR codex tables.
const (
	Ed25519Sig        Code = "A" // Ed25519 sig, same index in both lists if both present
	Ed25519CrtSig     Code = "B" // Ed25519 sig, current list only
	ECDSA256k1Sig     Code = "C"
	ECDSA256k1CrtSig  Code = "D"
	ECDSA256rSig      Code = "E"
	ECDSA256rCrtSig   Code = "F"
	Ed448Sig          Code = "0A"
	Ed448CrtSig       Code = "0B"
	Ed25519BigSig     Code = "2A"
	Ed25519BigCrtSig  Code = "2B"
	ECDSA256k1BigSig  Code = "2C"
	ECDSA256k1BigCrtSig Code = "2D"
	ECDSA256rBigSig   Code = "2E"
	ECDSA256rBigCrtSig Code = "2F"
	Ed448BigSig       Code = "3A"
	Ed448BigCrtSig    Code = "3B"
)

// crtSigCodes are the current-list-only codes: they carry no ondex.
var crtSigCodes = map[Code]bool{
	Ed25519CrtSig:       true,
	ECDSA256k1CrtSig:    true,
	ECDSA256rCrtSig:     true,
	Ed448CrtSig:         true,
	Ed25519BigCrtSig:    true,
	ECDSA256k1BigCrtSig: true,
	ECDSA256rBigCrtSig:  true,
	Ed448BigCrtSig:      true,
}

// Sizes is the (hs, ss, os, fs, ls) tuple for an indexer code: hard size,
// soft size (index + ondex segments combined), the "other" index (ondex)
// segment width carved out of ss, full size, and lead size.
type Sizes struct {
	HS int
	SS int
	OS int
	FS int
	LS int
}

// RawSize is the expected raw signature payload length for this code.
func (s Sizes) RawSize() int {
	cs := s.HS + s.SS
	return (s.FS-cs)*3/4 - s.LS
}

var sizesTable = map[Code]Sizes{
	Ed25519Sig:          {1, 1, 0, 88, 0},
	Ed25519CrtSig:       {1, 1, 0, 88, 0},
	ECDSA256k1Sig:       {1, 1, 0, 88, 0},
	ECDSA256k1CrtSig:    {1, 1, 0, 88, 0},
	ECDSA256rSig:        {1, 1, 0, 88, 0},
	ECDSA256rCrtSig:     {1, 1, 0, 88, 0},
	Ed448Sig:            {2, 2, 1, 156, 0},
	Ed448CrtSig:         {2, 2, 1, 156, 0},
	Ed25519BigSig:       {2, 4, 2, 92, 0},
	Ed25519BigCrtSig:    {2, 4, 2, 92, 0},
	ECDSA256k1BigSig:    {2, 4, 2, 92, 0},
	ECDSA256k1BigCrtSig: {2, 4, 2, 92, 0},
	ECDSA256rBigSig:     {2, 4, 2, 92, 0},
	ECDSA256rBigCrtSig:  {2, 4, 2, 92, 0},
	Ed448BigSig:         {2, 6, 3, 160, 0},
	Ed448BigCrtSig:      {2, 6, 3, 160, 0},
}

// SizesFor looks up a code's size tuple.
func SizesFor(code Code) (Sizes, bool) {
	s, ok := sizesTable[code]
	return s, ok
}

// IsCurrentOnly reports whether code carries only a current-list index
// (no ondex for the prior-next list).
func IsCurrentOnly(code Code) bool {
	return crtSigCodes[code]
}

// bigOf maps a small-index code to its big-index ("2x"/"3x") counterpart,
// used when an index exceeds the small code's 64-member-list capacity.
var bigOf = map[Code]Code{
	Ed25519Sig:       Ed25519BigSig,
	Ed25519CrtSig:    Ed25519BigCrtSig,
	ECDSA256k1Sig:    ECDSA256k1BigSig,
	ECDSA256k1CrtSig: ECDSA256k1BigCrtSig,
	ECDSA256rSig:     ECDSA256rBigSig,
	ECDSA256rCrtSig:  ECDSA256rBigCrtSig,
	Ed448Sig:         Ed448BigSig,
	Ed448CrtSig:      Ed448BigCrtSig,
}

// BigCodeFor returns the big-index code for a small-index code, if one
// exists in this table.
func BigCodeFor(code Code) (Code, bool) {
	b, ok := bigOf[code]
	return b, ok
}

var hards = map[byte]int{
	'A': 1, 'B': 1, 'C': 1, 'D': 1, 'E': 1, 'F': 1,
	'0': 2, '1': 2, '2': 2, '3': 2, '4': 2,
}

// HardSize returns the hard-code size implied by the leading character.
func HardSize(lead byte) (int, bool) {
	hs, ok := hards[lead]
	return hs, ok
}
