package numbering

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Tholder represents a signing threshold: either a plain m-of-n integer
// or a weighted clause list, where each clause is a list of rational
// weights and is satisfied when the weights of the signing indices it
// names sum to at least 1; the overall threshold is satisfied when every
// clause is satisfied.
type Tholder struct {
	sith    int
	clauses [][]*big.Rat
	weighted bool
}

// NewTholderInt builds a plain m-of-n threshold.
func NewTholderInt(m int) Tholder {
	return Tholder{sith: m}
}

// NewTholderWeighted builds a weighted threshold from a list of clauses,
// each a list of rational-weight strings like "1/2".
func NewTholderWeighted(clauses [][]string) (Tholder, error) {
	out := make([][]*big.Rat, len(clauses))
	for i, clause := range clauses {
		rats := make([]*big.Rat, len(clause))
		for j, w := range clause {
			r, ok := new(big.Rat).SetString(w)
			if !ok {
				return Tholder{}, fmt.Errorf("numbering: invalid weight %q", w)
			}
			rats[j] = r
		}
		out[i] = rats
	}
	return Tholder{clauses: out, weighted: true}, nil
}

// IsWeighted reports whether this threshold uses weighted clauses rather
// than a plain integer count.
func (t Tholder) IsWeighted() bool { return t.weighted }

// Sith is the plain integer threshold value (only meaningful when
// !IsWeighted()).
func (t Tholder) Sith() int { return t.sith }

// Satisfy reports whether the given 0-based signing indices meet the
// threshold: for a plain threshold, len(indices) >= m; for a weighted
// threshold, every clause's named-index weights sum to at least 1.
func (t Tholder) Satisfy(indices []int) bool {
	if !t.weighted {
		return len(dedupe(indices)) >= t.sith
	}
	have := make(map[int]bool, len(indices))
	for _, i := range indices {
		have[i] = true
	}
	return t.satisfyWeighted(have)
}

func (t Tholder) satisfyWeighted(have map[int]bool) bool {
	pos := 0
	for _, clause := range t.clauses {
		sum := new(big.Rat)
		one := big.NewRat(1, 1)
		for _, w := range clause {
			if have[pos] {
				sum.Add(sum, w)
			}
			pos++
		}
		if sum.Cmp(one) < 0 {
			return false
		}
	}
	return true
}

func dedupe(indices []int) []int {
	seen := make(map[int]bool, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// Numh renders the canonical serialization: the hex integer for a plain
// threshold, or the clause list rendered as fraction strings for a
// weighted one.
func (t Tholder) Numh() string {
	if !t.weighted {
		return strconv.FormatInt(int64(t.sith), 16)
	}
	clauses := make([]string, len(t.clauses))
	for i, clause := range t.clauses {
		ws := make([]string, len(clause))
		for j, w := range clause {
			ws[j] = w.RatString()
		}
		clauses[i] = "[" + strings.Join(ws, ",") + "]"
	}
	return "[" + strings.Join(clauses, ",") + "]"
}
