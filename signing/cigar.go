package signing

import "github.com/datatrails/go-datatrails-keri/matter"

// Cigar is a non-indexed signature with its Verfer attached, used for
// non-transferable receipts where there is no signing-key list to index
// into.
type Cigar struct {
	m      matter.Matter
	verfer Verfer
}

// NewCigar wraps a raw non-indexed signature under code with its Verfer.
func NewCigar(code matter.Code, raw []byte, verfer Verfer) (Cigar, error) {
	m, err := matter.New(code, raw)
	if err != nil {
		return Cigar{}, err
	}
	return Cigar{m: m, verfer: verfer}, nil
}

func (c Cigar) Code() matter.Code { return c.m.Code() }
func (c Cigar) Raw() []byte       { return c.m.Raw() }
func (c Cigar) Verfer() Verfer    { return c.verfer }

// Qb64 renders the fully qualified Base64 text representation.
func (c Cigar) Qb64() (string, error) { return c.m.Qb64() }
