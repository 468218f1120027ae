package signing

import (
	"github.com/datatrails/go-datatrails-keri/indexer"
)

// Siger is an indexed signature belonging to a controller's or witness's
// signing-key list, carrying the list index (and, when applicable, the
// prior-next list index).
type Siger struct {
	x indexer.Indexer
}

// NewSiger wraps an Indexer as a Siger.
func NewSiger(x indexer.Indexer) Siger { return Siger{x: x} }

func (s Siger) Code() indexer.Code { return s.x.Code() }
func (s Siger) Raw() []byte        { return s.x.Raw() }
func (s Siger) Index() int         { return s.x.Index() }
func (s Siger) Ondex() int         { return s.x.Ondex() }

// Qb64 renders the fully qualified Base64 text representation.
func (s Siger) Qb64() (string, error) { return s.x.Qb64() }
