package serdering

import "github.com/datatrails/go-datatrails-keri/sad"

// ACDC is the credential-flavored accessor set over a Serder, exposing
// ACDC-specific field names (issuer, schema, attribute block, edges,
// rules) alongside the shared envelope, per spec.md §4.8.
type ACDC struct {
	*Serder
}

// FromRawACDC parses raw as an ACDC credential envelope.
func FromRawACDC(raw []byte, smellage *Smellage) (*ACDC, error) {
	s, err := FromRaw(raw, smellage)
	if err != nil {
		return nil, err
	}
	return &ACDC{Serder: s}, nil
}

// Uuid is the salty nonce from field "u".
func (a *ACDC) Uuid() string { return a.Ked().GetString("u") }

// Issuer is the issuer AID from field "i".
func (a *ACDC) Issuer() string { return a.Ked().GetString("i") }

// Regi is the registry SAID from field "ri".
func (a *ACDC) Regi() string { return a.Ked().GetString("ri") }

// Schema is the schema block or SAID from field "s".
func (a *ACDC) Schema() string { return a.Ked().GetString("s") }

// Attrib returns the attribute block from field "a", whether it is a
// nested Doc (full block) or a bare SAID string.
func (a *ACDC) Attrib() (*sad.Doc, string) {
	v, ok := a.Ked().Get("a")
	if !ok {
		return nil, ""
	}
	if d, ok := v.(*sad.Doc); ok {
		return d, ""
	}
	if s, ok := v.(string); ok {
		return nil, s
	}
	return nil, ""
}

// Issuee is the issuee AID from .sad["a"]["i"], when the attribute block
// is inlined rather than referenced by SAID.
func (a *ACDC) Issuee() string {
	d, _ := a.Attrib()
	if d == nil {
		return ""
	}
	return d.GetString("i")
}

// Attagg returns the attribute-aggregate block from field "A".
func (a *ACDC) Attagg() (*sad.Doc, string) {
	v, ok := a.Ked().Get("A")
	if !ok {
		return nil, ""
	}
	if d, ok := v.(*sad.Doc); ok {
		return d, ""
	}
	if s, ok := v.(string); ok {
		return nil, s
	}
	return nil, ""
}

// Edge returns the edge block from field "e".
func (a *ACDC) Edge() (*sad.Doc, bool) {
	v, ok := a.Ked().Get("e")
	if !ok {
		return nil, false
	}
	d, ok := v.(*sad.Doc)
	return d, ok
}

// Rule returns the rule block from field "r".
func (a *ACDC) Rule() (*sad.Doc, bool) {
	v, ok := a.Ked().Get("r")
	if !ok {
		return nil, false
	}
	d, ok := v.(*sad.Doc)
	return d, ok
}
