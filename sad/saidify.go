package sad

import (
	"github.com/datatrails/go-datatrails-keri/matter"
	"github.com/datatrails/go-datatrails-keri/signing"
)

// Dummy is the placeholder character installed into the SAID field before
// serializing for size computation, per spec.md §4.7.
const Dummy = "#"

var digestSizes = map[matter.Code]int{
	matter.Blake3_256:  44,
	matter.Blake2b256:  44,
	matter.SHA3_256:    44,
	matter.SHA2_256:    44,
}

// Derive fills label with Dummy characters (sized to code's qb64 length),
// re-sizes the version string if present, serializes under kind (ignoring
// any fields in ignore), and returns the raw digest plus the dummy-filled
// Doc it was computed from.
func Derive(d *Doc, code matter.Code, kind Kind, label string, ignore []string) ([]byte, *Doc, error) {
	fs, ok := digestSizes[code]
	if !ok {
		return nil, nil, ErrUnsupportedCode
	}
	if label == "" {
		label = "d"
	}

	working := d.Clone()
	working.Set(label, repeat(Dummy, fs))

	if working.Has("v") {
		_, _, _, resized, _, err := Sizeify(working, kind)
		if err != nil {
			return nil, nil, err
		}
		working = resized
	}

	ser := working.Clone()
	for _, f := range ignore {
		ser.Delete(f)
	}

	serialized, err := Dumps(ser, effectiveKind(working, kind))
	if err != nil {
		return nil, nil, err
	}

	digest, err := signing.FromSer(serialized, code)
	if err != nil {
		return nil, nil, err
	}
	return digest.Raw(), working, nil
}

func effectiveKind(d *Doc, kind Kind) Kind {
	if kind != "" {
		return kind
	}
	if vs := d.GetString("v"); vs != "" {
		if s, err := Deversify(vs); err == nil {
			return s.Kind
		}
	}
	return KindJSON
}

// Saidify derives a SAID over d and returns (saidQb64, resultDoc) where
// resultDoc is a copy of d with label set to the derived SAID.
func Saidify(d *Doc, code matter.Code, kind Kind, label string, ignore []string) (string, *Doc, error) {
	if label == "" {
		label = "d"
	}
	if !d.Has(label) {
		return "", nil, ErrMissingLabel
	}
	raw, working, err := Derive(d, code, kind, label, ignore)
	if err != nil {
		return "", nil, err
	}
	m, err := matter.New(code, raw)
	if err != nil {
		return "", nil, err
	}
	said, err := m.Qb64()
	if err != nil {
		return "", nil, err
	}
	working.Set(label, said)
	return said, working, nil
}

// Verify reports whether deriving label's SAID from d (under code)
// reproduces the value already stored in d[label] (and, when versioned,
// that d's "v" field matches the dummy-filled-and-resized copy's).
func Verify(d *Doc, code matter.Code, kind Kind, label string, ignore []string, prefixed, versioned bool) bool {
	if label == "" {
		label = "d"
	}
	raw, working, err := Derive(d, code, kind, label, ignore)
	if err != nil {
		return false
	}
	m, err := matter.New(code, raw)
	if err != nil {
		return false
	}
	said, err := m.Qb64()
	if err != nil {
		return false
	}

	if versioned && d.Has("v") && d.GetString("v") != working.GetString("v") {
		return false
	}
	if prefixed && d.GetString(label) != said {
		return false
	}
	existing := d.GetString(label)
	return existing == said
}

func repeat(s string, n int) string {
	out := make([]byte, 0, n)
	for len(out) < n {
		out = append(out, s...)
	}
	return string(out[:n])
}
