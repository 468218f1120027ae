package sad

import (
	"fmt"
	"strconv"
)

// Smellage is the parsed content of a KERI version string: "KERI10JSON0000fa_"
// is protocol "KERI", major 1, minor 0, serialization kind JSON, and a
// 6-hex-digit size in bytes, terminated by '_'.
type Smellage struct {
	Proto string
	Major int
	Minor int
	Kind  Kind
	Size  int
}

const versionStringLen = 17

// Versify renders a version string for proto/kind/size.
func Versify(proto string, major, minor int, kind Kind, size int) (string, error) {
	if len(proto) != 4 {
		return "", ErrBadVersionString
	}
	if len(string(kind)) != 4 {
		return "", ErrBadVersionString
	}
	return fmt.Sprintf("%s%d%d%s%06x_", proto, major, minor, kind, size), nil
}

// Deversify parses a version string.
func Deversify(vs string) (Smellage, error) {
	if len(vs) != versionStringLen || vs[len(vs)-1] != '_' {
		return Smellage{}, ErrBadVersionString
	}
	proto := vs[0:4]
	major, err := strconv.Atoi(vs[4:5])
	if err != nil {
		return Smellage{}, ErrBadVersionString
	}
	minor, err := strconv.Atoi(vs[5:6])
	if err != nil {
		return Smellage{}, ErrBadVersionString
	}
	kind := Kind(vs[6:10])
	size, err := strconv.ParseInt(vs[10:16], 16, 64)
	if err != nil {
		return Smellage{}, ErrBadVersionString
	}
	return Smellage{Proto: proto, Major: major, Minor: minor, Kind: kind, Size: int(size)}, nil
}

// Smell extracts the version string from the front of a raw serialization
// without fully parsing it, by finding "v":"..." for JSON/CBOR/MsgPack's
// text-form version field; all three of this package's kinds render "v"
// as a text string, so the same scan works across kinds as long as the
// field appears verbatim somewhere in raw (Sizeify and Derive keep the
// Doc's own field order, so "v" need not come first).
func Smell(raw []byte) (Smellage, error) {
	// Every kind this package emits writes the version string as a plain
	// ASCII run of versionStringLen bytes. Scan for the first occurrence
	// of a 4-letter proto tag followed by the fixed-width remainder.
	for i := 0; i+versionStringLen <= len(raw); i++ {
		if raw[i+4] < '0' || raw[i+4] > '9' {
			continue
		}
		candidate := string(raw[i : i+versionStringLen])
		if s, err := Deversify(candidate); err == nil {
			return s, nil
		}
	}
	return Smellage{}, ErrBadVersionString
}

// Sizeify serializes sad (which must carry a "v" field) under kind,
// computing the correct overall size and rewriting "v" to match, exactly
// as a dummy-padded version string and a real one have the same length
// (spec.md §4.7 "SAID install").
func Sizeify(d *Doc, kind Kind) (raw []byte, proto string, outKind Kind, result *Doc, size int, err error) {
	vs := d.GetString("v")
	if vs == "" {
		return nil, "", "", nil, 0, ErrBadVersionString
	}
	smellage, err := Deversify(vs)
	if err != nil {
		return nil, "", "", nil, 0, err
	}
	k := kind
	if k == "" {
		k = smellage.Kind
	}

	working := d.Clone()
	raw, err = Dumps(working, k)
	if err != nil {
		return nil, "", "", nil, 0, err
	}
	newVS, err := Versify(smellage.Proto, smellage.Major, smellage.Minor, k, len(raw))
	if err != nil {
		return nil, "", "", nil, 0, err
	}
	working.Set("v", newVS)
	raw, err = Dumps(working, k)
	if err != nil {
		return nil, "", "", nil, 0, err
	}
	return raw, smellage.Proto, k, working, len(raw), nil
}
