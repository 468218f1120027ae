package sad

// Kind selects a SAD serialization format.
type Kind string

const (
	KindJSON    Kind = "JSON"
	KindCBOR    Kind = "CBOR"
	KindMGPK    Kind = "MGPK"
)

// Dumps serializes d under kind.
func Dumps(d *Doc, kind Kind) ([]byte, error) {
	switch kind {
	case KindJSON:
		return dumpsJSON(d)
	case KindCBOR:
		return dumpsCBOR(d)
	case KindMGPK:
		return dumpsMsgPack(d)
	default:
		return nil, ErrUnsupportedKind
	}
}

// Loads parses data under kind into a Doc, preserving field order.
func Loads(data []byte, kind Kind) (*Doc, error) {
	switch kind {
	case KindJSON:
		return loadsJSON(data)
	case KindCBOR:
		return loadsCBOR(data)
	case KindMGPK:
		return loadsMsgPack(data)
	default:
		return nil, ErrUnsupportedKind
	}
}
