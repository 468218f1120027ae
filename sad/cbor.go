package sad

import (
	"bytes"
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
)

// CBOR major types, per RFC 8949 §3.
const (
	cborMajorUint  = 0
	cborMajorText  = 3
	cborMajorArray = 4
	cborMajorMap   = 5
)

// cborHead encodes a CBOR major-type/argument header. fxamacker/cbor's
// public API is reflection-driven and sorts map keys for canonical output,
// which would destroy Doc's field order — so Doc's own CBOR map/array
// framing is written by hand here, with cbor.Marshal reused only for
// scalar leaves (bool/number/string/nil), where order doesn't matter.
func cborHead(major byte, n uint64) []byte {
	mt := major << 5
	switch {
	case n < 24:
		return []byte{mt | byte(n)}
	case n <= 0xff:
		return []byte{mt | 24, byte(n)}
	case n <= 0xffff:
		b := make([]byte, 3)
		b[0] = mt | 25
		binary.BigEndian.PutUint16(b[1:], uint16(n))
		return b
	case n <= 0xffffffff:
		b := make([]byte, 5)
		b[0] = mt | 26
		binary.BigEndian.PutUint32(b[1:], uint32(n))
		return b
	default:
		b := make([]byte, 9)
		b[0] = mt | 27
		binary.BigEndian.PutUint64(b[1:], n)
		return b
	}
}

func dumpsCBOR(d *Doc) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCBORDoc(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCBORDoc(buf *bytes.Buffer, d *Doc) error {
	buf.Write(cborHead(cborMajorMap, uint64(d.Len())))
	for _, k := range d.keys {
		buf.Write(cborHead(cborMajorText, uint64(len(k))))
		buf.WriteString(k)
		v, _ := d.Get(k)
		if err := writeCBORValue(buf, v); err != nil {
			return err
		}
	}
	return nil
}

func writeCBORValue(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case *Doc:
		return writeCBORDoc(buf, t)
	case []Value:
		buf.Write(cborHead(cborMajorArray, uint64(len(t))))
		for _, item := range t {
			if err := writeCBORValue(buf, item); err != nil {
				return err
			}
		}
		return nil
	default:
		b, err := cbor.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

func loadsCBOR(data []byte) (*Doc, error) {
	dec := cborDecoder{data: data}
	v, err := dec.readValue()
	if err != nil {
		return nil, err
	}
	d, ok := v.(*Doc)
	if !ok {
		return nil, ErrMalformed
	}
	return d, nil
}

// cborDecoder is a minimal order-preserving CBOR reader covering the
// subset of CBOR this package's own encoder produces: maps, arrays, text
// strings, and scalar leaves delegated to the library decoder.
type cborDecoder struct {
	data []byte
	pos  int
}

func (c *cborDecoder) readValue() (Value, error) {
	if c.pos >= len(c.data) {
		return nil, ErrMalformed
	}
	lead := c.data[c.pos]
	major := lead >> 5
	switch major {
	case cborMajorMap:
		n, err := c.readArg()
		if err != nil {
			return nil, err
		}
		d := NewDoc()
		for i := uint64(0); i < n; i++ {
			keyVal, err := c.readValue()
			if err != nil {
				return nil, err
			}
			key, ok := keyVal.(string)
			if !ok {
				return nil, ErrMalformed
			}
			val, err := c.readValue()
			if err != nil {
				return nil, err
			}
			d.Set(key, val)
		}
		return d, nil
	case cborMajorArray:
		n, err := c.readArg()
		if err != nil {
			return nil, err
		}
		arr := make([]Value, 0, n)
		for i := uint64(0); i < n; i++ {
			val, err := c.readValue()
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	default:
		return c.readScalar()
	}
}

// readArg decodes the argument (length/count) of the item at pos and
// advances pos past the header bytes, without consuming any payload.
func (c *cborDecoder) readArg() (uint64, error) {
	lead := c.data[c.pos]
	info := lead & 0x1f
	switch {
	case info < 24:
		c.pos++
		return uint64(info), nil
	case info == 24:
		if c.pos+2 > len(c.data) {
			return 0, ErrMalformed
		}
		n := uint64(c.data[c.pos+1])
		c.pos += 2
		return n, nil
	case info == 25:
		if c.pos+3 > len(c.data) {
			return 0, ErrMalformed
		}
		n := uint64(binary.BigEndian.Uint16(c.data[c.pos+1:]))
		c.pos += 3
		return n, nil
	case info == 26:
		if c.pos+5 > len(c.data) {
			return 0, ErrMalformed
		}
		n := uint64(binary.BigEndian.Uint32(c.data[c.pos+1:]))
		c.pos += 5
		return n, nil
	case info == 27:
		if c.pos+9 > len(c.data) {
			return 0, ErrMalformed
		}
		n := binary.BigEndian.Uint64(c.data[c.pos+1:])
		c.pos += 9
		return n, nil
	default:
		return 0, ErrMalformed
	}
}

// readScalar decodes a single library-encoded scalar (text string, uint,
// negative int, float, bool, or nil) starting at pos, using the library
// decoder against the minimal well-formed prefix that starts there.
func (c *cborDecoder) readScalar() (Value, error) {
	n, consumed, err := cborItemLen(c.data[c.pos:])
	if err != nil {
		return nil, err
	}
	raw := c.data[c.pos : c.pos+n]
	c.pos += n
	_ = consumed
	var v any
	if err := cbor.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// cborItemLen returns the total encoded length, in bytes, of the single
// well-formed CBOR item at the front of b. Only the scalar major types
// (uint, negint, bytes, text, simple/float) this package emits via
// cbor.Marshal for leaf values are supported.
func cborItemLen(b []byte) (int, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrMalformed
	}
	lead := b[0]
	major := lead >> 5
	info := lead & 0x1f

	headLen := 1
	var argLen uint64
	switch {
	case info < 24:
		argLen = uint64(info)
	case info == 24:
		if len(b) < 2 {
			return 0, 0, ErrMalformed
		}
		argLen = uint64(b[1])
		headLen = 2
	case info == 25:
		if len(b) < 3 {
			return 0, 0, ErrMalformed
		}
		argLen = uint64(binary.BigEndian.Uint16(b[1:]))
		headLen = 3
	case info == 26:
		if len(b) < 5 {
			return 0, 0, ErrMalformed
		}
		argLen = uint64(binary.BigEndian.Uint32(b[1:]))
		headLen = 5
	case info == 27:
		if len(b) < 9 {
			return 0, 0, ErrMalformed
		}
		argLen = binary.BigEndian.Uint64(b[1:])
		headLen = 9
	default:
		return 0, 0, ErrMalformed
	}

	switch major {
	case cborMajorUint, 1: // unsigned / negative int: no payload beyond arg
		return headLen, headLen, nil
	case 2, cborMajorText: // byte string / text string: argLen payload bytes
		return headLen + int(argLen), headLen, nil
	case 7: // simple/float: for info<24 fits in head; floats use info 25/26/27
		return headLen, headLen, nil
	default:
		return 0, 0, ErrMalformed
	}
}
