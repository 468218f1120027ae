package sad

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// dumpsMsgPack serializes d preserving key order, using the encoder's
// low-level EncodeMapLen/EncodeArrayLen/EncodeString primitives instead of
// its reflective struct/map encoding (which, like the CBOR library, does
// not preserve map iteration order).
func dumpsMsgPack(d *Doc) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := writeMsgPackDoc(enc, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMsgPackDoc(enc *msgpack.Encoder, d *Doc) error {
	if err := enc.EncodeMapLen(d.Len()); err != nil {
		return err
	}
	for _, k := range d.keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		v, _ := d.Get(k)
		if err := writeMsgPackValue(enc, v); err != nil {
			return err
		}
	}
	return nil
}

func writeMsgPackValue(enc *msgpack.Encoder, v Value) error {
	switch t := v.(type) {
	case *Doc:
		return writeMsgPackDoc(enc, t)
	case []Value:
		if err := enc.EncodeArrayLen(len(t)); err != nil {
			return err
		}
		for _, item := range t {
			if err := writeMsgPackValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(t)
	}
}

func loadsMsgPack(data []byte) (*Doc, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := readMsgPackValue(dec)
	if err != nil {
		return nil, err
	}
	d, ok := v.(*Doc)
	if !ok {
		return nil, ErrMalformed
	}
	return d, nil
}

func readMsgPackValue(dec *msgpack.Decoder) (Value, error) {
	code, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	if msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32 {
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		d := NewDoc()
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, err
			}
			val, err := readMsgPackValue(dec)
			if err != nil {
				return nil, err
			}
			d.Set(key, val)
		}
		return d, nil
	}
	if msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32 {
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		arr := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			val, err := readMsgPackValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	}
	return dec.DecodeInterface()
}
