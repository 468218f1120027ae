package sad

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// dumpsJSON serializes d preserving key order. Nested Docs and []Value
// slices recurse; scalar leaves use encoding/json.
func dumpsJSON(d *Doc) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONDoc(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONDoc(buf *bytes.Buffer, d *Doc) error {
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v, _ := d.Get(k)
		if err := writeJSONValue(buf, v); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONValue(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case *Doc:
		return writeJSONDoc(buf, t)
	case []Value:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

// loadsJSON parses JSON text into a Doc, preserving key order using a
// token-level decode (encoding/json's map decoding does not preserve
// order, which is why this package cannot just use json.Unmarshal).
func loadsJSON(data []byte) (*Doc, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, ErrMalformed
	}
	d, err := decodeJSONObject(dec)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func decodeJSONObject(dec *json.Decoder) (*Doc, error) {
	d := NewDoc()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, ErrMalformed
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		d.Set(key, val)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			var arr []Value
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("sad: unexpected json delimiter %v", t)
		}
	case json.Number:
		if n, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		return f, err
	default:
		return t, nil
	}
}
