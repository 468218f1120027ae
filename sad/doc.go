// Package sad implements the Self-Addressing Document model: an
// order-preserving string-keyed map with multi-kind serialization
// (JSON/CBOR/MsgPack) and SAID derivation/installation/verification.
// See spec.md §4.7.
package sad

// Value is anything a Doc field can hold: bool, float64/int64, string,
// []Value, or *Doc (a nested ordered map).
type Value any

// Doc is an ordered string-keyed map. Key order is observable and part of
// the serialization contract (spec.md §4.7): re-marshaling a Doc produces
// fields in the same order they were inserted.
type Doc struct {
	keys []string
	vals map[string]Value
}

// NewDoc returns an empty Doc.
func NewDoc() *Doc {
	return &Doc{vals: make(map[string]Value)}
}

// Set inserts or updates key, appending it to the key order on first
// insertion and leaving existing order untouched on update.
func (d *Doc) Set(key string, val Value) *Doc {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = val
	return d
}

// Get returns the value at key and whether it was present.
func (d *Doc) Get(key string) (Value, bool) {
	v, ok := d.vals[key]
	return v, ok
}

// GetString returns the string value at key, or "" if absent or not a string.
func (d *Doc) GetString(key string) string {
	v, ok := d.vals[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Has reports whether key is present.
func (d *Doc) Has(key string) bool {
	_, ok := d.vals[key]
	return ok
}

// Delete removes key, if present.
func (d *Doc) Delete(key string) {
	if _, ok := d.vals[key]; !ok {
		return
	}
	delete(d.vals, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *Doc) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len is the number of fields.
func (d *Doc) Len() int { return len(d.keys) }

// Clone returns a deep-enough copy: top-level key order and values are
// copied, but nested *Doc/[]Value values are shared by reference, which is
// safe because derive/saidify never mutate nested structures in place.
func (d *Doc) Clone() *Doc {
	out := &Doc{
		keys: append([]string(nil), d.keys...),
		vals: make(map[string]Value, len(d.vals)),
	}
	for k, v := range d.vals {
		out.vals[k] = v
	}
	return out
}
