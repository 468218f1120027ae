package db

import (
	"strings"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/datatrails/go-datatrails-keri/sad"
)

// Komer is a keyspace object mapper: it stores values of type T, encoded
// under a chosen sad.Kind, at keys built by joining key-part components
// with a separator. See spec.md §4.10.
type Komer[T any] struct {
	db   *LMDBer
	sdb  mdbx.DBI
	kind sad.Kind
	sep  string

	encode func(T) ([]byte, error)
	decode func([]byte) (T, error)
}

// NewKomer opens (creating if absent) a sub-database named subkey for
// values of type T serialized under kind.
func NewKomer[T any](database *LMDBer, subkey string, kind sad.Kind, encode func(T) ([]byte, error), decode func([]byte) (T, error)) (*Komer[T], error) {
	sdb, err := database.CreateDatabase(subkey, false)
	if err != nil {
		return nil, err
	}
	return &Komer[T]{db: database, sdb: sdb, kind: kind, sep: ".", encode: encode, decode: decode}, nil
}

// ToKey joins keys with the configured separator (default ".").
func (k *Komer[T]) ToKey(keys []string) []byte {
	return []byte(strings.Join(keys, k.sep))
}

// ToKeys splits a raw database key back into its component strings.
func (k *Komer[T]) ToKeys(key []byte) []string {
	return strings.Split(string(key), k.sep)
}

// Put stores val at keys, failing without error if keys already holds a
// value.
func (k *Komer[T]) Put(keys []string, val T) (bool, error) {
	key := k.ToKey(keys)
	if len(key) == 0 {
		return false, ErrEmptyKey
	}
	enc, err := k.encode(val)
	if err != nil {
		return false, err
	}
	return k.db.PutVal(k.sdb, key, enc)
}

// Pin stores val at keys, overwriting any existing value.
func (k *Komer[T]) Pin(keys []string, val T) error {
	key := k.ToKey(keys)
	if len(key) == 0 {
		return ErrEmptyKey
	}
	enc, err := k.encode(val)
	if err != nil {
		return err
	}
	return k.db.SetVal(k.sdb, key, enc)
}

// Get retrieves the value at keys, returning (zero, false, nil) if absent.
func (k *Komer[T]) Get(keys []string) (T, bool, error) {
	var zero T
	raw, err := k.db.GetVal(k.sdb, k.ToKey(keys))
	if err != nil {
		return zero, false, err
	}
	if raw == nil {
		return zero, false, nil
	}
	v, err := k.decode(raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Rem removes the value at keys, reporting whether it existed.
func (k *Komer[T]) Rem(keys []string) (bool, error) {
	return k.db.DelVal(k.sdb, k.ToKey(keys))
}

// Trim removes every entry whose key starts with the keys prefix.
func (k *Komer[T]) Trim(keys []string) (bool, error) {
	prefix := append(k.ToKey(keys), byte(k.sep[0]))
	return k.db.DelTopVal(k.sdb, prefix)
}

// CntAll returns the total number of entries in this Komer's database.
func (k *Komer[T]) CntAll() (uint64, error) {
	return k.db.Cnt(k.sdb)
}

// Item pairs a split key with its decoded value, as returned by
// GetItemIter.
type Item[T any] struct {
	Keys []string
	Val  T
}

// GetItemIter returns every (keys, val) pair whose key starts with the
// keys prefix.
func (k *Komer[T]) GetItemIter(keys []string) ([]Item[T], error) {
	prefix := k.ToKey(keys)
	var out []Item[T]
	err := k.db.TopItemsIter(k.sdb, prefix, func(key, val []byte) (bool, error) {
		v, err := k.decode(val)
		if err != nil {
			return false, err
		}
		out = append(out, Item[T]{Keys: k.ToKeys(key), Val: v})
		return true, nil
	})
	return out, err
}

// SadEncoder/SadDecoder adapt sad.Dumps/sad.Loads to Komer's encode/decode
// shape for *sad.Doc-valued Komers (the common case for event records).
func SadEncoder(kind sad.Kind) func(*sad.Doc) ([]byte, error) {
	return func(d *sad.Doc) ([]byte, error) { return sad.Dumps(d, kind) }
}

func SadDecoder(kind sad.Kind) func([]byte) (*sad.Doc, error) {
	return func(raw []byte) (*sad.Doc, error) { return sad.Loads(raw, kind) }
}
