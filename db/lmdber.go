// Package db implements LMDBer, an ordered key-value layer over MDBX, and
// Komer, a typed keyspace object mapper on top of it. See spec.md §4.10.
package db

import (
	"sort"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/datatrails/go-datatrails-keri/filing"
)

const defaultSep = '.'

// LMDBer owns an MDBX environment rooted at a Filer-managed directory,
// opening named sub-databases on demand.
type LMDBer struct {
	filer *filing.Filer
	env   *mdbx.Env
	dbs   map[string]mdbx.DBI
}

// New opens (creating if needed) an LMDBer at name under base, using the
// same primary/alt head resolution and temp semantics as filing.Filer.
func New(name string, opts ...filing.Option) (*LMDBer, error) {
	f, err := filing.New(name, opts...)
	if err != nil {
		return nil, err
	}
	l := &LMDBer{filer: f, dbs: make(map[string]mdbx.DBI)}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *LMDBer) open() error {
	env, err := mdbx.NewEnv()
	if err != nil {
		return err
	}
	if err := env.SetOption(mdbx.OptMaxDB, 64); err != nil {
		env.Close()
		return err
	}
	if err := env.Open(l.filer.Path(), 0, 0o600); err != nil {
		env.Close()
		return err
	}
	l.env = env
	return nil
}

// Path is the directory this environment is rooted at.
func (l *LMDBer) Path() string { return l.filer.Path() }

// Close releases the MDBX environment and its backing Filer resource.
func (l *LMDBer) Close(clear bool) error {
	if l.env != nil {
		l.env.Close()
		l.env = nil
	}
	return l.filer.Close(clear)
}

// CreateDatabase opens (creating if absent) a named sub-database. dupSort
// enables MDBX's native sorted-duplicate-value semantics for keys that
// hold an ordered set of values (used by the receipt/signature
// collections in basing).
func (l *LMDBer) CreateDatabase(name string, dupSort bool) (mdbx.DBI, error) {
	if dbi, ok := l.dbs[name]; ok {
		return dbi, nil
	}
	var dbi mdbx.DBI
	err := l.env.Update(func(txn *mdbx.Txn) error {
		flags := uint(mdbx.Create)
		if dupSort {
			flags |= uint(mdbx.DupSort)
		}
		d, err := txn.OpenDBI(name, flags, nil, nil)
		if err != nil {
			return err
		}
		dbi = d
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.dbs[name] = dbi
	return dbi, nil
}

// PutVal writes val at key, failing (returning false, nil) without error
// if key already holds a value.
func (l *LMDBer) PutVal(dbi mdbx.DBI, key, val []byte) (bool, error) {
	if len(key) == 0 {
		return false, ErrEmptyKey
	}
	put := true
	err := l.env.Update(func(txn *mdbx.Txn) error {
		err := txn.Put(dbi, key, val, mdbx.NoOverwrite)
		if mdbx.IsKeyExist(err) {
			put = false
			return nil
		}
		return err
	})
	return put, err
}

// SetVal writes val at key, overwriting any existing value in a plain
// database; in a dupSort database it adds val as another duplicate.
func (l *LMDBer) SetVal(dbi mdbx.DBI, key, val []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return l.env.Update(func(txn *mdbx.Txn) error {
		return txn.Put(dbi, key, val, 0)
	})
}

// GetVal returns the value at key, or nil if absent.
func (l *LMDBer) GetVal(dbi mdbx.DBI, key []byte) ([]byte, error) {
	var out []byte
	err := l.env.View(func(txn *mdbx.Txn) error {
		v, err := txn.Get(dbi, key)
		if mdbx.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// DelVal removes key, reporting whether it existed.
func (l *LMDBer) DelVal(dbi mdbx.DBI, key []byte) (bool, error) {
	existed := false
	err := l.env.Update(func(txn *mdbx.Txn) error {
		err := txn.Del(dbi, key, nil)
		if mdbx.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return nil
	})
	return existed, err
}

// Cnt returns the number of entries in db.
func (l *LMDBer) Cnt(dbi mdbx.DBI) (uint64, error) {
	var n uint64
	err := l.env.View(func(txn *mdbx.Txn) error {
		stat, err := txn.StatDBI(dbi)
		if err != nil {
			return err
		}
		n = stat.Entries
		return nil
	})
	return n, err
}

// TopItemsIter calls fn for every (key, val) pair whose key starts with
// prefix, in ascending key order, stopping early if fn returns false.
func (l *LMDBer) TopItemsIter(dbi mdbx.DBI, prefix []byte, fn func(key, val []byte) (bool, error)) error {
	return l.env.View(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		key, val, err := cur.Get(prefix, nil, mdbx.SetRange)
		for {
			if mdbx.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			if !hasPrefix(key, prefix) {
				return nil
			}
			cont, cbErr := fn(append([]byte(nil), key...), append([]byte(nil), val...))
			if cbErr != nil {
				return cbErr
			}
			if !cont {
				return nil
			}
			key, val, err = cur.Get(nil, nil, mdbx.Next)
		}
	})
}

// DelTopVal removes every entry whose key starts with prefix, reporting
// whether any were removed.
func (l *LMDBer) DelTopVal(dbi mdbx.DBI, prefix []byte) (bool, error) {
	var keys [][]byte
	if err := l.TopItemsIter(dbi, prefix, func(key, _ []byte) (bool, error) {
		keys = append(keys, key)
		return true, nil
	}); err != nil {
		return false, err
	}
	if len(keys) == 0 {
		return false, nil
	}
	err := l.env.Update(func(txn *mdbx.Txn) error {
		for _, k := range keys {
			if err := txn.Del(dbi, k, nil); err != nil && !mdbx.IsNotFound(err) {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}

// GetAllVals returns every duplicate value stored at key, in sorted
// (byte-wise) order rather than insertion order, for a database opened
// with dupSort. For a non-dupSort
// database this returns a single-element slice, matching GetVal.
func (l *LMDBer) GetAllVals(dbi mdbx.DBI, key []byte) ([][]byte, error) {
	var out [][]byte
	err := l.env.View(func(txn *mdbx.Txn) error {
		cur, err := txn.OpenCursor(dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		_, val, err := cur.Get(key, nil, mdbx.Set)
		for {
			if mdbx.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			out = append(out, append([]byte(nil), val...))
			_, val, err = cur.Get(nil, nil, mdbx.NextDup)
		}
	})
	return out, err
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

// PutOnVal writes val at the ordinal key formed from key and on (see
// OnKey), failing without error if that exact ordinal is already set.
func (l *LMDBer) PutOnVal(dbi mdbx.DBI, key []byte, on uint64, val []byte) (bool, error) {
	return l.PutVal(dbi, OnKey(key, on, defaultSep), val)
}

// SetOnVal writes val at the ordinal key, overwriting any existing value.
func (l *LMDBer) SetOnVal(dbi mdbx.DBI, key []byte, on uint64, val []byte) error {
	return l.SetVal(dbi, OnKey(key, on, defaultSep), val)
}

// GetOnVal returns the value at the ordinal key, or nil if absent.
func (l *LMDBer) GetOnVal(dbi mdbx.DBI, key []byte, on uint64) ([]byte, error) {
	return l.GetVal(dbi, OnKey(key, on, defaultSep))
}

// DelOnVal removes the value at the ordinal key.
func (l *LMDBer) DelOnVal(dbi mdbx.DBI, key []byte, on uint64) (bool, error) {
	return l.DelVal(dbi, OnKey(key, on, defaultSep))
}

// AppendOnVal writes val at one ordinal past the highest existing ordinal
// under key's prefix, returning the ordinal it was written at.
func (l *LMDBer) AppendOnVal(dbi mdbx.DBI, key []byte, val []byte) (uint64, error) {
	prefix := OnKey(key, 0, defaultSep)
	prefix = prefix[:len(prefix)-32] // strip the placeholder ordinal, keep "key."

	var last uint64
	found := false
	if err := l.TopItemsIter(dbi, prefix, func(k, _ []byte) (bool, error) {
		_, on, err := SplitOnKey(k, defaultSep)
		if err != nil {
			return true, nil
		}
		if !found || on > last {
			last = on
			found = true
		}
		return true, nil
	}); err != nil {
		return 0, err
	}

	next := uint64(0)
	if found {
		if last == maxOn {
			return 0, ErrOrdinalOverflow
		}
		next = last + 1
	}
	ok, err := l.PutOnVal(dbi, key, next, val)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrKeyExists
	}
	return next, nil
}

// CntOnVals counts ordinal entries under key's prefix.
func (l *LMDBer) CntOnVals(dbi mdbx.DBI, key []byte) (int, error) {
	prefix := OnKey(key, 0, defaultSep)
	prefix = prefix[:len(prefix)-32]
	n := 0
	err := l.TopItemsIter(dbi, prefix, func(_, _ []byte) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// GetOnItemIter calls fn in ascending ordinal order for every entry under
// key's prefix.
func (l *LMDBer) GetOnItemIter(dbi mdbx.DBI, key []byte, fn func(on uint64, val []byte) (bool, error)) error {
	prefix := OnKey(key, 0, defaultSep)
	prefix = prefix[:len(prefix)-32]

	type item struct {
		on  uint64
		val []byte
	}
	var items []item
	if err := l.TopItemsIter(dbi, prefix, func(k, v []byte) (bool, error) {
		_, on, err := SplitOnKey(k, defaultSep)
		if err != nil {
			return true, nil
		}
		items = append(items, item{on: on, val: v})
		return true, nil
	}); err != nil {
		return err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].on < items[j].on })
	for _, it := range items {
		cont, err := fn(it.on, it.val)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}
