package orm

import (
	"bytes"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Index is a secondary index of bucket entities.
type Index interface {
	// Name returns the name of this index.
	Name() string

	// Update updates the index. It should be called when any of the bucket
	// entities has changed in the store.
	//
	// prev == nil means insert
	// save == nil means delete
	// both == nil is error
	// if both != nil and prev.Key() != save.Key() this is an error
	Update(db ledger.KVStore, prev Object, save Object) error

	// Keys returns an iterator over all entity keys that were indexed
	// under given value. Iterator values are always nil.
	Keys(db ledger.ReadOnlyKVStore, value []byte) ledger.Iterator

	// Query handles queries from the QueryRouter.
	Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error)
}

const compactIdxPrefix = "_i."

// Indexer calculates the secondary index key for a given object
type Indexer func(Object) ([]byte, error)

// MultiKeyIndexer calculates the secondary index keys for a given object
type MultiKeyIndexer func(Object) ([][]byte, error)

// compactIndex stores all references of an index value serialized under a
// single key. The value is one primary key (unique) or a MultiRef (!unique).
// Use it only for small collections.
type compactIndex struct {
	name   string
	id     []byte
	unique bool
	index  MultiKeyIndexer
	refKey func([]byte) []byte
}

var _ Index = compactIndex{}

// NewMultiKeyIndex constructs an index with multi key indexer.
// Indexer calculates the index for an object
// unique enforces a unique constraint on the index
// refKey calculates the absolute dbkey for a ref
func NewMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool, refKey func([]byte) []byte) Index {
	return compactIndex{
		name:   name,
		id:     append([]byte(compactIdxPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(obj Object) ([][]byte, error) {
		key, err := indexer(obj)
		switch {
		case err != nil:
			return nil, err
		case key == nil:
			return nil, nil
		}
		return [][]byte{key}, nil
	}
}

func (i compactIndex) Name() string {
	return i.name
}

func (i compactIndex) indexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update makes sure every indexed value of save references its key and
// that values indexed only by prev no longer do.
func (i compactIndex) Update(db ledger.KVStore, prev Object, save Object) error {
	switch {
	case prev == nil && save == nil:
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil object")
	case prev != nil && save != nil && !bytes.Equal(prev.Key(), save.Key()):
		return errors.Wrap(errors.ErrInvalidInput, "cannot change object key")
	}

	var prevKeys, saveKeys [][]byte
	var err error
	if prev != nil {
		if prevKeys, err = i.index(prev); err != nil {
			return err
		}
	}
	if save != nil {
		if saveKeys, err = i.index(save); err != nil {
			return err
		}
	}

	var pk []byte
	if save != nil {
		pk = save.Key()
	} else {
		pk = prev.Key()
	}
	for _, k := range prevKeys {
		if !containsKey(saveKeys, k) {
			if err := i.remove(db, k, pk); err != nil {
				return err
			}
		}
	}
	for _, k := range saveKeys {
		if !containsKey(prevKeys, k) {
			if err := i.insert(db, k, pk); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsKey(keys [][]byte, k []byte) bool {
	for _, x := range keys {
		if bytes.Equal(x, k) {
			return true
		}
	}
	return false
}

func (i compactIndex) insert(db ledger.KVStore, key []byte, pk []byte) error {
	dbKey := i.indexKey(key)
	cur, err := db.Get(dbKey)
	if err != nil {
		return err
	}
	if i.unique {
		if cur != nil {
			return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, key)
		}
		return db.Set(dbKey, pk)
	}

	var refs MultiRef
	if cur != nil {
		if err := refs.Unmarshal(cur); err != nil {
			return err
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(dbKey, raw)
}

func (i compactIndex) remove(db ledger.KVStore, key []byte, pk []byte) error {
	dbKey := i.indexKey(key)
	cur, err := db.Get(dbKey)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s: %X", i.name, key)
	}
	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrInvalidState, "index %s references another key", i.name)
		}
		return db.Delete(dbKey)
	}

	var refs MultiRef
	if err := refs.Unmarshal(cur); err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(dbKey)
	}
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(dbKey, raw)
}

// Keys returns a list of all entity keys that were indexed under given value.
func (i compactIndex) Keys(db ledger.ReadOnlyKVStore, index []byte) ledger.Iterator {
	val, err := db.Get(i.indexKey(index))
	if err != nil {
		return &failedIterator{err: err}
	}
	if val == nil {
		return &failedIterator{err: errors.ErrIteratorDone}
	}
	if i.unique {
		return &keysIterator{keys: [][]byte{val}}
	}
	var data MultiRef
	if err := data.Unmarshal(val); err != nil {
		return &failedIterator{err: err}
	}
	return &keysIterator{keys: data.GetRefs()}
}

// Query handles queries from the QueryRouter
func (i compactIndex) Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error) {
	switch mod {
	case ledger.KeyQueryMod:
		refs, err := consumeIteratorKeys(i.Keys(db, data))
		if err != nil {
			return nil, err
		}
		return i.loadRefs(db, refs)
	case ledger.PrefixQueryMod:
		entries, err := queryPrefix(db, i.indexKey(data))
		if err != nil {
			return nil, err
		}
		var refs [][]byte
		for _, e := range entries {
			if i.unique {
				refs = append(refs, e.Value)
				continue
			}
			var m MultiRef
			if err := m.Unmarshal(e.Value); err != nil {
				return nil, err
			}
			refs = append(refs, m.Refs...)
		}
		return i.loadRefs(db, refs)
	default:
		return nil, errors.Wrapf(errors.ErrHuman, "not implemented: %s", mod)
	}
}

func (i compactIndex) loadRefs(db ledger.ReadOnlyKVStore, refs [][]byte) ([]ledger.Model, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	res := make([]ledger.Model, len(refs))
	for j, ref := range refs {
		key := i.refKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[j] = ledger.Pair(key, value)
	}
	return res, nil
}

type failedIterator struct {
	err error
}

var _ ledger.Iterator = (*failedIterator)(nil)

func (it *failedIterator) Next() ([]byte, []byte, error) {
	return nil, nil, it.err
}

func (failedIterator) Release() {}

type keysIterator struct {
	keys [][]byte
}

var _ ledger.Iterator = (*keysIterator)(nil)

func (it *keysIterator) Next() ([]byte, []byte, error) {
	if len(it.keys) == 0 {
		return nil, nil, errors.ErrIteratorDone
	}
	key := it.keys[0]
	it.keys = it.keys[1:]
	return key, nil, nil
}

func (keysIterator) Release() {}

// consumeIteratorKeys returns all keys of given iterator and releases it.
// Use only when the result is known to be small.
func consumeIteratorKeys(it ledger.Iterator) ([][]byte, error) {
	defer it.Release()

	var keys [][]byte
	for {
		switch k, _, err := it.Next(); {
		case err == nil:
			keys = append(keys, k)
		case errors.ErrIteratorDone.Is(err):
			return keys, nil
		default:
			return keys, err
		}
	}
}
