package orm

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	assert.Nil(t, b.Put(db, []byte("c1"), &Counter{Count: 1}))

	var c1 Counter
	assert.Nil(t, b.One(db, []byte("c1"), &c1))
	assert.Equal(t, int64(1), c1.Count)
	assert.Nil(t, b.Has(db, []byte("c1")))

	assert.Nil(t, b.Delete(db, []byte("c1")))
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, []byte("unknown")))
	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("c1"), &c1))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, nil))
}

func TestModelBucketPutWrongModel(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	err := b.Put(db, []byte("a"), &MultiRef{Refs: [][]byte{[]byte("x")}})
	assert.IsErr(t, errors.ErrInvalidType, err)

	err = b.Put(db, []byte("a"), &Counter{Count: -4})
	assert.IsErr(t, errors.ErrInvalidState, err)
}

func TestModelBucketByIndex(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{},
		WithIndex("owner", ownerKey, false),
	)
	assert.Nil(t, b.Put(db, []byte("c1"), &Counter{Count: 1, Owner: []byte("x")}))
	assert.Nil(t, b.Put(db, []byte("c2"), &Counter{Count: 2, Owner: []byte("x")}))
	assert.Nil(t, b.Put(db, []byte("c3"), &Counter{Count: 3, Owner: []byte("y")}))

	var values []Counter
	keys, err := b.ByIndex(db, "owner", []byte("x"), &values)
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("c1"), []byte("c2")}, keys)
	assert.Equal(t, 2, len(values))
	assert.Equal(t, int64(2), values[1].Count)

	var ptrs []*Counter
	keys, err = b.ByIndex(db, "owner", []byte("y"), &ptrs)
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("c3")}, keys)
	assert.Equal(t, int64(3), ptrs[0].Count)

	var none []Counter
	keys, err = b.ByIndex(db, "owner", []byte("z"), &none)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))

	var wrong []MultiRef
	_, err = b.ByIndex(db, "owner", []byte("x"), &wrong)
	assert.IsErr(t, errors.ErrInvalidType, err)
	_, err = b.ByIndex(db, "owner", []byte("x"), values)
	assert.IsErr(t, errors.ErrInvalidType, err)
	_, err = b.ByIndex(db, "missing", []byte("x"), &values)
	assert.IsErr(t, ErrInvalidIndex, err)
}
