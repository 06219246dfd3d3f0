package orm

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestBucketNames(t *testing.T) {
	assert.Panics(t, func() { NewBucket("Upper", NewSimpleObj(nil, &Counter{})) })
	assert.Panics(t, func() { NewBucket("a1", NewSimpleObj(nil, &Counter{})) })

	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{}))
	assert.Equal(t, []byte("cnts:abc"), b.DBKey([]byte("abc")))

	// Two keys built from one bucket must not share memory.
	k1 := b.DBKey([]byte("ABC"))
	k2 := b.DBKey([]byte("LED"))
	assert.Equal(t, []byte("cnts:ABC"), k1)
	assert.Equal(t, []byte("cnts:LED"), k2)
}

func TestBucketSaveGetDelete(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{}))

	obj, err := b.Get(db, []byte("missing"))
	assert.Nil(t, err)
	assert.Nil(t, obj)

	err = b.Save(db, NewSimpleObj(nil, &Counter{Count: 1}))
	assert.FieldError(t, err, "Key", errors.ErrEmpty)
	err = b.Save(db, NewSimpleObj([]byte("a"), &Counter{Count: -1}))
	assert.FieldError(t, err, "Value", errors.ErrInvalidState)

	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("a"), &Counter{Count: 7})))
	obj, err = b.Get(db, []byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("a"), obj.Key())
	assert.Equal(t, int64(7), obj.Value().(*Counter).Count)

	ok, err := b.Has(db, []byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	assert.Nil(t, b.Delete(db, []byte("a")))
	obj, err = b.Get(db, []byte("a"))
	assert.Nil(t, err)
	assert.Nil(t, obj)
}

func TestBucketIndexes(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{})).
		WithIndex("count", countKey, true).
		WithIndex("owner", ownerKey, false)

	assert.Panics(t, func() { b.WithIndex("count", countKey, false) })

	alice, bob := []byte("alice"), []byte("bob")
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("a"), &Counter{Count: 1, Owner: alice})))
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("b"), &Counter{Count: 2, Owner: alice})))
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("c"), &Counter{Count: 3, Owner: bob})))

	err := b.Save(db, NewSimpleObj([]byte("d"), &Counter{Count: 3}))
	assert.IsErr(t, errors.ErrDuplicate, err)

	objs, err := b.GetIndexed(db, "owner", alice)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(objs))
	assert.Equal(t, []byte("a"), objs[0].Key())
	assert.Equal(t, []byte("b"), objs[1].Key())

	objs, err = b.GetIndexed(db, "count", encodeCount(3))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(objs))
	assert.Equal(t, []byte("c"), objs[0].Key())

	// Moving an object between index values updates both entries.
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("b"), &Counter{Count: 4, Owner: bob})))
	objs, err = b.GetIndexed(db, "owner", alice)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(objs))
	objs, err = b.GetIndexed(db, "count", encodeCount(2))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(objs))

	assert.Nil(t, b.Delete(db, []byte("a")))
	objs, err = b.GetIndexed(db, "owner", alice)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(objs))

	_, err = b.GetIndexed(db, "unknown", alice)
	assert.IsErr(t, ErrInvalidIndex, err)
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{})).
		WithIndex("owner", ownerKey, false)
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("a1"), &Counter{Count: 1, Owner: []byte("x")})))
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("a2"), &Counter{Count: 2, Owner: []byte("x")})))
	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("b1"), &Counter{Count: 3, Owner: []byte("y")})))

	qr := ledger.NewQueryRouter()
	b.Register("counters", qr)

	cases := map[string]struct {
		path     string
		data     []byte
		wantKeys [][]byte
		wantErr  *errors.Error
	}{
		"by key": {
			path:     "/counters",
			data:     []byte("a2"),
			wantKeys: [][]byte{[]byte("cnts:a2")},
		},
		"missing key": {
			path: "/counters",
			data: []byte("zz"),
		},
		"by prefix": {
			path:     "/counters?prefix",
			data:     []byte("a"),
			wantKeys: [][]byte{[]byte("cnts:a1"), []byte("cnts:a2")},
		},
		"by index": {
			path:     "/counters/owner",
			data:     []byte("x"),
			wantKeys: [][]byte{[]byte("cnts:a1"), []byte("cnts:a2")},
		},
		"unknown path": {
			path:    "/nope",
			wantErr: errors.ErrNotFound,
		},
		"unknown mod": {
			path:    "/counters?range",
			wantErr: errors.ErrHuman,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res, err := qr.Query(db, tc.path, tc.data)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, len(tc.wantKeys), len(res))
			for i, m := range res {
				assert.Equal(t, tc.wantKeys[i], m.Key)
			}
		})
	}
}

func TestPrefixRange(t *testing.T) {
	cases := map[string]struct {
		prefix     []byte
		start, end []byte
	}{
		"nil":      {nil, nil, nil},
		"simple":   {[]byte("abc"), []byte("abc"), []byte("abd")},
		"overflow": {[]byte{1, 255}, []byte{1, 255}, []byte{2, 0}},
		"all ff":   {[]byte{255, 255}, []byte{255, 255}, nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			start, end := prefixRange(tc.prefix)
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
		})
	}
}
