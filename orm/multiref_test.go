package orm

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestMultiRef(t *testing.T) {
	m, err := NewMultiRef([]byte("c"), []byte("a"), []byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, m.Refs)

	assert.IsErr(t, errors.ErrDuplicate, m.Add([]byte("b")))
	assert.Nil(t, m.Remove([]byte("b")))
	assert.IsErr(t, errors.ErrNotFound, m.Remove([]byte("b")))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("c")}, m.Refs)

	raw, err := m.Marshal()
	assert.Nil(t, err)
	var loaded MultiRef
	assert.Nil(t, loaded.Unmarshal(raw))
	assert.Equal(t, m.Refs, loaded.Refs)

	cpy := m.Copy().(*MultiRef)
	assert.Nil(t, cpy.Remove([]byte("a")))
	assert.Equal(t, 2, len(m.Refs))

	assert.IsErr(t, errors.ErrEmpty, (&MultiRef{}).Validate())
	var nilRef *MultiRef
	assert.Nil(t, nilRef.GetRefs())
}

func TestMultiRefRejectsForeignData(t *testing.T) {
	raw, err := (&Counter{Count: 3}).Marshal()
	assert.Nil(t, err)
	var m MultiRef
	assert.IsErr(t, errors.ErrInvalidType, m.Unmarshal(raw))
}
