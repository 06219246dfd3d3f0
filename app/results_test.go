package app

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestResultSetEncoding(t *testing.T) {
	models := []ledger.Model{
		ledger.Pair([]byte("offer:1"), []byte("first")),
		ledger.Pair([]byte("offer:2"), []byte{}),
	}
	keys, err := ResultsFromKeys(models).Marshal()
	assert.Nil(t, err)
	values, err := ResultsFromValues(models).Marshal()
	assert.Nil(t, err)

	var k, v ResultSet
	assert.Nil(t, k.Unmarshal(keys))
	assert.Nil(t, v.Unmarshal(values))
	joined, err := JoinResults(&k, &v)
	assert.Nil(t, err)
	assert.Equal(t, models, joined)

	_, err = JoinResults(&k, &ResultSet{})
	assert.IsErr(t, errors.ErrInvalidState, err)

	var empty ResultSet
	assert.Nil(t, empty.Unmarshal(nil))
	assert.Equal(t, 0, len(empty.Results))
}

func TestResultSetMalformed(t *testing.T) {
	cases := map[string][]byte{
		"wrong field":     {0x12, 0x01, 'a'},
		"truncated value": {0x0a, 0x05, 'a'},
		"missing length":  {0x0a},
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var rs ResultSet
			assert.IsErr(t, errors.ErrInvalidInput, rs.Unmarshal(raw))
		})
	}
}
