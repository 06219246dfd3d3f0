package orm

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// queryPrefix returns all models whose key starts with given prefix.
func queryPrefix(db ledger.ReadOnlyKVStore, prefix []byte) ([]ledger.Model, error) {
	it, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []ledger.Model
	key, value, err := it.Next()
	for err == nil {
		res = append(res, ledger.Pair(key, value))
		key, value, err = it.Next()
	}
	if !errors.ErrIteratorDone.Is(err) {
		return nil, err
	}
	return res, nil
}

// prefixRange turns a prefix into (start, end) to create
// an iterator over every key with that prefix.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if prefix == nil {
		return nil, nil
	}
	start := append([]byte(nil), prefix...)
	end := append([]byte(nil), prefix...)
	l := len(end) - 1
	end[l]++

	// wrap until no overflow
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return start, end
}
