package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// resultsTag is the protobuf key of the repeated bytes field 1.
const resultsTag = 1<<3 | proto.WireBytes

// ResultSet is the query result envelope. It is encoded as a protobuf
// message with a single repeated bytes field.
type ResultSet struct {
	Results [][]byte
}

// Marshal encodes the result set in protobuf wire format.
func (r *ResultSet) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	for _, res := range r.Results {
		if err := buf.EncodeVarint(resultsTag); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		if err := buf.EncodeRawBytes(res); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a result set encoded by Marshal.
func (r *ResultSet) Unmarshal(raw []byte) error {
	var results [][]byte
	for len(raw) > 0 {
		tag, n := proto.DecodeVarint(raw)
		if n == 0 || tag != resultsTag {
			return errors.Wrap(errors.ErrInvalidInput, "malformed result set")
		}
		raw = raw[n:]
		size, n := proto.DecodeVarint(raw)
		if n == 0 || uint64(len(raw)-n) < size {
			return errors.Wrap(errors.ErrInvalidInput, "truncated result set")
		}
		results = append(results, append([]byte{}, raw[n:n+int(size)]...))
		raw = raw[n+int(size):]
	}
	r.Results = results
	return nil
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []ledger.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []ledger.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]ledger.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrInvalidState, "mismatched result set size")
	}
	mods := make([]ledger.Model, len(kref))
	for i := range mods {
		mods[i] = ledger.Pair(kref[i], vref[i])
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(raw []byte, o ledger.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(raw); err != nil {
		return err
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
