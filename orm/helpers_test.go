package orm

import (
	"encoding/binary"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var counterDiscriminator = ledger.AccountDiscriminator("Counter")

// Counter is a minimal model used by the tests.
type Counter struct {
	Count int64
	Owner []byte
}

var _ Model = (*Counter)(nil)

func (c *Counter) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(counterDiscriminator, c)
}

func (c *Counter) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(counterDiscriminator, raw, c)
}

func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInvalidState, "negative counter")
	}
	return nil
}

func (c *Counter) Copy() Model {
	return &Counter{Count: c.Count, Owner: append([]byte(nil), c.Owner...)}
}

func countKey(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*Counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", obj.Value())
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(c.Count))
	return b, nil
}

func ownerKey(obj Object) ([]byte, error) {
	c, ok := obj.Value().(*Counter)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", obj.Value())
	}
	if len(c.Owner) == 0 {
		return nil, nil
	}
	return c.Owner, nil
}

func encodeCount(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}
