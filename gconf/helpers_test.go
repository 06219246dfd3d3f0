package gconf

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var myconfigDiscriminator = ledger.AccountDiscriminator("MyConfig")

type myconfig struct {
	Owner []byte
	Num   int64
	Str   string
}

func (c *myconfig) GetOwner() ledger.Address {
	return c.Owner
}

func (c *myconfig) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(myconfigDiscriminator, c)
}

func (c *myconfig) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(myconfigDiscriminator, raw, c)
}

func (c *myconfig) Validate() error {
	if c.Num < 0 {
		return errors.Field("Num", errors.ErrInvalidInput, "must not be negative")
	}
	return nil
}

type myconfigMsg struct {
	Patch *myconfig
}

var _ ledger.Msg = (*myconfigMsg)(nil)

func (*myconfigMsg) Path() string {
	return "gconf/myconfig"
}

func (m *myconfigMsg) Validate() error {
	if m.Patch == nil {
		return nil
	}
	return m.Patch.Validate()
}

func (*myconfigMsg) Marshal() ([]byte, error) {
	panic("not implemented")
}

func (*myconfigMsg) Unmarshal([]byte) error {
	panic("not implemented")
}
