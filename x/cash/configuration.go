package cash

import (
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

var configurationDiscriminator = ledger.AccountDiscriminator("CashConfiguration")

// Configuration declares the storage price of the ledger.
type Configuration struct {
	// Owner may update the configuration, optional.
	Owner ledger.Address `json:"owner"`
	// LamportsPerByte is the price of one byte of stored account data.
	LamportsPerByte uint64 `json:"lamports_per_byte"`
	// AccountOverhead is the number of bytes charged for every account
	// on top of its data.
	AccountOverhead uint64 `json:"account_overhead"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() ledger.Address {
	return c.Owner
}

func (c *Configuration) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(configurationDiscriminator, c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(configurationDiscriminator, raw, c)
}

func (c *Configuration) Validate() error {
	var errs error
	// owner field is optional
	if len(c.Owner) != 0 {
		errs = errors.Append(errs, errors.Field("Owner", c.Owner.Validate(), "owner address"))
	}
	if c.LamportsPerByte == 0 {
		errs = errors.Append(errs, errors.Field("LamportsPerByte", errors.ErrEmpty, "required"))
	}
	return errs
}

// LoadConfiguration returns the cash configuration stored in the database.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "cash", &conf); err != nil {
		return nil, errors.Wrap(err, "load cash configuration")
	}
	return &conf, nil
}

// RentExempt returns the deposit required to store an account holding size
// bytes of data.
func RentExempt(db gconf.ReadStore, size int) (uint64, error) {
	conf, err := LoadConfiguration(db)
	if err != nil {
		return 0, err
	}
	bytes := conf.AccountOverhead + uint64(size)
	if bytes > math.MaxUint64/conf.LamportsPerByte {
		return 0, errors.Wrap(errors.ErrOverflow, "rent exempt amount")
	}
	return bytes * conf.LamportsPerByte, nil
}
