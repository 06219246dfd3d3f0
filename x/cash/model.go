package cash

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

var walletDiscriminator = ledger.AccountDiscriminator("Wallet")

// Wallet holds the native currency balance of a single address.
type Wallet struct {
	Balance uint64
}

var _ orm.Model = (*Wallet)(nil)

func (w *Wallet) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(walletDiscriminator, w)
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(walletDiscriminator, raw, w)
}

func (w *Wallet) Validate() error {
	return nil
}

func (w *Wallet) Copy() orm.Model {
	return &Wallet{Balance: w.Balance}
}

// NewBucket returns a bucket of wallets keyed by the owner address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}

// RegisterQuery will register this bucket as "/wallets"
func RegisterQuery(qr ledger.QueryRouter) {
	NewBucket().Register("wallets", qr)
}
