package cash

import (
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// Controller is the functionality needed by cash.Handler.
// Extensions that need to move the native currency should depend on this
// interface.
type Controller interface {
	// Balance returns the amount held by given address. An address
	// without a wallet holds nothing.
	Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error)
	// MoveCoins moves the given amount from src to dest.
	MoveCoins(db ledger.KVStore, src, dest ledger.Address, amount uint64) error
	// IssueCoins adds the given amount to the destination wallet.
	IssueCoins(db ledger.KVStore, dest ledger.Address, amount uint64) error
	// Drain moves the whole balance from src to dest and removes the
	// src wallet. Moved amount is returned.
	Drain(db ledger.KVStore, src, dest ledger.Address) (uint64, error)
}

// BaseController is the default implementation of Controller.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket orm.ModelBucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return w.Balance, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, errors.Wrap(err, "load wallet")
	}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db ledger.KVStore, src, dest ledger.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "zero value")
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInvalidInput, "source and destination are the same")
	}

	var sender Wallet
	switch err := c.bucket.One(db, src, &sender); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	default:
		return errors.Wrap(err, "load sender")
	}
	if sender.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "have %d, want %d", sender.Balance, amount)
	}

	if err := c.IssueCoins(db, dest, amount); err != nil {
		return errors.Wrap(err, "credit recipient")
	}
	sender.Balance -= amount
	if err := c.bucket.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db ledger.KVStore, dest ledger.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	balance, err := c.Balance(db, dest)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "balance %d plus %d", balance, amount)
	}
	return c.bucket.Put(db, dest, &Wallet{Balance: balance + amount})
}

func (c BaseController) Drain(db ledger.KVStore, src, dest ledger.Address) (uint64, error) {
	balance, err := c.Balance(db, src)
	if err != nil {
		return 0, err
	}
	if balance == 0 {
		return 0, nil
	}
	if err := c.MoveCoins(db, src, dest, balance); err != nil {
		return 0, err
	}
	if err := c.bucket.Delete(db, src); err != nil {
		return 0, errors.Wrap(err, "delete drained wallet")
	}
	return balance, nil
}
