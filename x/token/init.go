package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
)

// GenesisMint declares a mint in the genesis file.
type GenesisMint struct {
	Ticker   string `json:"ticker"`
	Decimals uint8  `json:"decimals"`
}

// GenesisAccount declares a funded associated account in the genesis file.
type GenesisAccount struct {
	Owner  ledger.Address `json:"owner"`
	Mint   string         `json:"mint"`
	Amount uint64         `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file. It requires the cash configuration to be loaded first.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

// FromGenesis creates all declared mints and accounts. Storage deposits of
// genesis accounts are issued, not paid.
func (Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	var mints []GenesisMint
	if err := opts.ReadOptions("mints", &mints); err != nil {
		return err
	}
	var accounts []GenesisAccount
	if err := opts.ReadOptions("token_accounts", &accounts); err != nil {
		return err
	}

	cashCtrl := cash.NewController(cash.NewBucket())
	ctrl := NewController(nil, cashCtrl)
	for i, m := range mints {
		if err := ctrl.CreateMint(db, &Mint{Ticker: m.Ticker, Decimals: m.Decimals}); err != nil {
			return errors.Wrapf(err, "mint %d", i)
		}
	}
	for i, a := range accounts {
		addr, err := AssociatedAddress(a.Owner, a.Mint)
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if _, err := ctrl.Mint(db, a.Mint); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.accounts.Has(db, addr); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "account %d", i)
		}
		acc := &TokenAccount{Mint: a.Mint, Owner: a.Owner}
		raw, err := acc.Marshal()
		if err != nil {
			return err
		}
		rent, err := cash.RentExempt(db, len(raw))
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := cashCtrl.IssueCoins(db, addr, rent); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.accounts.Put(db, addr, acc); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := ctrl.MintTo(db, addr, a.Amount); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
