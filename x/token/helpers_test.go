package token

import (
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x/cash"
)

const (
	lamportsPerByte = 2
	accountOverhead = 128
)

// fixture is a store with two mints (AAA with 6 decimals and BBB with 2)
// and the cash configuration loaded.
type fixture struct {
	db   ledger.CacheableKVStore
	cash cash.Controller
	auth *ledgertest.Auth
	ctrl *BaseController
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	assert.Nil(t, gconf.Save(db, "cash", &cash.Configuration{
		LamportsPerByte: lamportsPerByte,
		AccountOverhead: accountOverhead,
	}))
	cashCtrl := cash.NewController(cash.NewBucket())
	auth := &ledgertest.Auth{}
	ctrl := NewController(auth, cashCtrl)
	assert.Nil(t, ctrl.CreateMint(db, &Mint{Ticker: "AAA", Decimals: 6}))
	assert.Nil(t, ctrl.CreateMint(db, &Mint{Ticker: "BBB", Decimals: 2}))
	return &fixture{db: db, cash: cashCtrl, auth: auth, ctrl: ctrl}
}

// fund creates the associated account of owner for mint, paid by owner,
// and mints amount into it.
func (f *fixture) fund(t testing.TB, owner ledger.Condition, mint string, amount uint64) ledger.Address {
	t.Helper()
	assert.Nil(t, f.cash.IssueCoins(f.db, owner.Address(), 10000))

	prev := f.auth.Signers
	f.auth.Signers = []ledger.Condition{owner}
	defer func() { f.auth.Signers = prev }()

	addr, err := f.ctrl.GetOrCreateAssociatedAccount(ledgerCtx(), f.db, owner.Address(), owner.Address(), mint)
	assert.Nil(t, err)
	if amount > 0 {
		assert.Nil(t, f.ctrl.MintTo(f.db, addr, amount))
	}
	return addr
}

func (f *fixture) amount(t testing.TB, addr ledger.Address) uint64 {
	t.Helper()
	acc, err := f.ctrl.Account(f.db, addr)
	assert.Nil(t, err)
	return acc.Amount
}

func (f *fixture) cashBalance(t testing.TB, addr ledger.Address) uint64 {
	t.Helper()
	b, err := f.cash.Balance(f.db, addr)
	assert.Nil(t, err)
	return b
}

func accountRent(t testing.TB, mint string, owner ledger.Address) uint64 {
	t.Helper()
	raw, err := (&TokenAccount{Mint: mint, Owner: owner}).Marshal()
	assert.Nil(t, err)
	return uint64(accountOverhead+len(raw)) * lamportsPerByte
}
