package escrow

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/token"
	"github.com/iov-one/ledger/x/utils"
)

const (
	lamportsPerByte = 1
	accountOverhead = 128
	startingCash    = 100000
)

var programID = solana.MustPublicKeyFromBase58(DefaultProgramID)

// fixture is a store with the escrow program configured and two mints:
// AAA with 6 decimals and BBB with 2. Delivered transactions run in a
// savepoint, so a failed delivery leaves no trace.
type fixture struct {
	db      ledger.CacheableKVStore
	cash    cash.Controller
	tokens  *token.BaseController
	signers *ledgertest.Auth
	handler ledger.Handler
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := store.MemStore()
	assert.Nil(t, gconf.Save(db, "cash", &cash.Configuration{
		LamportsPerByte: lamportsPerByte,
		AccountOverhead: accountOverhead,
	}))
	assert.Nil(t, gconf.Save(db, packageName, &Configuration{ProgramID: DefaultProgramID}))

	signers := &ledgertest.Auth{}
	auth := x.ChainAuth(signers, Authenticate{})
	cashCtrl := cash.NewController(cash.NewBucket())
	tokens := token.NewController(auth, cashCtrl)
	assert.Nil(t, tokens.CreateMint(db, &token.Mint{Ticker: "AAA", Decimals: 6}))
	assert.Nil(t, tokens.CreateMint(db, &token.Mint{Ticker: "BBB", Decimals: 2}))

	rt := app.NewRouter()
	token.RegisterRoutes(rt, tokens)
	RegisterRoutes(rt, auth, tokens, cashCtrl)
	handler := app.ChainDecorators(
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(rt)

	return &fixture{
		db:      db,
		cash:    cashCtrl,
		tokens:  tokens,
		signers: signers,
		handler: handler,
	}
}

// user returns a fresh identity holding some cash for storage deposits.
func (f *fixture) user(t testing.TB) ledger.Condition {
	t.Helper()
	c := ledgertest.NewCondition()
	assert.Nil(t, f.cash.IssueCoins(f.db, c.Address(), startingCash))
	return c
}

// fund mints amount of mint into the associated account of owner,
// creating the account first if needed.
func (f *fixture) fund(t testing.TB, owner ledger.Condition, mint string, amount uint64) ledger.Address {
	t.Helper()
	f.signers.Signer = owner
	defer func() { f.signers.Signer = nil }()
	addr, err := f.tokens.GetOrCreateAssociatedAccount(context.Background(), f.db, owner.Address(), owner.Address(), mint)
	assert.Nil(t, err)
	if amount > 0 {
		assert.Nil(t, f.tokens.MintTo(f.db, addr, amount))
	}
	return addr
}

func (f *fixture) deliver(signer ledger.Condition, msg ledger.Msg) (*ledger.DeliverResult, error) {
	f.signers.Signer = signer
	defer func() { f.signers.Signer = nil }()
	return f.handler.Deliver(context.Background(), f.db, &ledgertest.Tx{Msg: msg})
}

func (f *fixture) check(signer ledger.Condition, msg ledger.Msg) error {
	f.signers.Signer = signer
	defer func() { f.signers.Signer = nil }()
	_, err := f.handler.Check(context.Background(), f.db.CacheWrap(), &ledgertest.Tx{Msg: msg})
	return err
}

// balance returns the amount of mint in the associated account of owner.
func (f *fixture) balance(t testing.TB, owner ledger.Address, mint string) uint64 {
	t.Helper()
	amount, err := token.Balance(f.db, f.tokens, owner, mint)
	assert.Nil(t, err)
	return amount
}

func (f *fixture) cashBalance(t testing.TB, addr ledger.Address) uint64 {
	t.Helper()
	b, err := f.cash.Balance(f.db, addr)
	assert.Nil(t, err)
	return b
}

// makeOffer creates an offer of maker and returns the stored record.
func (f *fixture) makeOffer(t testing.TB, maker ledger.Condition, id uint64, offered, wanted uint64) *Offer {
	t.Helper()
	msg, err := NewMakeOfferMsg(programID, maker.Address(), id, "AAA", "BBB", offered, wanted)
	assert.Nil(t, err)
	_, err = f.deliver(maker, msg)
	assert.Nil(t, err)
	offer, err := NewRegistry(programID, f.cash).Get(f.db, maker.Address(), id)
	assert.Nil(t, err)
	return offer
}

// vault returns the vault address of an offer.
func vault(t testing.TB, offer *Offer) ledger.Address {
	t.Helper()
	addr, err := VaultAddress(offerKey(t, offer), offer.TokenMintA)
	assert.Nil(t, err)
	return addr
}

func (f *fixture) offerExists(t testing.TB, maker ledger.Address, id uint64) bool {
	t.Helper()
	_, err := NewRegistry(programID, f.cash).Get(f.db, maker, id)
	if errors.ErrNotFound.Is(err) {
		return false
	}
	assert.Nil(t, err)
	return true
}

func offerKey(t testing.TB, offer *Offer) solana.PublicKey {
	t.Helper()
	pda, err := VerifyAuthority(programID, offer.Maker, offer.ID, offer.Bump)
	assert.Nil(t, err)
	return pda
}
