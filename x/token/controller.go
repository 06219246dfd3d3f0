package token

import (
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/cash"
)

// Controller is the token functionality other extensions build upon.
type Controller interface {
	// TransferChecked moves amount of mint from one account to
	// another. The owner of the source account must be authenticated.
	// Declared mint and decimals must match the accounts and the
	// stored mint.
	TransferChecked(ctx ledger.Context, db ledger.KVStore, from, to ledger.Address, mint string, amount uint64, decimals uint8) error

	// CreateAssociatedAccount creates the canonical account of owner for
	// given mint. The payer must be authenticated and pays the storage
	// deposit.
	CreateAssociatedAccount(ctx ledger.Context, db ledger.KVStore, payer, owner ledger.Address, mint string) (ledger.Address, error)

	// GetOrCreateAssociatedAccount returns the canonical account of
	// owner for given mint, creating it if it does not exist yet.
	GetOrCreateAssociatedAccount(ctx ledger.Context, db ledger.KVStore, payer, owner ledger.Address, mint string) (ledger.Address, error)

	// CloseAccount removes an empty account and returns its storage
	// deposit to the destination. The account owner must be
	// authenticated.
	CloseAccount(ctx ledger.Context, db ledger.KVStore, account, destination ledger.Address) error

	// MintTo issues new tokens into given account.
	MintTo(db ledger.KVStore, account ledger.Address, amount uint64) error

	// Account returns the token account stored under given address.
	Account(db ledger.ReadOnlyKVStore, account ledger.Address) (*TokenAccount, error)

	// Mint returns the mint with given ticker.
	Mint(db ledger.ReadOnlyKVStore, ticker string) (*Mint, error)
}

// BaseController is the default implementation of Controller.
type BaseController struct {
	auth     x.Authenticator
	cash     cash.Controller
	mints    orm.ModelBucket
	accounts orm.ModelBucket
}

var _ Controller = (*BaseController)(nil)

// NewController returns a controller that authenticates owners with given
// authenticator and pays storage deposits with given cash controller.
func NewController(auth x.Authenticator, ctrl cash.Controller) *BaseController {
	return &BaseController{
		auth:     auth,
		cash:     ctrl,
		mints:    NewMintBucket(),
		accounts: NewAccountBucket(),
	}
}

func (c *BaseController) Mint(db ledger.ReadOnlyKVStore, ticker string) (*Mint, error) {
	var m Mint
	if err := c.mints.One(db, []byte(ticker), &m); err != nil {
		return nil, errors.Wrapf(err, "mint %q", ticker)
	}
	return &m, nil
}

func (c *BaseController) Account(db ledger.ReadOnlyKVStore, account ledger.Address) (*TokenAccount, error) {
	var acc TokenAccount
	if err := c.accounts.One(db, account, &acc); err != nil {
		return nil, errors.Wrapf(err, "token account %s", account)
	}
	return &acc, nil
}

// CreateMint stores a new mint. It fails if a mint with the same ticker
// exists.
func (c *BaseController) CreateMint(db ledger.KVStore, m *Mint) error {
	switch err := c.mints.Has(db, []byte(m.Ticker)); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "mint %q", m.Ticker)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	return c.mints.Put(db, []byte(m.Ticker), m)
}

func (c *BaseController) TransferChecked(
	ctx ledger.Context,
	db ledger.KVStore,
	from, to ledger.Address,
	mint string,
	amount uint64,
	decimals uint8,
) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "zero value")
	}
	src, err := c.Account(db, from)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dst, err := c.Account(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Mint != mint {
		return errors.Wrapf(errors.ErrInvalidState, "source holds %s, not %s", src.Mint, mint)
	}
	if dst.Mint != mint {
		return errors.Wrapf(errors.ErrInvalidState, "destination holds %s, not %s", dst.Mint, mint)
	}
	m, err := c.Mint(db, mint)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return errors.Wrapf(errors.ErrInvalidInput, "%s has %d decimals, not %d", mint, m.Decimals, decimals)
	}
	if !c.auth.HasAddress(ctx, src.Owner) {
		return errors.Wrap(errors.ErrUnauthorized, "source owner signature missing")
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "have %d, want %d", src.Amount, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := c.accounts.Put(db, from, src); err != nil {
		return errors.Wrap(err, "save source")
	}
	if err := c.accounts.Put(db, to, dst); err != nil {
		return errors.Wrap(err, "save destination")
	}
	ledger.GetLogger(ctx).Debug("token transfer",
		"mint", mint, "amount", amount, "from", from.String(), "to", to.String())
	return nil
}

func (c *BaseController) CreateAssociatedAccount(ctx ledger.Context, db ledger.KVStore, payer, owner ledger.Address, mint string) (ledger.Address, error) {
	addr, err := AssociatedAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	switch err := c.accounts.Has(db, addr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if _, err := c.Mint(db, mint); err != nil {
		return nil, err
	}
	if !c.auth.HasAddress(ctx, payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}

	acc := &TokenAccount{Mint: mint, Owner: owner}
	if err := c.deposit(db, payer, addr, acc); err != nil {
		return nil, err
	}
	if err := c.accounts.Put(db, addr, acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return addr, nil
}

// deposit moves the storage deposit of the account from the payer to the
// account address.
func (c *BaseController) deposit(db ledger.KVStore, payer, addr ledger.Address, acc *TokenAccount) error {
	raw, err := acc.Marshal()
	if err != nil {
		return err
	}
	rent, err := cash.RentExempt(db, len(raw))
	if err != nil {
		return err
	}
	if err := c.cash.MoveCoins(db, payer, addr, rent); err != nil {
		return errors.Wrap(err, "storage deposit")
	}
	return nil
}

func (c *BaseController) GetOrCreateAssociatedAccount(ctx ledger.Context, db ledger.KVStore, payer, owner ledger.Address, mint string) (ledger.Address, error) {
	addr, err := AssociatedAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	switch err := c.accounts.Has(db, addr); {
	case err == nil:
		return addr, nil
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	return c.CreateAssociatedAccount(ctx, db, payer, owner, mint)
}

func (c *BaseController) CloseAccount(ctx ledger.Context, db ledger.KVStore, account, destination ledger.Address) error {
	acc, err := c.Account(db, account)
	if err != nil {
		return err
	}
	if !c.auth.HasAddress(ctx, acc.Owner) {
		return errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	if acc.Amount != 0 {
		return errors.Wrapf(errors.ErrInvalidState, "account holds %d %s", acc.Amount, acc.Mint)
	}
	if err := c.accounts.Delete(db, account); err != nil {
		return errors.Wrap(err, "delete account")
	}
	if _, err := c.cash.Drain(db, account, destination); err != nil {
		return errors.Wrap(err, "return storage deposit")
	}
	return nil
}

func (c *BaseController) MintTo(db ledger.KVStore, account ledger.Address, amount uint64) error {
	acc, err := c.Account(db, account)
	if err != nil {
		return err
	}
	m, err := c.Mint(db, acc.Mint)
	if err != nil {
		return err
	}
	if m.Supply > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "supply")
	}
	m.Supply += amount
	acc.Amount += amount
	if err := c.mints.Put(db, []byte(m.Ticker), m); err != nil {
		return errors.Wrap(err, "save mint")
	}
	if err := c.accounts.Put(db, account, acc); err != nil {
		return errors.Wrap(err, "save account")
	}
	return nil
}

// Balance returns the amount of mint held in the associated account of
// owner. Zero is returned when the account does not exist.
func Balance(db ledger.ReadOnlyKVStore, ctrl Controller, owner ledger.Address, mint string) (uint64, error) {
	addr, err := AssociatedAddress(owner, mint)
	if err != nil {
		return 0, err
	}
	switch acc, err := ctrl.Account(db, addr); {
	case err == nil:
		return acc.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// AccountsOf returns the addresses and content of all token accounts owned
// by given address.
func AccountsOf(db ledger.ReadOnlyKVStore, owner ledger.Address) ([][]byte, []TokenAccount, error) {
	var accounts []TokenAccount
	keys, err := NewAccountBucket().ByIndex(db, ownerIndexName, owner, &accounts)
	if err != nil {
		return nil, nil, err
	}
	return keys, accounts, nil
}
