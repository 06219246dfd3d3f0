package token

import (
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

const (
	// MaxDecimals is the greatest supported decimal precision of a mint.
	MaxDecimals = 18

	mintBucketName    = "mint"
	accountBucketName = "tokenacc"
	ownerIndexName    = "tokenowner"
)

var (
	// IsValidTicker checks if the ticker of a mint is well formed.
	IsValidTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`).MatchString

	mintDiscriminator    = ledger.AccountDiscriminator("Mint")
	accountDiscriminator = ledger.AccountDiscriminator("TokenAccount")
)

// Mint declares a fungible asset.
type Mint struct {
	Ticker   string
	Decimals uint8
	Supply   uint64
}

var _ orm.Model = (*Mint)(nil)

func (m *Mint) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(mintDiscriminator, m)
}

func (m *Mint) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(mintDiscriminator, raw, m)
}

func (m *Mint) Validate() error {
	var errs error
	if !IsValidTicker(m.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrInvalidInput, "invalid ticker"))
	}
	if m.Decimals > MaxDecimals {
		errs = errors.Append(errs, errors.Field("Decimals", errors.ErrInvalidInput, "too many decimals"))
	}
	return errs
}

func (m *Mint) Copy() orm.Model {
	cpy := *m
	return &cpy
}

// TokenAccount holds a balance of a single mint for its owner.
type TokenAccount struct {
	Mint   string
	Owner  ledger.Address
	Amount uint64
}

var _ orm.Model = (*TokenAccount)(nil)

func (a *TokenAccount) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(accountDiscriminator, a)
}

func (a *TokenAccount) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(accountDiscriminator, raw, a)
}

func (a *TokenAccount) Validate() error {
	var errs error
	if !IsValidTicker(a.Mint) {
		errs = errors.Append(errs, errors.Field("Mint", errors.ErrInvalidInput, "invalid ticker"))
	}
	errs = errors.Append(errs, errors.Field("Owner", a.Owner.Validate(), "owner address"))
	return errs
}

func (a *TokenAccount) Copy() orm.Model {
	return &TokenAccount{
		Mint:   a.Mint,
		Owner:  append(ledger.Address(nil), a.Owner...),
		Amount: a.Amount,
	}
}

// NewMintBucket returns a bucket of mints keyed by ticker.
func NewMintBucket() orm.ModelBucket {
	return orm.NewModelBucket(mintBucketName, &Mint{})
}

// NewAccountBucket returns a bucket of token accounts keyed by the account
// address and indexed by owner.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket(accountBucketName, &TokenAccount{},
		orm.WithIndex(ownerIndexName, accountOwner, false),
	)
}

func accountOwner(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	acc, ok := obj.Value().(*TokenAccount)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", obj.Value())
	}
	return acc.Owner, nil
}

// RegisterQuery will register the buckets as "/mints" and "/tokens".
func RegisterQuery(qr ledger.QueryRouter) {
	NewMintBucket().Register("mints", qr)
	NewAccountBucket().Register("tokens", qr)
}
