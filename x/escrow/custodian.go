package escrow

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

var offerSeed = []byte("offer")

// offerKeyLength is the size of an offer program address.
const offerKeyLength = 32

func offerSeeds(maker ledger.Address, id uint64) [][]byte {
	le := make([]byte, 8)
	binary.LittleEndian.PutUint64(le, id)
	return [][]byte{
		append([]byte(nil), offerSeed...),
		append([]byte(nil), maker...),
		le,
	}
}

// DeriveAuthority finds the program address of the offer with given id
// created by maker, together with its bump.
func DeriveAuthority(programID solana.PublicKey, maker ledger.Address, id uint64) (solana.PublicKey, uint8, error) {
	if err := maker.Validate(); err != nil {
		return solana.PublicKey{}, 0, errors.Wrap(err, "maker")
	}
	pda, bump, err := solana.FindProgramAddress(offerSeeds(maker, id), programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrapf(errors.ErrDerivation, "offer %d: %s", id, err)
	}
	return pda, bump, nil
}

// VerifyAuthority recomputes the offer address from its seeds and the
// stored bump.
func VerifyAuthority(programID solana.PublicKey, maker ledger.Address, id uint64, bump uint8) (solana.PublicKey, error) {
	seeds := append(offerSeeds(maker, id), []byte{bump})
	pda, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(errors.ErrDerivation, "offer %d: %s", id, err)
	}
	return pda, nil
}

// AuthorityCondition is the condition under which the offer with given
// program address acts. Only this package can authorize it.
func AuthorityCondition(pda solana.PublicKey) ledger.Condition {
	return ledger.NewCondition("escrow", "offer", pda.Bytes())
}

// AuthorityAddress is the ledger address of the offer. It owns the vault
// and holds the storage deposit of the offer record.
func AuthorityAddress(pda solana.PublicKey) ledger.Address {
	return AuthorityCondition(pda).Address()
}

// VaultAddress returns the account holding the asset locked by the offer.
func VaultAddress(pda solana.PublicKey, mint string) (ledger.Address, error) {
	return token.AssociatedAddress(AuthorityAddress(pda), mint)
}

// Custodian moves assets out of offer vaults. Every transfer is signed by
// the offer authority, which is re-derived from the offer record first.
type Custodian struct {
	programID solana.PublicKey
	tokens    token.Controller
}

// NewCustodian returns a custodian for offers of given program.
func NewCustodian(programID solana.PublicKey, tokens token.Controller) *Custodian {
	return &Custodian{programID: programID, tokens: tokens}
}

// authority checks that vault is the vault of the offer and returns a
// context signed by the offer authority.
func (c *Custodian) authority(ctx ledger.Context, offer *Offer, vault ledger.Address) (ledger.Context, error) {
	pda, err := VerifyAuthority(c.programID, offer.Maker, offer.ID, offer.Bump)
	if err != nil {
		return nil, err
	}
	want, err := VaultAddress(pda, offer.TokenMintA)
	if err != nil {
		return nil, err
	}
	if !want.Equals(vault) {
		return nil, errors.Wrapf(errors.ErrDerivation, "vault %s does not belong to offer %d", vault, offer.ID)
	}
	return withAuthority(ctx, AuthorityCondition(pda)), nil
}

// AuthorizeTransfer moves amount of the offered asset from the vault to
// destination, signed by the offer authority.
func (c *Custodian) AuthorizeTransfer(ctx ledger.Context, db ledger.KVStore, offer *Offer, vault, destination ledger.Address, amount uint64) error {
	signed, err := c.authority(ctx, offer, vault)
	if err != nil {
		return err
	}
	mint, err := c.tokens.Mint(db, offer.TokenMintA)
	if err != nil {
		return err
	}
	return c.tokens.TransferChecked(signed, db, vault, destination, mint.Ticker, amount, mint.Decimals)
}

// Release moves the whole vault content to destination. The live vault
// balance is used, not the amount deposited when the offer was made.
func (c *Custodian) Release(ctx ledger.Context, db ledger.KVStore, offer *Offer, vault, destination ledger.Address) (uint64, error) {
	acc, err := c.tokens.Account(db, vault)
	if err != nil {
		return 0, errors.Wrap(err, "vault")
	}
	if acc.Amount == 0 {
		return 0, nil
	}
	if err := c.AuthorizeTransfer(ctx, db, offer, vault, destination, acc.Amount); err != nil {
		return 0, err
	}
	ledger.GetLogger(ctx).Debug("vault released",
		"offer", offer.ID, "amount", acc.Amount, "mint", offer.TokenMintA, "to", destination.String())
	return acc.Amount, nil
}

// CloseAndReclaim closes the drained vault and returns its storage
// deposit to rentDestination.
func (c *Custodian) CloseAndReclaim(ctx ledger.Context, db ledger.KVStore, offer *Offer, vault, rentDestination ledger.Address) error {
	signed, err := c.authority(ctx, offer, vault)
	if err != nil {
		return err
	}
	if err := c.tokens.CloseAccount(signed, db, vault, rentDestination); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return nil
}
