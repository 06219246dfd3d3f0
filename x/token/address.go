package token

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// AssociatedAddress returns the address of the canonical account of given
// owner holding given mint.
//
// The derivation follows the associated token account program: a program
// address is found for the (owner, token program, mint) seeds and the
// result is wrapped into a condition, so that no private key can ever sign
// for it.
func AssociatedAddress(owner ledger.Address, mint string) (ledger.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if !IsValidTicker(mint) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "mint %q", mint)
	}
	seeds := [][]byte{
		append([]byte(nil), owner...),
		solana.TokenProgramID.Bytes(),
		[]byte(mint),
	}
	pda, _, err := solana.FindProgramAddress(seeds, solana.SPLAssociatedTokenAccountProgramID)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDerivation, "associated account: %s", err)
	}
	return ledger.NewCondition("token", "assoc", pda.Bytes()).Address(), nil
}
