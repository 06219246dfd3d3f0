package crypto

import (
	"github.com/iov-one/ledger/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the bip44 path used for ledger keys.
const DefaultDerivationPath = "m/44'/234'/0'"

// DerivePrivKeyEd25519 derives a private key from a master seed following
// SLIP-0010 for the given hardened path, ie. "m/44'/234'/0'".
func DerivePrivKeyEd25519(seed []byte, path string) (*PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
