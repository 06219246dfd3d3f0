package ledgertest

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
)

// NewKey returns a fresh random ed25519 key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a fresh random key.
func NewCondition() ledger.Condition {
	return NewKey().PublicKey().Condition()
}

// SequenceID returns the 8 byte big endian encoding of n, the way orm
// sequences encode keys.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
