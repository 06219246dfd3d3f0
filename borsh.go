package ledger

import (
	"bytes"
	"crypto/sha256"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/ledger/errors"
)

// Discriminator is the eight byte type prefix of every stored account and
// every instruction message.
type Discriminator [8]byte

// AccountDiscriminator returns the type prefix of an account (stored model)
// with the given name.
func AccountDiscriminator(name string) Discriminator {
	return discriminator("account:" + name)
}

// InstructionDiscriminator returns the type prefix of an instruction
// (message) with the given name.
func InstructionDiscriminator(name string) Discriminator {
	return discriminator("global:" + name)
}

func discriminator(preimage string) Discriminator {
	hash := sha256.Sum256([]byte(preimage))
	var out Discriminator
	copy(out[:], hash[:8])
	return out
}

// MarshalBorsh serializes given value with the borsh encoding, prefixed
// with the discriminator.
func MarshalBorsh(d Discriminator, v interface{}) ([]byte, error) {
	body, err := bin.MarshalBorsh(v)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "borsh encode %T: %s", v, err)
	}
	out := make([]byte, 0, len(d)+len(body))
	out = append(out, d[:]...)
	return append(out, body...), nil
}

// UnmarshalBorsh checks the discriminator prefix of raw and decodes the
// remaining borsh encoded body into given destination.
func UnmarshalBorsh(d Discriminator, raw []byte, dest interface{}) error {
	if len(raw) < len(d) {
		return errors.Wrap(errors.ErrInvalidInput, "data shorter than discriminator")
	}
	if !bytes.Equal(raw[:len(d)], d[:]) {
		return errors.Wrapf(errors.ErrInvalidType, "discriminator mismatch for %T", dest)
	}
	if err := bin.UnmarshalBorsh(dest, raw[len(d):]); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "borsh decode %T: %s", dest, err)
	}
	return nil
}
