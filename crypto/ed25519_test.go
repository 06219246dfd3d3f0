package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("make_offer")
	msg2 := []byte("take_offer")

	sig, err := private.Sign(msg)
	assert.Nil(t, err)
	sig2, err := private.Sign(msg2)
	assert.Nil(t, err)

	if bytes.Equal(sig.Ed25519, sig2.Ed25519) {
		t.Fatal("different messages produce the same signature")
	}

	if !public.Verify(msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if !public.Verify(msg2, sig2) {
		t.Fatal("cannot verify a message signed with this public key")
	}

	if public.Verify(msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}
	if public.Verify(msg, &Signature{}) {
		t.Fatal("verified an empty signature of a message")
	}
	if public.Verify(msg, nil) {
		t.Fatal("verified a nil signature of a message")
	}
	other := GenPrivKeyEd25519().PublicKey()
	if other.Verify(msg, sig) {
		t.Fatal("verified a signature with a foreign key")
	}
}

func TestEd25519Address(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	pub2 := GenPrivKeyEd25519().PublicKey()

	assert.Nil(t, pub.Condition().Validate())
	assert.Nil(t, pub.Validate())
	if bytes.Equal(pub.Condition(), pub2.Condition()) {
		t.Fatal("two different keys share a condition")
	}
	assert.Nil(t, pub.Address().Validate())
	assert.Equal(t, pub.Condition().Address(), pub.Address())

	empty := PublicKey{}
	assert.Nil(t, empty.Condition())
	if err := empty.Validate(); err == nil {
		t.Fatal("empty key must not validate")
	}
}

func TestDeterministicKeys(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed)
	b := PrivKeyEd25519FromSeed(seed)
	assert.Equal(t, a.PublicKey(), b.PublicKey())
}

func TestDerivePrivKeyEd25519(t *testing.T) {
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	assert.Nil(t, err)

	first, err := DerivePrivKeyEd25519(seed, DefaultDerivationPath)
	assert.Nil(t, err)
	again, err := DerivePrivKeyEd25519(seed, DefaultDerivationPath)
	assert.Nil(t, err)
	assert.Equal(t, first.PublicKey(), again.PublicKey())

	other, err := DerivePrivKeyEd25519(seed, "m/44'/234'/1'")
	assert.Nil(t, err)
	if bytes.Equal(first.PublicKey().Ed25519, other.PublicKey().Ed25519) {
		t.Fatal("different paths derived the same key")
	}

	if _, err := DerivePrivKeyEd25519(seed, "not a path"); err == nil {
		t.Fatal("invalid path accepted")
	}
}
