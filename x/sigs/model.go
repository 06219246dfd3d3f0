package sigs

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

var userDataDiscriminator = ledger.AccountDiscriminator("UserData")

// UserData is the persistent state of a signer: its public key and the
// sequence the next signature must carry.
type UserData struct {
	Pubkey   []byte
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

func (u *UserData) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(userDataDiscriminator, u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(userDataDiscriminator, raw, u)
}

func (u *UserData) Validate() error {
	var errs error
	if seq := u.Sequence; seq < 0 {
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "negative"))
	} else if seq > 0 && len(u.Pubkey) == 0 {
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey"))
	}
	return errs
}

// Copy makes a new UserData with the same content
func (u *UserData) Copy() orm.Model {
	return &UserData{
		Pubkey:   append([]byte(nil), u.Pubkey...),
		Sequence: u.Sequence,
	}
}

// PublicKey returns the stored key, nil if not set yet.
func (u *UserData) PublicKey() *crypto.PublicKey {
	if len(u.Pubkey) == 0 {
		return nil
	}
	return &crypto.PublicKey{Ed25519: u.Pubkey}
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
// Before incrementing the sequence, this function is testing for a value
// overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}

	// Greatest value a javascript client can represent exactly.
	const maxSequenceValue = (1 << 53) - 1

	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// SetPubkey will try to set the Pubkey or panic on an illegal operation.
// It is illegal to reset an already set key
func (u *UserData) SetPubkey(pubkey *crypto.PublicKey) {
	if len(u.Pubkey) != 0 {
		panic("Cannot change pubkey for a user")
	}
	u.Pubkey = pubkey.Ed25519
}

// AsUser will safely type-cast any value from Bucket to a UserData
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser constructs an object from an address and pubkey
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	var key ledger.Address
	value := &UserData{}
	if pubkey != nil {
		key = pubkey.Address()
		value.Pubkey = pubkey.Ed25519
	}
	return orm.NewSimpleObj(key, value)
}

// Bucket extends orm.Bucket with GetOrCreate
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewUser(nil)),
	}
}

// GetOrCreate initializes a UserData if none exist for that key
func (b Bucket) GetOrCreate(db ledger.ReadOnlyKVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	if err == nil && obj == nil {
		obj = NewUser(pubkey)
	}
	return obj, err
}

// RegisterQuery will register this bucket as "/auth"
func RegisterQuery(qr ledger.QueryRouter) {
	NewBucket().Register("auth", qr)
}
