package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/cash"
)

// Registry stores offer records under their program address. Creating a
// record charges its storage deposit to the maker, closing it returns the
// deposit.
type Registry struct {
	programID solana.PublicKey
	bucket    orm.ModelBucket
	cash      cash.Controller
}

// NewRegistry returns a registry of offers of given program.
func NewRegistry(programID solana.PublicKey, ctrl cash.Controller) *Registry {
	return &Registry{
		programID: programID,
		bucket:    NewBucket(),
		cash:      ctrl,
	}
}

// Create stores a new offer. It fails with ErrDuplicate if the maker
// already has an open offer with the same id.
func (r *Registry) Create(db ledger.KVStore, maker ledger.Address, id uint64, mintA, mintB string, wanted uint64) (*Offer, solana.PublicKey, error) {
	pda, bump, err := DeriveAuthority(r.programID, maker, id)
	if err != nil {
		return nil, pda, err
	}
	switch err := r.bucket.Has(db, pda.Bytes()); {
	case err == nil:
		return nil, pda, errors.Wrapf(errors.ErrDuplicate, "offer %d of %s", id, maker)
	case !errors.ErrNotFound.Is(err):
		return nil, pda, err
	}

	offer := &Offer{
		ID:                 id,
		Maker:              maker,
		TokenMintA:         mintA,
		TokenMintB:         mintB,
		TokenBAmountWanted: wanted,
		Bump:               bump,
	}
	if err := offer.Validate(); err != nil {
		return nil, pda, err
	}
	raw, err := offer.Marshal()
	if err != nil {
		return nil, pda, err
	}
	rent, err := cash.RentExempt(db, len(raw))
	if err != nil {
		return nil, pda, err
	}
	if err := r.cash.MoveCoins(db, maker, AuthorityAddress(pda), rent); err != nil {
		return nil, pda, errors.Wrap(err, "offer storage deposit")
	}
	if err := r.bucket.Put(db, pda.Bytes(), offer); err != nil {
		return nil, pda, errors.Wrap(err, "save offer")
	}
	return offer, pda, nil
}

// GetByKey returns the offer stored under given program address.
func (r *Registry) GetByKey(db ledger.ReadOnlyKVStore, pda []byte) (*Offer, error) {
	var offer Offer
	if err := r.bucket.One(db, pda, &offer); err != nil {
		return nil, errors.Wrap(err, "offer")
	}
	return &offer, nil
}

// Get returns the offer with given id created by maker.
func (r *Registry) Get(db ledger.ReadOnlyKVStore, maker ledger.Address, id uint64) (*Offer, error) {
	pda, _, err := DeriveAuthority(r.programID, maker, id)
	if err != nil {
		return nil, err
	}
	return r.GetByKey(db, pda.Bytes())
}

// ListByMaker returns all open offers of given maker.
func (r *Registry) ListByMaker(db ledger.ReadOnlyKVStore, maker ledger.Address) ([]Offer, error) {
	var offers []Offer
	if _, err := r.bucket.ByIndex(db, makerIndexName, maker, &offers); err != nil {
		return nil, errors.Wrap(err, "offers by maker")
	}
	return offers, nil
}

// Close deletes the offer record and moves its storage deposit to
// rentDestination.
func (r *Registry) Close(db ledger.KVStore, offer *Offer, rentDestination ledger.Address) error {
	pda, err := VerifyAuthority(r.programID, offer.Maker, offer.ID, offer.Bump)
	if err != nil {
		return err
	}
	if err := r.bucket.Delete(db, pda.Bytes()); err != nil {
		return errors.Wrap(err, "delete offer")
	}
	if _, err := r.cash.Drain(db, AuthorityAddress(pda), rentDestination); err != nil {
		return errors.Wrap(err, "return offer deposit")
	}
	return nil
}
