package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/token"
)

const (
	bucketName     = "offer"
	makerIndexName = "offermaker"
)

var offerDiscriminator = ledger.AccountDiscriminator("Offer")

// Offer is the persistent record of a single open trade. It is stored
// under its derived authority address.
type Offer struct {
	ID                 uint64
	Maker              ledger.Address
	TokenMintA         string
	TokenMintB         string
	TokenBAmountWanted uint64
	// Bump is the derivation salt of the offer address.
	Bump uint8
}

var _ orm.Model = (*Offer)(nil)

func (o *Offer) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(offerDiscriminator, o)
}

func (o *Offer) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(offerDiscriminator, raw, o)
}

func (o *Offer) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Maker", o.Maker.Validate(), "maker address"))
	if !token.IsValidTicker(o.TokenMintA) {
		errs = errors.Append(errs, errors.Field("TokenMintA", errors.ErrInvalidInput, "invalid ticker"))
	}
	if !token.IsValidTicker(o.TokenMintB) {
		errs = errors.Append(errs, errors.Field("TokenMintB", errors.ErrInvalidInput, "invalid ticker"))
	}
	if o.TokenBAmountWanted == 0 {
		errs = errors.Append(errs, errors.Field("TokenBAmountWanted", errors.ErrInvalidAmount, "must be positive"))
	}
	return errs
}

func (o *Offer) Copy() orm.Model {
	cpy := *o
	cpy.Maker = append(ledger.Address(nil), o.Maker...)
	return &cpy
}

// NewBucket returns a bucket of offers keyed by the offer address and
// indexed by maker.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(bucketName, &Offer{},
		orm.WithIndex(makerIndexName, offerMaker, false),
	)
}

func offerMaker(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	o, ok := obj.Value().(*Offer)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", obj.Value())
	}
	return o.Maker, nil
}
