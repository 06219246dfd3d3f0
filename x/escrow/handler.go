package escrow

import (
	"bytes"
	"encoding/hex"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/token"
	"github.com/tendermint/tendermint/libs/common"
)

// OfferTagKey is the key of the tag carrying the offer address on every
// delivered escrow message.
const OfferTagKey = "offer"

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, tokens token.Controller, ctrl cash.Controller) {
	r.Handle(MakeOfferMsg{}.Path(), &makeOfferHandler{auth: auth, tokens: tokens, cash: ctrl})
	r.Handle(TakeOfferMsg{}.Path(), &takeOfferHandler{auth: auth, tokens: tokens, cash: ctrl})
	r.Handle(CancelOfferMsg{}.Path(), &cancelOfferHandler{auth: auth, tokens: tokens, cash: ctrl})
}

// RegisterQuery registers offer buckets for querying.
func RegisterQuery(qr ledger.QueryRouter) {
	NewBucket().Register("offers", qr)
}

type makeOfferHandler struct {
	auth   x.Authenticator
	tokens token.Controller
	cash   cash.Controller
}

var _ ledger.Handler = (*makeOfferHandler)(nil)

func (h *makeOfferHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *makeOfferHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, programID, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	registry := NewRegistry(programID, h.cash)
	offer, pda, err := registry.Create(db, msg.Maker, msg.ID, msg.TokenMintA, msg.TokenMintB, msg.TokenBWantedAmount)
	if err != nil {
		return nil, err
	}
	vault, err := h.tokens.CreateAssociatedAccount(ctx, db, msg.Maker, AuthorityAddress(pda), msg.TokenMintA)
	if err != nil {
		return nil, errors.Wrap(err, "vault")
	}
	mint, err := h.tokens.Mint(db, msg.TokenMintA)
	if err != nil {
		return nil, err
	}
	if err := h.tokens.TransferChecked(ctx, db, msg.MakerTokenAccountA, vault, mint.Ticker, msg.TokenAOfferedAmount, mint.Decimals); err != nil {
		return nil, errors.Wrap(err, "lock offered asset")
	}

	ledger.GetLogger(ctx).Info("offer made",
		"offer", offer.ID, "maker", msg.Maker.String(),
		"offered", msg.TokenAOfferedAmount, "mint_a", offer.TokenMintA,
		"wanted", offer.TokenBAmountWanted, "mint_b", offer.TokenMintB)
	return &ledger.DeliverResult{Data: pda.Bytes(), Tags: offerTags(pda)}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h *makeOfferHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*MakeOfferMsg, solana.PublicKey, error) {
	var msg MakeOfferMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, solana.PublicKey{}, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, solana.PublicKey{}, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}
	programID, err := LoadProgramID(db)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	pda, _, err := DeriveAuthority(programID, msg.Maker, msg.ID)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	if err := checkOfferRefs(pda, msg.Offer, msg.Vault, msg.TokenMintA); err != nil {
		return nil, solana.PublicKey{}, err
	}
	if err := checkAssociated("MakerTokenAccountA", msg.MakerTokenAccountA, msg.Maker, msg.TokenMintA); err != nil {
		return nil, solana.PublicKey{}, err
	}
	return &msg, programID, nil
}

type takeOfferHandler struct {
	auth   x.Authenticator
	tokens token.Controller
	cash   cash.Controller
}

var _ ledger.Handler = (*takeOfferHandler)(nil)

func (h *takeOfferHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *takeOfferHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, offer, programID, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if _, err := h.tokens.GetOrCreateAssociatedAccount(ctx, db, msg.Taker, msg.Taker, offer.TokenMintA); err != nil {
		return nil, errors.Wrap(err, "taker account")
	}
	if _, err := h.tokens.GetOrCreateAssociatedAccount(ctx, db, msg.Taker, offer.Maker, offer.TokenMintB); err != nil {
		return nil, errors.Wrap(err, "maker account")
	}
	mintB, err := h.tokens.Mint(db, offer.TokenMintB)
	if err != nil {
		return nil, err
	}
	if err := h.tokens.TransferChecked(ctx, db, msg.TakerTokenAccountB, msg.MakerTokenAccountB, mintB.Ticker, offer.TokenBAmountWanted, mintB.Decimals); err != nil {
		return nil, errors.Wrap(err, "pay wanted asset")
	}

	custodian := NewCustodian(programID, h.tokens)
	released, err := custodian.Release(ctx, db, offer, msg.Vault, msg.TakerTokenAccountA)
	if err != nil {
		return nil, errors.Wrap(err, "release vault")
	}
	if err := custodian.CloseAndReclaim(ctx, db, offer, msg.Vault, offer.Maker); err != nil {
		return nil, err
	}
	if err := NewRegistry(programID, h.cash).Close(db, offer, offer.Maker); err != nil {
		return nil, err
	}

	ledger.GetLogger(ctx).Info("offer taken",
		"offer", offer.ID, "maker", offer.Maker.String(), "taker", msg.Taker.String(),
		"released", released, "mint_a", offer.TokenMintA,
		"paid", offer.TokenBAmountWanted, "mint_b", offer.TokenMintB)
	pda := solana.PublicKeyFromBytes(msg.Offer)
	return &ledger.DeliverResult{Data: pda.Bytes(), Tags: offerTags(pda)}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h *takeOfferHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*TakeOfferMsg, *Offer, solana.PublicKey, error) {
	var msg TakeOfferMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, solana.PublicKey{}, errors.Wrap(err, "load msg")
	}
	if msg.Taker.Equals(msg.Maker) {
		return nil, nil, solana.PublicKey{}, ErrTakerShouldNotBeMaker
	}
	if !h.auth.HasAddress(ctx, msg.Taker) {
		return nil, nil, solana.PublicKey{}, errors.Wrap(errors.ErrUnauthorized, "taker signature missing")
	}
	programID, offer, err := loadOffer(db, h.cash, msg.Offer)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if !offer.Maker.Equals(msg.Maker) {
		return nil, nil, solana.PublicKey{}, errors.Wrap(errors.ErrUnauthorized, "maker does not match the offer")
	}
	if offer.TokenMintA != msg.TokenMintA || offer.TokenMintB != msg.TokenMintB {
		return nil, nil, solana.PublicKey{}, errors.Wrapf(errors.ErrInvalidState,
			"offer trades %s for %s", offer.TokenMintA, offer.TokenMintB)
	}
	pda, err := VerifyAuthority(programID, offer.Maker, offer.ID, offer.Bump)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if err := checkOfferRefs(pda, msg.Offer, msg.Vault, offer.TokenMintA); err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if err := checkAssociated("TakerTokenAccountA", msg.TakerTokenAccountA, msg.Taker, offer.TokenMintA); err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if err := checkAssociated("TakerTokenAccountB", msg.TakerTokenAccountB, msg.Taker, offer.TokenMintB); err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if err := checkAssociated("MakerTokenAccountB", msg.MakerTokenAccountB, offer.Maker, offer.TokenMintB); err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	return &msg, offer, programID, nil
}

type cancelOfferHandler struct {
	auth   x.Authenticator
	tokens token.Controller
	cash   cash.Controller
}

var _ ledger.Handler = (*cancelOfferHandler)(nil)

func (h *cancelOfferHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{}, nil
}

func (h *cancelOfferHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, offer, programID, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if _, err := h.tokens.GetOrCreateAssociatedAccount(ctx, db, offer.Maker, offer.Maker, offer.TokenMintA); err != nil {
		return nil, errors.Wrap(err, "maker account")
	}
	custodian := NewCustodian(programID, h.tokens)
	refunded, err := custodian.Release(ctx, db, offer, msg.Vault, msg.MakerTokenAccountA)
	if err != nil {
		return nil, errors.Wrap(err, "refund vault")
	}
	if err := custodian.CloseAndReclaim(ctx, db, offer, msg.Vault, offer.Maker); err != nil {
		return nil, err
	}
	if err := NewRegistry(programID, h.cash).Close(db, offer, offer.Maker); err != nil {
		return nil, err
	}

	ledger.GetLogger(ctx).Info("offer cancelled",
		"offer", offer.ID, "maker", offer.Maker.String(),
		"refunded", refunded, "mint_a", offer.TokenMintA)
	pda := solana.PublicKeyFromBytes(msg.Offer)
	return &ledger.DeliverResult{Data: pda.Bytes(), Tags: offerTags(pda)}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h *cancelOfferHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*CancelOfferMsg, *Offer, solana.PublicKey, error) {
	var msg CancelOfferMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, solana.PublicKey{}, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, nil, solana.PublicKey{}, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}
	programID, offer, err := loadOffer(db, h.cash, msg.Offer)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if !offer.Maker.Equals(msg.Maker) {
		return nil, nil, solana.PublicKey{}, errors.Wrap(errors.ErrUnauthorized, "only the maker can cancel")
	}
	if offer.TokenMintA != msg.TokenMintA {
		return nil, nil, solana.PublicKey{}, errors.Wrapf(errors.ErrInvalidState, "offer locks %s", offer.TokenMintA)
	}
	pda, err := VerifyAuthority(programID, offer.Maker, offer.ID, offer.Bump)
	if err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if err := checkOfferRefs(pda, msg.Offer, msg.Vault, offer.TokenMintA); err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	if err := checkAssociated("MakerTokenAccountA", msg.MakerTokenAccountA, offer.Maker, offer.TokenMintA); err != nil {
		return nil, nil, solana.PublicKey{}, err
	}
	return &msg, offer, programID, nil
}

func loadOffer(db ledger.KVStore, ctrl cash.Controller, key []byte) (solana.PublicKey, *Offer, error) {
	programID, err := LoadProgramID(db)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	offer, err := NewRegistry(programID, ctrl).GetByKey(db, key)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return programID, offer, nil
}

// checkOfferRefs compares the offer and vault addresses declared by a
// message with the ones derived from the offer seeds.
func checkOfferRefs(pda solana.PublicKey, offer []byte, vault ledger.Address, mintA string) error {
	if !bytes.Equal(pda.Bytes(), offer) {
		return errors.Field("Offer", errors.ErrDerivation, "not the derived offer address")
	}
	want, err := VaultAddress(pda, mintA)
	if err != nil {
		return err
	}
	if !want.Equals(vault) {
		return errors.Field("Vault", errors.ErrDerivation, "not the derived vault address")
	}
	return nil
}

func checkAssociated(field string, got, owner ledger.Address, mint string) error {
	want, err := token.AssociatedAddress(owner, mint)
	if err != nil {
		return err
	}
	if !want.Equals(got) {
		return errors.Field(field, errors.ErrDerivation, "not the associated account")
	}
	return nil
}

func offerTags(pda solana.PublicKey) []common.KVPair {
	return []common.KVPair{{
		Key:   []byte(OfferTagKey),
		Value: []byte(hex.EncodeToString(pda.Bytes())),
	}}
}
