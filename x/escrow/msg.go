package escrow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

var (
	makeOfferMsgDiscriminator   = ledger.InstructionDiscriminator("make_offer")
	takeOfferMsgDiscriminator   = ledger.InstructionDiscriminator("take_offer")
	cancelOfferMsgDiscriminator = ledger.InstructionDiscriminator("cancel_offer")

	_ ledger.Msg = (*MakeOfferMsg)(nil)
	_ ledger.Msg = (*TakeOfferMsg)(nil)
	_ ledger.Msg = (*CancelOfferMsg)(nil)
)

// MakeOfferMsg locks TokenAOfferedAmount of TokenMintA in a new vault and
// asks for TokenBWantedAmount of TokenMintB in return. It must be signed
// by the maker.
//
// Offer and Vault are the derived addresses of the new offer. They are
// recomputed by the handler and the message is rejected on mismatch.
type MakeOfferMsg struct {
	Maker               ledger.Address
	ID                  uint64
	TokenMintA          string
	TokenMintB          string
	MakerTokenAccountA  ledger.Address
	TokenAOfferedAmount uint64
	TokenBWantedAmount  uint64
	Offer               []byte
	Vault               ledger.Address
}

// NewMakeOfferMsg returns a message with all derived accounts filled in.
func NewMakeOfferMsg(programID solana.PublicKey, maker ledger.Address, id uint64, mintA, mintB string, offered, wanted uint64) (*MakeOfferMsg, error) {
	pda, _, err := DeriveAuthority(programID, maker, id)
	if err != nil {
		return nil, err
	}
	vault, err := VaultAddress(pda, mintA)
	if err != nil {
		return nil, err
	}
	source, err := token.AssociatedAddress(maker, mintA)
	if err != nil {
		return nil, err
	}
	return &MakeOfferMsg{
		Maker:               maker,
		ID:                  id,
		TokenMintA:          mintA,
		TokenMintB:          mintB,
		MakerTokenAccountA:  source,
		TokenAOfferedAmount: offered,
		TokenBWantedAmount:  wanted,
		Offer:               pda.Bytes(),
		Vault:               vault,
	}, nil
}

func (MakeOfferMsg) Path() string {
	return "escrow/make_offer"
}

func (m *MakeOfferMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Maker", m.Maker.Validate(), "maker address"))
	errs = errors.Append(errs, validateMints(m.TokenMintA, m.TokenMintB))
	errs = errors.Append(errs, errors.Field("MakerTokenAccountA", m.MakerTokenAccountA.Validate(), "maker account"))
	if m.TokenAOfferedAmount == 0 {
		errs = errors.Append(errs, errors.Field("TokenAOfferedAmount", errors.ErrInvalidAmount, "must be positive"))
	}
	if m.TokenBWantedAmount == 0 {
		errs = errors.Append(errs, errors.Field("TokenBWantedAmount", errors.ErrInvalidAmount, "must be positive"))
	}
	errs = errors.Append(errs, validateOfferRefs(m.Offer, m.Vault))
	return errs
}

func (m *MakeOfferMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(makeOfferMsgDiscriminator, m)
}

func (m *MakeOfferMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(makeOfferMsgDiscriminator, raw, m)
}

// TakeOfferMsg completes an open offer. The taker pays the wanted amount
// of TokenMintB to the maker and receives the vault content. It must be
// signed by the taker.
type TakeOfferMsg struct {
	Taker              ledger.Address
	Maker              ledger.Address
	TokenMintA         string
	TokenMintB         string
	TakerTokenAccountA ledger.Address
	TakerTokenAccountB ledger.Address
	MakerTokenAccountB ledger.Address
	Offer              []byte
	Vault              ledger.Address
}

// NewTakeOfferMsg returns a message taking given offer by taker.
func NewTakeOfferMsg(programID solana.PublicKey, taker ledger.Address, offer *Offer) (*TakeOfferMsg, error) {
	pda, err := VerifyAuthority(programID, offer.Maker, offer.ID, offer.Bump)
	if err != nil {
		return nil, err
	}
	vault, err := VaultAddress(pda, offer.TokenMintA)
	if err != nil {
		return nil, err
	}
	takerA, err := token.AssociatedAddress(taker, offer.TokenMintA)
	if err != nil {
		return nil, err
	}
	takerB, err := token.AssociatedAddress(taker, offer.TokenMintB)
	if err != nil {
		return nil, err
	}
	makerB, err := token.AssociatedAddress(offer.Maker, offer.TokenMintB)
	if err != nil {
		return nil, err
	}
	return &TakeOfferMsg{
		Taker:              taker,
		Maker:              offer.Maker,
		TokenMintA:         offer.TokenMintA,
		TokenMintB:         offer.TokenMintB,
		TakerTokenAccountA: takerA,
		TakerTokenAccountB: takerB,
		MakerTokenAccountB: makerB,
		Offer:              pda.Bytes(),
		Vault:              vault,
	}, nil
}

func (TakeOfferMsg) Path() string {
	return "escrow/take_offer"
}

func (m *TakeOfferMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Taker", m.Taker.Validate(), "taker address"))
	errs = errors.Append(errs, errors.Field("Maker", m.Maker.Validate(), "maker address"))
	errs = errors.Append(errs, validateMints(m.TokenMintA, m.TokenMintB))
	errs = errors.Append(errs, errors.Field("TakerTokenAccountA", m.TakerTokenAccountA.Validate(), "taker account"))
	errs = errors.Append(errs, errors.Field("TakerTokenAccountB", m.TakerTokenAccountB.Validate(), "taker account"))
	errs = errors.Append(errs, errors.Field("MakerTokenAccountB", m.MakerTokenAccountB.Validate(), "maker account"))
	errs = errors.Append(errs, validateOfferRefs(m.Offer, m.Vault))
	return errs
}

func (m *TakeOfferMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(takeOfferMsgDiscriminator, m)
}

func (m *TakeOfferMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(takeOfferMsgDiscriminator, raw, m)
}

// CancelOfferMsg withdraws an open offer and returns the vault content to
// the maker. It must be signed by the maker.
type CancelOfferMsg struct {
	Maker              ledger.Address
	TokenMintA         string
	MakerTokenAccountA ledger.Address
	Offer              []byte
	Vault              ledger.Address
}

// NewCancelOfferMsg returns a message cancelling given offer.
func NewCancelOfferMsg(programID solana.PublicKey, offer *Offer) (*CancelOfferMsg, error) {
	pda, err := VerifyAuthority(programID, offer.Maker, offer.ID, offer.Bump)
	if err != nil {
		return nil, err
	}
	vault, err := VaultAddress(pda, offer.TokenMintA)
	if err != nil {
		return nil, err
	}
	makerA, err := token.AssociatedAddress(offer.Maker, offer.TokenMintA)
	if err != nil {
		return nil, err
	}
	return &CancelOfferMsg{
		Maker:              offer.Maker,
		TokenMintA:         offer.TokenMintA,
		MakerTokenAccountA: makerA,
		Offer:              pda.Bytes(),
		Vault:              vault,
	}, nil
}

func (CancelOfferMsg) Path() string {
	return "escrow/cancel_offer"
}

func (m *CancelOfferMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Maker", m.Maker.Validate(), "maker address"))
	if !token.IsValidTicker(m.TokenMintA) {
		errs = errors.Append(errs, errors.Field("TokenMintA", errors.ErrInvalidInput, "invalid ticker"))
	}
	errs = errors.Append(errs, errors.Field("MakerTokenAccountA", m.MakerTokenAccountA.Validate(), "maker account"))
	errs = errors.Append(errs, validateOfferRefs(m.Offer, m.Vault))
	return errs
}

func (m *CancelOfferMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(cancelOfferMsgDiscriminator, m)
}

func (m *CancelOfferMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(cancelOfferMsgDiscriminator, raw, m)
}

func validateMints(a, b string) error {
	var errs error
	if !token.IsValidTicker(a) {
		errs = errors.Append(errs, errors.Field("TokenMintA", errors.ErrInvalidInput, "invalid ticker"))
	}
	if !token.IsValidTicker(b) {
		errs = errors.Append(errs, errors.Field("TokenMintB", errors.ErrInvalidInput, "invalid ticker"))
	}
	return errs
}

func validateOfferRefs(offer []byte, vault ledger.Address) error {
	var errs error
	if len(offer) != offerKeyLength {
		errs = errors.Append(errs, errors.Field("Offer", errors.ErrInvalidInput, "must be a program address"))
	}
	errs = errors.Append(errs, errors.Field("Vault", vault.Validate(), "vault account"))
	return errs
}
