package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var (
	sendMsgDiscriminator          = ledger.InstructionDiscriminator("transfer_checked")
	createAccountMsgDiscriminator = ledger.InstructionDiscriminator("create_associated_account")
	closeAccountMsgDiscriminator  = ledger.InstructionDiscriminator("close_account")

	_ ledger.Msg = (*SendMsg)(nil)
	_ ledger.Msg = (*CreateAccountMsg)(nil)
	_ ledger.Msg = (*CloseAccountMsg)(nil)
)

// SendMsg is a checked transfer between two token accounts. It must be
// signed by the owner of the source account.
type SendMsg struct {
	Source      ledger.Address
	Destination ledger.Address
	Mint        string
	Amount      uint64
	Decimals    uint8
}

func (SendMsg) Path() string {
	return "token/send"
}

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Source", m.Source.Validate(), "source account"))
	errs = errors.Append(errs, errors.Field("Destination", m.Destination.Validate(), "destination account"))
	if !IsValidTicker(m.Mint) {
		errs = errors.Append(errs, errors.Field("Mint", errors.ErrInvalidInput, "invalid ticker"))
	}
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrInvalidAmount, "must be positive"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(sendMsgDiscriminator, m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(sendMsgDiscriminator, raw, m)
}

// CreateAccountMsg creates the associated account of the owner for a mint.
// The payer signs the message and funds the storage deposit.
type CreateAccountMsg struct {
	Payer ledger.Address
	Owner ledger.Address
	Mint  string
}

func (CreateAccountMsg) Path() string {
	return "token/create_account"
}

func (m *CreateAccountMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Payer", m.Payer.Validate(), "payer address"))
	errs = errors.Append(errs, errors.Field("Owner", m.Owner.Validate(), "owner address"))
	if !IsValidTicker(m.Mint) {
		errs = errors.Append(errs, errors.Field("Mint", errors.ErrInvalidInput, "invalid ticker"))
	}
	return errs
}

func (m *CreateAccountMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(createAccountMsgDiscriminator, m)
}

func (m *CreateAccountMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(createAccountMsgDiscriminator, raw, m)
}

// CloseAccountMsg closes an empty token account. It must be signed by the
// account owner. The storage deposit goes to the destination.
type CloseAccountMsg struct {
	Account     ledger.Address
	Destination ledger.Address
}

func (CloseAccountMsg) Path() string {
	return "token/close_account"
}

func (m *CloseAccountMsg) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Field("Account", m.Account.Validate(), "account address"))
	errs = errors.Append(errs, errors.Field("Destination", m.Destination.Validate(), "destination address"))
	return errs
}

func (m *CloseAccountMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(closeAccountMsgDiscriminator, m)
}

func (m *CloseAccountMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(closeAccountMsgDiscriminator, raw, m)
}
