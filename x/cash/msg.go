package cash

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const maxMemoSize int = 128

var (
	sendMsgDiscriminator                           = ledger.InstructionDiscriminator("cash_send")
	updateConfigurationMsgDiscriminator            = ledger.InstructionDiscriminator("cash_update_configuration")
	_                                   ledger.Msg = (*SendMsg)(nil)
	_                                   ledger.Msg = (*UpdateConfigurationMsg)(nil)
)

// SendMsg moves native currency between two addresses. It must be signed by
// the source.
type SendMsg struct {
	Source      ledger.Address
	Destination ledger.Address
	Amount      uint64
	Memo        string
}

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrInvalidAmount, "must be positive"))
	}
	errs = errors.Append(errs, errors.Field("Source", m.Source.Validate(), "source address"))
	errs = errors.Append(errs, errors.Field("Destination", m.Destination.Validate(), "destination address"))
	if len(m.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Field("Memo", errors.ErrInvalidInput, "memo too long"))
	}
	return errs
}

func (m *SendMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(sendMsgDiscriminator, m)
}

func (m *SendMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(sendMsgDiscriminator, raw, m)
}

// UpdateConfigurationMsg patches the cash configuration. Zero fields of the
// patch are left unchanged.
type UpdateConfigurationMsg struct {
	Patch Configuration
}

func (UpdateConfigurationMsg) Path() string {
	return "cash/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	if len(m.Patch.Owner) != 0 {
		return errors.Field("Patch", m.Patch.Owner.Validate(), "owner address")
	}
	return nil
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return ledger.MarshalBorsh(updateConfigurationMsgDiscriminator, m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return ledger.UnmarshalBorsh(updateConfigurationMsgDiscriminator, raw, m)
}
