package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/token"
)

// Tx is the transaction envelope of the escrow ledger. It is encoded in
// protobuf wire format: field 1 holds the signatures, the message is stored
// in the field that is assigned to its type. Messages themselves are borsh
// encoded instructions.
type Tx struct {
	Signatures []*sigs.StdSignature
	Msg        ledger.Msg
}

// make sure tx fulfills all interfaces
var _ ledger.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

const signaturesField = 1

// msgFields assigns a protobuf field number to every supported message.
// Numbers must never be reused.
var msgFields = map[string]uint64{
	cash.SendMsg{}.Path():                51,
	cash.UpdateConfigurationMsg{}.Path(): 52,
	token.SendMsg{}.Path():               61,
	token.CreateAccountMsg{}.Path():      62,
	token.CloseAccountMsg{}.Path():       63,
	escrow.MakeOfferMsg{}.Path():         71,
	escrow.TakeOfferMsg{}.Path():         72,
	escrow.CancelOfferMsg{}.Path():       73,
}

// newMsg returns an empty message for a protobuf field number.
func newMsg(field uint64) (ledger.Msg, error) {
	switch field {
	case 51:
		return &cash.SendMsg{}, nil
	case 52:
		return &cash.UpdateConfigurationMsg{}, nil
	case 61:
		return &token.SendMsg{}, nil
	case 62:
		return &token.CreateAccountMsg{}, nil
	case 63:
		return &token.CloseAccountMsg{}, nil
	case 71:
		return &escrow.MakeOfferMsg{}, nil
	case 72:
		return &escrow.TakeOfferMsg{}, nil
	case 73:
		return &escrow.CancelOfferMsg{}, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidType, "unknown message field %d", field)
}

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (ledger.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// GetMsg returns the single message carried by the transaction.
func (tx *Tx) GetMsg() (ledger.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	}
	return tx.Msg, nil
}

// GetSignatures returns the signatures of the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the encoding of the transaction without
// signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

// Sign appends a signature of signer for given sequence.
func (tx *Tx) Sign(signer crypto.Signer, chainID string, seq int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

func (tx *Tx) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(nil)
	for _, sig := range tx.Signatures {
		raw, err := marshalSignature(sig)
		if err != nil {
			return nil, err
		}
		if err := encodeBytesField(buf, signaturesField, raw); err != nil {
			return nil, err
		}
	}
	if tx.Msg != nil {
		field, ok := msgFields[tx.Msg.Path()]
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidType, "unsupported message %T", tx.Msg)
		}
		raw, err := tx.Msg.Marshal()
		if err != nil {
			return nil, err
		}
		if err := encodeBytesField(buf, field, raw); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	var (
		signatures []*sigs.StdSignature
		msg        ledger.Msg
	)
	err := decodeBytesFields(raw, func(field uint64, value []byte) error {
		if field == signaturesField {
			sig, err := unmarshalSignature(value)
			if err != nil {
				return err
			}
			signatures = append(signatures, sig)
			return nil
		}
		if msg != nil {
			return errors.Wrap(errors.ErrInvalidMsg, "more than one message")
		}
		m, err := newMsg(field)
		if err != nil {
			return err
		}
		if err := m.Unmarshal(value); err != nil {
			return errors.Wrapf(err, "message field %d", field)
		}
		msg = m
		return nil
	})
	if err != nil {
		return err
	}
	tx.Signatures = signatures
	tx.Msg = msg
	return nil
}

// A signature is a nested message of
//
//	1: sequence (varint)
//	2: ed25519 public key (bytes)
//	3: ed25519 signature (bytes)
func marshalSignature(sig *sigs.StdSignature) ([]byte, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	buf := proto.NewBuffer(nil)
	if err := buf.EncodeVarint(1<<3 | proto.WireVarint); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := buf.EncodeVarint(uint64(sig.Sequence)); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := encodeBytesField(buf, 2, sig.Pubkey.Ed25519); err != nil {
		return nil, err
	}
	if err := encodeBytesField(buf, 3, sig.Signature.Ed25519); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalSignature(raw []byte) (*sigs.StdSignature, error) {
	tag, n := proto.DecodeVarint(raw)
	if n == 0 || tag != 1<<3|proto.WireVarint {
		return nil, errors.Wrap(errors.ErrInvalidInput, "signature sequence missing")
	}
	seq, m := proto.DecodeVarint(raw[n:])
	if m == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "malformed signature sequence")
	}
	sig := &sigs.StdSignature{Sequence: int64(seq)}
	err := decodeBytesFields(raw[n+m:], func(field uint64, value []byte) error {
		switch field {
		case 2:
			sig.Pubkey = &crypto.PublicKey{Ed25519: value}
		case 3:
			sig.Signature = &crypto.Signature{Ed25519: value}
		default:
			return errors.Wrapf(errors.ErrInvalidInput, "unknown signature field %d", field)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sig, sig.Validate()
}

func encodeBytesField(buf *proto.Buffer, field uint64, value []byte) error {
	if err := buf.EncodeVarint(field<<3 | proto.WireBytes); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := buf.EncodeRawBytes(value); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return nil
}

// decodeBytesFields calls fn for every length delimited field of raw. Any
// other wire type is rejected.
func decodeBytesFields(raw []byte, fn func(field uint64, value []byte) error) error {
	for len(raw) > 0 {
		tag, n := proto.DecodeVarint(raw)
		if n == 0 || tag&7 != proto.WireBytes {
			return errors.Wrap(errors.ErrInvalidInput, "malformed field")
		}
		raw = raw[n:]
		size, n := proto.DecodeVarint(raw)
		if n == 0 || uint64(len(raw)-n) < size {
			return errors.Wrap(errors.ErrInvalidInput, "truncated field")
		}
		value := append([]byte{}, raw[n:n+int(size)]...)
		raw = raw[n+int(size):]
		if err := fn(tag>>3, value); err != nil {
			return err
		}
	}
	return nil
}
