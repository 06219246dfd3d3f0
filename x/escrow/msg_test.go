package escrow

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/stretchr/testify/require"
)

func TestMsgConstructors(t *testing.T) {
	maker := ledgertest.NewCondition().Address()
	taker := ledgertest.NewCondition().Address()

	makeMsg, err := NewMakeOfferMsg(programID, maker, 5, "AAA", "BBB", 100, 80)
	require.NoError(t, err)
	require.NoError(t, makeMsg.Validate())

	pda, bump, err := DeriveAuthority(programID, maker, 5)
	require.NoError(t, err)
	require.Equal(t, pda.Bytes(), makeMsg.Offer)

	offer := &Offer{ID: 5, Maker: maker, TokenMintA: "AAA", TokenMintB: "BBB", TokenBAmountWanted: 80, Bump: bump}
	take, err := NewTakeOfferMsg(programID, taker, offer)
	require.NoError(t, err)
	require.NoError(t, take.Validate())
	require.Equal(t, makeMsg.Offer, take.Offer)
	require.Equal(t, makeMsg.Vault, take.Vault)

	cancel, err := NewCancelOfferMsg(programID, offer)
	require.NoError(t, err)
	require.NoError(t, cancel.Validate())
	require.Equal(t, makeMsg.Vault, cancel.Vault)
	require.Equal(t, makeMsg.MakerTokenAccountA, cancel.MakerTokenAccountA)
}

func TestMakeOfferMsgValidate(t *testing.T) {
	msg := &MakeOfferMsg{TokenMintA: "AAA", TokenMintB: "b"}
	err := msg.Validate()
	assert.FieldError(t, err, "Maker", errors.ErrInvalidInput)
	assert.FieldError(t, err, "TokenMintA", nil)
	assert.FieldError(t, err, "TokenMintB", errors.ErrInvalidInput)
	assert.FieldError(t, err, "TokenAOfferedAmount", errors.ErrInvalidAmount)
	assert.FieldError(t, err, "TokenBWantedAmount", errors.ErrInvalidAmount)
	assert.FieldError(t, err, "Offer", errors.ErrInvalidInput)
	assert.FieldError(t, err, "Vault", errors.ErrInvalidInput)
}
