package escrow

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAuthority(t *testing.T) {
	alice := ledgertest.NewCondition().Address()
	bob := ledgertest.NewCondition().Address()

	pda, bump, err := DeriveAuthority(programID, alice, 1)
	require.NoError(t, err)

	again, againBump, err := DeriveAuthority(programID, alice, 1)
	require.NoError(t, err)
	require.Equal(t, pda, again)
	require.Equal(t, bump, againBump)

	verified, err := VerifyAuthority(programID, alice, 1, bump)
	require.NoError(t, err)
	require.Equal(t, pda, verified)

	otherID, _, err := DeriveAuthority(programID, alice, 2)
	require.NoError(t, err)
	require.NotEqual(t, pda, otherID)

	otherMaker, _, err := DeriveAuthority(programID, bob, 1)
	require.NoError(t, err)
	require.NotEqual(t, pda, otherMaker)

	_, _, err = DeriveAuthority(programID, ledger.Address("short"), 1)
	assert.IsErr(t, errors.ErrInvalidInput, err)
}

func TestAuthorityCondition(t *testing.T) {
	pda, _, err := DeriveAuthority(programID, ledgertest.NewCondition().Address(), 42)
	require.NoError(t, err)

	cond := AuthorityCondition(pda)
	ext, typ, data, err := cond.Parse()
	require.NoError(t, err)
	require.Equal(t, "escrow", ext)
	require.Equal(t, "offer", typ)
	require.Equal(t, pda.Bytes(), data)
	require.Equal(t, cond.Address(), AuthorityAddress(pda))

	vault, err := VaultAddress(pda, "AAA")
	require.NoError(t, err)
	require.NoError(t, vault.Validate())
}

func TestAuthenticate(t *testing.T) {
	pda, _, err := DeriveAuthority(programID, ledgertest.NewCondition().Address(), 1)
	require.NoError(t, err)
	auth := Authenticate{}

	ctx := context.Background()
	require.Empty(t, auth.GetConditions(ctx))
	require.False(t, auth.HasAddress(ctx, AuthorityAddress(pda)))

	ctx = withAuthority(ctx, AuthorityCondition(pda))
	require.Equal(t, []ledger.Condition{AuthorityCondition(pda)}, auth.GetConditions(ctx))
	require.True(t, auth.HasAddress(ctx, AuthorityAddress(pda)))
	require.False(t, auth.HasAddress(ctx, ledgertest.NewCondition().Address()))
}

func TestCustodian(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t)
	bob := f.user(t)
	f.fund(t, alice, "AAA", 100)
	bobA := f.fund(t, bob, "AAA", 0)
	offer := f.makeOffer(t, alice, 1, 100, 1)
	v := vault(t, offer)
	ctx := context.Background()
	custodian := NewCustodian(programID, f.tokens)

	// The vault must be drained before it can be closed.
	err := custodian.CloseAndReclaim(ctx, f.db, offer, v, alice.Address())
	assert.IsErr(t, errors.ErrInvalidState, err)

	// A vault that does not belong to the offer is refused.
	err = custodian.AuthorizeTransfer(ctx, f.db, offer, bobA, bobA, 1)
	assert.IsErr(t, errors.ErrDerivation, err)

	forged := *offer
	forged.ID = 2
	err = custodian.AuthorizeTransfer(ctx, f.db, &forged, v, bobA, 1)
	assert.IsErr(t, errors.ErrDerivation, err)

	assert.Nil(t, custodian.AuthorizeTransfer(ctx, f.db, offer, v, bobA, 30))
	released, err := custodian.Release(ctx, f.db, offer, v, bobA)
	assert.Nil(t, err)
	assert.Equal(t, uint64(70), released)
	assert.Equal(t, uint64(100), f.balance(t, bob.Address(), "AAA"))

	released, err = custodian.Release(ctx, f.db, offer, v, bobA)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), released)

	assert.Nil(t, custodian.CloseAndReclaim(ctx, f.db, offer, v, alice.Address()))
	_, err = f.tokens.Account(f.db, v)
	assert.IsErr(t, errors.ErrNotFound, err)
}
