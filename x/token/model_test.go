package token

import (
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestMintValidate(t *testing.T) {
	cases := map[string]struct {
		mint     Mint
		wantErrs map[string]*errors.Error
	}{
		"valid mint": {
			mint: Mint{Ticker: "AAA", Decimals: 6},
			wantErrs: map[string]*errors.Error{
				"Ticker":   nil,
				"Decimals": nil,
			},
		},
		"lowercase ticker": {
			mint: Mint{Ticker: "aaa", Decimals: 6},
			wantErrs: map[string]*errors.Error{
				"Ticker":   errors.ErrInvalidInput,
				"Decimals": nil,
			},
		},
		"too precise": {
			mint: Mint{Ticker: "AAA", Decimals: MaxDecimals + 1},
			wantErrs: map[string]*errors.Error{
				"Ticker":   nil,
				"Decimals": errors.ErrInvalidInput,
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.mint.Validate()
			for field, wantErr := range tc.wantErrs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestAccountsOf(t *testing.T) {
	db := store.MemStore()
	bucket := NewAccountBucket()

	alice := ledgertest.NewCondition().Address()
	bob := ledgertest.NewCondition().Address()

	put := func(owner []byte, mint string, amount uint64) {
		t.Helper()
		addr, err := AssociatedAddress(owner, mint)
		assert.Nil(t, err)
		acc := &TokenAccount{Mint: mint, Owner: owner, Amount: amount}
		assert.Nil(t, bucket.Put(db, addr, acc))
	}
	put(alice, "AAA", 10)
	put(alice, "BBB", 20)
	put(bob, "AAA", 30)

	keys, accounts, err := AccountsOf(db, alice)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(keys))
	assert.Equal(t, 2, len(accounts))
	var total uint64
	for _, acc := range accounts {
		assert.Equal(t, alice, acc.Owner)
		total += acc.Amount
	}
	assert.Equal(t, uint64(30), total)

	_, accounts, err = AccountsOf(db, ledgertest.NewCondition().Address())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(accounts))

	invalid := &TokenAccount{Mint: "aaa", Owner: alice}
	if err := bucket.Put(db, []byte("whatever"), invalid); !errors.ErrInvalidInput.Is(err) {
		t.Fatalf("want invalid input error, got %+v", err)
	}
}
