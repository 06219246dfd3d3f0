package cash

import (
	"math"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestMoveCoins(t *testing.T) {
	alice := ledgertest.NewCondition().Address()
	bob := ledgertest.NewCondition().Address()

	cases := map[string]struct {
		issue     uint64
		move      uint64
		src       ledger.Address
		wantErr   *errors.Error
		wantAlice uint64
		wantBob   uint64
	}{
		"move part": {
			issue: 100, move: 30, src: alice,
			wantAlice: 70, wantBob: 30,
		},
		"move everything": {
			issue: 100, move: 100, src: alice,
			wantAlice: 0, wantBob: 100,
		},
		"insufficient funds": {
			issue: 10, move: 11, src: alice,
			wantErr:   errors.ErrInsufficientAmount,
			wantAlice: 10,
		},
		"zero amount": {
			issue: 10, move: 0, src: alice,
			wantErr:   errors.ErrInvalidAmount,
			wantAlice: 10,
		},
		"empty sender": {
			issue: 10, move: 1, src: ledgertest.NewCondition().Address(),
			wantErr:   errors.ErrEmpty,
			wantAlice: 10,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(NewBucket())
			assert.Nil(t, ctrl.IssueCoins(db, alice, tc.issue))

			err := ctrl.MoveCoins(db, tc.src, bob, tc.move)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}

			got, err := ctrl.Balance(db, alice)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantAlice, got)
			got, err = ctrl.Balance(db, bob)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestIssueCoinsOverflow(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	addr := ledgertest.NewCondition().Address()

	assert.Nil(t, ctrl.IssueCoins(db, addr, math.MaxUint64-1))
	assert.IsErr(t, errors.ErrOverflow, ctrl.IssueCoins(db, addr, 2))
	assert.IsErr(t, errors.ErrInvalidInput, ctrl.IssueCoins(db, ledger.Address("short"), 2))
}

func TestDrain(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()
	ctrl := NewController(bucket)
	src := ledgertest.NewCondition().Address()
	dst := ledgertest.NewCondition().Address()

	// Draining an empty wallet is a noop.
	moved, err := ctrl.Drain(db, src, dst)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), moved)

	assert.Nil(t, ctrl.IssueCoins(db, src, 42))
	assert.Nil(t, ctrl.IssueCoins(db, dst, 8))
	moved, err = ctrl.Drain(db, src, dst)
	assert.Nil(t, err)
	assert.Equal(t, uint64(42), moved)

	assert.IsErr(t, errors.ErrNotFound, bucket.Has(db, src))
	got, err := ctrl.Balance(db, dst)
	assert.Nil(t, err)
	assert.Equal(t, uint64(50), got)
}
