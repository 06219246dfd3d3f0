package gconf

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

func TestUpdateConfigurationHandler(t *testing.T) {
	cond := ledgertest.NewCondition()

	cases := map[string]struct {
		// If Init is provided, initialize the database before running
		// handler code. Use nil to not provide initial state.
		Init ValidMarshaler

		Msg            ledger.Msg
		MsgConditions  []ledger.Condition
		WantCheckErr   *errors.Error
		WantDeliverErr *errors.Error

		// When not nil database state will be tested to contain the
		// exact version of the configuration.
		WantConfig *myconfig
	}{
		"success": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 333, Str: "boing!"},
			},
			MsgConditions: []ledger.Condition{cond},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 333, Str: "boing!"},
		},
		"message must be signed by the configuration owner": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Num: 1},
			},
			MsgConditions:  []ledger.Condition{ledgertest.NewCondition()},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
			WantConfig:     &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
		},
		"zero values are not updating the configuration": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125, Str: "foobar"},
			Msg: &myconfigMsg{
				Patch: &myconfig{Str: "new"},
			},
			MsgConditions: []ledger.Condition{cond},
			WantConfig:    &myconfig{Owner: cond.Address(), Num: 5125, Str: "new"},
		},
		"configuration without an owner cannot be updated": {
			Init: &myconfig{Num: 5125},
			Msg: &myconfigMsg{
				Patch: &myconfig{Num: 1},
			},
			MsgConditions:  []ledger.Condition{cond},
			WantCheckErr:   errors.ErrUnauthorized,
			WantDeliverErr: errors.ErrUnauthorized,
		},
		"missing configuration cannot be created": {
			Msg: &myconfigMsg{
				Patch: &myconfig{Owner: cond.Address(), Num: 1},
			},
			MsgConditions:  []ledger.Condition{cond},
			WantCheckErr:   errors.ErrNotFound,
			WantDeliverErr: errors.ErrNotFound,
		},
		"patch is required": {
			Init:           &myconfig{Owner: cond.Address(), Num: 5125},
			Msg:            &myconfigMsg{},
			MsgConditions:  []ledger.Condition{cond},
			WantCheckErr:   errors.ErrInvalidState,
			WantDeliverErr: errors.ErrInvalidState,
		},
		"invalid patch is rejected": {
			Init: &myconfig{Owner: cond.Address(), Num: 5125},
			Msg: &myconfigMsg{
				Patch: &myconfig{Num: -3},
			},
			MsgConditions:  []ledger.Condition{cond},
			WantCheckErr:   errors.ErrInvalidInput,
			WantDeliverErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.Init != nil {
				assert.Nil(t, Save(db, "mypkg", tc.Init))
			}

			auth := &ledgertest.Auth{Signers: tc.MsgConditions}
			h := NewUpdateConfigurationHandler("mypkg", &myconfig{}, auth)
			tx := &ledgertest.Tx{Msg: tc.Msg}

			cache := db.CacheWrap()
			if _, err := h.Check(context.Background(), cache, tx); !tc.WantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %s", err)
			}
			cache.Discard()

			if _, err := h.Deliver(context.Background(), db, tx); !tc.WantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %s", err)
			}

			if tc.WantConfig != nil {
				var got myconfig
				assert.Nil(t, Load(db, "mypkg", &got))
				assert.Equal(t, tc.WantConfig, &got)
			}
		})
	}
}
