package app

import (
	"encoding/json"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/token"
)

const (
	// DefaultLamportsPerByte is the price of one byte of storage, paid
	// once when an account is created and returned when it is closed.
	DefaultLamportsPerByte = 6960

	// DefaultAccountOverhead is the number of bytes charged for every
	// account on top of its data.
	DefaultAccountOverhead = 128
)

// GenesisOptions describes the initial state of a new ledger.
type GenesisOptions struct {
	// Owner may update the cash configuration. Optional.
	Owner           ledger.Address
	ProgramID       string
	LamportsPerByte uint64
	AccountOverhead uint64
	Wallets         []cash.GenesisAccount
	Mints           []token.GenesisMint
	TokenAccounts   []token.GenesisAccount
}

type confState struct {
	Cash   cash.Configuration   `json:"cash"`
	Escrow escrow.Configuration `json:"escrow"`
}

type appState struct {
	Conf          confState              `json:"conf"`
	Cash          []cash.GenesisAccount  `json:"cash"`
	Mints         []token.GenesisMint    `json:"mints"`
	TokenAccounts []token.GenesisAccount `json:"token_accounts"`
}

// GenesisAppState returns the app_state section of a genesis file. Zero
// configuration values are replaced with defaults.
func GenesisAppState(opts GenesisOptions) (json.RawMessage, error) {
	state := appState{
		Conf: confState{
			Cash: cash.Configuration{
				Owner:           opts.Owner,
				LamportsPerByte: opts.LamportsPerByte,
				AccountOverhead: opts.AccountOverhead,
			},
			Escrow: escrow.Configuration{ProgramID: opts.ProgramID},
		},
		Cash:          opts.Wallets,
		Mints:         opts.Mints,
		TokenAccounts: opts.TokenAccounts,
	}
	if state.Conf.Cash.LamportsPerByte == 0 {
		state.Conf.Cash.LamportsPerByte = DefaultLamportsPerByte
	}
	if state.Conf.Cash.AccountOverhead == 0 {
		state.Conf.Cash.AccountOverhead = DefaultAccountOverhead
	}
	if state.Conf.Escrow.ProgramID == "" {
		state.Conf.Escrow.ProgramID = escrow.DefaultProgramID
	}
	if err := state.Conf.Cash.Validate(); err != nil {
		return nil, errors.Wrap(err, "cash configuration")
	}
	if err := state.Conf.Escrow.Validate(); err != nil {
		return nil, errors.Wrap(err, "escrow configuration")
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "encode app state: %s", err)
	}
	return raw, nil
}
