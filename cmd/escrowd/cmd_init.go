package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	escrowd "github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/token"
	"github.com/spf13/cobra"
)

type initOptions struct {
	chainID   string
	programID string
	mints     []string
	keys      []string
	lamports  uint64
	tokens    []string
}

func initCmd() *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a genesis file and initialize the local ledger",
		Long: `Create a genesis file and initialize the local ledger.

Every key listed with --key is created when missing and receives --lamports
and one associated account per --tokens entry, for example:

  escrowd init --mint AAA:6 --mint BBB:2 --key alice --key bob --tokens AAA:1000 --tokens BBB:500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts)
		},
	}
	cmd.Flags().StringVar(&opts.chainID, "chain-id", "escrow-local", "chain id of the new ledger")
	cmd.Flags().StringVar(&opts.programID, "program-id", "", "escrow program id, base58 encoded")
	cmd.Flags().StringArrayVar(&opts.mints, "mint", nil, "mint to create, as TICKER:DECIMALS")
	cmd.Flags().StringArrayVar(&opts.keys, "key", nil, "name of a key to fund")
	cmd.Flags().Uint64Var(&opts.lamports, "lamports", 1000000000, "lamports given to every funded key")
	cmd.Flags().StringArrayVar(&opts.tokens, "tokens", nil, "tokens given to every funded key, as TICKER:AMOUNT")
	return cmd
}

func runInit(opts initOptions) error {
	path := filepath.Join(config.Home, genesisFile)
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "genesis file %s", path)
	}
	if !ledger.IsValidChainID(opts.chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id %q", opts.chainID)
	}

	gen := escrowd.GenesisOptions{ProgramID: opts.programID}
	for _, m := range opts.mints {
		ticker, decimals, err := splitPair(m)
		if err != nil {
			return errors.Wrap(err, "mint")
		}
		if decimals > token.MaxDecimals {
			return errors.Wrapf(errors.ErrInvalidInput, "mint %s: too many decimals", ticker)
		}
		gen.Mints = append(gen.Mints, token.GenesisMint{Ticker: ticker, Decimals: uint8(decimals)})
	}

	for _, name := range opts.keys {
		key, err := loadKey(name)
		if errors.ErrNotFound.Is(err) {
			key = crypto.GenPrivKeyEd25519()
			err = saveKey(name, key)
		}
		if err != nil {
			return err
		}
		owner := key.PublicKey().Address()
		if opts.lamports > 0 {
			gen.Wallets = append(gen.Wallets, cash.GenesisAccount{Address: owner, Balance: opts.lamports})
		}
		for _, t := range opts.tokens {
			ticker, amount, err := splitPair(t)
			if err != nil {
				return errors.Wrap(err, "tokens")
			}
			gen.TokenAccounts = append(gen.TokenAccounts, token.GenesisAccount{
				Owner:  owner,
				Mint:   ticker,
				Amount: amount,
			})
		}
		fmt.Printf("%s: %s\n", name, owner)
	}

	state, err := escrowd.GenesisAppState(gen)
	if err != nil {
		return err
	}
	doc := app.Genesis{
		ChainID:     opts.chainID,
		GenesisTime: time.Now().UTC(),
		AppState:    state,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "encode genesis: %s", err)
	}
	if err := os.MkdirAll(config.Home, 0700); err != nil {
		return errors.Wrap(err, "create home directory")
	}
	if err := ioutil.WriteFile(path, raw, 0644); err != nil {
		return errors.Wrap(err, "write genesis")
	}

	// Opening the ledger applies the genesis.
	if _, err := openLedger(); err != nil {
		return err
	}
	fmt.Printf("initialized %s in %s\n", opts.chainID, config.Home)
	return nil
}

// splitPair parses a NAME:NUMBER argument.
func splitPair(s string) (string, uint64, error) {
	chunks := strings.SplitN(s, ":", 2)
	if len(chunks) != 2 {
		return "", 0, errors.Wrapf(errors.ErrInvalidInput, "%q is not in NAME:NUMBER format", s)
	}
	n, err := strconv.ParseUint(chunks[1], 10, 64)
	if err != nil {
		return "", 0, errors.Wrapf(errors.ErrInvalidInput, "%q: %s", s, err)
	}
	return chunks[0], n, nil
}
