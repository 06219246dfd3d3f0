package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/iov-one/ledger"
	escrowd "github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/token"
	"github.com/spf13/cobra"
)

func offersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offers <maker>",
		Short: "List the open offers of a maker, given as a key name or an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maker, err := resolveAddress(args[0])
			if err != nil {
				return err
			}
			l, err := openLedger()
			if err != nil {
				return err
			}
			programID, err := l.programID()
			if err != nil {
				return err
			}
			registry := escrow.NewRegistry(programID, cash.NewController(cash.NewBucket()))
			offers, err := registry.ListByMaker(l.DeliverStore(), maker)
			if err != nil {
				return err
			}

			type listing struct {
				Key string `json:"key"`
				escrow.Offer
			}
			out := make([]listing, 0, len(offers))
			for _, o := range offers {
				pda, _, err := escrow.DeriveAuthority(programID, o.Maker, o.ID)
				if err != nil {
					return err
				}
				out = append(out, listing{Key: hex.EncodeToString(pda.Bytes()), Offer: o})
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <owner> [mint]",
		Short: "Print the lamports or the token balance of an owner",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := resolveAddress(args[0])
			if err != nil {
				return err
			}
			l, err := openLedger()
			if err != nil {
				return err
			}
			cashCtrl := cash.NewController(cash.NewBucket())
			if len(args) == 1 {
				amount, err := cashCtrl.Balance(l.DeliverStore(), owner)
				if err != nil {
					return err
				}
				fmt.Printf("%d lamports\n", amount)
				return nil
			}
			tokens := token.NewController(escrowd.Authenticator(), cashCtrl)
			amount, err := token.Balance(l.DeliverStore(), tokens, owner, args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%d %s\n", amount, args[1])
			return nil
		},
	}
}

// resolveAddress accepts the name of a stored key or any address format
// understood by ledger.ParseAddress.
func resolveAddress(arg string) (ledger.Address, error) {
	key, err := loadKey(arg)
	switch {
	case err == nil:
		return key.PublicKey().Address(), nil
	case errors.ErrNotFound.Is(err), errors.ErrInvalidInput.Is(err):
		addr, perr := ledger.ParseAddress(arg)
		if perr != nil {
			return nil, errors.Wrapf(errors.ErrNotFound, "no key or address %q", arg)
		}
		return addr, nil
	default:
		return nil, err
	}
}
