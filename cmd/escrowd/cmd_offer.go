package main

import (
	"encoding/hex"
	"fmt"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/spf13/cobra"
)

func makeOfferCmd() *cobra.Command {
	var (
		id            uint64
		offered, want string
	)
	cmd := &cobra.Command{
		Use:     "make-offer <key>",
		Short:   "Lock tokens in a new offer",
		Example: `  escrowd make-offer alice --id 1 --offer AAA:100 --want BBB:50`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(args[0])
			if err != nil {
				return err
			}
			mintA, amountA, err := splitPair(offered)
			if err != nil {
				return errors.Wrap(err, "offer")
			}
			mintB, amountB, err := splitPair(want)
			if err != nil {
				return errors.Wrap(err, "want")
			}

			l, err := openLedger()
			if err != nil {
				return err
			}
			programID, err := l.programID()
			if err != nil {
				return err
			}
			msg, err := escrow.NewMakeOfferMsg(programID, key.PublicKey().Address(), id, mintA, mintB, amountA, amountB)
			if err != nil {
				return err
			}
			res, err := l.submit(key, msg)
			if err != nil {
				return err
			}
			fmt.Printf("offer: %s\n", hex.EncodeToString(res.Data))
			printResult(res)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&id, "id", 0, "offer id, unique among the offers of the maker")
	cmd.Flags().StringVar(&offered, "offer", "", "offered tokens, as MINT:AMOUNT")
	cmd.Flags().StringVar(&want, "want", "", "wanted tokens, as MINT:AMOUNT")
	_ = cmd.MarkFlagRequired("offer")
	_ = cmd.MarkFlagRequired("want")
	return cmd
}

func takeOfferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take-offer <key> <offer>",
		Short: "Pay the wanted tokens and receive the offered ones",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(args[0])
			if err != nil {
				return err
			}
			l, offer, err := openOffer(args[1])
			if err != nil {
				return err
			}
			programID, err := l.programID()
			if err != nil {
				return err
			}
			msg, err := escrow.NewTakeOfferMsg(programID, key.PublicKey().Address(), offer)
			if err != nil {
				return err
			}
			res, err := l.submit(key, msg)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
}

func cancelOfferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-offer <key> <offer>",
		Short: "Return the locked tokens of an offer to its maker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(args[0])
			if err != nil {
				return err
			}
			l, offer, err := openOffer(args[1])
			if err != nil {
				return err
			}
			programID, err := l.programID()
			if err != nil {
				return err
			}
			msg, err := escrow.NewCancelOfferMsg(programID, offer)
			if err != nil {
				return err
			}
			res, err := l.submit(key, msg)
			if err != nil {
				return err
			}
			printResult(res)
			return nil
		},
	}
}

// openOffer opens the ledger and loads the offer stored under the hex
// encoded key.
func openOffer(enc string) (*localLedger, *escrow.Offer, error) {
	pda, err := hex.DecodeString(enc)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrInvalidInput, "offer must be hex encoded")
	}
	l, err := openLedger()
	if err != nil {
		return nil, nil, err
	}
	programID, err := l.programID()
	if err != nil {
		return nil, nil, err
	}
	registry := escrow.NewRegistry(programID, cash.NewController(cash.NewBucket()))
	offer, err := registry.GetByKey(l.DeliverStore(), pda)
	if err != nil {
		return nil, nil, err
	}
	return l, offer, nil
}
