package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/iov-one/ledger/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/abci/server"
)

func startCmd() *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Serve the ledger to a consensus engine over ABCI",
		Long: `Serve the ledger to a consensus engine over ABCI. The engine delivers
the genesis, and the state is kept apart from the local ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			base, err := openApp(nodeDB)
			if err != nil {
				return err
			}

			logger.Info("Starting ABCI app", "bind", bind)
			svr, err := server.NewServer(bind, "socket", base)
			if err != nil {
				return errors.Wrap(err, "create listener")
			}
			svr.SetLogger(logger.With("module", "abci-server"))
			if err := svr.Start(); err != nil {
				return errors.Wrap(err, "start server")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Info("Stopping ABCI app")
			return svr.Stop()
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "tcp://localhost:46658", "address server listens on")
	return cmd
}
