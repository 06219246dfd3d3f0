package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	escrowd "github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	genesisFile = "genesis.json"
	dataDir     = "data"
	appName     = "escrow"
	localDB     = "local"
	nodeDB      = "node"
)

func newLogger() (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	if config.LogLevel == "" {
		return logger, nil
	}
	opt, err := log.AllowLevel(config.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "log level: %s", err)
	}
	return log.NewFilter(logger, opt).With("module", appName), nil
}

// localLedger is an application running in process on top of the state
// kept in the home directory.
type localLedger struct {
	app.BaseApp
	chainID string
}

// openApp loads the application state stored in the named database of the
// home directory.
func openApp(db string) (app.BaseApp, error) {
	logger, err := newLogger()
	if err != nil {
		return app.BaseApp{}, err
	}
	dbPath := filepath.Join(config.Home, dataDir, db+".db")
	return escrowd.Application(appName, escrowd.Stack(), escrowd.TxDecoder, dbPath, logger, config.Debug)
}

// openLedger loads the application state from the home directory. The
// genesis file is applied the first time the ledger is opened.
func openLedger() (*localLedger, error) {
	gen, err := app.LoadGenesis(filepath.Join(config.Home, genesisFile))
	if err != nil {
		return nil, errors.Wrap(err, "run init first")
	}
	base, err := openApp(localDB)
	if err != nil {
		return nil, err
	}
	if base.GetChainID() == "" {
		if err := initChain(base, gen); err != nil {
			return nil, errors.Wrap(err, "genesis")
		}
	}
	return &localLedger{BaseApp: base, chainID: gen.ChainID}, nil
}

// initChain applies the genesis. InitChain panics on an invalid genesis.
func initChain(base app.BaseApp, gen *app.Genesis) (err error) {
	defer errors.Recover(&err)
	base.InitChain(gen.InitChainRequest())
	base.Commit()
	return nil
}

// submit signs msg with key and executes it in a new block.
func (l *localLedger) submit(key *crypto.PrivateKey, msg ledger.Msg) (*ledger.DeliverResult, error) {
	seq, err := sigs.NextSequence(l.DeliverStore(), key.PublicKey())
	if err != nil {
		return nil, err
	}
	tx := &escrowd.Tx{Msg: msg}
	if err := tx.Sign(key, l.chainID, seq); err != nil {
		return nil, err
	}
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}

	info := l.Info(abci.RequestInfo{})
	l.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: l.chainID,
		Height:  info.LastBlockHeight + 1,
		Time:    time.Now().UTC(),
	}})
	res := l.DeliverTx(raw)
	l.EndBlock(abci.RequestEndBlock{Height: info.LastBlockHeight + 1})
	l.Commit()
	return ledger.ParseDeliverOrError(res)
}

func (l *localLedger) programID() (solana.PublicKey, error) {
	return escrow.LoadProgramID(l.DeliverStore())
}

func printResult(res *ledger.DeliverResult) {
	fmt.Printf("data: %s\n", hex.EncodeToString(res.Data))
	for _, tag := range res.Tags {
		fmt.Printf("tag: %s=%s\n", tag.Key, tag.Value)
	}
	if res.Log != "" {
		fmt.Printf("log: %s\n", res.Log)
	}
}
