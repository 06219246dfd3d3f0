package app

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/app"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/cash"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/token"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"
)

const chainID = "test-escrow"

var programID = solana.MustPublicKeyFromBase58(escrow.DefaultProgramID)

type account struct {
	pk  *crypto.PrivateKey
	seq int64
}

func newAccount() *account {
	return &account{pk: crypto.GenPrivKeyEd25519()}
}

func (a *account) address() ledger.Address {
	return a.pk.PublicKey().Address()
}

// signedTx wraps msg into a transaction signed by a.
func (a *account) signedTx(t testing.TB, msg ledger.Msg) []byte {
	t.Helper()
	tx := &Tx{Msg: msg}
	require.NoError(t, tx.Sign(a.pk, chainID, a.seq))
	a.seq++
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

type testApp struct {
	app.BaseApp
	height int64
}

func newTestApp(t testing.TB, state GenesisOptions) *testApp {
	t.Helper()
	base, err := Application("escrow", Stack(), TxDecoder, "", log.NewNopLogger(), true)
	require.NoError(t, err)

	appState, err := GenesisAppState(state)
	require.NoError(t, err)
	base.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: appState})
	base.Commit()
	return &testApp{BaseApp: base}
}

// deliver executes all transactions in a single block and commits it.
func (a *testApp) deliver(txs ...[]byte) []abci.ResponseDeliverTx {
	a.height++
	a.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: chainID,
		Height:  a.height,
		Time:    time.Now(),
	}})
	out := make([]abci.ResponseDeliverTx, len(txs))
	for i, tx := range txs {
		out[i] = a.DeliverTx(tx)
	}
	a.EndBlock(abci.RequestEndBlock{})
	a.Commit()
	return out
}

func (a *testApp) queryOne(t testing.TB, path string, key []byte, dest ledger.Persistent) bool {
	t.Helper()
	res := a.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var values app.ResultSet
	require.NoError(t, values.Unmarshal(res.Value))
	if len(values.Results) == 0 {
		return false
	}
	require.Len(t, values.Results, 1)
	require.NoError(t, dest.Unmarshal(values.Results[0]))
	return true
}

func (a *testApp) tokenBalance(t testing.TB, owner ledger.Address, mint string) uint64 {
	t.Helper()
	addr, err := token.AssociatedAddress(owner, mint)
	require.NoError(t, err)
	var acc token.TokenAccount
	if !a.queryOne(t, "/tokens", addr, &acc) {
		return 0
	}
	return acc.Amount
}

func (a *testApp) cashBalance(t testing.TB, owner ledger.Address) uint64 {
	t.Helper()
	var w cash.Wallet
	if !a.queryOne(t, "/wallets", owner, &w) {
		return 0
	}
	return w.Balance
}

func genesis(alice, bob *account) GenesisOptions {
	return GenesisOptions{
		Wallets: []cash.GenesisAccount{
			{Address: alice.address(), Balance: 1e10},
			{Address: bob.address(), Balance: 1e10},
		},
		Mints: []token.GenesisMint{
			{Ticker: "AAA", Decimals: 6},
			{Ticker: "BBB", Decimals: 2},
		},
		TokenAccounts: []token.GenesisAccount{
			{Owner: alice.address(), Mint: "AAA", Amount: 100},
			{Owner: bob.address(), Mint: "BBB", Amount: 80},
		},
	}
}

func TestSwapEndToEnd(t *testing.T) {
	alice, bob := newAccount(), newAccount()
	myApp := newTestApp(t, genesis(alice, bob))
	aliceCash := myApp.cashBalance(t, alice.address())

	makeMsg, err := escrow.NewMakeOfferMsg(programID, alice.address(), 1, "AAA", "BBB", 100, 80)
	require.NoError(t, err)
	res := myApp.deliver(alice.signedTx(t, makeMsg))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	require.Equal(t, makeMsg.Offer, res[0].Data)

	var offer escrow.Offer
	require.True(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
	require.Equal(t, uint64(80), offer.TokenBAmountWanted)
	require.Equal(t, uint64(0), myApp.tokenBalance(t, alice.address(), "AAA"))

	takeMsg, err := escrow.NewTakeOfferMsg(programID, bob.address(), &offer)
	require.NoError(t, err)
	res = myApp.deliver(bob.signedTx(t, takeMsg))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	require.Equal(t, uint64(80), myApp.tokenBalance(t, alice.address(), "BBB"))
	require.Equal(t, uint64(100), myApp.tokenBalance(t, bob.address(), "AAA"))
	require.Equal(t, uint64(0), myApp.tokenBalance(t, bob.address(), "BBB"))
	require.False(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
	require.Equal(t, aliceCash, myApp.cashBalance(t, alice.address()))

	// A consumed offer cannot be cancelled.
	cancelMsg, err := escrow.NewCancelOfferMsg(programID, &offer)
	require.NoError(t, err)
	res = myApp.deliver(alice.signedTx(t, cancelMsg))
	require.Equal(t, errors.ErrNotFound.ABCICode(), res[0].Code, res[0].Log)
}

func TestFailedTakeIsRolledBack(t *testing.T) {
	alice, bob := newAccount(), newAccount()
	state := genesis(alice, bob)
	state.TokenAccounts[1].Amount = 50
	myApp := newTestApp(t, state)

	makeMsg, err := escrow.NewMakeOfferMsg(programID, alice.address(), 1, "AAA", "BBB", 100, 80)
	require.NoError(t, err)
	res := myApp.deliver(alice.signedTx(t, makeMsg))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	bobCash := myApp.cashBalance(t, bob.address())

	var offer escrow.Offer
	require.True(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
	takeMsg, err := escrow.NewTakeOfferMsg(programID, bob.address(), &offer)
	require.NoError(t, err)
	res = myApp.deliver(bob.signedTx(t, takeMsg))
	require.Equal(t, errors.ErrInsufficientAmount.ABCICode(), res[0].Code, res[0].Log)

	require.Equal(t, bobCash, myApp.cashBalance(t, bob.address()))
	require.Equal(t, uint64(0), myApp.tokenBalance(t, bob.address(), "AAA"))
	require.Equal(t, uint64(50), myApp.tokenBalance(t, bob.address(), "BBB"))
	require.True(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
}

func TestFailedTxConsumesSequence(t *testing.T) {
	alice, bob := newAccount(), newAccount()
	state := genesis(alice, bob)
	state.TokenAccounts[1].Amount = 50
	state.TokenAccounts = append(state.TokenAccounts, token.GenesisAccount{
		Owner: alice.address(), Mint: "BBB", Amount: 30,
	})
	myApp := newTestApp(t, state)

	makeMsg, err := escrow.NewMakeOfferMsg(programID, alice.address(), 1, "AAA", "BBB", 100, 80)
	require.NoError(t, err)
	res := myApp.deliver(alice.signedTx(t, makeMsg))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	var offer escrow.Offer
	require.True(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
	takeMsg, err := escrow.NewTakeOfferMsg(programID, bob.address(), &offer)
	require.NoError(t, err)
	takeTx := bob.signedTx(t, takeMsg)
	res = myApp.deliver(takeTx)
	require.Equal(t, errors.ErrInsufficientAmount.ABCICode(), res[0].Code, res[0].Log)

	seq, err := sigs.NextSequence(myApp.DeliverStore(), bob.pk.PublicKey())
	require.NoError(t, err)
	require.Equal(t, int64(1), seq)

	aliceB, err := token.AssociatedAddress(alice.address(), "BBB")
	require.NoError(t, err)
	bobB, err := token.AssociatedAddress(bob.address(), "BBB")
	require.NoError(t, err)
	send := &token.SendMsg{Source: aliceB, Destination: bobB, Mint: "BBB", Amount: 30, Decimals: 2}
	res = myApp.deliver(alice.signedTx(t, send))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	require.Equal(t, uint64(80), myApp.tokenBalance(t, bob.address(), "BBB"))

	// The failed attempt cannot be replayed once bob is funded.
	res = myApp.deliver(takeTx)
	require.Equal(t, sigs.ErrInvalidSequence.ABCICode(), res[0].Code, res[0].Log)
	require.True(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
	require.Equal(t, uint64(80), myApp.tokenBalance(t, bob.address(), "BBB"))

	res = myApp.deliver(bob.signedTx(t, takeMsg))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)
	require.Equal(t, uint64(100), myApp.tokenBalance(t, bob.address(), "AAA"))
}

func TestTakeAndCancelRace(t *testing.T) {
	alice, bob := newAccount(), newAccount()
	myApp := newTestApp(t, genesis(alice, bob))

	makeMsg, err := escrow.NewMakeOfferMsg(programID, alice.address(), 1, "AAA", "BBB", 100, 80)
	require.NoError(t, err)
	res := myApp.deliver(alice.signedTx(t, makeMsg))
	require.Equal(t, uint32(0), res[0].Code, res[0].Log)

	var offer escrow.Offer
	require.True(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))
	takeMsg, err := escrow.NewTakeOfferMsg(programID, bob.address(), &offer)
	require.NoError(t, err)
	cancelMsg, err := escrow.NewCancelOfferMsg(programID, &offer)
	require.NoError(t, err)
	takeTx := bob.signedTx(t, takeMsg)
	cancelTx := alice.signedTx(t, cancelMsg)

	myApp.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{ChainID: chainID, Height: 2, Time: time.Now()}})
	var succeeded int32
	var g errgroup.Group
	for _, tx := range [][]byte{takeTx, cancelTx} {
		tx := tx
		g.Go(func() error {
			res := myApp.DeliverTx(tx)
			switch res.Code {
			case 0:
				atomic.AddInt32(&succeeded, 1)
			case errors.ErrNotFound.ABCICode():
			default:
				return errors.Wrapf(errors.ErrHuman, "unexpected result %d: %s", res.Code, res.Log)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	myApp.EndBlock(abci.RequestEndBlock{})
	myApp.Commit()
	myApp.height = 2

	require.Equal(t, int32(1), succeeded)
	require.False(t, myApp.queryOne(t, "/offers", makeMsg.Offer, &offer))

	// Whichever won, the asset A left the vault exactly once.
	total := myApp.tokenBalance(t, alice.address(), "AAA") + myApp.tokenBalance(t, bob.address(), "AAA")
	require.Equal(t, uint64(100), total)
}

func TestTxEncoding(t *testing.T) {
	alice := newAccount()
	msg := &token.SendMsg{
		Source:      alice.address(),
		Destination: newAccount().address(),
		Mint:        "AAA",
		Amount:      5,
		Decimals:    6,
	}
	raw := alice.signedTx(t, msg)

	tx, err := TxDecoder(raw)
	require.NoError(t, err)
	got, err := tx.GetMsg()
	require.NoError(t, err)
	require.Equal(t, msg, got)
	require.Len(t, tx.(*Tx).GetSignatures(), 1)
	require.Equal(t, int64(0), tx.(*Tx).GetSignatures()[0].Sequence)

	_, err = TxDecoder([]byte{0xFF})
	require.Error(t, err)

	empty, err := TxDecoder(nil)
	require.NoError(t, err)
	_, err = empty.GetMsg()
	require.True(t, errors.ErrInvalidMsg.Is(err))
}
