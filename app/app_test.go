package app

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// optionsWriter stores the raw genesis entry under its own name.
type optionsWriter string

func (w optionsWriter) FromGenesis(opts ledger.Options, kv ledger.KVStore) error {
	var v map[string]interface{}
	if err := opts.ReadOptions(string(w), &v); err != nil {
		return err
	}
	return kv.Set([]byte(w), opts[string(w)])
}

// rawBucket answers key queries straight from the store.
type rawBucket struct{}

func (rawBucket) Query(db ledger.ReadOnlyKVStore, mod string, data []byte) ([]ledger.Model, error) {
	v, err := db.Get(data)
	if err != nil || v == nil {
		return nil, err
	}
	return []ledger.Model{ledger.Pair(data, v)}, nil
}

// pathDecoder turns raw bytes into a transaction routed by those bytes.
func pathDecoder(raw []byte) (ledger.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty tx")
	}
	return &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: string(raw)}}, nil
}

func newTestApp(t *testing.T, store ledger.CommitKVStore) (BaseApp, *ledgertest.Handler, *ledgertest.Handler) {
	t.Helper()

	qr := ledger.NewQueryRouter()
	qr.Register("/raw", rawBucket{})

	sa, err := NewStoreApp("escrow-test", store, qr, context.Background())
	require.NoError(t, err)
	sa = sa.WithInit(ledger.ChainInitializers(optionsWriter("alpha"), optionsWriter("beta")))

	ok := &ledgertest.Handler{Write: []byte("ok")}
	fail := &ledgertest.Handler{Write: []byte("fail"), DeliverErr: errors.ErrInsufficientAmount}
	r := NewRouter()
	r.Handle("test/ok", ok)
	r.Handle("test/fail", fail)

	return NewBaseApp(sa, pathDecoder, r, false), ok, fail
}

func TestBaseApp(t *testing.T) {
	store := iavl.MockCommitStore()
	a, ok, fail := newTestApp(t, store)

	a.InitChain(abci.RequestInitChain{
		ChainId:       "escrow-chain",
		AppStateBytes: []byte(`{"alpha": {"x": 1}, "beta": {"y": 2}}`),
	})
	require.Equal(t, "escrow-chain", a.GetChainID())

	// Genesis cannot be loaded twice.
	require.Panics(t, func() {
		a.InitChain(abci.RequestInitChain{ChainId: "escrow-chain", AppStateBytes: []byte(`{}`)})
	})

	a.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: time.Now()}})

	check := a.CheckTx([]byte("test/ok"))
	require.Equal(t, errors.SuccessABCICode, check.Code, check.Log)

	res := a.DeliverTx([]byte("test/ok"))
	require.Equal(t, errors.SuccessABCICode, res.Code, res.Log)

	res = a.DeliverTx([]byte("test/fail"))
	require.Equal(t, errors.ErrInsufficientAmount.ABCICode(), res.Code)

	res = a.DeliverTx([]byte("test/unknown"))
	require.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)

	res = a.DeliverTx(nil)
	require.Equal(t, errors.ErrInvalidInput.ABCICode(), res.Code)

	require.Equal(t, 1, ok.DeliverCallCount())
	require.Equal(t, 1, fail.DeliverCallCount())

	a.EndBlock(abci.RequestEndBlock{Height: 1})
	commit := a.Commit()
	require.NotEmpty(t, commit.Data)

	// Writes reach the deliver state directly. Rolling back a failed
	// message is the job of a savepoint decorator.
	q := a.Query(abci.RequestQuery{Path: "/raw", Data: []byte("ok")})
	require.Equal(t, errors.SuccessABCICode, q.Code, q.Log)
	require.Equal(t, int64(1), q.Height)
	var values ResultSet
	require.NoError(t, values.Unmarshal(q.Value))
	require.Equal(t, [][]byte{[]byte("ok")}, values.Results)

	q = a.Query(abci.RequestQuery{Path: "/raw", Data: []byte("fail")})
	require.Equal(t, errors.SuccessABCICode, q.Code, q.Log)
	require.NoError(t, values.Unmarshal(q.Value))
	require.Equal(t, [][]byte{[]byte("fail")}, values.Results)

	q = a.Query(abci.RequestQuery{Path: "/raw", Data: []byte("alpha")})
	require.NoError(t, values.Unmarshal(q.Value))
	require.JSONEq(t, `{"x": 1}`, string(values.Results[0]))

	q = a.Query(abci.RequestQuery{Path: "/unknown"})
	require.Equal(t, errors.ErrNotFound.ABCICode(), q.Code)

	info := a.Info(abci.RequestInfo{})
	require.Equal(t, "escrow-test", info.Data)
	require.Equal(t, int64(1), info.LastBlockHeight)
	require.Equal(t, commit.Data, info.LastBlockAppHash)

	// A new app on top of the same store recovers the chain state.
	reloaded, _, _ := newTestApp(t, store)
	require.Equal(t, "escrow-chain", reloaded.GetChainID())
	height, ok2 := ledger.GetHeight(reloaded.BlockContext())
	require.True(t, ok2)
	require.Equal(t, int64(1), height)
}

func TestStoreAppRequiresGenesis(t *testing.T) {
	a, _, _ := newTestApp(t, iavl.MockCommitStore())
	require.Panics(t, func() {
		a.InitChain(abci.RequestInitChain{ChainId: "escrow-chain"})
	})
}
