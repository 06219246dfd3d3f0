package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ledger.Registry, ctrl Controller) {
	r.Handle(SendMsg{}.Path(), &sendHandler{ctrl: ctrl})
	r.Handle(CreateAccountMsg{}.Path(), &createAccountHandler{ctrl: ctrl})
	r.Handle(CloseAccountMsg{}.Path(), &closeAccountHandler{ctrl: ctrl})
}

// All authentication is done by the controller, using the authenticator
// it was created with. Check only validates the message.

type sendHandler struct {
	ctrl Controller
}

func (h *sendHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	var msg SendMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &ledger.CheckResult{}, nil
}

func (h *sendHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	var msg SendMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.TransferChecked(ctx, db, msg.Source, msg.Destination, msg.Mint, msg.Amount, msg.Decimals); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

type createAccountHandler struct {
	ctrl Controller
}

func (h *createAccountHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	var msg CreateAccountMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &ledger.CheckResult{}, nil
}

func (h *createAccountHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	var msg CreateAccountMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	addr, err := h.ctrl.CreateAssociatedAccount(ctx, db, msg.Payer, msg.Owner, msg.Mint)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{Data: addr}, nil
}

type closeAccountHandler struct {
	ctrl Controller
}

func (h *closeAccountHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	var msg CloseAccountMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &ledger.CheckResult{}, nil
}

func (h *closeAccountHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	var msg CloseAccountMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.CloseAccount(ctx, db, msg.Account, msg.Destination); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}
