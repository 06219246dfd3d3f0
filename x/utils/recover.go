package utils

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Recovery is a decorator that turns a panic in any later step into an
// ErrPanic result. The recovered value is logged with the request logger.
type Recovery struct{}

var _ ledger.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx ledger.Context, store ledger.KVStore, tx ledger.Tx, next ledger.Checker) (_ *ledger.CheckResult, err error) {
	defer recoverInto(ctx, &err)
	return next.Check(ctx, store, tx)
}

func (Recovery) Deliver(ctx ledger.Context, store ledger.KVStore, tx ledger.Tx, next ledger.Deliverer) (_ *ledger.DeliverResult, err error) {
	defer recoverInto(ctx, &err)
	return next.Deliver(ctx, store, tx)
}

// recoverInto must be deferred directly so that recover can see the panic.
func recoverInto(ctx ledger.Context, err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%v", r)
		ledger.GetLogger(ctx).Error("Recovered from panic", "panic", r)
	}
}
