package escrow

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/x"
)

type contextKey int // local to the escrow module

const (
	contextKeyAuthority contextKey = iota
)

// withAuthority is private, so that only the custodian can act on behalf
// of an offer.
func withAuthority(ctx ledger.Context, authority ledger.Condition) ledger.Context {
	return context.WithValue(ctx, contextKeyAuthority, authority)
}

// Authenticate implements x.Authenticator for the offer authority that
// the custodian has put into the context.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

func (Authenticate) GetConditions(ctx ledger.Context) []ledger.Condition {
	val, _ := ctx.Value(contextKeyAuthority).(ledger.Condition)
	if val == nil {
		return nil
	}
	return []ledger.Condition{val}
}

func (a Authenticate) HasAddress(ctx ledger.Context, addr ledger.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
