package escrow

import "github.com/iov-one/ledger/errors"

// ErrTakerShouldNotBeMaker is returned when the maker of an offer attempts
// to take it.
var ErrTakerShouldNotBeMaker = errors.Register(150, "maker itself can not take the offer")
